package repositories

import (
	"errors"
	"strings"
	"time"

	"contentgen_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrVersionConflict - подписку изменили между чтением и записью
	ErrVersionConflict = errors.New("subscription was modified concurrently")
)

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindByEmail(db *gorm.DB, email string) (*models.User, error)

	// Блокирующие чтения для изменения подписки внутри транзакции
	FindByIDForUpdate(db *gorm.DB, id string) (*models.User, error)
	FindByStripeSubscriptionIDForUpdate(db *gorm.DB, subscriptionID string) (*models.User, error)

	// IncrementUsageIfBelowLimit атомарно увеличивает usage_count, если подписка
	// активна и лимит не исчерпан. ok=false - инкремента не было.
	IncrementUsageIfBelowLimit(db *gorm.DB, id string) (usageCount int, ok bool, err error)

	// UpdateSubscription пишет подписку, если версия не изменилась, и увеличивает версию.
	UpdateSubscription(db *gorm.DB, user *models.User, sub models.Subscription, resetUsage bool) error

	CountBySubscriptionStatus(db *gorm.DB) (map[models.SubscriptionStatus]int64, error)
}

type UserRepositoryImpl struct{}

func NewUserRepository() UserRepository {
	return &UserRepositoryImpl{}
}

func (r *UserRepositoryImpl) Create(db *gorm.DB, user *models.User) error {
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *UserRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, mapUserError(err)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ?", models.NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, mapUserError(err)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByIDForUpdate(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, mapUserError(err)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByStripeSubscriptionIDForUpdate(db *gorm.DB, subscriptionID string) (*models.User, error) {
	if subscriptionID == "" {
		return nil, ErrUserNotFound
	}
	var user models.User
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("subscription_stripe_subscription_id = ?", subscriptionID).
		First(&user).Error
	if err != nil {
		return nil, mapUserError(err)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) IncrementUsageIfBelowLimit(db *gorm.DB, id string) (int, bool, error) {
	var result struct {
		UsageCount int
	}
	res := db.Raw(`UPDATE users
		SET usage_count = usage_count + 1, updated_at = NOW()
		WHERE id = ? AND subscription_status = ? AND usage_count < subscription_monthly_limit
		RETURNING usage_count`,
		id, models.SubscriptionStatusActive,
	).Scan(&result)
	if res.Error != nil {
		return 0, false, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, false, nil
	}
	return result.UsageCount, true, nil
}

func (r *UserRepositoryImpl) UpdateSubscription(db *gorm.DB, user *models.User, sub models.Subscription, resetUsage bool) error {
	updates := map[string]interface{}{
		"subscription_status":                 sub.Status,
		"subscription_plan_id":                sub.PlanID,
		"subscription_plan_name":              sub.PlanName,
		"subscription_monthly_limit":          sub.MonthlyLimit,
		"subscription_stripe_subscription_id": sub.StripeSubscriptionID,
		"subscription_stripe_customer_id":     sub.StripeCustomerID,
		"subscription_current_period_end":     sub.CurrentPeriodEnd,
		"subscription_features":               sub.Features,
		"subscription_cancelled_at":           sub.CancelledAt,
		"subscription_version":                gorm.Expr("subscription_version + 1"),
		"updated_at":                          time.Now(),
	}
	if resetUsage {
		updates["usage_count"] = 0
	}

	res := db.Model(&models.User{}).
		Where("id = ? AND subscription_version = ?", user.ID, user.Subscription.Version).
		UpdateColumns(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}

	sub.Version = user.Subscription.Version + 1
	user.Subscription = sub
	if resetUsage {
		user.UsageCount = 0
	}
	return nil
}

func (r *UserRepositoryImpl) CountBySubscriptionStatus(db *gorm.DB) (map[models.SubscriptionStatus]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := db.Model(&models.User{}).
		Select("subscription_status AS status, COUNT(*) AS count").
		Group("subscription_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.SubscriptionStatus]int64, len(models.AllSubscriptionStatuses))
	for _, s := range models.AllSubscriptionStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[models.SubscriptionStatus(row.Status)] = row.Count
	}
	return counts, nil
}

func mapUserError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}
