package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"contentgen_backend/internal/billing"
	"contentgen_backend/internal/dto"
	"contentgen_backend/internal/idempotency"
	"contentgen_backend/internal/logger"
	"contentgen_backend/internal/metrics"
	"contentgen_backend/internal/models"
	"contentgen_backend/internal/repositories"
	"contentgen_backend/pkg/apperrors"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type SubscriptionService interface {
	GetPlans() dto.PlanCatalog
	CreateCheckoutSession(ctx context.Context, db *gorm.DB, userID, planID string) (*dto.CheckoutSessionResponse, error)
	GetStatus(ctx context.Context, db *gorm.DB, userID string) (*dto.SubscriptionStatusResponse, error)
	Cancel(ctx context.Context, db *gorm.DB, userID string) error

	// HandleWebhook проверяет подпись и применяет событие к подписке.
	// Повторная доставка того же события ничего не меняет.
	HandleWebhook(ctx context.Context, db *gorm.DB, payload []byte, signature string) error
}

type subscriptionService struct {
	userRepo      repositories.UserRepository
	analyticsRepo repositories.AnalyticsRepository
	gateway       billing.Gateway
	events        idempotency.Store
	notifier      NotificationService
	metrics       *metrics.Metrics
	clientURL     string
	now           func() time.Time
}

func NewSubscriptionService(
	userRepo repositories.UserRepository,
	analyticsRepo repositories.AnalyticsRepository,
	gateway billing.Gateway,
	events idempotency.Store,
	notifier NotificationService,
	m *metrics.Metrics,
	clientURL string,
) SubscriptionService {
	if events == nil {
		events = idempotency.NoopStore{}
	}
	return &subscriptionService{
		userRepo:      userRepo,
		analyticsRepo: analyticsRepo,
		gateway:       gateway,
		events:        events,
		notifier:      notifier,
		metrics:       m,
		clientURL:     clientURL,
		now:           time.Now,
	}
}

// ---------------- Plans & status ----------------

func (s *subscriptionService) GetPlans() dto.PlanCatalog {
	return billing.Plans()
}

func (s *subscriptionService) GetStatus(ctx context.Context, db *gorm.DB, userID string) (*dto.SubscriptionStatusResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, mapUserErr(err)
	}

	return &dto.SubscriptionStatusResponse{
		Subscription: user.Subscription,
		UsageCount:   user.UsageCount,
		Plans:        billing.Plans(),
	}, nil
}

// ---------------- Checkout ----------------

func (s *subscriptionService) CreateCheckoutSession(ctx context.Context, db *gorm.DB, userID, planID string) (*dto.CheckoutSessionResponse, error) {
	plan, ok := billing.LookupPlan(planID)
	if !ok {
		return nil, apperrors.ErrInvalidPlan
	}

	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, mapUserErr(err)
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, billing.CheckoutRequest{
		UserID:     user.ID,
		Email:      user.Email,
		Plan:       plan,
		SuccessURL: fmt.Sprintf("%s/dashboard?success=true&plan=%s", s.clientURL, url.QueryEscape(plan.ID)),
		CancelURL:  s.clientURL + "/pricing?canceled=true",
	})
	if err != nil {
		logger.CtxWithError(ctx, "Checkout session creation failed", err, "plan_id", plan.ID)
		return nil, apperrors.ErrCheckoutFailed.WithError(err)
	}

	logger.CtxInfo(ctx, "Checkout session created", "plan_id", plan.ID, "session_id", session.ID)
	return &dto.CheckoutSessionResponse{SessionID: session.ID, URL: session.URL}, nil
}

// ---------------- Cancellation ----------------

// Cancel сначала отменяет подписку в Stripe и только после успеха меняет локальный статус
func (s *subscriptionService) Cancel(ctx context.Context, db *gorm.DB, userID string) error {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return mapUserErr(err)
	}

	stripeID := user.Subscription.StripeSubscriptionID
	if stripeID == "" {
		return apperrors.ErrNoSubscriptionToCancel
	}

	if err := s.gateway.CancelSubscription(ctx, stripeID); err != nil {
		logger.CtxWithError(ctx, "Billing provider rejected cancellation", err, "stripe_subscription_id", stripeID)
		return apperrors.ErrCancelFailed.WithError(err)
	}

	now := s.now()
	_, err = s.updateLocked(db,
		func(tx *gorm.DB) (*models.User, error) { return s.userRepo.FindByIDForUpdate(tx, userID) },
		func(u *models.User) (models.Subscription, bool) {
			sub := u.Subscription
			sub.Status = models.SubscriptionStatusCancelled
			sub.CancelledAt = &now
			return sub, false
		},
	)
	if err != nil {
		return apperrors.DatabaseError(err)
	}

	s.recordAnalytics(ctx, db, userID, models.ActionSubscriptionCancelled, map[string]interface{}{
		"source": "user",
	})
	logger.CtxInfo(ctx, "Subscription cancelled by user", "stripe_subscription_id", stripeID)
	return nil
}

// ---------------- Webhook ----------------

func (s *subscriptionService) HandleWebhook(ctx context.Context, db *gorm.DB, payload []byte, signature string) error {
	event, err := s.gateway.ParseEvent(payload, signature)
	if err != nil {
		s.metrics.ObserveWebhook("unknown", metrics.OutcomeInvalidSignature)
		logger.WebhookLog("", "", metrics.OutcomeInvalidSignature, err)
		return apperrors.ErrWebhookSignature(err)
	}

	ctx = logger.WithEventID(ctx, event.ID)
	eventType := string(event.Type)

	claimed, claimErr := s.events.Claim(ctx, event.ID)
	if claimErr == nil && !claimed {
		s.metrics.ObserveWebhook(eventType, metrics.OutcomeDuplicate)
		logger.WebhookLog(event.ID, eventType, metrics.OutcomeDuplicate, nil)
		return nil
	}

	outcome, err := s.applyEvent(ctx, db, event)
	if err != nil {
		if relErr := s.events.Release(ctx, event.ID); relErr != nil {
			logger.CtxWithError(ctx, "Failed to release webhook claim", relErr)
		}
		s.metrics.ObserveWebhook(eventType, metrics.OutcomeWebhookFailed)
		logger.WebhookLog(event.ID, eventType, metrics.OutcomeWebhookFailed, err)
		return apperrors.ErrWebhookFailed.WithError(err)
	}

	s.metrics.ObserveWebhook(eventType, outcome)
	logger.WebhookLog(event.ID, eventType, outcome, nil)
	return nil
}

func (s *subscriptionService) applyEvent(ctx context.Context, db *gorm.DB, event *billing.Event) (string, error) {
	switch event.Type {
	case billing.EventCheckoutCompleted:
		return s.onCheckoutCompleted(ctx, db, event)
	case billing.EventPaymentSucceeded:
		return s.onPaymentSucceeded(ctx, db, event)
	case billing.EventPaymentFailed:
		return s.onPaymentFailed(ctx, db, event)
	case billing.EventSubscriptionDeleted:
		return s.onSubscriptionDeleted(ctx, db, event)
	default:
		logger.CtxInfo(ctx, "Unhandled webhook event type", "event_type", event.Type)
		return metrics.OutcomeUnhandled, nil
	}
}

func (s *subscriptionService) onCheckoutCompleted(ctx context.Context, db *gorm.DB, event *billing.Event) (string, error) {
	plan, ok := billing.LookupPlan(event.PlanID)
	if !ok || event.UserID == "" || event.SubscriptionID == "" {
		logger.CtxWarn(ctx, "Checkout event without usable metadata, ignoring",
			"user_id", event.UserID,
			"plan_id", event.PlanID,
			"stripe_subscription_id", event.SubscriptionID,
		)
		return metrics.OutcomeIgnored, nil
	}

	periodEnd := s.fetchPeriodEnd(ctx, event.SubscriptionID)

	user, err := s.updateLocked(db,
		func(tx *gorm.DB) (*models.User, error) { return s.userRepo.FindByIDForUpdate(tx, event.UserID) },
		func(u *models.User) (models.Subscription, bool) {
			return models.Subscription{
				Status:               models.SubscriptionStatusActive,
				PlanID:               plan.ID,
				PlanName:             plan.Name,
				MonthlyLimit:         plan.MonthlyLimit,
				StripeSubscriptionID: event.SubscriptionID,
				StripeCustomerID:     event.CustomerID,
				CurrentPeriodEnd:     periodEnd,
				Features:             pq.StringArray(plan.Features),
			}, true
		},
	)
	if errors.Is(err, repositories.ErrUserNotFound) {
		logger.CtxWarn(ctx, "Checkout event for unknown user, ignoring", "user_id", event.UserID)
		return metrics.OutcomeIgnored, nil
	}
	if err != nil {
		return "", err
	}

	s.recordAnalytics(ctx, db, user.ID, models.ActionSubscriptionActivated, map[string]interface{}{
		"planId":               plan.ID,
		"stripeSubscriptionId": event.SubscriptionID,
	})
	s.notifier.NotifySubscriptionActivated(user, plan)
	return metrics.OutcomeProcessed, nil
}

func (s *subscriptionService) onPaymentSucceeded(ctx context.Context, db *gorm.DB, event *billing.Event) (string, error) {
	periodEnd := s.fetchPeriodEnd(ctx, event.SubscriptionID)

	_, err := s.updateBySubscriptionID(db, event.SubscriptionID, func(u *models.User) (models.Subscription, bool) {
		sub := u.Subscription
		sub.Status = models.SubscriptionStatusActive
		if periodEnd != nil {
			sub.CurrentPeriodEnd = periodEnd
		}
		return sub, false
	})
	return s.outcome(ctx, event, err)
}

func (s *subscriptionService) onPaymentFailed(ctx context.Context, db *gorm.DB, event *billing.Event) (string, error) {
	user, err := s.updateBySubscriptionID(db, event.SubscriptionID, func(u *models.User) (models.Subscription, bool) {
		sub := u.Subscription
		sub.Status = models.SubscriptionStatusPastDue
		return sub, false
	})
	outcome, err := s.outcome(ctx, event, err)
	if outcome == metrics.OutcomeProcessed {
		s.notifier.NotifyPaymentFailed(user)
	}
	return outcome, err
}

func (s *subscriptionService) onSubscriptionDeleted(ctx context.Context, db *gorm.DB, event *billing.Event) (string, error) {
	now := s.now()
	user, err := s.updateBySubscriptionID(db, event.SubscriptionID, func(u *models.User) (models.Subscription, bool) {
		sub := u.Subscription
		sub.Status = models.SubscriptionStatusCancelled
		sub.CancelledAt = &now
		return sub, false
	})
	outcome, err := s.outcome(ctx, event, err)
	if outcome == metrics.OutcomeProcessed {
		s.recordAnalytics(ctx, db, user.ID, models.ActionSubscriptionCancelled, map[string]interface{}{
			"source": "billing",
		})
		s.notifier.NotifySubscriptionCancelled(user)
	}
	return outcome, err
}

// outcome: пользователь не найден - событие игнорируется
func (s *subscriptionService) outcome(ctx context.Context, event *billing.Event, err error) (string, error) {
	if errors.Is(err, repositories.ErrUserNotFound) {
		logger.CtxInfo(ctx, "Webhook event for unknown subscription, ignoring",
			"stripe_subscription_id", event.SubscriptionID)
		return metrics.OutcomeIgnored, nil
	}
	if err != nil {
		return "", err
	}
	return metrics.OutcomeProcessed, nil
}

// fetchPeriodEnd читает конец периода из Stripe. Ошибка не мешает смене статуса.
func (s *subscriptionService) fetchPeriodEnd(ctx context.Context, subscriptionID string) *time.Time {
	if subscriptionID == "" {
		return nil
	}
	info, err := s.gateway.GetSubscription(ctx, subscriptionID)
	if err != nil {
		logger.CtxWithError(ctx, "Failed to retrieve subscription from billing provider", err,
			"stripe_subscription_id", subscriptionID)
		return nil
	}
	if info.CurrentPeriodEnd.IsZero() {
		return nil
	}
	end := info.CurrentPeriodEnd
	return &end
}

func (s *subscriptionService) updateBySubscriptionID(db *gorm.DB, subscriptionID string, mutate func(u *models.User) (models.Subscription, bool)) (*models.User, error) {
	return s.updateLocked(db,
		func(tx *gorm.DB) (*models.User, error) {
			return s.userRepo.FindByStripeSubscriptionIDForUpdate(tx, subscriptionID)
		},
		mutate,
	)
}

// updateLocked читает пользователя под FOR UPDATE, применяет mutate и пишет
// подписку с проверкой версии в одной транзакции.
// mutate возвращает новую подписку и флаг сброса usage_count.
func (s *subscriptionService) updateLocked(
	db *gorm.DB,
	find func(tx *gorm.DB) (*models.User, error),
	mutate func(u *models.User) (models.Subscription, bool),
) (*models.User, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer tx.Rollback()

	user, err := find(tx)
	if err != nil {
		return nil, err
	}

	sub, resetUsage := mutate(user)
	if err := s.userRepo.UpdateSubscription(tx, user, sub, resetUsage); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *subscriptionService) recordAnalytics(ctx context.Context, db *gorm.DB, userID, action string, meta map[string]interface{}) {
	if err := s.analyticsRepo.Record(db, userID, action, nil, meta); err != nil {
		logger.CtxWithError(ctx, "Failed to record analytics event", err, "action", action)
	}
}
