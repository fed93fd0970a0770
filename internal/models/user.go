package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type User struct {
	BaseModel
	Email        string       `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string       `gorm:"not null" json:"-"`
	Subscription Subscription `gorm:"embedded;embeddedPrefix:subscription_" json:"subscription"`
	UsageCount   int          `gorm:"not null;default:0" json:"usageCount"`
}

// Subscription хранится внутри users (колонки subscription_*).
// Version растет на каждое изменение и служит токеном оптимистичной блокировки.
type Subscription struct {
	Status               SubscriptionStatus `gorm:"type:varchar(20);not null;default:'inactive';index" json:"status"`
	PlanID               string             `gorm:"type:varchar(50)" json:"planId,omitempty"`
	PlanName             string             `gorm:"type:varchar(100)" json:"planName,omitempty"`
	MonthlyLimit         int                `gorm:"not null;default:0" json:"monthlyLimit"`
	StripeSubscriptionID string             `gorm:"type:varchar(255);index" json:"stripeSubscriptionId,omitempty"`
	StripeCustomerID     string             `gorm:"type:varchar(255)" json:"stripeCustomerId,omitempty"`
	CurrentPeriodEnd     *time.Time         `json:"currentPeriodEnd,omitempty"`
	Features             pq.StringArray     `gorm:"type:text[]" json:"features"`
	CancelledAt          *time.Time         `json:"cancelledAt,omitempty"`
	Version              int                `gorm:"not null;default:0" json:"version"`
}

// IsActive - подписка дает право на генерацию
func (s Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive
}

// BeforeSave нормализует email: нижний регистр, без пробелов
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	if u.Subscription.Status == "" {
		u.Subscription.Status = SubscriptionStatusInactive
	}
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (User) TableName() string {
	return "users"
}
