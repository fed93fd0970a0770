package models

import (
	"time"

	"gorm.io/datatypes"
)

// Действия, которые пишутся в журнал аналитики
const (
	ActionContentGenerated      = "content_generated"
	ActionContentDeleted        = "content_deleted"
	ActionSubscriptionActivated = "subscription_activated"
	ActionSubscriptionCancelled = "subscription_cancelled"
)

// AnalyticsEvent - запись журнала действий пользователя. Только добавление.
type AnalyticsEvent struct {
	ID          string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID      string         `gorm:"type:uuid;not null;index"`
	Action      string         `gorm:"type:varchar(100);not null;index"`
	ContentType *ContentType   `gorm:"type:varchar(20)"`
	Metadata    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time      `gorm:"default:now();index"`
}

func (AnalyticsEvent) TableName() string {
	return "analytics_events"
}
