package services

import (
	"contentgen_backend/internal/email"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	ContentService      ContentService
	SubscriptionService SubscriptionService
	NotificationService NotificationService
	EmailService        email.Provider
}
