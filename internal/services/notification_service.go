package services

import (
	"sync"

	"contentgen_backend/internal/billing"
	"contentgen_backend/internal/email"
	"contentgen_backend/internal/logger"
	"contentgen_backend/internal/models"
)

// NotificationService отправляет письма о смене подписки.
// Отправка асинхронная: ошибка логируется и не влияет на вызывающего.
type NotificationService interface {
	NotifySubscriptionActivated(user *models.User, plan billing.Plan)
	NotifyPaymentFailed(user *models.User)
	NotifySubscriptionCancelled(user *models.User)
	// Wait ждет завершения уже запущенных отправок (graceful shutdown, тесты)
	Wait()
}

type notificationService struct {
	provider  email.Provider
	clientURL string
	wg        sync.WaitGroup
}

func NewNotificationService(provider email.Provider, clientURL string) NotificationService {
	return &notificationService{
		provider:  provider,
		clientURL: clientURL,
	}
}

func (s *notificationService) NotifySubscriptionActivated(user *models.User, plan billing.Plan) {
	s.dispatch(user.Email, "Your "+plan.Name+" plan is active", email.TemplateWelcome, email.TemplateData{
		"Email":        user.Email,
		"PlanName":     plan.Name,
		"MonthlyLimit": plan.MonthlyLimit,
		"DashboardURL": s.clientURL + "/dashboard",
	})
}

func (s *notificationService) NotifyPaymentFailed(user *models.User) {
	s.dispatch(user.Email, "Payment failed", email.TemplatePaymentFailed, email.TemplateData{
		"Email":      user.Email,
		"PlanName":   user.Subscription.PlanName,
		"BillingURL": s.clientURL + "/pricing",
	})
}

func (s *notificationService) NotifySubscriptionCancelled(user *models.User) {
	s.dispatch(user.Email, "Your subscription has been cancelled", email.TemplateSubscriptionCancelled, email.TemplateData{
		"Email":      user.Email,
		"PricingURL": s.clientURL + "/pricing",
	})
}

func (s *notificationService) Wait() {
	s.wg.Wait()
}

func (s *notificationService) dispatch(to, subject, templateName string, data email.TemplateData) {
	if s.provider == nil || to == "" {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.provider.SendTemplate([]string{to}, subject, templateName, data); err != nil {
			logger.Error("Failed to send notification email",
				"template", templateName,
				"error", err,
			)
		}
	}()
}
