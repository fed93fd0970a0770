package services

import (
	"contentgen_backend/internal/models"
	"contentgen_backend/pkg/apperrors"
)

// Причины отказа для метрик
const (
	quotaReasonInactive  = "inactive"
	quotaReasonExhausted = "exhausted"
)

// CheckQuota пропускает генерацию только при активной подписке
// и usage_count < monthly_limit. Ничего не изменяет.
func CheckQuota(user *models.User) error {
	if !user.Subscription.IsActive() {
		return apperrors.ErrNoActiveSubscription
	}
	if user.UsageCount >= user.Subscription.MonthlyLimit {
		return apperrors.ErrQuotaExhausted
	}
	return nil
}

func quotaReason(err error) string {
	if apperrors.Is(err, apperrors.ErrNoActiveSubscription) {
		return quotaReasonInactive
	}
	return quotaReasonExhausted
}
