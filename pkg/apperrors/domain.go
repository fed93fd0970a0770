package apperrors

import (
	"net/http"
)

/*
Фабрики и предопределенные ошибки домена: квоты, генерация,
контент и биллинг.
*/

// --- Quota ---

// ErrNoActiveSubscription - подписка не в статусе active (403)
var ErrNoActiveSubscription = New(
	CodeForbidden,
	"quota",
	"Active subscription required",
	http.StatusForbidden,
)

// ErrQuotaExhausted - месячный лимит генераций исчерпан (429)
var ErrQuotaExhausted = New(
	CodeLimitExceeded,
	"quota",
	"Monthly usage limit reached",
	http.StatusTooManyRequests,
)

// --- Content ---

var ErrInvalidContentType = New(
	CodeValidationFailed,
	"content",
	"Invalid content type",
	http.StatusBadRequest,
)

var ErrContentNotFound = New(
	CodeNotFound,
	"content",
	"Content not found",
	http.StatusNotFound,
)

// ErrGenerationFailed - любая ошибка провайдера генерации (500).
// Подробности остаются в Err и в логах.
var ErrGenerationFailed = New(
	CodeGenerationFailed,
	"content",
	"Failed to generate content",
	http.StatusInternalServerError,
)

var ErrUserNotFound = New(
	CodeNotFound,
	"user",
	"User not found",
	http.StatusNotFound,
)

// --- Billing ---

var ErrInvalidPlan = New(
	CodeValidationFailed,
	"billing",
	"Invalid plan",
	http.StatusBadRequest,
)

var ErrNoSubscriptionToCancel = New(
	CodeInvalidOperation,
	"billing",
	"No active subscription",
	http.StatusBadRequest,
)

var ErrCheckoutFailed = New(
	CodeBillingError,
	"billing",
	"Failed to create checkout session",
	http.StatusInternalServerError,
)

var ErrCancelFailed = New(
	CodeBillingError,
	"billing",
	"Failed to cancel subscription",
	http.StatusInternalServerError,
)

var ErrWebhookFailed = New(
	CodeBillingError,
	"billing",
	"Webhook handler failed",
	http.StatusInternalServerError,
)

// ErrWebhookSignature - событие не прошло проверку подписи (400)
func ErrWebhookSignature(err error) *AppError {
	msg := "Webhook Error"
	if err != nil {
		msg = "Webhook Error: " + err.Error()
	}
	return Wrap(err, CodeInvalidSignature, "billing", msg, http.StatusBadRequest)
}
