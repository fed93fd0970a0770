package billing

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedEvent   = errors.New("malformed webhook event")
)

// EventType - типы событий Stripe, на которые реагирует сервис
type EventType string

const (
	EventCheckoutCompleted   EventType = "checkout.session.completed"
	EventPaymentSucceeded    EventType = "invoice.payment_succeeded"
	EventPaymentFailed       EventType = "invoice.payment_failed"
	EventSubscriptionDeleted EventType = "customer.subscription.deleted"
)

// Event - проверенное и разобранное событие вебхука.
// Для checkout заполнены UserID/PlanID из metadata, для остальных - SubscriptionID.
type Event struct {
	ID             string
	Type           EventType
	UserID         string
	PlanID         string
	SubscriptionID string
	CustomerID     string
}

type CheckoutRequest struct {
	UserID     string
	Email      string
	Plan       Plan
	SuccessURL string
	CancelURL  string
}

type CheckoutSession struct {
	ID  string `json:"sessionId"`
	URL string `json:"url,omitempty"`
}

type SubscriptionInfo struct {
	ID               string
	CustomerID       string
	Status           string
	CurrentPeriodEnd time.Time
}

// Gateway - внешняя платежная система
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*SubscriptionInfo, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
	// ParseEvent проверяет подпись и разбирает тело вебхука.
	// Ошибка подписи оборачивает ErrInvalidSignature.
	ParseEvent(payload []byte, signature string) (*Event, error)
}
