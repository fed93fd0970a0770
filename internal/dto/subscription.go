package dto

import (
	"contentgen_backend/internal/billing"
	"contentgen_backend/internal/models"
)

// CreateCheckoutRequest - тело POST /subscriptions/create-checkout-session
type CreateCheckoutRequest struct {
	PlanID string `json:"planId" validate:"required,is-plan-id"`
}

type CheckoutSessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url,omitempty"`
}

// SubscriptionStatusResponse - ответ GET /subscriptions/status
type SubscriptionStatusResponse struct {
	Subscription models.Subscription `json:"subscription"`
	UsageCount   int                 `json:"usageCount"`
	Plans        PlanCatalog         `json:"plans"`
}

// PlanCatalog - каталог тарифов, ключ - ID тарифа
type PlanCatalog map[string]billing.Plan

type CancelSubscriptionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
