package handlers

import (
	"errors"
	"io"
	"net/http"

	"contentgen_backend/internal/dto"
	"contentgen_backend/internal/services"
	"contentgen_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

const (
	// MaxWebhookBodyBytes - Stripe присылает события до 64 КБ
	MaxWebhookBodyBytes   = 65536
	StripeSignatureHeader = "Stripe-Signature"
)

type SubscriptionHandler struct {
	*BaseHandler
	subscriptionService services.SubscriptionService
}

func NewSubscriptionHandler(base *BaseHandler, subscriptionService services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		BaseHandler:         base,
		subscriptionService: subscriptionService,
	}
}

func (h *SubscriptionHandler) RegisterRoutes(r *gin.RouterGroup) {
	subs := r.Group("/subscriptions")
	{
		// Публичные: каталог и вебхук Stripe (аутентификация по подписи)
		subs.GET("/plans", h.GetPlans)
		subs.POST("/webhook", h.Webhook)

		subs.POST("/create-checkout-session", h.Auth(), h.CreateCheckoutSession)
		subs.POST("/cancel", h.Auth(), h.Cancel)
		subs.GET("/status", h.Auth(), h.Status)
	}
}

// @Summary Каталог тарифов
// @Tags subscriptions
// @Produce json
// @Success 200 {object} dto.PlanCatalog
// @Router /api/v1/subscriptions/plans [get]
func (h *SubscriptionHandler) GetPlans(c *gin.Context) {
	c.JSON(http.StatusOK, h.subscriptionService.GetPlans())
}

// CreateCheckoutSession godoc
// @Summary Создать checkout-сессию Stripe
// @Tags subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCheckoutRequest true "Тариф"
// @Success 200 {object} dto.CheckoutSessionResponse
// @Failure 400 {object} apperrors.ErrorResponse "Неизвестный тариф"
// @Failure 500 {object} apperrors.ErrorResponse
// @Router /api/v1/subscriptions/create-checkout-session [post]
func (h *SubscriptionHandler) CreateCheckoutSession(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCheckoutRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.subscriptionService.CreateCheckoutSession(c.Request.Context(), h.GetDB(c), userID, req.PlanID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Webhook godoc
// @Summary Вебхук Stripe
// @Description Сырое тело события, проверяется по заголовку Stripe-Signature
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Подпись Stripe"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} apperrors.ErrorResponse "Подпись не прошла проверку"
// @Failure 500 {object} apperrors.ErrorResponse
// @Router /api/v1/subscriptions/webhook [post]
func (h *SubscriptionHandler) Webhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxWebhookBodyBytes)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		status := http.StatusServiceUnavailable
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			status = http.StatusRequestEntityTooLarge
		}
		apperrors.HandleError(c, apperrors.New(apperrors.CodeValidationFailed, "billing",
			"Webhook Error: unable to read body", status))
		return
	}

	err = h.subscriptionService.HandleWebhook(c.Request.Context(), h.GetDB(c), payload, c.GetHeader(StripeSignatureHeader))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// @Summary Отменить подписку
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CancelSubscriptionResponse
// @Failure 400 {object} apperrors.ErrorResponse "Нет подписки"
// @Failure 500 {object} apperrors.ErrorResponse "Stripe отклонил отмену"
// @Router /api/v1/subscriptions/cancel [post]
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.subscriptionService.Cancel(c.Request.Context(), h.GetDB(c), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CancelSubscriptionResponse{
		Success: true,
		Message: "Subscription cancelled successfully",
	})
}

// @Summary Статус подписки и использование
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SubscriptionStatusResponse
// @Router /api/v1/subscriptions/status [get]
func (h *SubscriptionHandler) Status(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.subscriptionService.GetStatus(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
