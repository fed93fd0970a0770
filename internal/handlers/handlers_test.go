package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"contentgen_backend/internal/auth"
	"contentgen_backend/internal/billing"
	"contentgen_backend/internal/dto"
	"contentgen_backend/internal/middleware"
	"contentgen_backend/internal/testutils"
	"contentgen_backend/internal/validator"
	"contentgen_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testUser = "11111111-1111-4111-8111-111111111111"

type stubContentService struct {
	generateErr error
	lastReq     *dto.GenerateContentRequest
	deleteErr   error
	calls       int
}

func (s *stubContentService) Generate(ctx context.Context, db *gorm.DB, userID string, req *dto.GenerateContentRequest) (*dto.GenerateContentResponse, error) {
	s.calls++
	s.lastReq = req
	if s.generateErr != nil {
		return nil, s.generateErr
	}
	return &dto.GenerateContentResponse{Success: true, Content: "text", ContentID: "c-1", UsageCount: 1, MonthlyLimit: 50}, nil
}

func (s *stubContentService) ListHistory(ctx context.Context, db *gorm.DB, userID string) ([]dto.ContentResponse, error) {
	return []dto.ContentResponse{{ID: "c-1"}}, nil
}

func (s *stubContentService) Get(ctx context.Context, db *gorm.DB, userID, contentID string) (*dto.ContentResponse, error) {
	return nil, apperrors.ErrContentNotFound
}

func (s *stubContentService) Delete(ctx context.Context, db *gorm.DB, userID, contentID string) error {
	return s.deleteErr
}

type stubSubscriptionService struct {
	webhookPayload   []byte
	webhookSignature string
	webhookErr       error
	cancelErr        error
}

func (s *stubSubscriptionService) GetPlans() dto.PlanCatalog {
	return billing.Plans()
}

func (s *stubSubscriptionService) CreateCheckoutSession(ctx context.Context, db *gorm.DB, userID, planID string) (*dto.CheckoutSessionResponse, error) {
	return &dto.CheckoutSessionResponse{SessionID: "cs_" + planID}, nil
}

func (s *stubSubscriptionService) GetStatus(ctx context.Context, db *gorm.DB, userID string) (*dto.SubscriptionStatusResponse, error) {
	return &dto.SubscriptionStatusResponse{UsageCount: 4, Plans: billing.Plans()}, nil
}

func (s *stubSubscriptionService) Cancel(ctx context.Context, db *gorm.DB, userID string) error {
	return s.cancelErr
}

func (s *stubSubscriptionService) HandleWebhook(ctx context.Context, db *gorm.DB, payload []byte, signature string) error {
	s.webhookPayload = payload
	s.webhookSignature = signature
	return s.webhookErr
}

type testEnv struct {
	router  *gin.Engine
	token   string
	content *stubContentService
	subs    *stubSubscriptionService
}

func newTestEnv(t *testing.T) *testEnv {
	db, _ := testutils.SetupMockDB(t)

	tokens := auth.NewTokenManager("handler-secret", time.Hour)
	token, err := tokens.GenerateToken(testUser, "u@example.com")
	require.NoError(t, err)

	env := &testEnv{
		token:   token,
		content: &stubContentService{},
		subs:    &stubSubscriptionService{},
	}

	base := NewBaseHandler(validator.New(), middleware.AuthMiddleware(tokens))
	r := gin.New()
	r.Use(middleware.DBMiddleware(db))
	api := r.Group("/api/v1")
	NewContentHandler(base, env.content).RegisterRoutes(api)
	NewSubscriptionHandler(base, env.subs).RegisterRoutes(api)
	env.router = r
	return env
}

func TestGenerateHandler_Success(t *testing.T) {
	env := newTestEnv(t)

	rec := testutils.SendRequest(t, env.router, http.MethodPost, "/api/v1/content/generate", env.token, map[string]interface{}{
		"contentType": "social",
		"topic":       "Product launch",
		"tone":        "excited",
		"length":      3,
		"keywords":    []string{"launch", "new"},
		"industry":    "retail",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := testutils.DecodeJSON(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "c-1", body["contentId"])
	assert.Equal(t, float64(1), body["usageCount"])
	assert.Equal(t, float64(50), body["monthlyLimit"])
	assert.Equal(t, []string{"launch", "new"}, env.content.lastReq.Keywords)
}

func TestGenerateHandler_InvalidContentTypeNeverReachesService(t *testing.T) {
	env := newTestEnv(t)

	rec := testutils.SendRequest(t, env.router, http.MethodPost, "/api/v1/content/generate", env.token, map[string]interface{}{
		"contentType": "invoice",
		"topic":       "Q3",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", testutils.ErrorCode(t, rec))
	assert.Contains(t, rec.Body.String(), "Invalid content type")
	assert.Zero(t, env.content.calls)
}

func TestGenerateHandler_MissingTopic(t *testing.T) {
	env := newTestEnv(t)

	rec := testutils.SendRequest(t, env.router, http.MethodPost, "/api/v1/content/generate", env.token, map[string]interface{}{
		"contentType": "blog",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, env.content.calls)
}

func TestGenerateHandler_ErrorStatuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperrors.ErrNoActiveSubscription, http.StatusForbidden, "FORBIDDEN"},
		{apperrors.ErrQuotaExhausted, http.StatusTooManyRequests, "LIMIT_EXCEEDED"},
		{apperrors.ErrGenerationFailed.WithError(assert.AnError), http.StatusInternalServerError, "GENERATION_FAILED"},
	}

	for _, tc := range cases {
		env := newTestEnv(t)
		env.content.generateErr = tc.err

		rec := testutils.SendRequest(t, env.router, http.MethodPost, "/api/v1/content/generate", env.token, map[string]interface{}{
			"contentType": "blog",
			"topic":       "x",
		})
		assert.Equal(t, tc.status, rec.Code)
		assert.Equal(t, tc.code, testutils.ErrorCode(t, rec))
		assert.NotContains(t, rec.Body.String(), assert.AnError.Error(), "internal detail stays server-side")
	}
}

func TestContentRoutes_RequireAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := testutils.SendRequest(t, env.router, http.MethodGet, "/api/v1/content/history", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestContentHandler_HistoryGetDelete(t *testing.T) {
	env := newTestEnv(t)

	rec := testutils.SendRequest(t, env.router, http.MethodGet, "/api/v1/content/history", env.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []dto.ContentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, "c-1", history[0].ID)

	rec = testutils.SendRequest(t, env.router, http.MethodGet, "/api/v1/content/c-1", env.token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = testutils.SendRequest(t, env.router, http.MethodDelete, "/api/v1/content/c-1", env.token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, testutils.DecodeJSON(t, rec)["success"])

	env.content.deleteErr = apperrors.ErrContentNotFound
	rec = testutils.SendRequest(t, env.router, http.MethodDelete, "/api/v1/content/c-1", env.token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubscriptionHandler_PlansArePublic(t *testing.T) {
	env := newTestEnv(t)

	rec := testutils.SendRequest(t, env.router, http.MethodGet, "/api/v1/subscriptions/plans", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var plans map[string]billing.Plan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plans))
	require.Contains(t, plans, "professional")
	assert.Equal(t, 200, plans["professional"].MonthlyLimit)
	assert.Len(t, plans, 3)
}

func TestSubscriptionHandler_Checkout(t *testing.T) {
	env := newTestEnv(t)

	rec := testutils.SendRequest(t, env.router, http.MethodPost, "/api/v1/subscriptions/create-checkout-session", env.token,
		map[string]string{"planId": "starter"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cs_starter", testutils.DecodeJSON(t, rec)["sessionId"])

	rec = testutils.SendRequest(t, env.router, http.MethodPost, "/api/v1/subscriptions/create-checkout-session", env.token,
		map[string]string{"planId": "gold"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubscriptionHandler_WebhookPassesRawBody(t *testing.T) {
	env := newTestEnv(t)
	payload := []byte(`{"id":"evt_1","type":"invoice.payment_failed"}`)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, testutils.DecodeJSON(t, rec)["received"])
	assert.Equal(t, payload, env.subs.webhookPayload)
	assert.Equal(t, "t=1,v1=abc", env.subs.webhookSignature)
}

func TestSubscriptionHandler_WebhookSignatureFailure(t *testing.T) {
	env := newTestEnv(t)
	env.subs.webhookErr = apperrors.ErrWebhookSignature(billing.ErrInvalidSignature)

	rec := testutils.SendRequest(t, env.router, http.MethodPost, "/api/v1/subscriptions/webhook", "", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_SIGNATURE", testutils.ErrorCode(t, rec))
}

func TestSubscriptionHandler_WebhookBodyTooLarge(t *testing.T) {
	env := newTestEnv(t)
	big := strings.Repeat("a", MaxWebhookBodyBytes+1)

	rec := testutils.SendRequest(t, env.router, http.MethodPost, "/api/v1/subscriptions/webhook", "", []byte(big))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Nil(t, env.subs.webhookPayload)
}

func TestSubscriptionHandler_CancelAndStatus(t *testing.T) {
	env := newTestEnv(t)

	rec := testutils.SendRequest(t, env.router, http.MethodPost, "/api/v1/subscriptions/cancel", env.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := testutils.DecodeJSON(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Subscription cancelled successfully", body["message"])

	env.subs.cancelErr = apperrors.ErrNoSubscriptionToCancel
	rec = testutils.SendRequest(t, env.router, http.MethodPost, "/api/v1/subscriptions/cancel", env.token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = testutils.SendRequest(t, env.router, http.MethodGet, "/api/v1/subscriptions/status", env.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(4), testutils.DecodeJSON(t, rec)["usageCount"])
}
