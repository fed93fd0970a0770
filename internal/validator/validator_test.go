package validator

import (
	"testing"

	"contentgen_backend/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_GenerateRequest(t *testing.T) {
	v := New()

	ok := &dto.GenerateContentRequest{ContentType: "seo", Topic: "Local bakery", Length: 500}
	assert.NoError(t, v.Validate(ok))

	bad := &dto.GenerateContentRequest{ContentType: "invoice"}
	err := v.Validate(bad)
	require.Error(t, err)

	vErr, isVErr := err.(*ValidationError)
	require.True(t, isVErr)
	assert.Equal(t, "Invalid content type", vErr.Errors["contentType"])
	assert.Equal(t, "This field is required", vErr.Errors["topic"])
}

func TestValidate_NegativeLength(t *testing.T) {
	err := New().Validate(&dto.GenerateContentRequest{ContentType: "blog", Topic: "x", Length: -1})
	require.Error(t, err)
	assert.Contains(t, err.(*ValidationError).Errors, "length")
}

func TestValidate_PlanID(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(&dto.CreateCheckoutRequest{PlanID: "starter"}))

	err := v.Validate(&dto.CreateCheckoutRequest{PlanID: "gold"})
	require.Error(t, err)
	assert.Equal(t, "Invalid plan", err.(*ValidationError).Errors["planId"])
}

func TestValidate_SubscriptionStatusTag(t *testing.T) {
	type filter struct {
		Status string `json:"status" validate:"is-subscription-status"`
	}
	v := New()
	assert.NoError(t, v.Validate(&filter{Status: "past_due"}))
	assert.Error(t, v.Validate(&filter{Status: "paused"}))
}
