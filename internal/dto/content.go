package dto

import (
	"time"

	"contentgen_backend/internal/models"
)

// GenerateContentRequest - тело POST /content/generate
type GenerateContentRequest struct {
	ContentType    string   `json:"contentType" validate:"required,is-content-type"`
	Topic          string   `json:"topic" validate:"required,max=500"`
	Tone           string   `json:"tone" validate:"max=100"`
	Length         int      `json:"length" validate:"gte=0,lte=10000"`
	Keywords       []string `json:"keywords" validate:"max=50,dive,max=100"`
	Industry       string   `json:"industry" validate:"max=200"`
	TargetAudience string   `json:"targetAudience" validate:"max=500"`
	EmailPurpose   string   `json:"emailPurpose,omitempty" validate:"max=500"`
}

type GenerateContentResponse struct {
	Success      bool   `json:"success"`
	Content      string `json:"content"`
	ContentID    string `json:"contentId"`
	UsageCount   int    `json:"usageCount"`
	MonthlyLimit int    `json:"monthlyLimit"`
}

type ContentResponse struct {
	ID               string             `json:"id"`
	ContentType      models.ContentType `json:"contentType"`
	Topic            string             `json:"topic"`
	GeneratedContent string             `json:"generatedContent"`
	Keywords         []string           `json:"keywords"`
	Industry         string             `json:"industry"`
	TargetAudience   string             `json:"targetAudience"`
	Tone             string             `json:"tone"`
	Length           int                `json:"length"`
	EmailPurpose     string             `json:"emailPurpose,omitempty"`
	CreatedAt        time.Time          `json:"createdAt"`
}

func NewContentResponse(c *models.Content) ContentResponse {
	keywords := []string(c.Keywords)
	if keywords == nil {
		keywords = []string{}
	}
	return ContentResponse{
		ID:               c.ID,
		ContentType:      c.ContentType,
		Topic:            c.Topic,
		GeneratedContent: c.GeneratedContent,
		Keywords:         keywords,
		Industry:         c.Industry,
		TargetAudience:   c.TargetAudience,
		Tone:             c.Tone,
		Length:           c.Length,
		EmailPurpose:     c.EmailPurpose,
		CreatedAt:        c.CreatedAt,
	}
}
