package generator

import (
	"context"
	"errors"
	"time"

	"contentgen_backend/internal/logger"
	"contentgen_backend/pkg/apperrors"
)

const (
	DefaultModel = "gpt-4"
	Temperature  = float32(0.7)

	SystemInstruction = "You are a professional content writer specializing in business and marketing content. Create high-quality, engaging content that drives results."
)

var ErrEmptyCompletion = errors.New("provider returned no content")

// CompletionRequest - один вызов модели
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float32
}

// Provider - внешний провайдер генерации текста
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Result - сгенерированный текст и время ответа провайдера
type Result struct {
	Text     string
	Prompt   Prompt
	Duration time.Duration
}

// Dispatcher строит промпт и вызывает провайдера. Без ретраев.
type Dispatcher struct {
	provider Provider
	model    string
}

func NewDispatcher(provider Provider, model string) *Dispatcher {
	if model == "" {
		model = DefaultModel
	}
	return &Dispatcher{provider: provider, model: model}
}

// Generate возвращает ErrInvalidContentType до вызова провайдера,
// любая ошибка провайдера сводится к ErrGenerationFailed.
func (d *Dispatcher) Generate(ctx context.Context, req Request) (*Result, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	text, err := d.provider.Complete(ctx, CompletionRequest{
		Model:        d.model,
		SystemPrompt: SystemInstruction,
		UserPrompt:   prompt.Text,
		MaxTokens:    prompt.MaxTokens,
		Temperature:  Temperature,
	})
	if err == nil && text == "" {
		err = ErrEmptyCompletion
	}
	duration := time.Since(start)
	logger.GenerationLog(string(req.ContentType), d.model, duration, err)

	if err != nil {
		return nil, apperrors.ErrGenerationFailed.WithError(err)
	}

	return &Result{Text: text, Prompt: prompt, Duration: duration}, nil
}
