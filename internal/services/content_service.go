package services

import (
	"context"
	"errors"

	"contentgen_backend/internal/dto"
	"contentgen_backend/internal/generator"
	"contentgen_backend/internal/logger"
	"contentgen_backend/internal/metrics"
	"contentgen_backend/internal/models"
	"contentgen_backend/internal/repositories"
	"contentgen_backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// HistoryLimit - сколько последних записей отдает история
const HistoryLimit = 50

// ContentGenerator - то, что умеет превратить запрос в текст (generator.Dispatcher)
type ContentGenerator interface {
	Generate(ctx context.Context, req generator.Request) (*generator.Result, error)
}

type ContentService interface {
	Generate(ctx context.Context, db *gorm.DB, userID string, req *dto.GenerateContentRequest) (*dto.GenerateContentResponse, error)
	ListHistory(ctx context.Context, db *gorm.DB, userID string) ([]dto.ContentResponse, error)
	Get(ctx context.Context, db *gorm.DB, userID, contentID string) (*dto.ContentResponse, error)
	Delete(ctx context.Context, db *gorm.DB, userID, contentID string) error
}

type contentService struct {
	userRepo      repositories.UserRepository
	contentRepo   repositories.ContentRepository
	analyticsRepo repositories.AnalyticsRepository
	generator     ContentGenerator
	metrics       *metrics.Metrics
}

func NewContentService(
	userRepo repositories.UserRepository,
	contentRepo repositories.ContentRepository,
	analyticsRepo repositories.AnalyticsRepository,
	gen ContentGenerator,
	m *metrics.Metrics,
) ContentService {
	return &contentService{
		userRepo:      userRepo,
		contentRepo:   contentRepo,
		analyticsRepo: analyticsRepo,
		generator:     gen,
		metrics:       m,
	}
}

// Generate: квота -> тип контента -> провайдер -> (инкремент usage + сохранение) в одной транзакции -> аналитика.
// Ошибка провайдера не расходует квоту.
func (s *contentService) Generate(ctx context.Context, db *gorm.DB, userID string, req *dto.GenerateContentRequest) (*dto.GenerateContentResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, mapUserErr(err)
	}

	if err := CheckQuota(user); err != nil {
		s.metrics.ObserveQuotaRejection(quotaReason(err))
		logger.CtxInfo(ctx, "Generation rejected by quota gate",
			"status", user.Subscription.Status,
			"usage_count", user.UsageCount,
			"monthly_limit", user.Subscription.MonthlyLimit,
		)
		return nil, err
	}

	// Тип проверяется после квоты, но до вызова провайдера
	contentType := models.ContentType(req.ContentType)
	if !contentType.IsValid() {
		return nil, apperrors.ErrInvalidContentType
	}

	result, err := s.generator.Generate(ctx, generator.Request{
		ContentType:    contentType,
		Topic:          req.Topic,
		Tone:           req.Tone,
		Length:         req.Length,
		Keywords:       req.Keywords,
		Industry:       req.Industry,
		TargetAudience: req.TargetAudience,
		EmailPurpose:   req.EmailPurpose,
	})
	if err != nil {
		s.metrics.ObserveGeneration(string(contentType), metrics.OutcomeFailed, 0)
		return nil, err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.DatabaseError(tx.Error)
	}
	defer tx.Rollback()

	usageCount, ok, err := s.userRepo.IncrementUsageIfBelowLimit(tx, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if !ok {
		// Квоту успел израсходовать параллельный запрос или подписка сменилась
		s.metrics.ObserveQuotaRejection(quotaReasonExhausted)
		fresh, err := s.userRepo.FindByID(tx, userID)
		if err == nil {
			if qErr := CheckQuota(fresh); qErr != nil {
				return nil, qErr
			}
		}
		return nil, apperrors.ErrQuotaExhausted
	}

	content := &models.Content{
		UserID:           userID,
		ContentType:      contentType,
		Topic:            req.Topic,
		GeneratedContent: result.Text,
		Keywords:         pq.StringArray(req.Keywords),
		Industry:         req.Industry,
		TargetAudience:   req.TargetAudience,
		Tone:             req.Tone,
		Length:           req.Length,
		EmailPurpose:     req.EmailPurpose,
	}
	if err := s.contentRepo.Create(tx, content); err != nil {
		s.metrics.ObserveGeneration(string(contentType), metrics.OutcomeStorageError, 0)
		return nil, apperrors.DatabaseError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	s.metrics.ObserveGeneration(string(contentType), metrics.OutcomeSuccess, result.Duration)
	s.recordAnalytics(ctx, db, userID, models.ActionContentGenerated, &contentType, map[string]interface{}{
		"contentId": content.ID,
		"topic":     req.Topic,
	})

	return &dto.GenerateContentResponse{
		Success:      true,
		Content:      result.Text,
		ContentID:    content.ID,
		UsageCount:   usageCount,
		MonthlyLimit: user.Subscription.MonthlyLimit,
	}, nil
}

func (s *contentService) ListHistory(ctx context.Context, db *gorm.DB, userID string) ([]dto.ContentResponse, error) {
	contents, err := s.contentRepo.ListRecentByOwner(db, userID, HistoryLimit)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	items := make([]dto.ContentResponse, 0, len(contents))
	for i := range contents {
		items = append(items, dto.NewContentResponse(&contents[i]))
	}
	return items, nil
}

func (s *contentService) Get(ctx context.Context, db *gorm.DB, userID, contentID string) (*dto.ContentResponse, error) {
	if _, err := uuid.Parse(contentID); err != nil {
		return nil, apperrors.ErrContentNotFound
	}

	content, err := s.contentRepo.FindByIDAndOwner(db, contentID, userID)
	if err != nil {
		return nil, mapContentErr(err)
	}
	resp := dto.NewContentResponse(content)
	return &resp, nil
}

func (s *contentService) Delete(ctx context.Context, db *gorm.DB, userID, contentID string) error {
	if _, err := uuid.Parse(contentID); err != nil {
		return apperrors.ErrContentNotFound
	}

	if err := s.contentRepo.DeleteByIDAndOwner(db, contentID, userID); err != nil {
		return mapContentErr(err)
	}

	s.recordAnalytics(ctx, db, userID, models.ActionContentDeleted, nil, map[string]interface{}{
		"contentId": contentID,
	})
	return nil
}

// recordAnalytics пишет событие после коммита. Ошибка только логируется.
func (s *contentService) recordAnalytics(ctx context.Context, db *gorm.DB, userID, action string, ct *models.ContentType, meta map[string]interface{}) {
	if err := s.analyticsRepo.Record(db, userID, action, ct, meta); err != nil {
		logger.CtxWithError(ctx, "Failed to record analytics event", err, "action", action)
	}
}

func mapUserErr(err error) error {
	if errors.Is(err, repositories.ErrUserNotFound) {
		return apperrors.ErrUserNotFound
	}
	return apperrors.DatabaseError(err)
}

func mapContentErr(err error) error {
	if errors.Is(err, repositories.ErrContentNotFound) {
		return apperrors.ErrContentNotFound
	}
	return apperrors.DatabaseError(err)
}
