package repositories

import (
	"errors"

	"contentgen_backend/internal/models"

	"gorm.io/gorm"
)

var ErrContentNotFound = errors.New("content not found")

// Все выборки и удаления ограничены владельцем
type ContentRepository interface {
	Create(db *gorm.DB, content *models.Content) error
	FindByIDAndOwner(db *gorm.DB, id, userID string) (*models.Content, error)
	ListRecentByOwner(db *gorm.DB, userID string, limit int) ([]models.Content, error)
	DeleteByIDAndOwner(db *gorm.DB, id, userID string) error
}

type ContentRepositoryImpl struct{}

func NewContentRepository() ContentRepository {
	return &ContentRepositoryImpl{}
}

func (r *ContentRepositoryImpl) Create(db *gorm.DB, content *models.Content) error {
	return db.Create(content).Error
}

func (r *ContentRepositoryImpl) FindByIDAndOwner(db *gorm.DB, id, userID string) (*models.Content, error) {
	var content models.Content
	err := db.Where("id = ? AND user_id = ?", id, userID).First(&content).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	return &content, nil
}

func (r *ContentRepositoryImpl) ListRecentByOwner(db *gorm.DB, userID string, limit int) ([]models.Content, error) {
	var contents []models.Content
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&contents).Error
	return contents, err
}

func (r *ContentRepositoryImpl) DeleteByIDAndOwner(db *gorm.DB, id, userID string) error {
	res := db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Content{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrContentNotFound
	}
	return nil
}
