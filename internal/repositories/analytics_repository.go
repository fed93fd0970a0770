package repositories

import (
	"encoding/json"

	"contentgen_backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnalyticsRepository - журнал событий только на запись
type AnalyticsRepository interface {
	Record(db *gorm.DB, userID, action string, contentType *models.ContentType, metadata map[string]interface{}) error
}

type AnalyticsRepositoryImpl struct{}

func NewAnalyticsRepository() AnalyticsRepository {
	return &AnalyticsRepositoryImpl{}
}

func (r *AnalyticsRepositoryImpl) Record(db *gorm.DB, userID, action string, contentType *models.ContentType, metadata map[string]interface{}) error {
	event := &models.AnalyticsEvent{
		UserID:      userID,
		Action:      action,
		ContentType: contentType,
	}
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		event.Metadata = datatypes.JSON(raw)
	}
	return db.Create(event).Error
}
