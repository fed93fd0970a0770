package models

import (
	"time"

	"github.com/lib/pq"
)

// Content - результат одной генерации вместе с параметрами запроса.
// После создания не меняется, только удаляется владельцем.
type Content struct {
	ID               string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID           string         `gorm:"type:uuid;not null;index:idx_contents_user_created,priority:1" json:"userId"`
	ContentType      ContentType    `gorm:"type:varchar(20);not null" json:"contentType"`
	Topic            string         `gorm:"not null" json:"topic"`
	GeneratedContent string         `gorm:"type:text;not null" json:"generatedContent"`
	Keywords         pq.StringArray `gorm:"type:text[]" json:"keywords"`
	Industry         string         `json:"industry"`
	TargetAudience   string         `json:"targetAudience"`
	Tone             string         `json:"tone"`
	Length           int            `json:"length"`
	EmailPurpose     string         `json:"emailPurpose,omitempty"`
	CreatedAt        time.Time      `gorm:"default:now();index:idx_contents_user_created,priority:2,sort:desc" json:"createdAt"`
}

func (Content) TableName() string {
	return "contents"
}
