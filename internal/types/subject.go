package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subject is soft deleted: the default scope excludes deleted rows, restore
// clears deleted_at, and only an explicit unscoped delete removes the row.
type Subject struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name              string         `gorm:"not null;column:name" json:"name"`
	MaxScore          int            `gorm:"not null;default:100;column:max_score" json:"max_score"`
	EstimatedTimeDays int            `gorm:"not null;default:0;column:estimated_time_days" json:"estimated_time_days"`
	CreatedAt         time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Categories []*Category `gorm:"many2many:subject_category" json:"categories,omitempty"`

	// Resolved per request for authorization checks; never persisted.
	EnrolledUserIDs []uuid.UUID `gorm:"-" json:"-"`
}

func (Subject) TableName() string { return "subject" }

func (s *Subject) EnrolledBy(userID uuid.UUID) bool {
	if s == nil {
		return false
	}
	for _, id := range s.EnrolledUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Category) TableName() string { return "category" }
