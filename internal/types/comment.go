package types

import (
	"time"

	"github.com/google/uuid"
)

// Comment is supervisor feedback left on a trainee's subject progress.
type Comment struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User        `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	UserSubjectID uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_subject_id"`
	UserSubject   *UserSubject `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserSubjectID;references:ID" json:"user_subject,omitempty"`
	Content       string       `gorm:"not null;column:content" json:"content"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null" json:"updated_at"`
}

func (Comment) TableName() string { return "comment" }
