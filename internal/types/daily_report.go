package types

import (
	"time"

	"github.com/google/uuid"
)

type DailyReport struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User       *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	CourseID   uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Course     *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	Content    string    `gorm:"not null;column:content" json:"content"`
	ReportDate time.Time `gorm:"not null;column:report_date" json:"report_date"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (DailyReport) TableName() string { return "daily_report" }
