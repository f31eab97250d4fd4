package types

import (
	"time"

	"github.com/google/uuid"
)

type UserCourseStatus string

const (
	UserCourseNotStarted UserCourseStatus = "not_started"
	UserCourseInProgress UserCourseStatus = "in_progress"
	UserCourseFinished   UserCourseStatus = "finished"
)

// UserCourse is one trainee's enrollment in one course.
type UserCourse struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index:idx_user_course,unique" json:"user_id"`
	User      *User            `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	CourseID  uuid.UUID        `gorm:"type:uuid;not null;index:idx_user_course,unique" json:"course_id"`
	Course    *Course          `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	Status    UserCourseStatus `gorm:"not null;default:'not_started';column:status" json:"status"`
	CreatedAt time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time        `gorm:"not null" json:"updated_at"`
}

func (UserCourse) TableName() string { return "user_course" }
