package types

import (
	"time"

	"github.com/google/uuid"
)

type UserSubjectStatus string

const (
	UserSubjectNotStarted UserSubjectStatus = "not_started"
	UserSubjectInProgress UserSubjectStatus = "in_progress"
	UserSubjectCompleted  UserSubjectStatus = "completed"
)

// UserSubject is one trainee's progress through one course subject. The
// (user_id, course_subject_id) pair is unique; rows are created lazily the
// first time an enrolled trainee opens the subject.
type UserSubject struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID         `gorm:"type:uuid;not null;index:idx_user_course_subject,unique" json:"user_id"`
	User            *User             `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	UserCourseID    uuid.UUID         `gorm:"type:uuid;not null" json:"user_course_id"`
	UserCourse      *UserCourse       `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserCourseID;references:ID" json:"user_course,omitempty"`
	CourseSubjectID uuid.UUID         `gorm:"type:uuid;not null;index:idx_user_course_subject,unique" json:"course_subject_id"`
	CourseSubject   *CourseSubject    `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseSubjectID;references:ID" json:"course_subject,omitempty"`
	Status          UserSubjectStatus `gorm:"not null;default:'not_started';column:status" json:"status"`
	Score           *float64          `gorm:"column:score" json:"score,omitempty"`
	StartedAt       *time.Time        `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt     *time.Time        `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt       time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"not null" json:"updated_at"`
}

func (UserSubject) TableName() string { return "user_subject" }
