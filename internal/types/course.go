package types

import (
	"time"

	"github.com/google/uuid"
)

type CourseStatus string

const (
	CourseNotStarted CourseStatus = "not_started"
	CourseInProgress CourseStatus = "in_progress"
	CourseFinished   CourseStatus = "finished"
)

type Course struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string       `gorm:"not null;column:name" json:"name"`
	Description string       `gorm:"column:description" json:"description"`
	Link        string       `gorm:"column:link" json:"link"`
	StartDate   *time.Time   `gorm:"column:start_date" json:"start_date,omitempty"`
	FinishDate  *time.Time   `gorm:"column:finish_date" json:"finish_date,omitempty"`
	Status      CourseStatus `gorm:"not null;default:'not_started';column:status" json:"status"`
	CreatorID   uuid.UUID    `gorm:"type:uuid;not null;column:creator_id" json:"creator_id"`
	Creator     *User        `gorm:"foreignKey:CreatorID;references:ID" json:"creator,omitempty"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`

	// Resolved per request for authorization checks; never persisted.
	SupervisorIDs   []uuid.UUID `gorm:"-" json:"supervisor_ids,omitempty"`
	EnrolledUserIDs []uuid.UUID `gorm:"-" json:"-"`
}

func (Course) TableName() string { return "course" }

func (c *Course) EnrolledBy(userID uuid.UUID) bool {
	if c == nil {
		return false
	}
	for _, id := range c.EnrolledUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (c *Course) SupervisedBy(userID uuid.UUID) bool {
	if c == nil {
		return false
	}
	for _, id := range c.SupervisorIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// CourseSupervisor assigns a supervisor to one course.
type CourseSupervisor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;index:idx_course_supervisor,unique" json:"course_id"`
	Course    *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_course_supervisor,unique" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (CourseSupervisor) TableName() string { return "course_supervisor" }
