package types

import (
	"time"

	"github.com/google/uuid"
)

// CourseSubject is one subject as offered inside one course, with its own
// schedule window and position in the course outline. Tasks may be scoped to
// it instead of the bare subject.
type CourseSubject struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_course_subject,unique" json:"course_id"`
	Course     *Course    `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	SubjectID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_course_subject,unique" json:"subject_id"`
	Subject    *Subject   `gorm:"constraint:OnDelete:CASCADE;foreignKey:SubjectID;references:ID" json:"subject,omitempty"`
	Position   int        `gorm:"not null;default:0;column:position" json:"position"`
	StartDate  *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`
	FinishDate *time.Time `gorm:"column:finish_date" json:"finish_date,omitempty"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null" json:"updated_at"`
}

func (CourseSubject) TableName() string { return "course_subject" }
