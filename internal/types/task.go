package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskableType tags the owner of a task. A task belongs to either a bare
// subject (catalog template) or a course subject (course-specific task set);
// consumers switch on the tag explicitly.
type TaskableType string

const (
	TaskableSubject       TaskableType = "Subject"
	TaskableCourseSubject TaskableType = "CourseSubject"
)

func (t TaskableType) Valid() bool {
	return t == TaskableSubject || t == TaskableCourseSubject
}

type Task struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string         `gorm:"not null;index:idx_task_owner_name,unique;column:name" json:"name"`
	TaskableType TaskableType   `gorm:"not null;index:idx_task_owner_name,unique;column:taskable_type" json:"taskable_type"`
	TaskableID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_task_owner_name,unique;column:taskable_id" json:"taskable_id"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Task) TableName() string { return "task" }
