package types

import (
	"time"

	"github.com/google/uuid"
)

type UserTaskStatus string

const (
	UserTaskNotDone UserTaskStatus = "not_done"
	UserTaskDone    UserTaskStatus = "done"
)

// UserTask is one trainee's progress on one task. The (user_id, task_id) pair
// is unique; rows default to not_done with no spent time and are created
// lazily on first touch or by the subject gap-fill.
type UserTask struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_task,unique" json:"user_id"`
	User          *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	TaskID        uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_task,unique" json:"task_id"`
	Task          *Task          `gorm:"constraint:OnDelete:CASCADE;foreignKey:TaskID;references:ID" json:"task,omitempty"`
	UserSubjectID uuid.UUID      `gorm:"type:uuid;not null" json:"user_subject_id"`
	UserSubject   *UserSubject   `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserSubjectID;references:ID" json:"user_subject,omitempty"`
	Status        UserTaskStatus `gorm:"not null;default:'not_done';column:status" json:"status"`
	SpentTime     *int           `gorm:"column:spent_time" json:"spent_time,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`

	Documents []*Document `gorm:"foreignKey:UserTaskID" json:"documents,omitempty"`
}

func (UserTask) TableName() string { return "user_task" }

// Document is the metadata row for one file attached to a user task; the
// bytes live in the storage backend under StorageKey.
type Document struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserTaskID  uuid.UUID `gorm:"type:uuid;not null;index" json:"user_task_id"`
	UserTask    *UserTask `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserTaskID;references:ID" json:"user_task,omitempty"`
	FileName    string    `gorm:"not null;column:file_name" json:"file_name"`
	ContentType string    `gorm:"not null;column:content_type" json:"content_type"`
	ByteSize    int64     `gorm:"not null;column:byte_size" json:"byte_size"`
	StorageKey  string    `gorm:"not null;column:storage_key" json:"-"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (Document) TableName() string { return "document" }
