package types

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleTrainee    Role = "trainee"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

type User struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"not null;column:name" json:"name"`
	Email       string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password    string     `gorm:"not null;column:password" json:"-"`
	Birthday    *time.Time `gorm:"column:birthday" json:"birthday,omitempty"`
	Gender      string     `gorm:"column:gender" json:"gender"`
	Role        Role       `gorm:"not null;default:'trainee';column:role" json:"role"`
	ActivatedAt *time.Time `gorm:"column:activated_at" json:"activated_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`

	// Resolved per request for authorization checks; never persisted.
	SupervisedCourseIDs []uuid.UUID `gorm:"-" json:"-"`
}

func (User) TableName() string { return "user" }

func (u *User) IsActivated() bool { return u != nil && u.ActivatedAt != nil }

func (u *User) Supervises(courseID uuid.UUID) bool {
	if u == nil {
		return false
	}
	for _, id := range u.SupervisedCourseIDs {
		if id == courseID {
			return true
		}
	}
	return false
}
