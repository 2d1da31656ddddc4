package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID           int64     `json:"id" db:"id" example:"1"`
	Username     string    `json:"username" db:"username" example:"mdupont"`
	Email        string    `json:"email" db:"email" example:"parent@example.com"`
	PasswordHash string    `json:"-" db:"password_hash"`
	RoleType     RoleType  `json:"roleType" db:"role_type" example:"PARENT"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at" example:"2024-01-01T10:00:00Z"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at" example:"2024-01-02T15:30:00Z"`
}

// IsTeacher reports whether the user has the teacher role
func (u *User) IsTeacher() bool {
	return u != nil && u.RoleType == RoleTeacher
}

// IsParent reports whether the user has the parent role
func (u *User) IsParent() bool {
	return u != nil && u.RoleType == RoleParent
}
