package models

// RoleType defines the user role type
type RoleType string

const (
	RoleTeacher RoleType = "TEACHER"
	RoleParent  RoleType = "PARENT"
)

// Valid reports whether r is one of the known roles
func (r RoleType) Valid() bool {
	return r == RoleTeacher || r == RoleParent
}
