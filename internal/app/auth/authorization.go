package auth

import (
	"fmt"

	"github.com/yigit/tutorledger/internal/app/models"
	"github.com/yigit/tutorledger/internal/pkg/apperrors"
)

// Identity is the requester of an operation. The zero value is anonymous.
type Identity struct {
	UserID int64
	Role   models.RoleType
}

// Anonymous is the identity of a request without a session or token
var Anonymous = Identity{}

// IsAuthenticated reports whether the identity belongs to a known user
func (i Identity) IsAuthenticated() bool {
	return i.UserID > 0 && i.Role.Valid()
}

// IsTeacher reports whether the identity carries the teacher role
func (i Identity) IsTeacher() bool {
	return i.IsAuthenticated() && i.Role == models.RoleTeacher
}

// IsParent reports whether the identity carries the parent role
func (i Identity) IsParent() bool {
	return i.IsAuthenticated() && i.Role == models.RoleParent
}

// Action names something a requester wants to do
type Action string

const (
	ActionViewDashboard Action = "view_dashboard"
	ActionListStudents  Action = "list_students"
	ActionViewStudent   Action = "view_student"
	ActionCreateStudent Action = "create_student"
	ActionUpdateStudent Action = "update_student"
	ActionCreateSession Action = "create_session"
	ActionMarkPaid      Action = "mark_paid"
	ActionCreateParent  Action = "create_parent"
	ActionListParents   Action = "list_parents"
	ActionViewTotals    Action = "view_totals"
	ActionListUnpaid    Action = "list_unpaid"
)

// parentActions are the only actions open to parents; ownership is checked separately
var parentActions = map[Action]bool{
	ActionViewDashboard: true,
	ActionListStudents:  true,
	ActionViewStudent:   true,
}

// AuthorizationService decides whether an identity may perform an action.
// It holds no request state; the identity is always an argument.
type AuthorizationService struct{}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService() *AuthorizationService {
	return &AuthorizationService{}
}

// Authorize checks the role-level permission for action.
// Anonymous requesters get ErrUnauthenticated, everyone else ErrPermissionDenied.
func (s *AuthorizationService) Authorize(id Identity, action Action) error {
	if !id.IsAuthenticated() {
		return apperrors.ErrUnauthenticated
	}

	switch id.Role {
	case models.RoleTeacher:
		return nil
	case models.RoleParent:
		if parentActions[action] {
			return nil
		}
		return apperrors.NewForbiddenError(fmt.Sprintf("parents are not allowed to %s", humanize(action)))
	default:
		return apperrors.ErrPermissionDenied
	}
}

// AuthorizeStudent checks that id may see student and its sessions.
func (s *AuthorizationService) AuthorizeStudent(id Identity, student *models.Student) error {
	if err := s.Authorize(id, ActionViewStudent); err != nil {
		return err
	}
	if id.IsTeacher() {
		return nil
	}
	if student == nil || student.ParentID != id.UserID {
		return apperrors.NewForbiddenError("you can only view your own children")
	}
	return nil
}

// CanViewStudent is the boolean form of AuthorizeStudent
func (s *AuthorizationService) CanViewStudent(id Identity, student *models.Student) bool {
	return s.AuthorizeStudent(id, student) == nil
}

// VisibleStudents filters students down to what id is allowed to see
func (s *AuthorizationService) VisibleStudents(id Identity, students []models.Student) []models.Student {
	visible := make([]models.Student, 0, len(students))
	for i := range students {
		if s.CanViewStudent(id, &students[i]) {
			visible = append(visible, students[i])
		}
	}
	return visible
}

func humanize(a Action) string {
	switch a {
	case ActionCreateStudent:
		return "add students"
	case ActionUpdateStudent:
		return "change students"
	case ActionCreateSession:
		return "add sessions"
	case ActionMarkPaid:
		return "change payment status"
	case ActionCreateParent:
		return "create parent accounts"
	case ActionListParents:
		return "list parent accounts"
	case ActionViewTotals:
		return "view global totals"
	case ActionListUnpaid:
		return "list unpaid sessions"
	default:
		return string(a)
	}
}
