package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/tutorledger/internal/app/auth"
	"github.com/yigit/tutorledger/internal/app/ledger"
	"github.com/yigit/tutorledger/internal/app/models"
	"github.com/yigit/tutorledger/internal/app/models/dto"
	"github.com/yigit/tutorledger/internal/app/repositories"
	"github.com/yigit/tutorledger/internal/config"
	"github.com/yigit/tutorledger/internal/pkg/apperrors"
	"github.com/yigit/tutorledger/internal/pkg/websocket"
)

// StudentService defines the interface for student operations
type StudentService interface {
	CreateStudent(ctx context.Context, id auth.Identity, req *dto.CreateStudentRequest) (*dto.CreateStudentResponse, error)
	ListStudents(ctx context.Context, id auth.Identity) ([]dto.StudentSummary, error)
	GetStudentDetail(ctx context.Context, id auth.Identity, studentID int64) (*dto.StudentDetailResponse, error)
	ListStudentSessions(ctx context.Context, id auth.Identity, studentID int64) ([]models.Session, error)
	UpdateDefaultPrice(ctx context.Context, id auth.Identity, studentID int64, req *dto.UpdateStudentPriceRequest) (*models.Student, error)
}

// studentServiceImpl implements StudentService
type studentServiceImpl struct {
	repos        *repositories.Repositories
	tx           repositories.TxManager
	authzService *auth.AuthorizationService
	provisioning string
	provisioner  parentProvisioner
	notifier     LedgerNotifier
	logger       zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(
	repos *repositories.Repositories,
	tx repositories.TxManager,
	authzService *auth.AuthorizationService,
	opts Options,
	logger zerolog.Logger,
) StudentService {
	return &studentServiceImpl{
		repos:        repos,
		tx:           tx,
		authzService: authzService,
		provisioning: opts.ParentProvisioning,
		provisioner:  newParentProvisioner(opts, logger),
		notifier:     notifierOrNop(opts.Notifier),
		logger:       logger,
	}
}

// CreateStudent adds a student owned by the parent account matching the email.
// With auto provisioning a missing parent is created in the same transaction.
func (s *studentServiceImpl) CreateStudent(ctx context.Context, id auth.Identity, req *dto.CreateStudentRequest) (*dto.CreateStudentResponse, error) {
	if err := s.authzService.Authorize(id, auth.ActionCreateStudent); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "name is required")
	}
	price, err := parseOptionalMoney("defaultPrice", req.DefaultPrice)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.ParentEmail))

	parent, err := s.repos.Users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !parent.IsParent() {
			return nil, apperrors.NewCustomError(apperrors.ErrParentNotFound, fmt.Sprintf("%s does not belong to a parent account", email))
		}
		student := &models.Student{Name: name, ParentID: parent.ID, DefaultPrice: price}
		if err := s.repos.Students.Create(ctx, student); err != nil {
			return nil, err
		}
		s.logger.Info().Int64("studentID", student.ID).Int64("parentID", parent.ID).Msg("Student created")
		return &dto.CreateStudentResponse{Student: *student}, nil
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return nil, fmt.Errorf("error finding parent: %w", err)
	}

	if s.provisioning != config.ParentProvisioningAuto {
		return nil, apperrors.NewCustomError(apperrors.ErrParentNotFound, fmt.Sprintf("no parent account is registered with %s", email))
	}

	resp := &dto.CreateStudentResponse{}
	err = s.tx.WithinTx(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		username, err := usernameFromEmail(ctx, repos.Users, email)
		if err != nil {
			return err
		}
		parent, password, err := s.provisioner.provision(ctx, repos.Users, username, email)
		if err != nil {
			return err
		}
		student := &models.Student{Name: name, ParentID: parent.ID, DefaultPrice: price}
		if err := repos.Students.Create(ctx, student); err != nil {
			return err
		}
		resp.Student = *student
		resp.ProvisionedParent = &dto.ParentAccountResponse{
			User:              dto.NewUserResponse(parent),
			TemporaryPassword: password,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("studentID", resp.Student.ID).Int64("parentID", resp.Student.ParentID).Msg("Student created with a new parent account")
	return resp, nil
}

// ListStudents lists the students visible to id, each with its ledger
func (s *studentServiceImpl) ListStudents(ctx context.Context, id auth.Identity) ([]dto.StudentSummary, error) {
	if err := s.authzService.Authorize(id, auth.ActionListStudents); err != nil {
		return nil, err
	}
	students, err := visibleStudents(ctx, s.repos.Students, s.authzService, id)
	if err != nil {
		return nil, err
	}
	summaries, _, err := summarize(ctx, s.repos.Sessions, students)
	return summaries, err
}

// GetStudentDetail returns a student with its ledger and sessions, newest first
func (s *studentServiceImpl) GetStudentDetail(ctx context.Context, id auth.Identity, studentID int64) (*dto.StudentDetailResponse, error) {
	student, err := s.authorizedStudent(ctx, id, studentID)
	if err != nil {
		return nil, err
	}

	sessions, err := s.repos.Sessions.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing sessions: %w", err)
	}

	detail := &dto.StudentDetailResponse{
		Student:  *student,
		Ledger:   ledger.ForStudent(student.ID, sessions),
		Sessions: sessions,
	}

	parent, err := s.repos.Users.GetByID(ctx, student.ParentID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("parentID", student.ParentID).Msg("Could not load parent for student detail")
	} else {
		detail.Parent = dto.NewUserResponse(parent)
	}

	return detail, nil
}

// ListStudentSessions lists a student's sessions, newest first
func (s *studentServiceImpl) ListStudentSessions(ctx context.Context, id auth.Identity, studentID int64) ([]models.Session, error) {
	student, err := s.authorizedStudent(ctx, id, studentID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.repos.Sessions.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing sessions: %w", err)
	}
	return sessions, nil
}

// UpdateDefaultPrice changes the price used by sessions created afterwards.
// Existing sessions keep the amount they were created with.
func (s *studentServiceImpl) UpdateDefaultPrice(ctx context.Context, id auth.Identity, studentID int64, req *dto.UpdateStudentPriceRequest) (*models.Student, error) {
	if err := s.authzService.Authorize(id, auth.ActionUpdateStudent); err != nil {
		return nil, err
	}
	price, err := models.ParseMoney(req.DefaultPrice)
	if err != nil {
		return nil, apperrors.NewValidationError("defaultPrice", err.Error())
	}

	if err := s.repos.Students.UpdateDefaultPrice(ctx, studentID, price); err != nil {
		return nil, err
	}
	student, err := s.repos.Students.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("studentID", studentID).Str("price", price.String()).Msg("Default price changed")
	s.notifier.Publish(websocket.Event{
		Type:      websocket.EventPriceChanged,
		StudentID: student.ID,
		ParentID:  student.ParentID,
		Data:      student,
	})
	return student, nil
}

func (s *studentServiceImpl) authorizedStudent(ctx context.Context, id auth.Identity, studentID int64) (*models.Student, error) {
	if err := s.authzService.Authorize(id, auth.ActionViewStudent); err != nil {
		return nil, err
	}
	student, err := s.repos.Students.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if err := s.authzService.AuthorizeStudent(id, student); err != nil {
		return nil, err
	}
	return student, nil
}

// visibleStudents loads only the rows id may see
func visibleStudents(ctx context.Context, repo repositories.IStudentRepository, authz *auth.AuthorizationService, id auth.Identity) ([]models.Student, error) {
	var (
		students []models.Student
		err      error
	)
	if id.IsTeacher() {
		students, err = repo.ListAll(ctx)
	} else {
		students, err = repo.ListByParent(ctx, id.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	return authz.VisibleStudents(id, students), nil
}

// summarize pairs every student with its ledger and returns the sessions it read
func summarize(ctx context.Context, repo repositories.ISessionRepository, students []models.Student) ([]dto.StudentSummary, []models.Session, error) {
	ids := make([]int64, len(students))
	for i, st := range students {
		ids[i] = st.ID
	}
	sessions, err := repo.ListByStudents(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("error listing sessions: %w", err)
	}

	ledgers := ledger.ByStudent(ids, sessions)
	summaries := make([]dto.StudentSummary, len(students))
	for i := range students {
		summaries[i] = dto.StudentSummary{Student: students[i], Ledger: ledgers[i]}
	}
	return summaries, sessions, nil
}

func parseOptionalMoney(field, raw string) (models.Money, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	m, err := models.ParseMoney(raw)
	if err != nil {
		return 0, apperrors.NewValidationError(field, err.Error())
	}
	return m, nil
}
