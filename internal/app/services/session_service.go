package services

import (
	"context"
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
	"github.com/yigit/tutorledger/internal/pkg/helpers"
	"github.com/yigit/tutorledger/internal/pkg/websocket"
)

// MaxSessionMinutes bounds the duration of a single session
const MaxSessionMinutes = 24 * 60

// SessionService defines the interface for tutoring session operations
type SessionService interface {
	CreateSession(ctx context.Context, id auth.Identity, req *dto.CreateSessionRequest) (*dto.SessionLedgerResponse, error)
	TogglePaid(ctx context.Context, id auth.Identity, sessionID int64) (*dto.SessionLedgerResponse, error)
	ListUnpaid(ctx context.Context, id auth.Identity) ([]models.Session, error)
}

// sessionServiceImpl implements SessionService
type sessionServiceImpl struct {
	repos        *repositories.Repositories
	authzService *auth.AuthorizationService
	markPaidMode string
	notifier     LedgerNotifier
	logger       zerolog.Logger
}

// NewSessionService creates a new SessionService
func NewSessionService(
	repos *repositories.Repositories,
	authzService *auth.AuthorizationService,
	opts Options,
	logger zerolog.Logger,
) SessionService {
	return &sessionServiceImpl{
		repos:        repos,
		authzService: authzService,
		markPaidMode: opts.MarkPaidMode,
		notifier:     notifierOrNop(opts.Notifier),
		logger:       logger,
	}
}

// CreateSession records an unpaid session. A blank amount copies the student's
// current default price into the row.
func (s *sessionServiceImpl) CreateSession(ctx context.Context, id auth.Identity, req *dto.CreateSessionRequest) (*dto.SessionLedgerResponse, error) {
	if err := s.authzService.Authorize(id, auth.ActionCreateSession); err != nil {
		return nil, err
	}

	date, err := helpers.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.NewValidationError("date", err.Error())
	}
	if req.DurationMinutes <= 0 || req.DurationMinutes > MaxSessionMinutes {
		return nil, apperrors.NewValidationError("durationMinutes", fmt.Sprintf("duration must be between 1 and %d minutes", MaxSessionMinutes))
	}

	student, err := s.repos.Students.GetByID(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}

	amount := student.DefaultPrice
	if strings.TrimSpace(req.Amount) != "" {
		amount, err = models.ParseMoney(req.Amount)
		if err != nil {
			return nil, apperrors.NewValidationError("amount", err.Error())
		}
	}

	session := &models.Session{
		StudentID:       student.ID,
		Date:            date,
		DurationMinutes: req.DurationMinutes,
		Amount:          amount,
		Subject:         strings.TrimSpace(req.Subject),
		Notes:           strings.TrimSpace(req.Notes),
		StudentName:     student.Name,
	}
	if err := s.repos.Sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("sessionID", session.ID).Int64("studentID", student.ID).Str("amount", amount.String()).Msg("Session created")
	resp, err := s.withLedger(ctx, session)
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(websocket.Event{
		Type:      websocket.EventSessionCreated,
		StudentID: student.ID,
		ParentID:  student.ParentID,
		Data:      resp,
	})
	return resp, nil
}

// TogglePaid flips the paid flag, or forces it to true in set_true mode
func (s *sessionServiceImpl) TogglePaid(ctx context.Context, id auth.Identity, sessionID int64) (*dto.SessionLedgerResponse, error) {
	if err := s.authzService.Authorize(id, auth.ActionMarkPaid); err != nil {
		return nil, err
	}

	current, err := s.repos.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	paid := !current.Paid
	if s.markPaidMode == config.MarkPaidSetTrue {
		paid = true
	}

	updated, err := s.repos.Sessions.SetPaid(ctx, sessionID, paid)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("sessionID", sessionID).Bool("paid", updated.Paid).Str("mode", s.markPaidMode).Msg("Session payment status changed")
	resp, err := s.withLedger(ctx, updated)
	if err != nil {
		return nil, err
	}
	publishForStudent(ctx, s.notifier, s.repos.Students, s.logger, websocket.EventSessionPaidChanged, updated.StudentID, resp)
	return resp, nil
}

// ListUnpaid lists every unpaid session, oldest first
func (s *sessionServiceImpl) ListUnpaid(ctx context.Context, id auth.Identity) ([]models.Session, error) {
	if err := s.authzService.Authorize(id, auth.ActionListUnpaid); err != nil {
		return nil, err
	}
	sessions, err := s.repos.Sessions.ListByPaid(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("error listing unpaid sessions: %w", err)
	}
	return ledger.Unpaid(sessions), nil
}

func (s *sessionServiceImpl) withLedger(ctx context.Context, session *models.Session) (*dto.SessionLedgerResponse, error) {
	sessions, err := s.repos.Sessions.ListByStudent(ctx, session.StudentID)
	if err != nil {
		return nil, fmt.Errorf("error listing sessions: %w", err)
	}
	return &dto.SessionLedgerResponse{
		Session: *session,
		Ledger:  ledger.ForStudent(session.StudentID, sessions),
	}, nil
}
