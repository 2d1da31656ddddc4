package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/tutorledger/internal/app/models"
	"github.com/yigit/tutorledger/internal/db"
	"github.com/yigit/tutorledger/internal/pkg/apperrors"
	"github.com/yigit/tutorledger/internal/pkg/dberrors"
	"github.com/yigit/tutorledger/internal/pkg/logger"
)

var sessionColumns = []string{
	"ts.id", "ts.student_id", "ts.session_date", "ts.duration_minutes", "ts.amount_cents",
	"ts.subject", "ts.paid", "ts.notes", "ts.created_at", "ts.updated_at", "s.name",
}

// SessionRepository handles tutoring session database operations
type SessionRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(conn db.DBTX) *SessionRepository {
	return &SessionRepository{
		db: conn,
		sb: psql,
	}
}

// Create inserts a session. Paid is always false for a new session.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	sql, args, err := r.sb.Insert("tutoring_sessions").
		Columns("student_id", "session_date", "duration_minutes", "amount_cents", "subject", "paid", "notes").
		Values(session.StudentID, session.Date, session.DurationMinutes, session.Amount.Cents(), session.Subject, false, session.Notes).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create session SQL")
		return fmt.Errorf("failed to build create session query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrStudentNotFound
		}
		if vErr := checkViolationError(err); vErr != nil {
			return vErr
		}
		logger.Error().Err(err).Int64("studentID", session.StudentID).Msg("Error executing create session query")
		return fmt.Errorf("error creating session: %w", err)
	}
	session.Paid = false
	return nil
}

// GetByID retrieves a session by id
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*models.Session, error) {
	sql, args, err := r.selectSessions().
		Where(squirrel.Eq{"ts.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get session query: %w", err)
	}

	session, err := scanSession(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSessionNotFound
		}
		logger.Error().Err(err).Int64("sessionID", id).Msg("Error scanning session row")
		return nil, fmt.Errorf("error retrieving session: %w", err)
	}
	return session, nil
}

// ListByStudent lists a student's sessions, newest first
func (r *SessionRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Session, error) {
	return r.list(ctx, r.selectSessions().
		Where(squirrel.Eq{"ts.student_id": studentID}).
		OrderBy("ts.session_date DESC", "ts.id DESC"))
}

// ListByStudents lists the sessions of several students, newest first
func (r *SessionRepository) ListByStudents(ctx context.Context, studentIDs []int64) ([]models.Session, error) {
	if len(studentIDs) == 0 {
		return []models.Session{}, nil
	}
	return r.list(ctx, r.selectSessions().
		Where(squirrel.Eq{"ts.student_id": studentIDs}).
		OrderBy("ts.session_date DESC", "ts.id DESC"))
}

// ListAll lists every session, newest first
func (r *SessionRepository) ListAll(ctx context.Context) ([]models.Session, error) {
	return r.list(ctx, r.selectSessions().OrderBy("ts.session_date DESC", "ts.id DESC"))
}

// ListByPaid lists sessions by payment status, oldest first so the longest outstanding come first
func (r *SessionRepository) ListByPaid(ctx context.Context, paid bool) ([]models.Session, error) {
	return r.list(ctx, r.selectSessions().
		Where(squirrel.Eq{"ts.paid": paid}).
		OrderBy("ts.session_date ASC", "ts.id ASC"))
}

// SetPaid stores the payment status and returns the updated row
func (r *SessionRepository) SetPaid(ctx context.Context, id int64, paid bool) (*models.Session, error) {
	sql, args, err := r.sb.Update("tutoring_sessions").
		Set("paid", paid).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build set paid query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("sessionID", id).Msg("Error updating session paid flag")
		return nil, fmt.Errorf("error updating session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrSessionNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *SessionRepository) selectSessions() squirrel.SelectBuilder {
	return r.sb.Select(sessionColumns...).
		From("tutoring_sessions ts").
		Join("students s ON s.id = ts.student_id")
}

func (r *SessionRepository) list(ctx context.Context, q squirrel.SelectBuilder) ([]models.Session, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list sessions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying sessions")
		return nil, fmt.Errorf("error listing sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning session row: %w", err)
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}
	return sessions, nil
}

func scanSession(row pgx.Row) (*models.Session, error) {
	var (
		s     models.Session
		cents int64
	)
	err := row.Scan(&s.ID, &s.StudentID, &s.Date, &s.DurationMinutes, &cents,
		&s.Subject, &s.Paid, &s.Notes, &s.CreatedAt, &s.UpdatedAt, &s.StudentName)
	if err != nil {
		return nil, err
	}
	s.Amount = models.MoneyFromCents(cents)
	return &s, nil
}
