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

var studentColumns = []string{"id", "name", "parent_id", "default_price_cents", "created_at", "updated_at"}

// StudentRepository handles student database operations
type StudentRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(conn db.DBTX) *StudentRepository {
	return &StudentRepository{
		db: conn,
		sb: psql,
	}
}

// Create inserts a student and fills its id and timestamps
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	sql, args, err := r.sb.Insert("students").
		Columns("name", "parent_id", "default_price_cents").
		Values(student.Name, student.ParentID, student.DefaultPrice.Cents()).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create student SQL")
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt)
	if err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrParentNotFound
		}
		if vErr := checkViolationError(err); vErr != nil {
			return vErr
		}
		logger.Error().Err(err).Str("name", student.Name).Int64("parentID", student.ParentID).Msg("Error executing create student query")
		return fmt.Errorf("error creating student: %w", err)
	}
	return nil
}

// GetByID retrieves a student by id
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).
		From("students").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	student, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("studentID", id).Msg("Error scanning student row")
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}
	return student, nil
}

// GetByName lists students with exactly this name
func (r *StudentRepository) GetByName(ctx context.Context, name string) ([]models.Student, error) {
	return r.list(ctx, squirrel.Eq{"name": name})
}

// ListAll lists every student ordered by name
func (r *StudentRepository) ListAll(ctx context.Context) ([]models.Student, error) {
	return r.list(ctx, nil)
}

// ListByParent lists the students owned by a parent
func (r *StudentRepository) ListByParent(ctx context.Context, parentID int64) ([]models.Student, error) {
	return r.list(ctx, squirrel.Eq{"parent_id": parentID})
}

// UpdateDefaultPrice changes the price used for sessions created from now on
func (r *StudentRepository) UpdateDefaultPrice(ctx context.Context, id int64, price models.Money) error {
	sql, args, err := r.sb.Update("students").
		Set("default_price_cents", price.Cents()).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update student price query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if vErr := checkViolationError(err); vErr != nil {
			return vErr
		}
		logger.Error().Err(err).Int64("studentID", id).Msg("Error updating student price")
		return fmt.Errorf("error updating student price: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

func (r *StudentRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]models.Student, error) {
	q := r.sb.Select(studentColumns...).From("students").OrderBy("name ASC", "id ASC")
	if where != nil {
		q = q.Where(where)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying students")
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	students := make([]models.Student, 0)
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student rows: %w", err)
	}
	return students, nil
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	var (
		s     models.Student
		cents int64
	)
	if err := row.Scan(&s.ID, &s.Name, &s.ParentID, &cents, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.DefaultPrice = models.MoneyFromCents(cents)
	return &s, nil
}
