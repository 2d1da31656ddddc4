package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/tutorledger/internal/app/models"
	"github.com/yigit/tutorledger/internal/db"
	"github.com/yigit/tutorledger/internal/pkg/apperrors"
	"github.com/yigit/tutorledger/internal/pkg/dberrors"
)

// IUserRepository defines the user-related database operations
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	ListByRole(ctx context.Context, role models.RoleType) ([]models.User, error)
}

// IStudentRepository defines the student-related database operations
type IStudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetByName(ctx context.Context, name string) ([]models.Student, error)
	ListAll(ctx context.Context) ([]models.Student, error)
	ListByParent(ctx context.Context, parentID int64) ([]models.Student, error)
	UpdateDefaultPrice(ctx context.Context, id int64, price models.Money) error
}

// ISessionRepository defines the tutoring-session database operations
type ISessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id int64) (*models.Session, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.Session, error)
	ListByStudents(ctx context.Context, studentIDs []int64) ([]models.Session, error)
	ListAll(ctx context.Context) ([]models.Session, error)
	ListByPaid(ctx context.Context, paid bool) ([]models.Session, error)
	SetPaid(ctx context.Context, id int64, paid bool) (*models.Session, error)
}

// ITokenRepository defines the refresh token operations
type ITokenRepository interface {
	CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error
	GetTokenByValue(ctx context.Context, token string) (int64, time.Time, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID int64) error
}

// checkFields names the request field behind each CHECK constraint of the schema
var checkFields = map[string]string{
	"students_default_price_check":     "defaultPrice",
	"tutoring_sessions_amount_check":   "amount",
	"tutoring_sessions_duration_check": "durationMinutes",
	"users_role_type_check":            "roleType",
}

// checkViolationError turns a CHECK violation into a validation error, or returns nil
func checkViolationError(err error) error {
	constraint, ok := dberrors.CheckViolation(err)
	if !ok {
		return nil
	}
	field, known := checkFields[constraint]
	if !known {
		return apperrors.ErrValidationFailed
	}
	return apperrors.NewValidationError(field, field+" is out of range")
}

// Repositories holds all the repository instances
type Repositories struct {
	Users    IUserRepository
	Students IStudentRepository
	Sessions ISessionRepository
	Tokens   ITokenRepository
}

// NewRepositories binds every repository to the same connection or transaction
func NewRepositories(conn db.DBTX) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(conn),
		Students: NewStudentRepository(conn),
		Sessions: NewSessionRepository(conn),
		Tokens:   NewTokenRepository(conn),
	}
}

// TxManager runs a unit of work against repositories bound to one transaction
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error
}

// PgTxManager implements TxManager on top of db.PostgresDB
type PgTxManager struct {
	db *db.PostgresDB
}

// NewTxManager creates a new PgTxManager
func NewTxManager(database *db.PostgresDB) *PgTxManager {
	return &PgTxManager{db: database}
}

// WithinTx commits when fn succeeds and rolls back otherwise
func (m *PgTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error {
	return m.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, NewRepositories(tx))
	})
}

// psql is the statement builder shared by every repository
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
