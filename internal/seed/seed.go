package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/tutorledger/internal/app/models"
	appRepos "github.com/yigit/tutorledger/internal/app/repositories"
	"github.com/yigit/tutorledger/internal/config"
	"github.com/yigit/tutorledger/internal/pkg/auth"
)

// Demo fixture
const (
	DemoParentUsername = "martin"
	DemoParentEmail    = "parent@example.com"
	DemoStudentName    = "Sophie Martin"
	DemoPriceCents     = 2550
)

// PasswordHasher hashes a plaintext password
type PasswordHasher func(password string) (string, error)

// Seeder creates the default data. Every step is skipped when its data already exists.
type Seeder struct {
	repos  *appRepos.Repositories
	hash   PasswordHasher
	now    func() time.Time
	logger zerolog.Logger
}

// NewSeeder creates a Seeder hashing passwords with bcrypt
func NewSeeder(repos *appRepos.Repositories, lgr zerolog.Logger) *Seeder {
	return &Seeder{repos: repos, hash: auth.HashPassword, now: time.Now, logger: lgr}
}

// CreateDefaultData creates the configured teacher and, when enabled, the demo family.
// Errors are collected so that one failed step does not hide the others.
func (s *Seeder) CreateDefaultData(ctx context.Context, cfg *config.Config) error {
	if !cfg.Seed.Enabled {
		s.logger.Info().Msg("Seeding disabled, skipping default data")
		return nil
	}

	s.logger.Info().Msg("Checking/Creating default data...")
	var finalErr error

	if err := s.ensureUser(ctx, cfg.Seed.TeacherUsername, cfg.Seed.TeacherEmail, cfg.Seed.TeacherPassword, appModels.RoleTeacher); err != nil {
		s.logger.Error().Err(err).Msg("Error creating default teacher")
		finalErr = errors.Join(finalErr, err)
	}

	if cfg.Seed.DemoData {
		if err := s.createDemoData(ctx, cfg.Accounts.ParentDefaultPassword); err != nil {
			s.logger.Error().Err(err).Msg("Error creating demo data")
			finalErr = errors.Join(finalErr, err)
		}
	}

	s.logger.Info().Msg("Default data check/creation finished.")
	return finalErr
}

func (s *Seeder) ensureUser(ctx context.Context, username, email, password string, role appModels.RoleType) error {
	exists, err := s.repos.Users.UsernameExists(ctx, username)
	if err != nil {
		return fmt.Errorf("checking user %s: %w", username, err)
	}
	if exists {
		s.logger.Info().Str("username", username).Msg("User already exists, skipping creation")
		return nil
	}

	hashed, err := s.hash(password)
	if err != nil {
		return fmt.Errorf("hashing password of %s: %w", username, err)
	}
	user := &appModels.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		RoleType:     role,
	}
	if err := s.repos.Users.Create(ctx, user); err != nil {
		return fmt.Errorf("creating user %s: %w", username, err)
	}
	s.logger.Info().Int64("userID", user.ID).Str("role", string(role)).Msg("Default user created successfully")
	return nil
}

// createDemoData adds one parent with one student and four sessions, the two oldest paid
func (s *Seeder) createDemoData(ctx context.Context, parentPassword string) error {
	existing, err := s.repos.Students.GetByName(ctx, DemoStudentName)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		s.logger.Info().Msg("Demo data already present, skipping")
		return nil
	}

	if err := s.ensureUser(ctx, DemoParentUsername, DemoParentEmail, parentPassword, appModels.RoleParent); err != nil {
		return err
	}
	parent, err := s.repos.Users.GetByEmail(ctx, DemoParentEmail)
	if err != nil {
		return fmt.Errorf("loading demo parent: %w", err)
	}

	student := &appModels.Student{
		Name:         DemoStudentName,
		ParentID:     parent.ID,
		DefaultPrice: appModels.MoneyFromCents(DemoPriceCents),
	}
	if err := s.repos.Students.Create(ctx, student); err != nil {
		return fmt.Errorf("creating demo student: %w", err)
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	for i := 4; i >= 1; i-- {
		session := &appModels.Session{
			StudentID:       student.ID,
			Date:            today.AddDate(0, 0, -7*i),
			DurationMinutes: 60,
			Amount:          student.DefaultPrice,
			Subject:         "Mathematics",
		}
		if err := s.repos.Sessions.Create(ctx, session); err != nil {
			return fmt.Errorf("creating demo session: %w", err)
		}
		if i > 2 {
			if _, err := s.repos.Sessions.SetPaid(ctx, session.ID, true); err != nil {
				return fmt.Errorf("marking demo session paid: %w", err)
			}
		}
	}

	s.logger.Info().Int64("studentID", student.ID).Msg("Demo data created")
	return nil
}
