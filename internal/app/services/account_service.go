package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/tutorledger/internal/app/auth"
	"github.com/yigit/tutorledger/internal/app/models"
	"github.com/yigit/tutorledger/internal/app/models/dto"
	"github.com/yigit/tutorledger/internal/app/repositories"
	"github.com/yigit/tutorledger/internal/config"
	"github.com/yigit/tutorledger/internal/pkg/apperrors"
	pkgAuth "github.com/yigit/tutorledger/internal/pkg/auth"
	"github.com/yigit/tutorledger/internal/pkg/validation"
)

// AccountService defines the interface for teacher-managed accounts
type AccountService interface {
	CreateParentAccount(ctx context.Context, id auth.Identity, req *dto.CreateParentRequest) (*dto.ParentAccountResponse, error)
	ListParents(ctx context.Context, id auth.Identity) ([]*dto.UserResponse, error)
}

// accountServiceImpl implements AccountService
type accountServiceImpl struct {
	userRepo     repositories.IUserRepository
	authzService *auth.AuthorizationService
	provisioner  parentProvisioner
}

// NewAccountService creates a new AccountService
func NewAccountService(
	userRepo repositories.IUserRepository,
	authzService *auth.AuthorizationService,
	opts Options,
	logger zerolog.Logger,
) AccountService {
	return &accountServiceImpl{
		userRepo:     userRepo,
		authzService: authzService,
		provisioner:  newParentProvisioner(opts, logger),
	}
}

// CreateParentAccount opens a parent account and returns its one-time password
func (s *accountServiceImpl) CreateParentAccount(ctx context.Context, id auth.Identity, req *dto.CreateParentRequest) (*dto.ParentAccountResponse, error) {
	if err := s.authzService.Authorize(id, auth.ActionCreateParent); err != nil {
		return nil, err
	}

	user, password, err := s.provisioner.provision(ctx, s.userRepo, req.Username, req.Email)
	if err != nil {
		return nil, err
	}

	return &dto.ParentAccountResponse{
		User:              dto.NewUserResponse(user),
		TemporaryPassword: password,
	}, nil
}

// ListParents returns every parent account, ordered by username
func (s *accountServiceImpl) ListParents(ctx context.Context, id auth.Identity) ([]*dto.UserResponse, error) {
	if err := s.authzService.Authorize(id, auth.ActionListParents); err != nil {
		return nil, err
	}

	parents, err := s.userRepo.ListByRole(ctx, models.RoleParent)
	if err != nil {
		return nil, fmt.Errorf("error listing parent accounts: %w", err)
	}

	out := make([]*dto.UserResponse, 0, len(parents))
	for i := range parents {
		out = append(out, dto.NewUserResponse(&parents[i]))
	}
	return out, nil
}

// parentProvisioner creates parent accounts according to the configured password policy.
// It is shared by explicit account creation and by auto-provisioning on student creation.
type parentProvisioner struct {
	policy          string
	defaultPassword string
	generatedLen    int
	hash            func(string) (string, error)
	logger          zerolog.Logger
}

func newParentProvisioner(opts Options, logger zerolog.Logger) parentProvisioner {
	return parentProvisioner{
		policy:          opts.ParentPasswordPolicy,
		defaultPassword: opts.ParentDefaultPassword,
		generatedLen:    opts.GeneratedPasswordLen,
		hash:            pkgAuth.HashPassword,
		logger:          logger,
	}
}

// provision validates, checks for clashes and inserts a parent through users.
// Nothing is inserted when the username or email is already taken.
func (p parentProvisioner) provision(ctx context.Context, users repositories.IUserRepository, username, email string) (*models.User, string, error) {
	username = validation.NormalizeUsername(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if !validation.ValidUsername(username) {
		return nil, "", apperrors.NewValidationError("username", "username must be 3 to 50 letters, digits, dots, dashes or underscores")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", apperrors.NewValidationError("email", "a valid email is required")
	}

	exists, err := users.UsernameExists(ctx, username)
	if err != nil {
		return nil, "", fmt.Errorf("error checking if username exists: %w", err)
	}
	if exists {
		return nil, "", apperrors.NewDuplicateIdentityError("username", username)
	}

	exists, err = users.EmailExists(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return nil, "", apperrors.NewDuplicateIdentityError("email", email)
	}

	password, err := p.password()
	if err != nil {
		return nil, "", err
	}
	hashed, err := p.hash(password)
	if err != nil {
		return nil, "", fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		RoleType:     models.RoleParent,
	}
	// the unique constraints still catch a concurrent insert of the same identity
	if err := users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	p.logger.Info().Int64("userID", user.ID).Str("username", user.Username).Msg("Parent account created")
	return user, password, nil
}

func (p parentProvisioner) password() (string, error) {
	if p.policy == config.ParentPasswordFixed {
		return p.defaultPassword, nil
	}
	return pkgAuth.GeneratePassword(p.generatedLen)
}

// usernameFromEmail derives a free username from the local part of an email
func usernameFromEmail(ctx context.Context, users repositories.IUserRepository, email string) (string, error) {
	local, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(email)), "@")
	var b strings.Builder
	for _, r := range local {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	base := b.String()
	for len(base) < 3 {
		base += "0"
	}
	if len(base) > 45 {
		base = base[:45]
	}

	candidate := base
	for i := 2; i < 1000; i++ {
		exists, err := users.UsernameExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("error checking if username exists: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	return "", apperrors.NewDuplicateIdentityError("username", base)
}
