package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/tutorledger/internal/app/models"
	"github.com/yigit/tutorledger/internal/app/models/dto"
	"github.com/yigit/tutorledger/internal/pkg/apperrors"
	pkgAuth "github.com/yigit/tutorledger/internal/pkg/auth"
)

func newAuthService(f *fixture) AuthService {
	jwtService := pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "tutorledger.test",
	})
	return NewAuthService(f.repos.Users, f.repos.Tokens, jwtService, nopLogger)
}

func TestRegisterLoginRefreshLogout(t *testing.T) {
	f := newFixture()
	svc := newAuthService(f)
	ctx := context.Background()

	reg, err := svc.Register(ctx, &dto.RegisterRequest{Username: "claire", Email: "Claire@example.com", Password: "correct-horse", RoleType: models.RoleParent})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", reg.TokenType)
	assert.Equal(t, "claire@example.com", reg.User.Email)

	byEmail, err := svc.Login(ctx, &dto.LoginRequest{Login: "claire@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	byName, err := svc.Login(ctx, &dto.LoginRequest{Login: "claire", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, byEmail.User.ID, byName.User.ID)
	mixedCase, err := svc.Login(ctx, &dto.LoginRequest{Login: "Claire", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, byName.User.ID, mixedCase.User.ID)

	_, err = svc.Login(ctx, &dto.LoginRequest{Login: "claire", Password: "wrong-password"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = svc.Login(ctx, &dto.LoginRequest{Login: "ghost", Password: "whatever1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	rotated, err := svc.RefreshToken(ctx, byName.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, byName.RefreshToken, rotated.RefreshToken)
	_, err = svc.RefreshToken(ctx, byName.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	require.NoError(t, svc.Logout(ctx, rotated.User.ID))
	_, err = svc.RefreshToken(ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	profile, err := svc.GetProfile(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "claire", profile.Username)
}

func TestRegister_Rejects(t *testing.T) {
	f := newFixture()
	svc := newAuthService(f)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{Username: "martin", Email: "x@example.com", Password: "long-enough", RoleType: models.RoleParent})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateIdentity)

	_, err = svc.Register(ctx, &dto.RegisterRequest{Username: "newbie", Email: "PARENT@example.com", Password: "long-enough", RoleType: models.RoleParent})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateIdentity)

	_, err = svc.Register(ctx, &dto.RegisterRequest{Username: "newbie", Email: "n@example.com", Password: "long-enough", RoleType: "ADMIN"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.Register(ctx, &dto.RegisterRequest{Username: "newbie", Email: "n@example.com", Password: "short", RoleType: models.RoleTeacher})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Zero(t, f.store.inserts)
}

func TestRefreshToken_Unknown(t *testing.T) {
	svc := newAuthService(newFixture())
	_, err := svc.RefreshToken(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)
	_, err = svc.RefreshToken(context.Background(), " ")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}
