package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/sitedesk/sitedesk/internal/auth"
	"github.com/sitedesk/sitedesk/internal/database/testutil"
	apperrors "github.com/sitedesk/sitedesk/pkg/errors"
)

func newUserService(t *testing.T, db *gorm.DB, guard *iauth.LoginGuard) *UserService {
	t.Helper()

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "test-secret",
		Issuer:         "sitedesk-test",
		AccessTokenTTL: time.Minute,
	})
	require.NoError(t, err)

	svc, err := NewUserService(db, jwtSvc, guard)
	require.NoError(t, err)
	return svc
}

func TestUserRegisterAndAuthenticate(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc := newUserService(t, db, nil)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterUserInput{
		Email:    "Alice@Example.com",
		Name:     "Alice",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)
	require.Equal(t, []string{"member"}, user.Roles)

	result, err := svc.Authenticate(ctx, "alice@example.com", "correct-horse")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.NotNil(t, result.User.LastLoginAt)

	_, err = svc.Authenticate(ctx, "alice@example.com", "wrong")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "whatever")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestUserRegisterDuplicateEmail(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc := newUserService(t, db, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterUserInput{Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterUserInput{Email: "a@example.com", Password: "password2"})
	require.Error(t, err)
	appErr := apperrors.FromError(err)
	require.Equal(t, apperrors.ErrConflict.Code, appErr.Code)
}

func TestUserAuthenticateLockout(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	guard := iauth.NewLoginGuard(iauth.GuardConfig{
		LockoutThreshold: 2,
		LockoutDuration:  time.Minute,
	})
	svc := newUserService(t, db, guard)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterUserInput{Email: "b@example.com", Password: "password1"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = svc.Authenticate(ctx, "b@example.com", "wrong")
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	}

	// Locked out now, even with the correct password.
	_, err = svc.Authenticate(ctx, "b@example.com", "password1")
	require.ErrorIs(t, err, apperrors.ErrLoginLocked)
}

func TestAdminBootstrap(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc := newUserService(t, db, nil)
	ctx := context.Background()

	exists, err := svc.AdminExists(ctx)
	require.NoError(t, err)
	require.False(t, exists)

	first, err := svc.Register(ctx, RegisterUserInput{Email: "first@example.com", Password: "password1"})
	require.NoError(t, err)
	second, err := svc.Register(ctx, RegisterUserInput{Email: "second@example.com", Password: "password1"})
	require.NoError(t, err)

	require.NoError(t, svc.BootstrapAdmin(ctx, first.ID))

	exists, err = svc.AdminExists(ctx)
	require.NoError(t, err)
	require.True(t, exists)

	// Only the first bootstrap succeeds.
	err = svc.BootstrapAdmin(ctx, second.ID)
	require.Error(t, err)
	require.Equal(t, apperrors.ErrConflict.Code, apperrors.FromError(err).Code)

	user, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	require.Contains(t, user.Roles, "admin")
}

func TestGrantRoleIsIdempotent(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc := newUserService(t, db, nil)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterUserInput{Email: "c@example.com", Password: "password1"})
	require.NoError(t, err)

	require.NoError(t, svc.GrantRole(ctx, user.ID, "admin"))
	require.NoError(t, svc.GrantRole(ctx, user.ID, "admin"))

	loaded, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"member", "admin"}, loaded.Roles)

	require.NoError(t, svc.RevokeRole(ctx, user.ID, "admin"))
	require.ErrorIs(t, svc.RevokeRole(ctx, user.ID, "admin"), apperrors.ErrNotFound)
}
