package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/auth/domain"
	"github.com/cityville/laundromat/internal/auth/password"
	"github.com/cityville/laundromat/internal/auth/repository"
	"github.com/cityville/laundromat/internal/config"
	"github.com/cityville/laundromat/internal/migration"
	userdomain "github.com/cityville/laundromat/internal/user/domain"
	userrepo "github.com/cityville/laundromat/internal/user/repository"
	userservice "github.com/cityville/laundromat/internal/user/service"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newAuthService(t *testing.T) (domain.Service, userdomain.Service, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, migration.Run(conn))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	hasher := password.NewHasher()
	users := userservice.New(userservice.Params{
		DB:     conn,
		Log:    zap.NewNop(),
		GenID:  node,
		Repo:   userrepo.Provide(),
		Hasher: hasher,
	})

	auth := New(Params{
		Config: config.Config{AuthTokenTTLHours: 72},
		DB:     conn,
		Log:    zap.NewNop(),
		GenID:  node,
		Repo:   repository.Provide(),
		Users:  users,
		Hasher: hasher,
	})
	return auth, users, conn
}

func TestRegisterOpensSession(t *testing.T) {
	auth, _, _ := newAuthService(t)

	session, err := auth.Register(context.Background(), domain.RegisterRequest{
		Username: "wanjiru",
		Email:    "wanjiru@example.test",
		Password: "laundry-day1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, userdomain.RoleCustomer, session.User.Role)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	user, err := auth.Authenticate(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, user.ID)
}

func TestLoginAcceptsUsernameOrEmail(t *testing.T) {
	auth, _, _ := newAuthService(t)

	_, err := auth.Register(context.Background(), domain.RegisterRequest{
		Username: "wanjiru",
		Email:    "wanjiru@example.test",
		Password: "laundry-day1",
	})
	require.NoError(t, err)

	byUsername, err := auth.Login(context.Background(), domain.LoginRequest{Username: "wanjiru", Password: "laundry-day1"})
	require.NoError(t, err)
	assert.NotEmpty(t, byUsername.Token)

	byEmail, err := auth.Login(context.Background(), domain.LoginRequest{Username: "wanjiru@example.test", Password: "laundry-day1"})
	require.NoError(t, err)
	assert.NotEmpty(t, byEmail.Token)

	_, err = auth.Login(context.Background(), domain.LoginRequest{Username: "wanjiru", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = auth.Login(context.Background(), domain.LoginRequest{Username: "nobody", Password: "laundry-day1"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	auth, users, _ := newAuthService(t)

	session, err := auth.Register(context.Background(), domain.RegisterRequest{
		Username: "wanjiru",
		Email:    "wanjiru@example.test",
		Password: "laundry-day1",
	})
	require.NoError(t, err)

	inactive := false
	_, err = users.Update(context.Background(), session.User.ID.String(), userdomain.UpdateUserRequest{Active: &inactive})
	require.NoError(t, err)

	_, err = auth.Login(context.Background(), domain.LoginRequest{Username: "wanjiru", Password: "laundry-day1"})
	assert.ErrorIs(t, err, domain.ErrAccountDisabled)

	_, err = auth.Authenticate(context.Background(), session.Token)
	assert.ErrorIs(t, err, domain.ErrAccountDisabled)
}

func TestLogoutRevokesToken(t *testing.T) {
	auth, _, _ := newAuthService(t)

	session, err := auth.Register(context.Background(), domain.RegisterRequest{
		Username: "wanjiru",
		Email:    "wanjiru@example.test",
		Password: "laundry-day1",
	})
	require.NoError(t, err)

	require.NoError(t, auth.Logout(context.Background(), session.Token))

	_, err = auth.Authenticate(context.Background(), session.Token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestChangePasswordRevokesOtherSessions(t *testing.T) {
	auth, users, _ := newAuthService(t)

	session, err := auth.Register(context.Background(), domain.RegisterRequest{
		Username: "wanjiru",
		Email:    "wanjiru@example.test",
		Password: "laundry-day1",
	})
	require.NoError(t, err)

	user, err := users.GetByID(context.Background(), session.User.ID.String())
	require.NoError(t, err)

	err = auth.ChangePassword(context.Background(), user, domain.ChangePasswordRequest{
		OldPassword: "laundry-day1",
		NewPassword: "fresh-linen2",
	})
	require.NoError(t, err)

	_, err = auth.Authenticate(context.Background(), session.Token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	_, err = auth.Login(context.Background(), domain.LoginRequest{Username: "wanjiru", Password: "laundry-day1"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = auth.Login(context.Background(), domain.LoginRequest{Username: "wanjiru", Password: "fresh-linen2"})
	require.NoError(t, err)
}

func TestChangePasswordRejectsWrongOldPassword(t *testing.T) {
	auth, users, _ := newAuthService(t)

	session, err := auth.Register(context.Background(), domain.RegisterRequest{
		Username: "wanjiru",
		Email:    "wanjiru@example.test",
		Password: "laundry-day1",
	})
	require.NoError(t, err)

	user, err := users.GetByID(context.Background(), session.User.ID.String())
	require.NoError(t, err)

	err = auth.ChangePassword(context.Background(), user, domain.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "fresh-linen2",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestPurgeExpiredDropsOldTokens(t *testing.T) {
	auth, _, conn := newAuthService(t)

	session, err := auth.Register(context.Background(), domain.RegisterRequest{
		Username: "wanjiru",
		Email:    "wanjiru@example.test",
		Password: "laundry-day1",
	})
	require.NoError(t, err)

	past := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, conn.Model(&domain.Token{}).
		Where("user_id = ?", session.User.ID).
		Update("expires_at", past).Error)

	purged, err := auth.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)

	_, err = auth.Authenticate(context.Background(), session.Token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}
