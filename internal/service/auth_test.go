package service_test

import (
	"context"
	"testing"
	"time"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/repository"
	"martilhaven-backend/internal/repository/memory"
	"martilhaven-backend/internal/security"
	"martilhaven-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(t *testing.T) (service.AuthService, service.UserService, *memory.Store, security.TokenManager) {
	t.Helper()
	store := memory.NewStore()
	tokens := security.NewTokenManager("test-secret", 15*time.Minute, 24*time.Hour)
	return service.NewAuthService(store.UserRepository, tokens), service.NewUserService(store.UserRepository), store, tokens
}

var registration = service.RegisterInput{
	Username: "ana",
	Email:    "Ana@Example.com",
	Password: "s3cret-pass",
	Name:     "Ana Guest",
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		auth, _, _, _ := newAuth(t)

		user, err := auth.Register(ctx, registration)
		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "ana@example.com", user.Email)
		assert.Equal(t, domain.RoleCustomer, user.Role)
		assert.Equal(t, domain.UserStatusActive, user.Status)
		assert.NotEqual(t, registration.Password, user.PasswordHash)
	})

	t.Run("Duplicate", func(t *testing.T) {
		auth, _, _, _ := newAuth(t)
		_, err := auth.Register(ctx, registration)
		require.NoError(t, err)

		_, err = auth.Register(ctx, registration)
		assert.True(t, domain.IsKind(err, domain.ErrorKindConflict))
	})

	t.Run("Invalid Input", func(t *testing.T) {
		auth, _, _, _ := newAuth(t)

		short := registration
		short.Password = "short"
		_, err := auth.Register(ctx, short)
		assert.True(t, domain.IsKind(err, domain.ErrorKindValidation))

		badEmail := registration
		badEmail.Email = "not-an-email"
		_, err = auth.Register(ctx, badEmail)
		assert.True(t, domain.IsKind(err, domain.ErrorKindValidation))

		badName := registration
		badName.Username = "ab"
		_, err = auth.Register(ctx, badName)
		assert.True(t, domain.IsKind(err, domain.ErrorKindValidation))
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		auth, _, _, tokens := newAuth(t)
		registered, err := auth.Register(ctx, registration)
		require.NoError(t, err)

		user, pair, err := auth.Login(ctx, "ana", registration.Password)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
		assert.NotNil(t, user.LastLogin)

		claims, err := tokens.ValidateToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, claims.UserID)
		assert.Equal(t, security.TokenTypeAccess, claims.Type)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		auth, _, _, _ := newAuth(t)
		_, err := auth.Register(ctx, registration)
		require.NoError(t, err)

		_, _, err = auth.Login(ctx, "ana", "wrong-password")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("Unknown User", func(t *testing.T) {
		auth, _, _, _ := newAuth(t)

		_, _, err := auth.Login(ctx, "nobody", registration.Password)
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("Inactive", func(t *testing.T) {
		auth, users, _, _ := newAuth(t)
		registered, err := auth.Register(ctx, registration)
		require.NoError(t, err)
		_, err = users.UpdateUser(ctx, admin, registered.ID, service.UserUpdate{Status: ptr(domain.UserStatusInactive)})
		require.NoError(t, err)

		_, _, err = auth.Login(ctx, "ana", registration.Password)
		assert.True(t, domain.IsKind(err, domain.ErrorKindForbidden))
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("Reissues With Current Role", func(t *testing.T) {
		auth, users, _, tokens := newAuth(t)
		registered, err := auth.Register(ctx, registration)
		require.NoError(t, err)
		_, pair, err := auth.Login(ctx, "ana", registration.Password)
		require.NoError(t, err)

		_, err = users.UpdateUser(ctx, admin, registered.ID, service.UserUpdate{Role: ptr(domain.RoleOwner)})
		require.NoError(t, err)

		refreshed, err := auth.RefreshToken(ctx, pair.RefreshToken)
		require.NoError(t, err)
		claims, err := tokens.ValidateToken(refreshed.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleOwner, claims.Role)
	})

	t.Run("Access Token Rejected", func(t *testing.T) {
		auth, _, _, _ := newAuth(t)
		_, err := auth.Register(ctx, registration)
		require.NoError(t, err)
		_, pair, err := auth.Login(ctx, "ana", registration.Password)
		require.NoError(t, err)

		_, err = auth.RefreshToken(ctx, pair.AccessToken)
		assert.True(t, domain.IsKind(err, domain.ErrorKindUnauthorized))
	})

	t.Run("Garbage", func(t *testing.T) {
		auth, _, _, _ := newAuth(t)

		_, err := auth.RefreshToken(ctx, "not-a-token")
		assert.True(t, domain.IsKind(err, domain.ErrorKindUnauthorized))
	})
}

func TestUserService(t *testing.T) {
	ctx := context.Background()

	t.Run("Profile", func(t *testing.T) {
		auth, users, _, _ := newAuth(t)
		registered, err := auth.Register(ctx, registration)
		require.NoError(t, err)
		me := domain.Actor{ID: registered.ID, Role: registered.Role}

		user, err := users.UpdateProfile(ctx, me, service.ProfileInput{Name: "Ana B.", Phone: "+212 600"})
		require.NoError(t, err)
		assert.Equal(t, "Ana B.", user.Name)
		assert.Equal(t, "ana@example.com", user.Email)

		user, err = users.GetProfile(ctx, me)
		require.NoError(t, err)
		assert.Equal(t, "+212 600", user.Phone)
	})

	t.Run("Admin Creates Staff", func(t *testing.T) {
		_, users, _, _ := newAuth(t)

		user, err := users.CreateUser(ctx, service.UserInput{
			Username: "desk",
			Email:    "desk@example.com",
			Password: "front-desk-1",
			Role:     domain.RoleStaff,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleStaff, user.Role)

		staff, err := users.ListUsers(ctx, repository.UserFilter{Role: domain.RoleStaff})
		require.NoError(t, err)
		assert.Len(t, staff, 1)

		_, err = users.CreateUser(ctx, service.UserInput{Username: "x1y", Email: "x@example.com", Password: "long-enough", Role: "root"})
		assert.True(t, domain.IsKind(err, domain.ErrorKindValidation))
	})

	t.Run("Self Guards", func(t *testing.T) {
		_, users, _, _ := newAuth(t)
		root, err := users.CreateUser(ctx, service.UserInput{
			Username: "root",
			Email:    "root@example.com",
			Password: "admin-pass-1",
			Role:     domain.RoleAdmin,
		})
		require.NoError(t, err)
		self := domain.Actor{ID: root.ID, Role: domain.RoleAdmin}

		_, err = users.UpdateUser(ctx, self, root.ID, service.UserUpdate{Role: ptr(domain.RoleCustomer)})
		assert.True(t, domain.IsKind(err, domain.ErrorKindValidation))

		err = users.DeleteUser(ctx, self, root.ID)
		assert.True(t, domain.IsKind(err, domain.ErrorKindValidation))

		_, err = users.UpdateUser(ctx, self, root.ID, service.UserUpdate{Name: ptr("Root")})
		assert.NoError(t, err)
	})

	t.Run("Delete", func(t *testing.T) {
		auth, users, _, _ := newAuth(t)
		registered, err := auth.Register(ctx, registration)
		require.NoError(t, err)

		require.NoError(t, users.DeleteUser(ctx, admin, registered.ID))
		_, err = users.GetProfile(ctx, domain.Actor{ID: registered.ID})
		assert.True(t, domain.IsKind(err, domain.ErrorKindNotFound))
	})
}
