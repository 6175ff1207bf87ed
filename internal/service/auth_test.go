package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusprint/print-service/internal/models"
	"github.com/campusprint/print-service/internal/repo"
	"github.com/campusprint/print-service/pkg/tokens"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	return &AuthService{
		Users:     &repo.UserRepo{DB: initTestDB(t)},
		JWTSecret: []byte("test-jwt-secret"),
	}
}

func TestAuthService_Register_CreatesUserAndToken(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, "Asha", "Asha@Example.com", "password", "")
	require.NoError(t, err)
	require.NotNil(t, res.User)
	require.NotEmpty(t, res.Token)

	assert.Equal(t, "asha@example.com", res.User.Email)
	assert.Equal(t, models.RoleStudent, res.User.Role)
	assert.NotEmpty(t, res.User.ID)
	assert.NotEqual(t, "password", res.User.PasswordHash)

	claims, err := tokens.AccessClaimsFromToken(res.Token, svc.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID.String(), claims.Subject)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, "asha@example.com", claims.Email)
	assert.Equal(t, tokens.Issuer, claims.Issuer)
}

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		role     string
	}{
		{name: "empty name", userName: "", email: "a@b.co", password: "secret1"},
		{name: "empty email", userName: "A", email: "", password: "secret1"},
		{name: "bad email", userName: "A", email: "not-an-email", password: "secret1"},
		{name: "short password", userName: "A", email: "a@b.co", password: "12345"},
		{name: "unknown role", userName: "A", email: "a@b.co", password: "secret1", role: "root"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Register(ctx, tt.userName, tt.email, tt.password, tt.role)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Asha", "asha@example.com", "password", "")
	require.NoError(t, err)

	res, err := svc.Register(ctx, "Other", "asha@example.com", "password2", "")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Op", "op@example.com", "password", models.RoleOperator)
	require.NoError(t, err)

	res, err := svc.Login(ctx, "op@example.com", "password")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	claims, err := tokens.AccessClaimsFromToken(res.Token, svc.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOperator, claims.Role)

	_, err = svc.Login(ctx, "op@example.com", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuth)

	_, err = svc.Login(ctx, "ghost@example.com", "password")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuth)
}
