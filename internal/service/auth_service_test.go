package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/unidocs/unidocs-api/internal/models"
	appErrors "github.com/unidocs/unidocs-api/pkg/errors"
)

type mockUserRepo struct {
	user       *models.User
	findErr    error
	lastLogins []int64
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.user, nil
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id int64, ts time.Time) error {
	m.lastLogins = append(m.lastLogins, id)
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{Secret: "test-secret", Expiry: time.Hour, Issuer: "unidocs-api"}
}

func activeModerator(t *testing.T) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           42,
		Email:        "mod@example.edu",
		PasswordHash: string(hash),
		FullName:     "Mod Erator",
		Role:         models.RoleModerator,
		Active:       true,
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	repo := &mockUserRepo{user: activeModerator(t)}
	svc := NewAuthService(repo, nil, zap.NewNop(), testAuthConfig())

	result, err := svc.Login(context.Background(), models.LoginRequest{Email: "mod@example.edu", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, models.RoleModerator, result.User.Role)
	assert.Equal(t, []int64{42}, repo.lastLogins)

	claims, err := svc.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, models.RoleModerator, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := &mockUserRepo{user: activeModerator(t)}
	svc := NewAuthService(repo, nil, zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "mod@example.edu", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.lastLogins)
}

func TestLoginUnknownEmail(t *testing.T) {
	repo := &mockUserRepo{findErr: sql.ErrNoRows}
	svc := NewAuthService(repo, nil, zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.edu", Password: "s3cret"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	user := activeModerator(t)
	user.Active = false
	svc := NewAuthService(&mockUserRepo{user: user}, nil, zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "mod@example.edu", Password: "s3cret"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestLoginValidatesPayload(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, nil, zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: ""})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	repo := &mockUserRepo{user: activeModerator(t)}
	issuer := NewAuthService(repo, nil, zap.NewNop(), testAuthConfig())
	verifier := NewAuthService(repo, nil, zap.NewNop(), AuthConfig{Secret: "other-secret", Expiry: time.Hour})

	result, err := issuer.Login(context.Background(), models.LoginRequest{Email: "mod@example.edu", Password: "s3cret"})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(result.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
