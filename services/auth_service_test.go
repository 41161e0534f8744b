package services

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/soccerhub/league-manager/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuthService(userRepo *fakeUserRepo) AuthService {
	return NewAuthService(userRepo, testSecret, testLogger())
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())
	ctx := context.Background()

	t.Run("short password", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{
			Username: "alex", Email: "alex@example.com", Password: "short", Role: models.RoleOrganizer,
		})
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{
			Username: "alex", Email: "alex@example.com", Password: "long-enough", Role: "ADMIN",
		})
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("blank username", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterInput{
			Username: "  ", Email: "alex@example.com", Password: "long-enough", Role: models.RoleReferee,
		})
		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}

func TestRegisterConflicts(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Username: "alex", Email: "alex@example.com", Password: "long-enough", Role: models.RoleOrganizer,
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{
		Username: "alex", Email: "other@example.com", Password: "long-enough", Role: models.RoleOrganizer,
	})
	assert.ErrorIs(t, err, ErrUsernameConflict)

	_, err = svc.Register(ctx, RegisterInput{
		Username: "sam", Email: "alex@example.com", Password: "long-enough", Role: models.RoleOrganizer,
	})
	assert.ErrorIs(t, err, ErrEmailConflict)
}

func TestLoginRoundTrip(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{
		Username: "alex", Email: "alex@example.com", Password: "long-enough", Role: models.RoleReferee,
	})
	require.NoError(t, err)
	assert.NotEqual(t, "long-enough", registered.PasswordHash, "password must be stored hashed")

	token, user, err := svc.Login(ctx, models.Credentials{Username: "alex", Password: "long-enough"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(registered.ID), claims["user_id"])
	assert.Equal(t, string(models.RoleReferee), claims["role"])
	assert.NotNil(t, claims["exp"])
}

func TestLoginFailures(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Username: "alex", Email: "alex@example.com", Password: "long-enough", Role: models.RoleOrganizer,
	})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, models.Credentials{Username: "alex", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, models.Credentials{Username: "nobody", Password: "long-enough"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
