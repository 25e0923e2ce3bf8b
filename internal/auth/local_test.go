package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/storage"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	repos, err := storage.NewFileRepositories(t.TempDir(), internal.NopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })
	return NewService(repos.Users, repos.Sessions, time.Hour, internal.NopLogger())
}

func TestSignUpAndSignIn(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, &SignUpRequest{Username: "  maria ", Email: "maria@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "maria", user.Username)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	_, err = svc.SignUp(ctx, &SignUpRequest{Username: "MARIA", Email: "other@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, internal.ErrConflict)

	identity, err := svc.SignIn(ctx, &SignInRequest{Login: "maria@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.User.ID)
	assert.NotEmpty(t, identity.Token)

	_, err = svc.SignIn(ctx, &SignInRequest{Login: "maria", Password: "nope-nope"})
	assert.ErrorIs(t, err, internal.ErrAuth)
	_, err = svc.SignIn(ctx, &SignInRequest{Login: "nobody", Password: "secret1"})
	assert.ErrorIs(t, err, internal.ErrAuth)
}

func TestSignUpValidation(t *testing.T) {
	svc := setupService(t)
	_, err := svc.SignUp(context.Background(), &SignUpRequest{Username: "ab", Email: "not-an-email", Password: "123"})
	require.ErrorIs(t, err, internal.ErrValidation)

	var verr *internal.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"username", "email", "password"}, verr.Fields)
}

func TestRefreshRotatesAndSignOutRevokes(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	_, err := svc.SignUp(ctx, &SignUpRequest{Username: "maria", Email: "maria@example.com", Password: "secret1"})
	require.NoError(t, err)
	identity, err := svc.SignIn(ctx, &SignInRequest{Login: "maria", Password: "secret1"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, identity.Token)
	require.NoError(t, err)
	assert.NotEqual(t, identity.Token, refreshed.Token)

	_, err = svc.ValidateToken(ctx, identity.Token)
	assert.ErrorIs(t, err, internal.ErrAuth)

	got, err := svc.Identity(ctx, refreshed.Token)
	require.NoError(t, err)
	assert.Equal(t, "maria", got.User.Username)

	require.NoError(t, svc.SignOut(ctx, refreshed.Token))
	_, err = svc.ValidateToken(ctx, refreshed.Token)
	assert.ErrorIs(t, err, internal.ErrAuth)
}

func TestExpiredSessionIsRejected(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	_, err := svc.SignUp(ctx, &SignUpRequest{Username: "maria", Email: "maria@example.com", Password: "secret1"})
	require.NoError(t, err)
	identity, err := svc.SignIn(ctx, &SignInRequest{Login: "maria", Password: "secret1"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(ctx, identity.Token)
	assert.ErrorIs(t, err, internal.ErrAuth)

	_, err = svc.ValidateToken(ctx, "")
	assert.ErrorIs(t, err, internal.ErrAuth)
}
