package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/storage"
)

type staticProvider map[string]*internal.User

func (p staticProvider) ValidateToken(_ context.Context, token string) (*internal.User, error) {
	if u, ok := p[token]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, &internal.AuthError{}
}

func TestProvisioning(t *testing.T) {
	repos, err := storage.NewFileRepositories(t.TempDir(), internal.NopLogger())
	require.NoError(t, err)
	defer repos.Close()
	ctx := context.Background()

	p := NewProvisioning(staticProvider{
		"a": {ID: "ext-1", Username: "ext"},
		"b": {ID: "ext-2", Username: "Ext"},
	}, repos.Users)

	user, err := p.ValidateToken(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "ext-1", user.ID)

	require.NoError(t, repos.Users.UpdateAvatar(ctx, "ext-1", "http://cdn/x.png"))
	user, err = p.ValidateToken(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/x.png", user.AvatarURL)

	_, err = p.ValidateToken(ctx, "nope")
	assert.ErrorIs(t, err, internal.ErrAuth)

	_, err = p.ValidateToken(ctx, "b")
	assert.ErrorIs(t, err, internal.ErrStore)
	assert.ErrorIs(t, err, internal.ErrConflict)
}
