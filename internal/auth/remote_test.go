package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
)

func TestRemoteProvider(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req struct {
			Token string `json:"token"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch req.Token {
		case "good":
			_ = json.NewEncoder(w).Encode(internal.User{ID: "u1", Username: "maria"})
		case "flaky":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	p := NewRemoteProvider(srv.URL, internal.NopLogger())
	ctx := context.Background()

	user, err := p.ValidateToken(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	calls.Store(0)
	_, err = p.ValidateToken(ctx, "bad")
	assert.ErrorIs(t, err, internal.ErrAuth)
	assert.EqualValues(t, 1, calls.Load())

	calls.Store(0)
	_, err = p.ValidateToken(ctx, "flaky")
	assert.ErrorIs(t, err, internal.ErrStore)
	assert.EqualValues(t, 3, calls.Load())
}
