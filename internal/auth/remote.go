package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
)

// RemoteProvider validates tokens against an external identity service that
// answers POST {"token": "..."} with the user as JSON.
type RemoteProvider struct {
	AuthServiceURL string
	HTTPClient     *http.Client
	Attempts       uint
	logger         internal.Logger
}

func NewRemoteProvider(url string, logger internal.Logger) *RemoteProvider {
	return &RemoteProvider{
		AuthServiceURL: url,
		HTTPClient:     &http.Client{Timeout: 5 * time.Second},
		Attempts:       3,
		logger:         logger,
	}
}

// errRejected stops retries: the service answered and said no.
var errRejected = errors.New("auth service rejected token")

func (a *RemoteProvider) ValidateToken(ctx context.Context, token string) (*internal.User, error) {
	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return nil, err
	}

	var user internal.User
	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.AuthServiceURL, bytes.NewReader(body))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/json")
			resp, err := a.HTTPClient.Do(req)
			if err != nil {
				a.logger.Warnf("failed to call auth service: %v", err)
				return err
			}
			defer resp.Body.Close()
			switch {
			case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
				return retry.Unrecoverable(errRejected)
			case resp.StatusCode >= 500:
				return fmt.Errorf("auth service returned %d", resp.StatusCode)
			case resp.StatusCode != http.StatusOK:
				return retry.Unrecoverable(fmt.Errorf("auth service returned %d", resp.StatusCode))
			}
			if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
				return retry.Unrecoverable(fmt.Errorf("decode auth response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(a.Attempts),
		retry.Delay(100*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		a.logger.Errorf("remote token validation failed: %v", err)
		if errors.Is(err, errRejected) {
			return nil, &internal.AuthError{Cause: err}
		}
		return nil, &internal.StoreError{Op: "validate token", Cause: err}
	}
	if user.ID == "" {
		return nil, &internal.AuthError{Cause: errors.New("auth service returned no user id")}
	}
	return &user, nil
}

var _ Provider = (*RemoteProvider)(nil)
