package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
)

type body struct {
	data        []byte
	contentType string
	err         error
}

func jsonBody(v any) *body {
	data, err := json.Marshal(v)
	return &body{data: data, contentType: "application/json", err: err}
}

// publicPaths are sent without a token; a 401 there is a bad login, not an expired session.
var publicPaths = map[string]bool{"/auth/login": true, "/auth/register": true}

type envelope struct {
	Data  json.RawMessage    `json:"data"`
	Meta  map[string]any     `json:"meta"`
	Error *internal.AppError `json:"error"`
}

// statusError is a non-2xx answer from the API.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("api returned %d: %s", e.status, e.message)
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.status >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// do sends one API call and decodes the envelope's data into out. GETs are
// retried on transport failures and 5xx answers.
func (c *Client) do(ctx context.Context, method, path string, b *body, out any) error {
	if b != nil && b.err != nil {
		return internal.NewValidationError("encode request: " + b.err.Error())
	}
	attempts := uint(1)
	if method == http.MethodGet {
		attempts = c.attempts
	}

	var env envelope
	err := retry.Do(
		func() error {
			var reader io.Reader
			if b != nil {
				reader = bytes.NewReader(b.data)
			}
			req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			if b != nil {
				req.Header.Set("Content-Type", b.contentType)
			}
			req.Header.Set("Accept", "application/json")
			if tok := c.token(); tok != "" && !publicPaths[path] {
				req.Header.Set("Authorization", "Bearer "+tok)
			}

			resp, err := c.http.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			env = envelope{}
			decodeErr := json.NewDecoder(resp.Body).Decode(&env)
			if resp.StatusCode >= 300 {
				msg := http.StatusText(resp.StatusCode)
				if decodeErr == nil && env.Error != nil {
					msg = env.Error.Message
				}
				return &statusError{status: resp.StatusCode, message: msg}
			}
			if decodeErr != nil && !errors.Is(decodeErr, io.EOF) {
				return retry.Unrecoverable(fmt.Errorf("decode response: %w", decodeErr))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.MaxDelay(2*time.Second),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warnf("client: %s %s attempt %d failed: %v", method, path, n+1, err)
		}),
	)
	if err != nil {
		return c.mapError(method, path, err)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &internal.StoreError{Op: method + " " + path, Cause: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}

func (c *Client) mapError(method, path string, err error) error {
	op := method + " " + path
	var se *statusError
	if !errors.As(err, &se) {
		return &internal.StoreError{Op: op, Cause: err}
	}
	switch se.status {
	case http.StatusBadRequest:
		return internal.NewValidationError(se.message)
	case http.StatusUnauthorized:
		if !publicPaths[path] {
			c.expire()
		}
		return &internal.AuthError{Cause: se}
	case http.StatusNotFound:
		resource, id := resourceOf(path)
		return &internal.NotFoundError{Resource: resource, ID: id}
	case http.StatusConflict:
		return fmt.Errorf("%s: %w", se.message, internal.ErrConflict)
	default:
		return &internal.StoreError{Op: op, Cause: se}
	}
}

var resourceNames = map[string]string{
	"entries":   "entry",
	"baby":      "baby profile",
	"avatar":    "avatar",
	"dashboard": "dashboard",
	"auth":      "session",
}

// resourceOf names what an API path points at, e.g. "/entries/42" is entry "42".
func resourceOf(path string) (string, string) {
	head, id, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	resource, ok := resourceNames[head]
	if !ok {
		resource = head
	}
	if head == "auth" {
		id = ""
	}
	if unescaped, err := url.PathUnescape(id); err == nil {
		id = unescaped
	}
	return resource, id
}
