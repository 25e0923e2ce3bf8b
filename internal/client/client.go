// Package client talks to the baby-care API over HTTP and keeps the bearer
// token of the signed-in user in memory.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
)

type SessionEvent int

const (
	SignedIn SessionEvent = iota + 1
	Refreshed
	SignedOut
	Expired
)

func (e SessionEvent) String() string {
	switch e {
	case SignedIn:
		return "signed_in"
	case Refreshed:
		return "refreshed"
	case SignedOut:
		return "signed_out"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// SessionListener receives the identity after the change; nil means signed out.
type SessionListener func(event SessionEvent, identity *internal.Identity)

type Credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Client struct {
	baseURL  string
	http     *http.Client
	attempts uint
	delay    time.Duration
	logger   internal.Logger

	mu       sync.RWMutex
	identity *internal.Identity

	subMu     sync.Mutex
	listeners map[int]SessionListener
	nextID    int
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetryAttempts bounds the attempts made for reads. Writes are sent once.
func WithRetryAttempts(n uint) Option {
	return func(c *Client) { c.attempts = max(n, 1) }
}

func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.delay = d }
}

func WithLogger(l internal.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 15 * time.Second},
		attempts:  3,
		delay:     200 * time.Millisecond,
		logger:    internal.NopLogger(),
		listeners: make(map[int]SessionListener),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Identity returns the identity whose token is attached to requests.
func (c *Client) Identity() *internal.Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity
}

// Restore attaches a previously issued identity without contacting the server.
func (c *Client) Restore(identity *internal.Identity) {
	c.mu.Lock()
	c.identity = identity
	c.mu.Unlock()
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.identity == nil {
		return ""
	}
	return c.identity.Token
}

// OnSessionChange registers fn and returns the function that removes it.
func (c *Client) OnSessionChange(fn SessionListener) func() {
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.listeners, id)
			c.subMu.Unlock()
		})
	}
}

func (c *Client) setIdentity(event SessionEvent, identity *internal.Identity) {
	c.mu.Lock()
	c.identity = identity
	c.mu.Unlock()

	c.subMu.Lock()
	listeners := make([]SessionListener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.subMu.Unlock()

	c.logger.Debugf("client: session %s", event)
	for _, fn := range listeners {
		fn(event, identity)
	}
}

// expire drops the held identity after the server rejected its token.
func (c *Client) expire() {
	if c.token() == "" {
		return
	}
	c.setIdentity(Expired, nil)
}

// GetSession asks the server whether the held token is still valid. It returns
// nil without error when there is no token or the token was rejected.
func (c *Client) GetSession(ctx context.Context) (*internal.Identity, error) {
	if c.token() == "" {
		return nil, nil
	}
	var identity internal.Identity
	err := c.do(ctx, http.MethodGet, "/auth/session", nil, &identity)
	if errors.Is(err, internal.ErrAuth) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.identity = &identity
	c.mu.Unlock()
	return &identity, nil
}

func (c *Client) SignUp(ctx context.Context, reg Registration) (*internal.User, error) {
	var user internal.User
	if err := c.do(ctx, http.MethodPost, "/auth/register", jsonBody(reg), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) SignIn(ctx context.Context, creds Credentials) (*internal.Identity, error) {
	var identity internal.Identity
	if err := c.do(ctx, http.MethodPost, "/auth/login", jsonBody(creds), &identity); err != nil {
		return nil, err
	}
	c.setIdentity(SignedIn, &identity)
	return &identity, nil
}

// SignOut is best effort: the local identity is dropped even when the call fails.
func (c *Client) SignOut(ctx context.Context) error {
	if c.token() == "" {
		return nil
	}
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if c.token() != "" {
		c.setIdentity(SignedOut, nil)
	}
	if err != nil {
		return &internal.AuthError{Cause: err}
	}
	return nil
}

func (c *Client) Refresh(ctx context.Context) (*internal.Identity, error) {
	var identity internal.Identity
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, &identity); err != nil {
		return nil, err
	}
	c.setIdentity(Refreshed, &identity)
	return &identity, nil
}

type entryBody struct {
	Kind        internal.EntryKind `json:"kind"`
	Observation string             `json:"observation"`
	Data        internal.Payload   `json:"data"`
}

// InsertEntry stores a new entry for ownerID, which must be the signed-in user.
func (c *Client) InsertEntry(ctx context.Context, ownerID, observation string, payload internal.Payload) (*internal.Entry, error) {
	if id := c.Identity(); id == nil || id.User.ID != ownerID {
		return nil, &internal.AuthError{Cause: fmt.Errorf("not signed in as %s", ownerID)}
	}
	var entry internal.Entry
	body := jsonBody(entryBody{Kind: payload.Kind(), Observation: observation, Data: payload})
	if err := c.do(ctx, http.MethodPost, "/entries", body, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) UpdateEntry(ctx context.Context, id string, changes internal.EntryChanges) (*internal.Entry, error) {
	var entry internal.Entry
	if err := c.do(ctx, http.MethodPut, "/entries/"+url.PathEscape(id), jsonBody(changes), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/entries/"+url.PathEscape(id), nil, nil)
}

// ListEntries returns the owner's entries newest first.
func (c *Client) ListEntries(ctx context.Context, ownerID string) ([]internal.Entry, error) {
	if id := c.Identity(); id == nil || id.User.ID != ownerID {
		return nil, &internal.AuthError{Cause: fmt.Errorf("not signed in as %s", ownerID)}
	}
	var entries []internal.Entry
	if err := c.do(ctx, http.MethodGet, "/entries", nil, &entries); err != nil {
		return nil, err
	}
	internal.SortEntries(entries)
	return entries, nil
}

func (c *Client) UpsertBabyProfile(ctx context.Context, profile internal.BabyProfile) (*internal.BabyProfile, error) {
	var saved internal.BabyProfile
	if err := c.do(ctx, http.MethodPut, "/baby", jsonBody(profile), &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// GetBabyProfile returns nil without error when the user has no profile yet.
func (c *Client) GetBabyProfile(ctx context.Context) (*internal.BabyProfile, error) {
	var profile internal.BabyProfile
	err := c.do(ctx, http.MethodGet, "/baby", nil, &profile)
	if errors.Is(err, internal.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UploadAvatar sends the image as multipart field "file" and returns its public URL.
func (c *Client) UploadAvatar(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("client: read avatar: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	var out struct {
		AvatarURL string `json:"avatar_url"`
	}
	b := &body{data: buf.Bytes(), contentType: mw.FormDataContentType()}
	if err := c.do(ctx, http.MethodPost, "/avatar", b, &out); err != nil {
		return "", err
	}
	return out.AvatarURL, nil
}

func (c *Client) Dashboard(ctx context.Context) (*internal.Dashboard, error) {
	var d internal.Dashboard
	if err := c.do(ctx, http.MethodGet, "/dashboard", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
