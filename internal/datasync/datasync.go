// Package datasync loads client state cache first and falls back to the
// remote store, seeding the cache with what it fetched.
package datasync

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
	"github.com/uendelAraujoInfnet/baby-care-webapp/internal/cache"
)

// Remote is the slice of the remote store client used for startup loads.
type Remote interface {
	ListEntries(ctx context.Context, ownerID string) ([]internal.Entry, error)
	GetBabyProfile(ctx context.Context) (*internal.BabyProfile, error)
}

func EntriesKey(ownerID string) string { return "entries:" + ownerID }
func ProfileKey(ownerID string) string { return "baby:" + ownerID }

type Coordinator struct {
	cache  cache.Cache
	remote Remote
	logger internal.Logger
}

func NewCoordinator(c cache.Cache, remote Remote, logger internal.Logger) *Coordinator {
	return &Coordinator{cache: c, remote: remote, logger: logger}
}

func empty(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", "[]", "{}":
		return true
	}
	return false
}

// Load returns the cached value under key when present and non-empty. Otherwise
// it calls fetch once and writes the result back. A false result means the
// state is unknown, which callers must not read as "nothing stored".
func Load[T any](ctx context.Context, c cache.Cache, logger internal.Logger, key string, fetch func(context.Context) (T, error)) (T, bool) {
	var zero T
	if raw, ok := c.Get(key); ok && !empty(raw) {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, true
		}
		logger.Warnf("datasync: dropping undecodable cache entry %s", key)
		c.Delete(key)
	}

	v, err := fetch(ctx)
	if err != nil {
		logger.Warnf("datasync: remote load of %s failed: %v", key, err)
		return zero, false
	}
	raw, err := json.Marshal(v)
	if err != nil {
		logger.Errorf("datasync: encode %s: %v", key, err)
		return zero, false
	}
	if !empty(raw) {
		c.Set(key, raw)
	}
	return v, true
}

// Entries returns the owner's entries newest first.
func (co *Coordinator) Entries(ctx context.Context, ownerID string) ([]internal.Entry, bool) {
	entries, ok := Load(ctx, co.cache, co.logger, EntriesKey(ownerID), func(ctx context.Context) ([]internal.Entry, error) {
		return co.remote.ListEntries(ctx, ownerID)
	})
	if ok {
		internal.SortEntries(entries)
	}
	return entries, ok
}

// BabyProfile returns (nil, true) when the store confirms there is no profile yet.
func (co *Coordinator) BabyProfile(ctx context.Context, ownerID string) (*internal.BabyProfile, bool) {
	return Load(ctx, co.cache, co.logger, ProfileKey(ownerID), co.remote.GetBabyProfile)
}

// SaveEntries mirrors the owner's current sequence into the cache.
func (co *Coordinator) SaveEntries(ownerID string, entries []internal.Entry) {
	co.save(EntriesKey(ownerID), entries)
}

func (co *Coordinator) SaveProfile(ownerID string, profile *internal.BabyProfile) {
	co.save(ProfileKey(ownerID), profile)
}

func (co *Coordinator) save(key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		co.logger.Errorf("datasync: encode %s: %v", key, err)
		return
	}
	co.cache.Set(key, raw)
}

// Invalidate forces the next load of the owner's data to go remote.
func (co *Coordinator) Invalidate(ownerID string) {
	co.cache.Delete(EntriesKey(ownerID))
	co.cache.Delete(ProfileKey(ownerID))
}
