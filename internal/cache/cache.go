// Package cache is the client-side key/value store used for session bootstrap
// and an offline-readable copy of entries and the baby profile.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
)

// Cache is synchronous and never evicts or expires keys.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
}

type FileCache struct {
	mu     sync.RWMutex
	data   map[string][]byte
	fs     afero.Fs
	path   string
	logger internal.Logger

	delay     time.Duration
	signal    chan struct{}
	shutdown  chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

type Option func(*FileCache)

// WithSaveDelay sets how long writes are coalesced before hitting disk.
func WithSaveDelay(d time.Duration) Option {
	return func(c *FileCache) { c.delay = d }
}

// Open loads the cache document at file; a missing or empty file is an empty cache.
func Open(fs afero.Fs, file string, logger internal.Logger, opts ...Option) (*FileCache, error) {
	c := &FileCache{
		data:     make(map[string][]byte),
		fs:       fs,
		path:     file,
		logger:   logger,
		delay:    250 * time.Millisecond,
		signal:   make(chan struct{}, 1),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.load(); err != nil {
		return nil, fmt.Errorf("cache: load %s: %w", file, err)
	}
	go c.run()
	return c, nil
}

func (c *FileCache) load() error {
	f, err := c.fs.Open(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&c.data); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if c.data == nil {
		c.data = make(map[string][]byte)
	}
	return nil
}

func (c *FileCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

func (c *FileCache) Set(key string, value []byte) {
	c.mu.Lock()
	c.data[key] = append([]byte(nil), value...)
	c.mu.Unlock()
	c.notify()
}

func (c *FileCache) Delete(key string) {
	c.mu.Lock()
	_, ok := c.data[key]
	delete(c.data, key)
	c.mu.Unlock()
	if ok {
		c.notify()
	}
}

func (c *FileCache) notify() {
	select {
	case c.signal <- struct{}{}:
	default:
	}
}

func (c *FileCache) run() {
	defer close(c.done)
	timer := time.NewTimer(c.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-c.signal:
			timer.Reset(c.delay)
		case <-timer.C:
			if err := c.Flush(); err != nil {
				c.logger.Errorf("cache: error saving %s: %v", c.path, err)
			}
		case <-c.shutdown:
			return
		}
	}
}

// Flush writes the whole document through a temp file and rename.
func (c *FileCache) Flush() error {
	c.mu.RLock()
	raw, err := json.MarshalIndent(c.data, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return err
	}
	if dir := path.Dir(c.path); dir != "." {
		if err := c.fs.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	tmp := c.path + ".tmp"
	if err := afero.WriteFile(c.fs, tmp, raw, 0o600); err != nil {
		c.fs.Remove(tmp)
		return err
	}
	return c.fs.Rename(tmp, c.path)
}

// Close stops the background saver and flushes synchronously.
func (c *FileCache) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.shutdown)
		<-c.done
		err = c.Flush()
	})
	return err
}

// Memory is a Cache without persistence.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory { return &Memory{data: make(map[string][]byte)} }

func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

func (m *Memory) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
}

func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

var (
	_ Cache = (*FileCache)(nil)
	_ Cache = (*Memory)(nil)
)
