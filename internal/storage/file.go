package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/uendelAraujoInfnet/baby-care-webapp/internal"
)

// storedUser persists the password hash that internal.User hides from JSON.
type storedUser struct {
	internal.User
	PasswordHash string `json:"password_hash"`
}

type FileStorage struct {
	users     map[string]*internal.User        // id -> User
	sessions  map[string]*internal.Session     // token -> Session
	entries   map[string]*internal.Entry       // id -> Entry
	userIndex map[string][]*internal.Entry     // ownerID -> entries (sorted descending)
	profiles  map[string]*internal.BabyProfile // ownerID -> profile
	mu        sync.RWMutex

	usersFile    string
	sessionsFile string
	entriesFile  string
	profilesFile string

	savers       []*saver
	saveUsers    *saver
	saveSessions *saver
	saveEntries  *saver
	saveProfiles *saver
	shutdownChan chan struct{}
	closeOnce    sync.Once
	logger       internal.Logger
}

func NewFileStorage(dir string, logger internal.Logger) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create data dir: %w", err)
	}
	s := &FileStorage{
		users:        make(map[string]*internal.User),
		sessions:     make(map[string]*internal.Session),
		entries:      make(map[string]*internal.Entry),
		userIndex:    make(map[string][]*internal.Entry),
		profiles:     make(map[string]*internal.BabyProfile),
		usersFile:    filepath.Join(dir, "users.json"),
		sessionsFile: filepath.Join(dir, "sessions.json"),
		entriesFile:  filepath.Join(dir, "entries.json"),
		profilesFile: filepath.Join(dir, "profiles.json"),
		shutdownChan: make(chan struct{}),
		logger:       logger,
	}

	if err := s.load(); err != nil {
		logger.Errorf("storage: failed to load data from %s: %v", dir, err)
		return nil, err
	}

	const delay = 500 * time.Millisecond
	s.saveUsers = newSaver("users", delay, s.writeUsers)
	s.saveSessions = newSaver("sessions", delay, s.writeSessions)
	s.saveEntries = newSaver("entries", delay, s.writeEntries)
	s.saveProfiles = newSaver("profiles", delay, s.writeProfiles)
	s.savers = []*saver{s.saveUsers, s.saveSessions, s.saveEntries, s.saveProfiles}
	for _, sv := range s.savers {
		go sv.run(s.shutdownChan, logger)
	}
	return s, nil
}

func (s *FileStorage) load() error {
	var users []*storedUser
	if err := loadJSON(s.usersFile, &users); err != nil {
		return fmt.Errorf("storage: failed to load users: %w", err)
	}
	var sessions []*internal.Session
	if err := loadJSON(s.sessionsFile, &sessions); err != nil {
		return fmt.Errorf("storage: failed to load sessions: %w", err)
	}
	var entries []*internal.Entry
	if err := loadJSON(s.entriesFile, &entries); err != nil {
		return fmt.Errorf("storage: failed to load entries: %w", err)
	}
	var profiles []*internal.BabyProfile
	if err := loadJSON(s.profilesFile, &profiles); err != nil {
		return fmt.Errorf("storage: failed to load profiles: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		user := u.User
		user.PasswordHash = u.PasswordHash
		s.users[user.ID] = &user
	}
	for _, sess := range sessions {
		s.sessions[sess.Token] = sess
	}
	for _, e := range entries {
		s.entries[e.ID] = e
		s.userIndex[e.OwnerID] = append(s.userIndex[e.OwnerID], e)
	}
	for ownerID := range s.userIndex {
		sortIndex(s.userIndex[ownerID])
	}
	for _, p := range profiles {
		s.profiles[p.OwnerID] = p
	}
	return nil
}

func loadJSON[T any](path string, dst *[]T) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) writeUsers() error {
	s.mu.RLock()
	users := make([]*storedUser, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, &storedUser{User: *u, PasswordHash: u.PasswordHash})
	}
	s.mu.RUnlock()
	return atomicWriteFileJSON(s.usersFile, users)
}

func (s *FileStorage) writeSessions() error {
	s.mu.RLock()
	sessions := make([]*internal.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		cp := *sess
		sessions = append(sessions, &cp)
	}
	s.mu.RUnlock()
	return atomicWriteFileJSON(s.sessionsFile, sessions)
}

func (s *FileStorage) writeEntries() error {
	s.mu.RLock()
	entries := make([]internal.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, *e)
	}
	s.mu.RUnlock()
	return atomicWriteFileJSON(s.entriesFile, entries)
}

func (s *FileStorage) writeProfiles() error {
	s.mu.RLock()
	profiles := make([]internal.BabyProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		profiles = append(profiles, *p)
	}
	s.mu.RUnlock()
	return atomicWriteFileJSON(s.profilesFile, profiles)
}

// saver batches writes of one file to avoid frequent disk writes.
type saver struct {
	name   string
	signal chan struct{}
	done   chan struct{}
	delay  time.Duration
	save   func() error
}

func newSaver(name string, delay time.Duration, save func() error) *saver {
	return &saver{name: name, signal: make(chan struct{}, 1), done: make(chan struct{}), delay: delay, save: save}
}

// notify never blocks; pending signals coalesce.
func (sv *saver) notify() {
	select {
	case sv.signal <- struct{}{}:
	default:
	}
}

func (sv *saver) run(shutdown <-chan struct{}, logger internal.Logger) {
	defer close(sv.done)
	timer := time.NewTimer(sv.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-sv.signal:
			timer.Reset(sv.delay)
		case <-timer.C:
			if err := sv.save(); err != nil {
				logger.Errorf("storage: error saving %s: %v", sv.name, err)
			}
		case <-shutdown:
			return
		}
	}
}

// Close stops the save workers, waits for a save in progress and then writes
// every file synchronously.
func (s *FileStorage) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.shutdownChan)
		for _, sv := range s.savers {
			<-sv.done
		}
		for _, sv := range s.savers {
			if saveErr := sv.save(); saveErr != nil {
				err = errors.Join(err, fmt.Errorf("storage: save %s: %w", sv.name, saveErr))
			}
		}
	})
	return err
}

// --- UserRepository ---
func (s *FileStorage) CreateUser(ctx context.Context, user *internal.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUniqueLocked(user); err != nil {
		return err
	}
	cp := *user
	s.users[user.ID] = &cp
	s.saveUsers.notify()
	return nil
}

// checkUniqueLocked rejects a username or a non-empty email already in use.
func (s *FileStorage) checkUniqueLocked(user *internal.User) error {
	for _, u := range s.users {
		if strings.EqualFold(u.Username, user.Username) {
			return fmt.Errorf("storage: username %q: %w", user.Username, internal.ErrConflict)
		}
		if user.Email != "" && strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("storage: email %q: %w", user.Email, internal.ErrConflict)
		}
	}
	return nil
}

func (s *FileStorage) EnsureUser(ctx context.Context, user *internal.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return nil
	}
	if err := s.checkUniqueLocked(user); err != nil {
		return err
	}
	cp := *user
	cp.PasswordHash = ""
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.users[user.ID] = &cp
	s.saveUsers.notify()
	return nil
}

func (s *FileStorage) GetUserByID(ctx context.Context, id string) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, &internal.NotFoundError{Resource: "user", ID: id}
	}
	cp := *u
	return &cp, nil
}

func (s *FileStorage) GetUserByLogin(ctx context.Context, login string) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, login) || strings.EqualFold(u.Email, login) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, &internal.NotFoundError{Resource: "user", ID: login}
}

func (s *FileStorage) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return &internal.NotFoundError{Resource: "user", ID: userID}
	}
	u.AvatarURL = avatarURL
	s.saveUsers.notify()
	return nil
}

// --- SessionRepository ---
func (s *FileStorage) SaveSession(ctx context.Context, session *internal.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	s.sessions[session.Token] = &cp
	s.saveSessions.notify()
	return nil
}

func (s *FileStorage) GetSession(ctx context.Context, token string) (*internal.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, &internal.NotFoundError{Resource: "session", ID: "token"}
	}
	cp := *sess
	return &cp, nil
}

func (s *FileStorage) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	s.saveSessions.notify()
	return nil
}

// --- EntryRepository ---
func (s *FileStorage) InsertEntry(ctx context.Context, entry *internal.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[entry.ID]; exists {
		return fmt.Errorf("storage: entry %s: %w", entry.ID, internal.ErrConflict)
	}

	cp := *entry
	s.entries[entry.ID] = &cp
	entries := s.userIndex[entry.OwnerID]
	inserted := false
	for i, existing := range entries {
		if existing.CreatedAt.Before(cp.CreatedAt) {
			entries = append(entries[:i], append([]*internal.Entry{&cp}, entries[i:]...)...)
			inserted = true
			break
		}
	}
	if !inserted {
		entries = append(entries, &cp)
	}
	s.userIndex[entry.OwnerID] = entries
	s.saveEntries.notify()
	return nil
}

func (s *FileStorage) UpdateEntry(ctx context.Context, entry *internal.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.entries[entry.ID]
	if !ok || existing.OwnerID != entry.OwnerID {
		return &internal.NotFoundError{Resource: "entry", ID: entry.ID}
	}
	// The index shares the pointer, so ordering is unaffected.
	existing.Observation = entry.Observation
	existing.Payload = entry.Payload
	s.saveEntries.notify()
	return nil
}

func (s *FileStorage) DeleteEntry(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.entries[id]
	if !ok || existing.OwnerID != ownerID {
		return &internal.NotFoundError{Resource: "entry", ID: id}
	}
	delete(s.entries, id)
	entries := s.userIndex[ownerID]
	for i, e := range entries {
		if e.ID == id {
			s.userIndex[ownerID] = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	s.saveEntries.notify()
	return nil
}

func (s *FileStorage) GetEntry(ctx context.Context, ownerID, id string) (*internal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok || e.OwnerID != ownerID {
		return nil, &internal.NotFoundError{Resource: "entry", ID: id}
	}
	cp := *e
	return &cp, nil
}

func (s *FileStorage) ListEntries(ctx context.Context, ownerID string) ([]internal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entriesPtr, ok := s.userIndex[ownerID]
	if !ok {
		return []internal.Entry{}, nil
	}
	entries := make([]internal.Entry, len(entriesPtr))
	for i, e := range entriesPtr {
		entries[i] = *e
	}
	return entries, nil
}

// --- ProfileRepository ---
func (s *FileStorage) UpsertProfile(ctx context.Context, profile *internal.BabyProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *profile
	s.profiles[profile.OwnerID] = &cp
	s.saveProfiles.notify()
	return nil
}

func (s *FileStorage) GetProfile(ctx context.Context, ownerID string) (*internal.BabyProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[ownerID]
	if !ok {
		return nil, &internal.NotFoundError{Resource: "baby profile", ID: ownerID}
	}
	cp := *p
	return &cp, nil
}

func sortIndex(entries []*internal.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}

// --- Compile-time assertions ---
var _ UserRepository = (*FileStorage)(nil)
var _ SessionRepository = (*FileStorage)(nil)
var _ EntryRepository = (*FileStorage)(nil)
var _ ProfileRepository = (*FileStorage)(nil)
