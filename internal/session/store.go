package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// Persisted record file names. These mirror the storage keys of the original
// web client so an exported snapshot stays recognizable.
const (
	userFile     = "brainora_user.json"
	sessionsFile = "brainora_chats.json"
	lockFile     = ".brainora.lock"
)

// Direction selects a reorder neighbor.
type Direction int

// Reorder directions.
const (
	Up Direction = iota
	Down
)

// Store holds the ordered session list and the user record, mirroring both
// to disk. Persistence is a full-snapshot replace on every write: last
// commit wins, and no durability is promised for in-flight exchanges.
//
// Store is safe for concurrent use; the conversation controller is the only
// writer in practice.
type Store struct {
	mu     sync.RWMutex
	dir    string
	fl     *flock.Flock
	logger *slog.Logger

	user     *User
	sessions []*Session // newest first unless the user reorders
}

// Open loads the store from dir, creating the directory if needed.
// A missing sessions or user record is not an error. A sessions record left
// behind without a user record (interrupted sign-out) is discarded.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &Store{
		dir:    dir,
		fl:     flock.New(filepath.Join(dir, lockFile)),
		logger: logger,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	if err := readJSON(filepath.Join(s.dir, userFile), &s.user); err != nil {
		return fmt.Errorf("reading user record: %w", err)
	}

	if s.user == nil {
		// Signed out: the sessions record must not survive.
		if err := os.Remove(filepath.Join(s.dir, sessionsFile)); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("removing orphaned sessions record", "error", err)
		}
		return nil
	}

	if err := readJSON(filepath.Join(s.dir, sessionsFile), &s.sessions); err != nil {
		return fmt.Errorf("reading sessions record: %w", err)
	}
	s.logger.Debug("store loaded", "sessions", len(s.sessions), "user", s.user.Email)
	return nil
}

// User returns the signed-in user, if any.
func (s *Store) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// SignIn stores the user record and persists it. An empty ID is assigned.
// Existing sessions are kept and become persistent again.
func (s *Store) SignIn(u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.user = &u
	if err := s.writeJSON(userFile, s.user); err != nil {
		return fmt.Errorf("writing user record: %w", err)
	}
	return s.persistSessions()
}

// SignOut removes the user record and, as a side effect, the sessions
// record. In-memory sessions are cleared too.
func (s *Store) SignOut() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	s.sessions = nil
	for _, name := range []string{userFile, sessionsFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", name, err)
		}
	}
	return nil
}

// Sessions returns a snapshot copy of the ordered session list.
func (s *Store) Sessions() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Session, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.Clone()
	}
	return out
}

// Session returns a copy of the session with the given id.
func (s *Store) Session(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.index(id); i >= 0 {
		return s.sessions[i].Clone(), true
	}
	return nil, false
}

// Prepend inserts a new session at the head of the list and persists the
// snapshot.
func (s *Store) Prepend(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = append([]*Session{sess.Clone()}, s.sessions...)
	return s.persistSessions()
}

// ReplaceMessages overwrites the stored message history of a session with
// the given list and persists the snapshot.
func (s *Store) ReplaceMessages(id string, msgs []Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return ErrNotFound
	}
	s.sessions[i].Messages = CopyMessages(msgs)
	return s.persistSessions()
}

// Delete removes a session. Deleting an unknown id returns ErrNotFound.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return ErrNotFound
	}
	s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
	return s.persistSessions()
}

// Reorder swaps the session with its immediate neighbor in the given
// direction. Unknown ids and list boundaries are no-ops; list length is
// invariant.
func (s *Store) Reorder(id string, dir Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return nil
	}
	switch {
	case dir == Up && i > 0:
		s.sessions[i], s.sessions[i-1] = s.sessions[i-1], s.sessions[i]
	case dir == Down && i < len(s.sessions)-1:
		s.sessions[i], s.sessions[i+1] = s.sessions[i+1], s.sessions[i]
	default:
		return nil
	}
	return s.persistSessions()
}

// index returns the position of id, or -1. Caller holds the lock.
func (s *Store) index(id string) int {
	for i, sess := range s.sessions {
		if sess.ID == id {
			return i
		}
	}
	return -1
}

// persistSessions writes the sessions snapshot while signed in. Signed-out
// mutations stay in memory only. Caller holds the lock.
func (s *Store) persistSessions() error {
	if s.user == nil {
		s.logger.Debug("signed out, sessions snapshot not persisted")
		return nil
	}
	if err := s.writeJSON(sessionsFile, s.sessions); err != nil {
		return fmt.Errorf("writing sessions record: %w", err)
	}
	return nil
}

// writeJSON atomically replaces a record under the cross-process file lock.
func (s *Store) writeJSON(name string, v any) error {
	if err := s.fl.Lock(); err != nil {
		return fmt.Errorf("acquiring store lock: %w", err)
	}
	defer func() {
		if err := s.fl.Unlock(); err != nil {
			s.logger.Warn("releasing store lock", "error", err)
		}
	}()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// readJSON decodes a record into v. A missing file leaves v untouched.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, v)
}
