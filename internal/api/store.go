package api

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

type User struct {
	ID        string
	Email     string
	PassHash  []byte
	CreatedAt time.Time
}

type Entry struct {
	ID        string
	UserID    string
	Variant   string
	Notes     string
	CreatedAt time.Time
	Points    []EntryPoint
}

type EntryPoint struct {
	ID        string
	X         float64
	Y         float64
	Intensity int
	BodyPart  string
}

var ErrDuplicateEntry = errors.New("entry already exists")

type memoryStore struct {
	mu           sync.RWMutex
	usersByEmail map[string]*User
	entries      map[string]*Entry
	entriesByUsr map[string][]string
	prefs        map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		usersByEmail: map[string]*User{},
		entries:      map[string]*Entry{},
		entriesByUsr: map[string][]string{},
		prefs:        map[string]string{},
	}
}

// NewMemoryStore returns a process-local Store.
func NewMemoryStore() Store { return newMemoryStore() }

func (s *memoryStore) AddUser(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.usersByEmail[strings.ToLower(u.Email)] = &cp
}

func (s *memoryStore) FindUserByEmail(email string) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

func cloneEntry(e *Entry) *Entry {
	cp := *e
	cp.Points = append([]EntryPoint(nil), e.Points...)
	return &cp
}

func (s *memoryStore) AddEntry(_ context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[e.ID]; ok {
		return ErrDuplicateEntry
	}
	s.entries[e.ID] = cloneEntry(e)
	if e.UserID != "" {
		s.entriesByUsr[e.UserID] = append(s.entriesByUsr[e.UserID], e.ID)
	}
	return nil
}

func (s *memoryStore) GetEntry(_ context.Context, id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, nil
	}
	return cloneEntry(e), nil
}

func (s *memoryStore) ListEntriesByUser(_ context.Context, userID string) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.entriesByUsr[userID]
	out := make([]*Entry, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneEntry(s.entries[id]))
	}
	return out, nil
}

func prefKey(owner, key string) string { return owner + "\x00" + key }

func (s *memoryStore) GetPreference(_ context.Context, owner, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.prefs[prefKey(owner, key)]
	return v, ok, nil
}

func (s *memoryStore) SetPreference(_ context.Context, owner, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[prefKey(owner, key)] = value
	return nil
}
