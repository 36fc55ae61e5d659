package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/soaringjerry/PainMap/internal/appearance"
	"github.com/soaringjerry/PainMap/internal/bodymap"
	"github.com/soaringjerry/PainMap/internal/dial"
)

// Marker is a confirmed point as drawn on the silhouette.
type Marker struct {
	PainPoint
	Color string `json:"color"`
}

// PendingView is the point under adjustment plus everything needed to draw
// its dial.
type PendingView struct {
	PainPoint
	Knob       dial.Point       `json:"knob"`
	Appearance appearance.State `json:"appearance"`
}

type SessionSnapshot struct {
	ID        string          `json:"id"`
	Variant   bodymap.Variant `json:"variant"`
	Asset     string          `json:"asset"`
	DialStyle dial.Style      `json:"dial_style"`
	Palette   string          `json:"palette"`
	Range     dial.Range      `json:"range"`
	State     SessionState    `json:"state"`
	Dragging  bool            `json:"dragging"`
	Pending   *PendingView    `json:"pending,omitempty"`
	Confirmed []Marker        `json:"confirmed"`
	Notes     string          `json:"notes"`
}

type CreateSessionInput struct {
	Variant   string `json:"variant"`
	DialStyle string `json:"dial_style"`
	Creator   Caller `json:"-"`
}

// Caller identifies who acts on a session. Either field may be empty.
type Caller struct {
	UserID   string
	DeviceID string
}

// admits reports whether c may submit a session created by creator.
// Sessions created without any identity are open to whoever holds the id.
func (creator Caller) admits(c Caller) bool {
	if creator.UserID == "" && creator.DeviceID == "" {
		return true
	}
	if creator.UserID != "" && c.UserID == creator.UserID {
		return true
	}
	return creator.DeviceID != "" && c.DeviceID == creator.DeviceID
}

type managedSession struct {
	mu      sync.Mutex
	id      string
	creator Caller
	style   dial.Style
	palette *appearance.Palette
	session *Session

	// touched is read by Sweep without taking mu.
	touched atomic.Int64
	removed atomic.Bool
}

// SessionService keeps interactive sessions in memory. Each session is
// guarded by its own mutex so concurrent taps on one session serialise
// while different sessions proceed independently.
type SessionService struct {
	mu          sync.Mutex
	sessions    map[string]*managedSession
	maxSessions int

	persister EntryPersister
	log       *zap.Logger
	now       func() time.Time
	idGen     func() string
}

const defaultMaxSessions = 10000

func NewSessionService(persister EntryPersister, log *zap.Logger) *SessionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionService{
		sessions:    map[string]*managedSession{},
		maxSessions: defaultMaxSessions,
		persister:   persister,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
		idGen:       uuid.NewString,
	}
}

func (s *SessionService) Create(in CreateSessionInput) (*SessionSnapshot, error) {
	style := dial.ParseStyle(in.DialStyle)
	ms := &managedSession{
		id:      s.idGen(),
		creator: in.Creator,
		style:   style,
		palette: appearance.ForStyle(style),
		session: NewSession(SessionOptions{
			Variant: bodymap.ParseVariant(in.Variant),
			Mapper:  dial.NewMapper(style),
		}),
	}
	ms.touched.Store(s.now().UnixNano())
	s.mu.Lock()
	if len(s.sessions) >= s.maxSessions {
		s.mu.Unlock()
		return nil, NewConflictError("too many active sessions")
	}
	s.sessions[ms.id] = ms
	s.mu.Unlock()
	s.log.Debug("session created", zap.String("session_id", ms.id), zap.String("dial_style", string(style)))
	return ms.snapshot(), nil
}

func (s *SessionService) lookup(id string) (*managedSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ms, nil
}

// with runs fn under the session lock and returns the resulting snapshot.
func (s *SessionService) with(id string, fn func(ms *managedSession) error) (*SessionSnapshot, error) {
	ms, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return s.apply(ms, fn)
}

// apply fails with ErrSessionNotFound when ms was deleted or swept while
// the caller waited for its lock.
func (s *SessionService) apply(ms *managedSession, fn func(ms *managedSession) error) (*SessionSnapshot, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.removed.Load() {
		return nil, ErrSessionNotFound
	}
	ms.touched.Store(s.now().UnixNano())
	if fn != nil {
		if err := fn(ms); err != nil {
			return nil, err
		}
	}
	ms.touched.Store(s.now().UnixNano())
	return ms.snapshot(), nil
}

func (s *SessionService) Get(id string) (*SessionSnapshot, error) { return s.with(id, nil) }

func (s *SessionService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	ms.removed.Store(true)
	delete(s.sessions, id)
	return nil
}

func (s *SessionService) Tap(id string, x, y float64) (*SessionSnapshot, TapOutcome, error) {
	var outcome TapOutcome
	snap, err := s.with(id, func(ms *managedSession) error {
		outcome = ms.session.Tap(x, y)
		return nil
	})
	return snap, outcome, err
}

func (s *SessionService) Adjust(id string, level int) (*SessionSnapshot, error) {
	return s.with(id, func(ms *managedSession) error {
		ms.session.Adjust(level)
		return nil
	})
}

func (s *SessionService) DialDown(id string, p dial.Point) (*SessionSnapshot, error) {
	return s.with(id, func(ms *managedSession) error {
		ms.session.DialDown(p)
		return nil
	})
}

func (s *SessionService) DialMove(id string, p dial.Point) (*SessionSnapshot, error) {
	return s.with(id, func(ms *managedSession) error {
		ms.session.DialMove(p)
		return nil
	})
}

func (s *SessionService) DialUp(id string) (*SessionSnapshot, error) {
	return s.with(id, func(ms *managedSession) error {
		ms.session.DialUp()
		return nil
	})
}

func (s *SessionService) Confirm(id string) (*SessionSnapshot, error) {
	return s.with(id, func(ms *managedSession) error {
		ms.session.Confirm()
		return nil
	})
}

func (s *SessionService) Cancel(id string) (*SessionSnapshot, error) {
	return s.with(id, func(ms *managedSession) error {
		ms.session.Cancel()
		return nil
	})
}

func (s *SessionService) ClearAll(id string) (*SessionSnapshot, error) {
	return s.with(id, func(ms *managedSession) error {
		ms.session.ClearAll()
		return nil
	})
}

func (s *SessionService) SetNotes(id, notes string) (*SessionSnapshot, error) {
	return s.with(id, func(ms *managedSession) error {
		ms.session.SetNotes(notes)
		return nil
	})
}

// Submit persists the confirmed points on behalf of caller.UserID, which
// may be empty. Only the session's creator may submit it. The returned
// entry is nil when nothing was confirmed.
func (s *SessionService) Submit(ctx context.Context, id string, caller Caller) (*Entry, *SessionSnapshot, error) {
	var entry *Entry
	snap, err := s.with(id, func(ms *managedSession) error {
		if !ms.creator.admits(caller) {
			return NewForbiddenError("session belongs to another owner")
		}
		e, err := ms.session.Submit(ctx, caller.UserID, s.persister)
		if err != nil {
			s.log.Warn("submit failed", zap.String("session_id", id), zap.Error(err))
			return err
		}
		entry = e
		return nil
	})
	return entry, snap, err
}

// Sweep drops sessions idle for longer than maxIdle and reports how many.
// It never waits on a session lock, so a slow submit cannot stall it.
func (s *SessionService) Sweep(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle).UnixNano()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, ms := range s.sessions {
		if ms.touched.Load() < cutoff {
			ms.removed.Store(true)
			delete(s.sessions, id)
			n++
		}
	}
	if n > 0 {
		s.log.Info("idle sessions swept", zap.Int("count", n))
	}
	return n
}

func (s *SessionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// snapshot must be called with ms.mu held.
func (ms *managedSession) snapshot() *SessionSnapshot {
	sess := ms.session
	mapper := sess.Mapper()
	snap := &SessionSnapshot{
		ID:        ms.id,
		Variant:   sess.Variant(),
		Asset:     sess.Variant().AssetPath(),
		DialStyle: ms.style,
		Palette:   ms.palette.Name(),
		Range:     mapper.Range(),
		State:     sess.State(),
		Dragging:  sess.Dragging(),
		Notes:     sess.Notes(),
	}
	confirmed := sess.Confirmed()
	snap.Confirmed = make([]Marker, len(confirmed))
	for i, p := range confirmed {
		snap.Confirmed[i] = Marker{PainPoint: p, Color: ms.palette.Color(p.Intensity).Hex()}
	}
	if p, ok := sess.Pending(); ok {
		snap.Pending = &PendingView{
			PainPoint:  p,
			Knob:       mapper.Position(p.Intensity),
			Appearance: ms.palette.At(float64(p.Intensity)),
		}
	}
	return snap
}
