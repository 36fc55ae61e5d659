package services

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/soaringjerry/PainMap/internal/bodymap"
	"github.com/soaringjerry/PainMap/internal/dial"
)

// PainPoint is one marked location. X and Y are percentages of the
// silhouette's bounding box.
type PainPoint struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Intensity int     `json:"intensity"`
	BodyPart  string  `json:"body_part"`
}

// Entry is an immutable submission of confirmed points.
type Entry struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id,omitempty"`
	Variant   string      `json:"variant"`
	Points    []PainPoint `json:"points"`
	Notes     string      `json:"notes"`
	Timestamp time.Time   `json:"timestamp"`
}

// MaxIntensity is the highest point intensity, or 0 for an empty entry.
func (e *Entry) MaxIntensity() int {
	max := 0
	for i, p := range e.Points {
		if i == 0 || p.Intensity > max {
			max = p.Intensity
		}
	}
	return max
}

type SessionState string

const (
	StateIdle      SessionState = "idle"
	StateAdjusting SessionState = "adjusting"
)

// TapOutcome says what a body tap did.
type TapOutcome string

const (
	TapOpened    TapOutcome = "opened"
	TapConfirmed TapOutcome = "confirmed"
)

// EntryPersister receives submitted entries.
type EntryPersister interface {
	PersistEntry(ctx context.Context, e *Entry) error
}

const (
	pendingPrefix   = "tmp"
	confirmedPrefix = "pt"
)

// Session is the marking state for one interactive surface. It has no
// internal locking; callers serialise access.
type Session struct {
	variant    bodymap.Variant
	classifier *bodymap.Classifier
	mapper     dial.Mapper

	pending   *PainPoint
	confirmed []PainPoint
	notes     string
	dragging  bool
	seq       uint64

	now     func() time.Time
	entryID func() string
}

type SessionOptions struct {
	Variant    bodymap.Variant
	Classifier *bodymap.Classifier
	Mapper     dial.Mapper
}

func NewSession(opts SessionOptions) *Session {
	s := &Session{
		variant:    bodymap.ParseVariant(string(opts.Variant)),
		classifier: opts.Classifier,
		mapper:     opts.Mapper,
		now:        func() time.Time { return time.Now().UTC() },
		entryID:    uuid.NewString,
	}
	if s.classifier == nil {
		s.classifier = bodymap.Default()
	}
	if s.mapper == nil {
		s.mapper = dial.NewMapper(dial.StyleRadial)
	}
	return s
}

func (s *Session) nextID(prefix string) string {
	s.seq++
	return prefix + "-" + strconv.FormatUint(s.seq, 10)
}

func (s *Session) State() SessionState {
	if s.pending != nil {
		return StateAdjusting
	}
	return StateIdle
}

func (s *Session) Variant() bodymap.Variant { return s.variant }
func (s *Session) Mapper() dial.Mapper      { return s.mapper }
func (s *Session) Notes() string            { return s.notes }
func (s *Session) Dragging() bool           { return s.dragging }

func (s *Session) Pending() (PainPoint, bool) {
	if s.pending == nil {
		return PainPoint{}, false
	}
	return *s.pending, true
}

func (s *Session) Confirmed() []PainPoint {
	out := make([]PainPoint, len(s.confirmed))
	copy(out, s.confirmed)
	return out
}

// Tap handles a tap on the body surface. While a point is pending the tap
// confirms it and its coordinates are ignored.
func (s *Session) Tap(x, y float64) TapOutcome {
	if s.pending != nil {
		s.Confirm()
		return TapConfirmed
	}
	x, y = bodymap.ClampPercent(x), bodymap.ClampPercent(y)
	s.pending = &PainPoint{
		ID:        s.nextID(pendingPrefix),
		X:         x,
		Y:         y,
		Intensity: s.mapper.Range().Min,
		BodyPart:  s.classifier.Classify(x, y),
	}
	return TapOpened
}

// Adjust sets the pending intensity, clamped. It reports false when idle.
func (s *Session) Adjust(level int) bool {
	if s.pending == nil {
		return false
	}
	s.pending.Intensity = s.mapper.Range().Clamp(level)
	return true
}

// DialDown engages the dial at p and applies the mapped level.
func (s *Session) DialDown(p dial.Point) bool {
	if s.pending == nil {
		return false
	}
	s.dragging = true
	return s.Adjust(s.mapper.Level(p))
}

// DialMove applies p only while the dial is engaged.
func (s *Session) DialMove(p dial.Point) bool {
	if !s.dragging || s.pending == nil {
		return false
	}
	return s.Adjust(s.mapper.Level(p))
}

func (s *Session) DialUp() { s.dragging = false }

// Confirm moves the pending point into the confirmed list under a new id.
func (s *Session) Confirm() bool {
	if s.pending == nil {
		return false
	}
	pt := *s.pending
	pt.ID = s.nextID(confirmedPrefix)
	s.confirmed = append(s.confirmed, pt)
	s.pending = nil
	s.dragging = false
	return true
}

// Cancel discards the pending point.
func (s *Session) Cancel() bool {
	if s.pending == nil {
		return false
	}
	s.pending = nil
	s.dragging = false
	return true
}

// ClearAll drops the pending point and every confirmed point. Notes stay.
func (s *Session) ClearAll() {
	s.pending = nil
	s.dragging = false
	s.confirmed = nil
}

func (s *Session) SetNotes(notes string) { s.notes = notes }

// Submit hands a snapshot of the confirmed points to p. Nothing happens when
// no point is confirmed. Local state is reset only after p accepts the
// entry; on error the session is left as it was.
func (s *Session) Submit(ctx context.Context, userID string, p EntryPersister) (*Entry, error) {
	if len(s.confirmed) == 0 {
		return nil, nil
	}
	if p == nil {
		return nil, ErrPersistenceUnavailable
	}
	entry := &Entry{
		ID:        s.entryID(),
		UserID:    userID,
		Variant:   string(s.variant),
		Points:    s.Confirmed(),
		Notes:     s.notes,
		Timestamp: s.now(),
	}
	if err := p.PersistEntry(ctx, entry); err != nil {
		return nil, err
	}
	s.confirmed = nil
	s.notes = ""
	s.pending = nil
	s.dragging = false
	return entry, nil
}
