package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/soaringjerry/PainMap/internal/appearance"
)

// EntryStore persists submitted entries. List results may come back in any
// order; the service sorts them.
type EntryStore interface {
	AddEntry(ctx context.Context, e *Entry) error
	ListEntriesByUser(ctx context.Context, userID string) ([]*Entry, error)
	GetEntry(ctx context.Context, id string) (*Entry, error)
}

const (
	timelineSwatches = 5
	progressWindow   = 7
)

type EntryService struct {
	store   EntryStore
	palette *appearance.Palette
	log     *zap.Logger
}

func NewEntryService(store EntryStore, log *zap.Logger) *EntryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &EntryService{store: store, palette: appearance.TrafficLight(), log: log}
}

// PersistEntry stores a submitted entry. Anonymous entries are accepted
// but never listed.
func (s *EntryService) PersistEntry(ctx context.Context, e *Entry) error {
	if e == nil || strings.TrimSpace(e.ID) == "" {
		return NewInvalidError("entry id required")
	}
	if len(e.Points) == 0 {
		return NewInvalidError("entry has no points")
	}
	if err := s.store.AddEntry(ctx, e); err != nil {
		s.log.Error("persist entry failed", zap.String("entry_id", e.ID), zap.Error(err))
		return err
	}
	s.log.Info("entry saved",
		zap.String("entry_id", e.ID),
		zap.Int("points", len(e.Points)),
		zap.Int("max_intensity", e.MaxIntensity()),
		zap.Bool("anonymous", e.UserID == ""),
	)
	return nil
}

// History returns the caller's entries newest first.
func (s *EntryService) History(ctx context.Context, userID string) ([]*Entry, error) {
	if userID == "" {
		return nil, NewUnauthorizedError("sign in to view history")
	}
	entries, err := s.store.ListEntriesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries, nil
}

func (s *EntryService) Get(ctx context.Context, userID, id string) (*Entry, error) {
	if userID == "" {
		return nil, NewUnauthorizedError("sign in to view history")
	}
	e, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, NewNotFoundError("entry not found")
	}
	if e.UserID != userID {
		return nil, NewForbiddenError("forbidden")
	}
	return e, nil
}

func (s *EntryService) Timeline(ctx context.Context, userID string) ([]TimelineItem, error) {
	entries, err := s.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]TimelineItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, s.summarize(e))
	}
	return items, nil
}

func (s *EntryService) summarize(e *Entry) TimelineItem {
	item := TimelineItem{
		ID:           e.ID,
		Timestamp:    e.Timestamp,
		Variant:      e.Variant,
		Notes:        e.Notes,
		PointCount:   len(e.Points),
		MaxIntensity: e.MaxIntensity(),
		Swatches:     []string{},
	}
	for i, p := range e.Points {
		if i == timelineSwatches {
			item.More = len(e.Points) - timelineSwatches
			break
		}
		item.Swatches = append(item.Swatches, s.palette.Color(p.Intensity).Hex())
	}
	return item
}

// Progress charts the peak intensity of the last seven entries, oldest first.
func (s *EntryService) Progress(ctx context.Context, userID string) ([]ProgressPoint, error) {
	entries, err := s.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(entries) > progressWindow {
		entries = entries[:progressWindow]
	}
	out := make([]ProgressPoint, len(entries))
	for i, e := range entries {
		v := e.MaxIntensity()
		out[len(entries)-1-i] = ProgressPoint{
			EntryID:   e.ID,
			Timestamp: e.Timestamp,
			Day:       e.Timestamp.Format("Mon"),
			Value:     v,
			Band:      intensityBand(v),
		}
	}
	return out, nil
}

func intensityBand(v int) string {
	switch {
	case v >= 7:
		return "high"
	case v >= 4:
		return "medium"
	default:
		return "low"
	}
}

// ExportCSV renders the caller's history as one row per point.
func (s *EntryService) ExportCSV(ctx context.Context, userID string) ([]byte, error) {
	entries, err := s.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows := make([]EntryRow, 0, len(entries))
	for _, e := range entries {
		for _, p := range e.Points {
			rows = append(rows, EntryRow{
				EntryID:     e.ID,
				SubmittedAt: e.Timestamp.UTC().Format(time.RFC3339),
				Variant:     e.Variant,
				Point:       p,
				Notes:       e.Notes,
			})
		}
	}
	return ExportEntriesCSV(rows)
}
