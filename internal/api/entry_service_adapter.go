package api

import (
	"context"

	"github.com/soaringjerry/PainMap/internal/services"
)

type entryStoreAdapter struct {
	store Store
}

func newEntryStoreAdapter(store Store) services.EntryStore {
	return &entryStoreAdapter{store: store}
}

func toStoreEntry(e *services.Entry) *Entry {
	out := &Entry{ID: e.ID, UserID: e.UserID, Variant: e.Variant, Notes: e.Notes, CreatedAt: e.Timestamp}
	out.Points = make([]EntryPoint, len(e.Points))
	for i, p := range e.Points {
		out.Points[i] = EntryPoint{ID: p.ID, X: p.X, Y: p.Y, Intensity: p.Intensity, BodyPart: p.BodyPart}
	}
	return out
}

func fromStoreEntry(e *Entry) *services.Entry {
	out := &services.Entry{ID: e.ID, UserID: e.UserID, Variant: e.Variant, Notes: e.Notes, Timestamp: e.CreatedAt}
	out.Points = make([]services.PainPoint, len(e.Points))
	for i, p := range e.Points {
		out.Points[i] = services.PainPoint{ID: p.ID, X: p.X, Y: p.Y, Intensity: p.Intensity, BodyPart: p.BodyPart}
	}
	return out
}

func (a *entryStoreAdapter) AddEntry(ctx context.Context, e *services.Entry) error {
	if e == nil {
		return services.NewInvalidError("entry required")
	}
	return a.store.AddEntry(ctx, toStoreEntry(e))
}

func (a *entryStoreAdapter) GetEntry(ctx context.Context, id string) (*services.Entry, error) {
	e, err := a.store.GetEntry(ctx, id)
	if err != nil || e == nil {
		return nil, err
	}
	return fromStoreEntry(e), nil
}

func (a *entryStoreAdapter) ListEntriesByUser(ctx context.Context, userID string) ([]*services.Entry, error) {
	recs, err := a.store.ListEntriesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*services.Entry, 0, len(recs))
	for _, e := range recs {
		out = append(out, fromStoreEntry(e))
	}
	return out, nil
}

var _ services.EntryStore = (*entryStoreAdapter)(nil)
