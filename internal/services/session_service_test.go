package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soaringjerry/PainMap/internal/dial"
)

func newTestSessionService(p EntryPersister) *SessionService {
	svc := NewSessionService(p, nil)
	n := 0
	svc.idGen = func() string { n++; return "S" + string(rune('0'+n)) }
	return svc
}

func TestSessionServiceLifecycle(t *testing.T) {
	p := &recordingPersister{}
	svc := newTestSessionService(p)

	snap, err := svc.Create(CreateSessionInput{Variant: "female", DialStyle: "linear"})
	require.NoError(t, err)
	assert.Equal(t, "S1", snap.ID)
	assert.Equal(t, "/silhouettes/female.svg", snap.Asset)
	assert.Equal(t, "faces", snap.Palette)
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, snap.Confirmed)

	snap, outcome, err := svc.Tap("S1", 45, 5)
	require.NoError(t, err)
	assert.Equal(t, TapOpened, outcome)
	require.NotNil(t, snap.Pending)
	assert.Equal(t, "Head", snap.Pending.BodyPart)
	assert.Equal(t, "content", snap.Pending.Appearance.From)

	snap, err = svc.Adjust("S1", 10)
	require.NoError(t, err)
	assert.Equal(t, "agony", snap.Pending.Appearance.To)
	assert.Equal(t, 1.0, snap.Pending.Appearance.T)
	assert.Equal(t, dial.Point{X: 190, Y: 50}, snap.Pending.Knob)

	_, outcome, err = svc.Tap("S1", 80, 80)
	require.NoError(t, err)
	assert.Equal(t, TapConfirmed, outcome)

	snap, err = svc.SetNotes("S1", "sharp")
	require.NoError(t, err)
	require.Len(t, snap.Confirmed, 1)
	assert.Equal(t, "#c91111", snap.Confirmed[0].Color)

	entry, snap, err := svc.Submit(context.Background(), "S1", Caller{UserID: "u1"})
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "u1", entry.UserID)
	assert.Equal(t, "female", entry.Variant)
	assert.Empty(t, snap.Confirmed)
	assert.Len(t, p.entries, 1)

	entry, _, err = svc.Submit(context.Background(), "S1", Caller{UserID: "u1"})
	require.NoError(t, err)
	assert.Nil(t, entry)

	require.NoError(t, svc.Delete("S1"))
	_, err = svc.Get("S1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, svc.Delete("S1"), ErrSessionNotFound)
}

func TestSessionServiceDialGestures(t *testing.T) {
	svc := newTestSessionService(&recordingPersister{})
	snap, err := svc.Create(CreateSessionInput{})
	require.NoError(t, err)
	assert.Equal(t, dial.StyleRadial, snap.DialStyle)
	assert.Equal(t, "traffic", snap.Palette)

	_, _, err = svc.Tap(snap.ID, 50, 50)
	require.NoError(t, err)
	snap, err = svc.DialDown(snap.ID, dial.Point{X: 50, Y: 90})
	require.NoError(t, err)
	assert.True(t, snap.Dragging)
	assert.Equal(t, 5, snap.Pending.Intensity)

	snap, err = svc.DialMove(snap.ID, dial.Point{X: 90, Y: 50})
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Pending.Intensity)

	snap, err = svc.DialUp(snap.ID)
	require.NoError(t, err)
	assert.False(t, snap.Dragging)

	snap, err = svc.Cancel(snap.ID)
	require.NoError(t, err)
	assert.Nil(t, snap.Pending)

	_, _, _ = svc.Tap(snap.ID, 50, 50)
	_, _ = svc.Confirm(snap.ID)
	snap, err = svc.ClearAll(snap.ID)
	require.NoError(t, err)
	assert.Empty(t, snap.Confirmed)
}

func TestSessionServiceSubmitFailureKeepsPoints(t *testing.T) {
	svc := newTestSessionService(&recordingPersister{err: errors.New("offline")})
	snap, _ := svc.Create(CreateSessionInput{})
	_, _, _ = svc.Tap(snap.ID, 50, 50)
	_, _ = svc.Confirm(snap.ID)

	_, _, err := svc.Submit(context.Background(), snap.ID, Caller{})
	require.Error(t, err)
	snap, err = svc.Get(snap.ID)
	require.NoError(t, err)
	assert.Len(t, snap.Confirmed, 1)
}

func TestSessionServiceUnknownID(t *testing.T) {
	svc := newTestSessionService(nil)
	_, _, err := svc.Tap("nope", 1, 1)
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, ErrorNotFound, se.Code)
}

func TestSessionServiceSweep(t *testing.T) {
	svc := newTestSessionService(nil)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	old, _ := svc.Create(CreateSessionInput{})
	now = now.Add(time.Hour)
	fresh, _ := svc.Create(CreateSessionInput{})

	assert.Equal(t, 1, svc.Sweep(30*time.Minute))
	_, err := svc.Get(old.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestSessionServiceLimit(t *testing.T) {
	svc := newTestSessionService(nil)
	svc.maxSessions = 1
	_, err := svc.Create(CreateSessionInput{})
	require.NoError(t, err)
	_, err = svc.Create(CreateSessionInput{})
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, ErrorConflict, se.Code)
}

func TestSessionServiceConcurrentTaps(t *testing.T) {
	svc := NewSessionService(&recordingPersister{}, nil)
	snap, err := svc.Create(CreateSessionInput{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = svc.Tap(snap.ID, 50, 50)
		}()
	}
	wg.Wait()
	snap, err = svc.Get(snap.ID)
	require.NoError(t, err)
	// Taps alternate open/confirm, so 50 taps leave 25 confirmed and none pending.
	assert.Len(t, snap.Confirmed, 25)
	assert.Nil(t, snap.Pending)
}

type blockingPersister struct {
	entered chan struct{}
	release chan struct{}
}

func (p *blockingPersister) PersistEntry(ctx context.Context, _ *Entry) error {
	close(p.entered)
	select {
	case <-p.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestSweepDoesNotBlockOtherSessions(t *testing.T) {
	p := &blockingPersister{entered: make(chan struct{}), release: make(chan struct{})}
	svc := newTestSessionService(p)
	a, _ := svc.Create(CreateSessionInput{})
	b, _ := svc.Create(CreateSessionInput{})
	_, _, _ = svc.Tap(a.ID, 50, 50)
	_, _ = svc.Confirm(a.ID)

	submitted := make(chan error, 1)
	go func() {
		_, _, err := svc.Submit(context.Background(), a.ID, Caller{})
		submitted <- err
	}()
	<-p.entered

	swept := make(chan int, 1)
	go func() { swept <- svc.Sweep(time.Hour) }()

	got := make(chan error, 1)
	go func() {
		_, err := svc.Get(b.ID)
		got <- err
	}()
	select {
	case err := <-got:
		require.NoError(t, err)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Get on another session blocked behind an in-flight submit")
	}
	select {
	case n := <-swept:
		assert.Equal(t, 0, n)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Sweep blocked behind an in-flight submit")
	}

	close(p.release)
	require.NoError(t, <-submitted)
}

func TestRemovedSessionRejectsPendingOperation(t *testing.T) {
	p := &recordingPersister{}
	svc := newTestSessionService(p)
	snap, _ := svc.Create(CreateSessionInput{})
	_, _, _ = svc.Tap(snap.ID, 50, 50)
	_, _ = svc.Confirm(snap.ID)

	// Resolved before the delete, applied after it.
	ms, err := svc.lookup(snap.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(snap.ID))
	_, err = svc.apply(ms, func(ms *managedSession) error {
		_, err := ms.session.Submit(context.Background(), "", p)
		return err
	})
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Empty(t, p.entries)

	// Same for a sweep.
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	old, _ := svc.Create(CreateSessionInput{})
	ms, err = svc.lookup(old.ID)
	require.NoError(t, err)
	now = now.Add(time.Hour)
	require.Equal(t, 1, svc.Sweep(time.Minute))
	_, err = svc.apply(ms, nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSubmitRequiresCreator(t *testing.T) {
	p := &recordingPersister{}
	svc := newTestSessionService(p)
	confirmed := func(creator Caller) string {
		snap, err := svc.Create(CreateSessionInput{Creator: creator})
		require.NoError(t, err)
		_, _, _ = svc.Tap(snap.ID, 50, 50)
		_, _ = svc.Confirm(snap.ID)
		return snap.ID
	}

	id := confirmed(Caller{DeviceID: "d1"})
	_, _, err := svc.Submit(context.Background(), id, Caller{DeviceID: "d2"})
	se, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, ErrorForbidden, se.Code)
	snap, err := svc.Get(id)
	require.NoError(t, err)
	assert.Len(t, snap.Confirmed, 1)

	// Signing in mid-session keeps the device match.
	entry, _, err := svc.Submit(context.Background(), id, Caller{UserID: "u1", DeviceID: "d1"})
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "u1", entry.UserID)

	id = confirmed(Caller{UserID: "u1"})
	_, _, err = svc.Submit(context.Background(), id, Caller{UserID: "u2", DeviceID: "d1"})
	assert.Error(t, err)
	entry, _, err = svc.Submit(context.Background(), id, Caller{UserID: "u1"})
	require.NoError(t, err)
	require.NotNil(t, entry)

	id = confirmed(Caller{})
	entry, _, err = svc.Submit(context.Background(), id, Caller{DeviceID: "anyone"})
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Len(t, p.entries, 3)
}
