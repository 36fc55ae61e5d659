package db

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soaringjerry/PainMap/internal/api"
)

func setupMockStore(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *SQLiteStore) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	for _, p := range sqlitePragmas {
		mock.ExpectExec(regexp.QuoteMeta(p)).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	store, err := NewSQLiteStore(db, zap.NewNop())
	require.NoError(t, err)
	return db, mock, store
}

func TestNewSQLiteStorePragmaFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectExec(`PRAGMA foreign_keys`).WillReturnError(errors.New("locked"))

	_, err = NewSQLiteStore(db, nil)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddEntryRollsBackOnPointFailure(t *testing.T) {
	db, mock, store := setupMockStore(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO entries`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO entry_points`).WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	err := store.AddEntry(context.Background(), &api.Entry{
		ID:        "E1",
		Variant:   "male",
		CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Points:    []api.EntryPoint{{ID: "pt-1", X: 45, Y: 5, Intensity: 3, BodyPart: "Head"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert point E1/0")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEntryMissing(t *testing.T) {
	db, mock, store := setupMockStore(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, user_id, variant, notes, created_at FROM entries`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "variant", "notes", "created_at"}))

	e, err := store.GetEntry(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, e)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEntriesByUserAttachesPoints(t *testing.T) {
	db, mock, store := setupMockStore(t)
	defer db.Close()

	ts := time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM entries WHERE user_id = \?`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "variant", "notes", "created_at"}).
			AddRow("E2", "u1", "female", "", ts).
			AddRow("E1", "u1", "male", "knee", ts.Add(-time.Hour)))
	mock.ExpectQuery(`FROM entry_points p JOIN entries e`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"entry_id", "point_id", "x", "y", "intensity", "body_part"}).
			AddRow("E1", "pt-2", 40.0, 80.0, 6, "Left Knee").
			AddRow("E2", "pt-1", 45.0, 5.0, 2, "Head").
			AddRow("E2", "pt-3", 50.0, 50.0, 9, "Pelvis"))

	out, err := store.ListEntriesByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "E2", out[0].ID)
	assert.Len(t, out[0].Points, 2)
	assert.Equal(t, "Pelvis", out[0].Points[1].BodyPart)
	require.Len(t, out[1].Points, 1)
	assert.Equal(t, "knee", out[1].Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPreferenceUnset(t *testing.T) {
	db, mock, store := setupMockStore(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT value FROM preferences`).
		WithArgs("device:d1", "variant").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	v, ok, err := store.GetPreference(context.Background(), "device:d1", "variant")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetPreferenceUpserts(t *testing.T) {
	db, mock, store := setupMockStore(t)
	defer db.Close()
	store.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }

	mock.ExpectExec(`ON CONFLICT\(owner, key\) DO UPDATE`).
		WithArgs("user:u1", "dial_style", "linear", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.SetPreference(context.Background(), "user:u1", "dial_style", "linear"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
func TestPingReportsDatabaseFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	for _, p := range sqlitePragmas {
		mock.ExpectExec(regexp.QuoteMeta(p)).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	store, err := NewSQLiteStore(db, zap.NewNop())
	require.NoError(t, err)

	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("disk I/O error"))
	assert.NoError(t, store.Ping(context.Background()))
	assert.Error(t, store.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func openMemorySQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		t.Skipf("sqlite3 driver unavailable: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	sqlDB := openMemorySQLite(t)
	require.NoError(t, RunMigrations(sqlDB, ""))
	require.NoError(t, RunMigrations(sqlDB, ""), "second run must be a no-op")

	store, err := NewSQLiteStore(sqlDB, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	store.AddUser(&api.User{ID: "u1", Email: "Ana@Example.com", PassHash: []byte("hash")})
	u := store.FindUserByEmail("ana@example.com")
	require.NotNil(t, u)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, []byte("hash"), u.PassHash)
	assert.Nil(t, store.FindUserByEmail("nobody@example.com"))

	ts := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	entry := &api.Entry{
		ID: "E1", UserID: "u1", Variant: "female", Notes: "after run", CreatedAt: ts,
		Points: []api.EntryPoint{
			{ID: "pt-2", X: 45, Y: 5, Intensity: 7, BodyPart: "Head"},
			{ID: "pt-4", X: 40, Y: 80, Intensity: 3, BodyPart: "Left Knee"},
		},
	}
	require.NoError(t, store.AddEntry(ctx, entry))
	require.Error(t, store.AddEntry(ctx, entry), "duplicate id")
	require.NoError(t, store.AddEntry(ctx, &api.Entry{ID: "anon", Variant: "male", CreatedAt: ts}))

	got, err := store.GetEntry(ctx, "E1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entry.Points, got.Points)
	assert.True(t, got.CreatedAt.Equal(ts))

	list, err := store.ListEntriesByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "after run", list[0].Notes)

	_, ok, err := store.GetPreference(ctx, "user:u1", "variant")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, store.SetPreference(ctx, "user:u1", "variant", "male"))
	require.NoError(t, store.SetPreference(ctx, "user:u1", "variant", "female"))
	v, ok, err := store.GetPreference(ctx, "user:u1", "variant")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "female", v)
}
