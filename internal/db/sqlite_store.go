package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/soaringjerry/PainMap/internal/api"
)

type SQLiteStore struct {
	db  *sql.DB
	log *zap.Logger
	now func() time.Time
}

var sqlitePragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
}

func NewSQLiteStore(db *sql.DB, log *zap.Logger) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	if log == nil {
		log = zap.NewNop()
	}
	for _, stmt := range sqlitePragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{
		db:  db,
		log: log.With(zap.String("component", "sqlite_store")),
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

// Open creates the database file if needed, applies migrations and returns
// a ready store. The caller owns the returned *sql.DB.
func Open(sqlitePath, migrationsDir string, log *zap.Logger) (*SQLiteStore, *sql.DB, error) {
	if strings.TrimSpace(sqlitePath) == "" {
		return nil, nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(sqlitePath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", filepath.ToSlash(sqlitePath))
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := RunMigrations(sqlDB, migrationsDir); err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}
	store, err := NewSQLiteStore(sqlDB, log)
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}
	return store, sqlDB, nil
}

func (s *SQLiteStore) logErr(op string, err error) {
	if err != nil {
		s.log.Error("sqlite store error", zap.String("op", op), zap.Error(err))
	}
}

func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func (s *SQLiteStore) AddUser(u *api.User) {
	if u == nil {
		return
	}
	created := u.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	_, err := s.db.Exec(`INSERT INTO users (id, email, pass_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, strings.ToLower(u.Email), u.PassHash, created)
	s.logErr("AddUser", err)
}

func (s *SQLiteStore) FindUserByEmail(email string) *api.User {
	row := s.db.QueryRow(`SELECT id, email, pass_hash, created_at FROM users WHERE email = ?`, strings.ToLower(email))
	var u api.User
	if err := row.Scan(&u.ID, &u.Email, &u.PassHash, &u.CreatedAt); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logErr("FindUserByEmail", err)
		}
		return nil
	}
	return &u
}

func (s *SQLiteStore) AddEntry(ctx context.Context, e *api.Entry) (err error) {
	if e == nil {
		return errors.New("nil entry")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add entry: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO entries (id, user_id, variant, notes, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, toNullString(e.UserID), e.Variant, e.Notes, e.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("insert entry %s: %w", e.ID, err)
	}
	for i, p := range e.Points {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO entry_points (entry_id, seq, point_id, x, y, intensity, body_part) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ID, i, p.ID, p.X, p.Y, p.Intensity, p.BodyPart); err != nil {
			return fmt.Errorf("insert point %s/%d: %w", e.ID, i, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit entry %s: %w", e.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetEntry(ctx context.Context, id string) (*api.Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, user_id, variant, notes, created_at FROM entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %s: %w", id, err)
	}
	points, err := s.loadPoints(ctx, `SELECT entry_id, point_id, x, y, intensity, body_part FROM entry_points WHERE entry_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	e.Points = points[e.ID]
	return e, nil
}

func (s *SQLiteStore) ListEntriesByUser(ctx context.Context, userID string) ([]*api.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, variant, notes, created_at FROM entries WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()
	var out []*api.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}
	points, err := s.loadPoints(ctx,
		`SELECT p.entry_id, p.point_id, p.x, p.y, p.intensity, p.body_part
		   FROM entry_points p JOIN entries e ON e.id = p.entry_id
		  WHERE e.user_id = ? ORDER BY p.entry_id, p.seq`, userID)
	if err != nil {
		return nil, err
	}
	for _, e := range out {
		e.Points = points[e.ID]
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (*api.Entry, error) {
	var (
		e    api.Entry
		user sql.NullString
	)
	if err := sc.Scan(&e.ID, &user, &e.Variant, &e.Notes, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.UserID = user.String
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}

func (s *SQLiteStore) loadPoints(ctx context.Context, query string, arg any) (map[string][]api.EntryPoint, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("load points: %w", err)
	}
	defer rows.Close()
	out := map[string][]api.EntryPoint{}
	for rows.Next() {
		var (
			entryID string
			p       api.EntryPoint
		)
		if err := rows.Scan(&entryID, &p.ID, &p.X, &p.Y, &p.Intensity, &p.BodyPart); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		out[entryID] = append(out[entryID], p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetPreference(ctx context.Context, owner, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE owner = ? AND key = ?`, owner, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get preference %s: %w", key, err)
	}
	return v, true, nil
}

func (s *SQLiteStore) SetPreference(ctx context.Context, owner, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (owner, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(owner, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		owner, key, value, s.now())
	if err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

var _ api.Store = (*SQLiteStore)(nil)
