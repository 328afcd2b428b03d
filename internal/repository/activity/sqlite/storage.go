package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"activityPlanner/internal/backup"
	"activityPlanner/internal/logger"
	"activityPlanner/internal/models/activity"
	repo "activityPlanner/internal/repository"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS activities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	"start" TEXT NOT NULL,
	"end" TEXT NOT NULL,
	note TEXT NOT NULL DEFAULT '',
	status INTEGER NOT NULL DEFAULT 0,
	tags TEXT NOT NULL DEFAULT ''
)`,
	`CREATE INDEX IF NOT EXISTS idx_start ON activities("start")`,
	`CREATE INDEX IF NOT EXISTS idx_status ON activities(status)`,
}

const selectColumns = `SELECT id, name, "start", "end", note, status, tags FROM activities`

type Storage struct {
	db     *sql.DB
	path   string
	backup backup.Backuper
	// serializes writes and the snapshot that follows an insert
	mtx sync.Mutex
}

type Option func(*Storage)

func WithBackup(b backup.Backuper) Option {
	return func(s *Storage) {
		if b != nil {
			s.backup = b
		}
	}
}

func New(ctx context.Context, dbPath string, opts ...Option) (*Storage, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		logger.Error("Repository: failed to open sqlite", err, zap.String("path", dbPath))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Storage{db: db, path: dbPath, backup: backup.Nop{}}
	for _, opt := range opts {
		opt(s)
	}

	for _, ddl := range schema {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			db.Close()
			logger.Error("Repository: failed to apply schema", err)
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	logger.Info("Repository: sqlite store opened", zap.String("path", dbPath))
	return s, nil
}

func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	logger.Info("Repository: closing sqlite store")
	return s.db.Close()
}

// Path is the database file the store writes to.
func (s *Storage) Path() string {
	return s.path
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		logger.Error("Repository: ping failed", err)
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, a *activity.Activity) error {
	start := time.Now()
	defer repo.WarnIfSlow("create", start, 50*time.Millisecond)

	s.mtx.Lock()
	defer s.mtx.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO activities (name, "start", "end", note, status, tags) VALUES (?, ?, ?, '', 0, ?)`,
		a.Name, activity.FormatTime(a.Start), activity.FormatTime(a.End), a.Tags)
	if err != nil {
		logger.Error("Repository: failed to insert activity", err)
		return fmt.Errorf("insert activity: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	a.ID = id
	a.Note = ""
	a.Status = activity.StatusPending

	backup.Quietly(ctx, s.backup)
	return nil
}

func (s *Storage) Update(ctx context.Context, a *activity.Activity) error {
	start := time.Now()
	defer repo.WarnIfSlow("update", start, 100*time.Millisecond)

	s.mtx.Lock()
	defer s.mtx.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE activities SET name = ?, "start" = ?, "end" = ?, tags = ? WHERE id = ?`,
		a.Name, activity.FormatTime(a.Start), activity.FormatTime(a.End), a.Tags, a.ID)
	if err != nil {
		logger.Error("Repository: failed to update activity", err, zap.Int64("id", a.ID))
		return fmt.Errorf("update activity: %w", err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, id int64) error {
	return s.exec(ctx, "delete", `DELETE FROM activities WHERE id = ?`, id)
}

func (s *Storage) SetStatus(ctx context.Context, id int64, status activity.Status) error {
	return s.exec(ctx, "set status", `UPDATE activities SET status = ? WHERE id = ?`, int(status), id)
}

func (s *Storage) SetNote(ctx context.Context, id int64, note string) error {
	return s.exec(ctx, "set note", `UPDATE activities SET note = ? WHERE id = ?`, note, id)
}

func (s *Storage) exec(ctx context.Context, op, query string, args ...any) error {
	start := time.Now()
	defer repo.WarnIfSlow(op, start, 100*time.Millisecond)

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		logger.Error("Repository: write failed", err, zap.String("op", op))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) Note(ctx context.Context, id int64) (string, error) {
	var note sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT note FROM activities WHERE id = ?`, id).Scan(&note)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		logger.Error("Repository: failed to read note", err, zap.Int64("id", id))
		return "", fmt.Errorf("read note: %w", err)
	}
	return note.String, nil
}

func (s *Storage) GetByID(ctx context.Context, id int64) (*activity.Activity, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return a, nil
}

func (s *Storage) Pending(ctx context.Context) ([]activity.Pending, error) {
	start := time.Now()
	defer repo.WarnIfSlow("pending", start, 100*time.Millisecond)

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, "start" FROM activities WHERE status = 0 ORDER BY id`)
	if err != nil {
		logger.Error("Repository: failed to query pending", err)
		return nil, fmt.Errorf("query pending: %w", err)
	}
	defer rows.Close()

	pending := []activity.Pending{}
	for rows.Next() {
		var p activity.Pending
		var startStr string
		if err := rows.Scan(&p.ID, &p.Name, &startStr); err != nil {
			return nil, fmt.Errorf("scan pending: %w", err)
		}
		if p.Start, err = activity.ParseTime(startStr); err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending: %w", err)
	}
	return pending, nil
}

func (s *Storage) List(ctx context.Context, f activity.Filter) ([]*activity.Activity, error) {
	start := time.Now()
	defer repo.WarnIfSlow("list", start, 50*time.Millisecond+10*time.Millisecond*time.Duration(f.Limit))

	var b strings.Builder
	b.WriteString(selectColumns)
	b.WriteString(` WHERE 1=1`)
	args := []any{}

	if f.Status != nil {
		b.WriteString(` AND status = ?`)
		args = append(args, int(*f.Status))
	}
	if f.Search != "" {
		pattern := repo.LikePattern(f.Search)
		b.WriteString(` AND (name LIKE ? ESCAPE '\' OR tags LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	b.WriteString(` ORDER BY "start" ASC, id ASC LIMIT ? OFFSET ?`)
	args = append(args, f.Limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		logger.Error("Repository: failed to list activities", err)
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	activities := []*activity.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: row iteration failed", err)
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return activities, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanActivity(row scanner) (*activity.Activity, error) {
	a := &activity.Activity{}
	var startStr, endStr string
	var note, tags sql.NullString
	var status int
	if err := row.Scan(&a.ID, &a.Name, &startStr, &endStr, &note, &status, &tags); err != nil {
		return nil, err
	}
	var err error
	if a.Start, err = activity.ParseTime(startStr); err != nil {
		return nil, err
	}
	if a.End, err = activity.ParseTime(endStr); err != nil {
		return nil, err
	}
	a.Note = note.String
	a.Tags = tags.String
	a.Status = activity.Status(status)
	return a, nil
}

func dsn(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
