package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"activityPlanner/internal/logger"
	"activityPlanner/internal/models/activity"
	repo "activityPlanner/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

const selectColumns = `SELECT id, name, "start", "end", note, status, tags FROM activities`

type PoolConfig struct {
	MaxConns    int32
	MinConns    int32
	IdleTimeout time.Duration
}

type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, connString string, pc PoolConfig) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: failed to parse connection string", err)
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5
	if pc.MaxConns > 0 {
		config.MaxConns = pc.MaxConns
	}
	if pc.MinConns > 0 {
		config.MinConns = pc.MinConns
	}
	if pc.IdleTimeout > 0 {
		config.MaxConnIdleTime = pc.IdleTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: failed to create pool", err)
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: ping failed", err)
		return nil, fmt.Errorf("ping: %w", err)
	}

	logger.Info("Repository: connected to PostgreSQL")
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: closed all PostgreSQL connections")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: ping failed", err)
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, a *activity.Activity) error {
	start := time.Now()
	defer repo.WarnIfSlow("create", start, 50*time.Millisecond)

	query := `INSERT INTO activities
				(name, "start", "end", note, status, tags)
				VALUES ($1, $2, $3, '', 0, $4)
				RETURNING id`

	err := s.pool.QueryRow(ctx, query,
		a.Name,
		activity.FormatTime(a.Start),
		activity.FormatTime(a.End),
		a.Tags,
	).Scan(&a.ID)
	if err != nil {
		logger.Error("Repository: failed to insert activity", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("insert activity: %w", err)
	}

	a.Note = ""
	a.Status = activity.StatusPending
	return nil
}

func (s *Storage) Update(ctx context.Context, a *activity.Activity) error {
	query := `UPDATE activities
			SET name = $1,
				"start" = $2,
				"end" = $3,
				tags = $4
			WHERE id = $5`

	return s.exec(ctx, "update", query,
		a.Name,
		activity.FormatTime(a.Start),
		activity.FormatTime(a.End),
		a.Tags,
		a.ID,
	)
}

func (s *Storage) Delete(ctx context.Context, id int64) error {
	return s.exec(ctx, "delete", `DELETE FROM activities WHERE id = $1`, id)
}

func (s *Storage) SetStatus(ctx context.Context, id int64, status activity.Status) error {
	return s.exec(ctx, "set status", `UPDATE activities SET status = $1 WHERE id = $2`, int(status), id)
}

func (s *Storage) SetNote(ctx context.Context, id int64, note string) error {
	return s.exec(ctx, "set note", `UPDATE activities SET note = $1 WHERE id = $2`, note, id)
}

func (s *Storage) exec(ctx context.Context, op, query string, args ...any) error {
	start := time.Now()
	defer repo.WarnIfSlow(op, start, 100*time.Millisecond)

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		logger.Error("Repository: write failed", err, zap.String("op", op), zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) Note(ctx context.Context, id int64) (string, error) {
	var note string
	err := s.pool.QueryRow(ctx, `SELECT note FROM activities WHERE id = $1`, id).Scan(&note)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		logger.Error("Repository: failed to read note", err, zap.Int64("id", id))
		return "", fmt.Errorf("read note: %w", err)
	}
	return note, nil
}

func (s *Storage) GetByID(ctx context.Context, id int64) (*activity.Activity, error) {
	a, err := scanActivity(s.pool.QueryRow(ctx, selectColumns+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
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

	rows, err := s.pool.Query(ctx, `SELECT id, name, "start" FROM activities WHERE status = 0 ORDER BY id`)
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
		logger.Error("Repository: row iteration failed", err)
		return nil, fmt.Errorf("iterate pending: %w", err)
	}
	return pending, nil
}

// List orders with the C collation so the text timestamps sort chronologically.
func (s *Storage) List(ctx context.Context, f activity.Filter) ([]*activity.Activity, error) {
	start := time.Now()
	defer repo.WarnIfSlow("list", start, 50*time.Millisecond+10*time.Millisecond*time.Duration(f.Limit))

	var b strings.Builder
	b.WriteString(selectColumns)
	b.WriteString(` WHERE TRUE`)
	args := []any{}
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != nil {
		b.WriteString(` AND status = ` + next(int(*f.Status)))
	}
	if f.Search != "" {
		p := next(repo.LikePattern(f.Search))
		b.WriteString(` AND (name ILIKE ` + p + ` ESCAPE '\' OR tags ILIKE ` + p + ` ESCAPE '\')`)
	}
	b.WriteString(` ORDER BY "start" COLLATE "C" ASC, id ASC`)
	if f.Limit >= 0 {
		b.WriteString(` LIMIT ` + next(f.Limit))
	}
	b.WriteString(` OFFSET ` + next(max(f.Offset, 0)))

	rows, err := s.pool.Query(ctx, b.String(), args...)
	if err != nil {
		logger.Error("Repository: failed to list activities", err, zap.Duration("ms", time.Since(start)))
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

func scanActivity(row pgx.Row) (*activity.Activity, error) {
	a := &activity.Activity{}
	var startStr, endStr string
	var status int
	if err := row.Scan(&a.ID, &a.Name, &startStr, &endStr, &a.Note, &status, &a.Tags); err != nil {
		return nil, err
	}
	var err error
	if a.Start, err = activity.ParseTime(startStr); err != nil {
		return nil, err
	}
	if a.End, err = activity.ParseTime(endStr); err != nil {
		return nil, err
	}
	a.Status = activity.Status(status)
	return a, nil
}

func (s *Storage) Migrate(ctx context.Context) error {
	logger.Info("Repository: applying migrations")
	for _, name := range []string{"001_init.up.sql", "002_indexes.up.sql"} {
		if err := s.applyFile(ctx, name); err != nil {
			return err
		}
	}
	logger.Info("Repository: migrations applied")
	return nil
}

func (s *Storage) Down(ctx context.Context) error {
	logger.Info("Repository: rolling back migrations")
	for _, name := range []string{"002_indexes.down.sql", "001_init.down.sql"} {
		if err := s.applyFile(ctx, name); err != nil {
			return err
		}
	}
	logger.Info("Repository: migrations rolled back")
	return nil
}

func (s *Storage) applyFile(ctx context.Context, name string) error {
	body, err := migrations.ReadFile("migrations/" + name)
	if err != nil {
		logger.Error("Repository: failed to read migration", err, zap.String("file", name))
		return fmt.Errorf("read %s: %w", name, err)
	}
	if _, err := s.pool.Exec(ctx, string(body)); err != nil {
		logger.Error("Repository: failed to apply migration", err, zap.String("file", name))
		return fmt.Errorf("apply %s: %w", name, err)
	}
	return nil
}
