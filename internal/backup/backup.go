// Package backup holds the best-effort snapshot taken after a store insert.
// A failed snapshot is logged and never returned to the store's caller.
package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"activityPlanner/internal/logger"

	"go.uber.org/zap"
)

// DefaultSuffix is appended to the database path to name the snapshot.
const DefaultSuffix = "_backup"

type Backuper interface {
	Backup(ctx context.Context) error
}

type Nop struct{}

func (Nop) Backup(context.Context) error { return nil }

// FileCopy overwrites Target with the full contents of Source.
type FileCopy struct {
	Source string
	Target string
}

func NewFileCopy(source, target string) FileCopy {
	if target == "" {
		target = source + DefaultSuffix
	}
	return FileCopy{Source: source, Target: target}
}

func (f FileCopy) Backup(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := os.Open(f.Source)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(f.Target)
	if err != nil {
		return fmt.Errorf("create target: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("copy: %w", err)
	}
	return dst.Close()
}

// Quietly runs b and swallows its error after logging it.
func Quietly(ctx context.Context, b Backuper) {
	if b == nil {
		return
	}
	start := time.Now()
	if err := b.Backup(ctx); err != nil {
		logger.Warn("Backup: snapshot failed", zap.Error(err), zap.Duration("ms", time.Since(start)))
		return
	}
	logger.Debug("Backup: snapshot written", zap.Duration("ms", time.Since(start)))
}
