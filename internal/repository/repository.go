package repository

import (
	"errors"
	"strings"
	"time"

	"activityPlanner/internal/logger"

	"go.uber.org/zap"
)

var ErrNotFound = errors.New("activity not found")

// LikePattern turns free text into a "contains" pattern for LIKE/ILIKE,
// escaping the wildcards so they match literally. Queries pair it with
// ESCAPE '\'.
func LikePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(search) + "%"
}

// WarnIfSlow logs op when it took longer than limit.
func WarnIfSlow(op string, start time.Time, limit time.Duration) {
	if elapsed := time.Since(start); elapsed > limit {
		logger.Warn("Repository: slow operation", zap.String("op", op), zap.Duration("ms", elapsed))
	}
}
