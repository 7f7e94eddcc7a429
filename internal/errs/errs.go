// Package errs defines the error taxonomy shared across the service and the
// out-of-band reporting channel for permission failures.
package errs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrPermissionDenied means the acting identity lacks rights for the
	// attempted read or write.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound means a referenced room, user, or deadline does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoData means a statement was requested over zero rows. Recoverable
	// and user-visible, not a crash.
	ErrNoData = errors.New("no data to report")
)

// PermissionError carries the context of a denied operation so a top-level
// listener can surface it with enough detail to debug access rules.
type PermissionError struct {
	Path      string
	Operation string
	UserID    string
	Err       error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s %s (user %s)", e.Operation, e.Path, e.UserID)
}

func (e *PermissionError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrPermissionDenied
}

// Reporter receives permission errors out of band from normal data flow.
// Any component may report; one top-level handler listens. Passed down
// explicitly instead of living in a package-level singleton.
type Reporter interface {
	ReportPermission(ctx context.Context, perr *PermissionError)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(ctx context.Context, perr *PermissionError)

func (f ReporterFunc) ReportPermission(ctx context.Context, perr *PermissionError) {
	f(ctx, perr)
}

// LogReporter is the production Reporter: it logs and moves on.
type LogReporter struct {
	Logger *slog.Logger
}

func (r *LogReporter) ReportPermission(ctx context.Context, perr *PermissionError) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.ErrorContext(ctx, "permission denied",
		"path", perr.Path,
		"operation", perr.Operation,
		"user_id", perr.UserID,
	)
}
