package live

import (
	"context"
	"errors"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/errs"
)

// Snapshot is one full read of a watched collection. Each snapshot fully
// replaces the previous one; there is no incremental patching.
type Snapshot[T any] struct {
	Records []T
	Err     error
}

// DocSnapshot is one full read of a watched document. A missing document is
// Record == nil with a nil Err, so callers must nil-check, not only
// error-check.
type DocSnapshot[T any] struct {
	Record *T
	Err    error
}

// Watch subscribes to topic on the bus and returns a channel of snapshots:
// one initial fetch, then one re-fetch per invalidation signal.
//
// An empty topic means "dependent query not yet ready": the channel delivers
// a single empty snapshot and closes without subscribing.
//
// Cancelling ctx tears down the subscription and closes the channel; nothing
// is emitted afterwards, no matter what the bus publishes. Fetch errors are
// carried in the snapshot; permission failures are additionally reported
// out of band through the reporter.
func Watch[T any](ctx context.Context, bus *Bus, reporter errs.Reporter, topic string, fetch func(ctx context.Context) ([]T, error)) <-chan Snapshot[T] {
	out := make(chan Snapshot[T], 1)

	if topic == "" {
		out <- Snapshot[T]{Records: []T{}}
		close(out)
		return out
	}

	signal, cancel := bus.Subscribe(topic)

	go func() {
		defer close(out)
		defer cancel()

		emit := func() bool {
			records, err := fetch(ctx)
			if err != nil {
				reportIfPermission(ctx, reporter, topic, err)
			}
			select {
			case out <- Snapshot[T]{Records: records, Err: err}:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-signal:
				if !emit() {
					return
				}
			}
		}
	}()

	return out
}

// WatchDoc is Watch for a single document. fetch returning (nil, nil) means
// the document does not exist.
func WatchDoc[T any](ctx context.Context, bus *Bus, reporter errs.Reporter, topic string, fetch func(ctx context.Context) (*T, error)) <-chan DocSnapshot[T] {
	out := make(chan DocSnapshot[T], 1)

	if topic == "" {
		out <- DocSnapshot[T]{}
		close(out)
		return out
	}

	signal, cancel := bus.Subscribe(topic)

	go func() {
		defer close(out)
		defer cancel()

		emit := func() bool {
			record, err := fetch(ctx)
			if err != nil {
				reportIfPermission(ctx, reporter, topic, err)
			}
			select {
			case out <- DocSnapshot[T]{Record: record, Err: err}:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-signal:
				if !emit() {
					return
				}
			}
		}
	}()

	return out
}

func reportIfPermission(ctx context.Context, reporter errs.Reporter, topic string, err error) {
	if reporter == nil || !errors.Is(err, errs.ErrPermissionDenied) {
		return
	}
	var perr *errs.PermissionError
	if !errors.As(err, &perr) {
		perr = &errs.PermissionError{Path: topic, Operation: "list", Err: err}
	}
	reporter.ReportPermission(ctx, perr)
}
