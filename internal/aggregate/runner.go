package aggregate

import (
	"context"
	"sync"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/model"
)

// Runner serializes aggregation runs for one consumer. Every Refresh is
// stamped with a generation; a run that finishes after a newer one started
// is discarded, so a stale room list can never overwrite fresher data.
// On failure the last good snapshot is kept and the error surfaced.
type Runner struct {
	reader Reader

	mu   sync.Mutex
	gen  uint64
	snap *Snapshot
	err  error
}

func NewRunner(reader Reader) *Runner {
	return &Runner{reader: reader, snap: emptySnapshot()}
}

// Refresh aggregates the given room list and installs the result unless a
// newer Refresh superseded this one while it was in flight.
func (r *Runner) Refresh(ctx context.Context, rooms []model.Room) {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.mu.Unlock()

	snap, err := Aggregate(ctx, r.reader, rooms)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return // superseded by a newer run
	}
	if err != nil {
		r.err = err
		return
	}
	r.snap, r.err = snap, nil
}

// Snapshot returns the last installed snapshot and the error of the most
// recent non-superseded run.
func (r *Runner) Snapshot() (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap, r.err
}
