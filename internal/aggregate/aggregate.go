// Package aggregate fans reads out across every room a user is associated
// with and merges the results into one snapshot for dashboards and the
// real-time stream.
package aggregate

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/model"
)

// Reader supplies the per-room reads the aggregator fans out. Satisfied by
// the store layer; tests substitute counting fakes.
type Reader interface {
	ListExpenses(ctx context.Context, roomID string) ([]model.Expense, error)
	ListPayments(ctx context.Context, roomID string) ([]model.Payment, error)
	ListDeadlines(ctx context.Context, roomID string) ([]model.FundDeadline, error)
	ListMembers(ctx context.Context, roomID string) ([]model.RoomMember, error)
}

// UserScoper is implemented by readers that can narrow payment reads to a
// single user. Student-facing views aggregate their own payments, not every
// member's.
type UserScoper interface {
	ForUser(userID string) Reader
}

// Tagged record types carry the room name alongside the record so merged
// lists stay displayable without another lookup.

type TaggedExpense struct {
	model.Expense
	RoomName string `json:"room_name"`
}

type TaggedPayment struct {
	model.Payment
	RoomName string `json:"room_name"`
}

type TaggedDeadline struct {
	model.FundDeadline
	RoomName string `json:"room_name"`
}

type TaggedMember struct {
	model.RoomMember
	RoomName string `json:"room_name"`
}

// Snapshot is the merged result of one aggregation run. All totals derived
// from it are recomputed on every read; nothing here is stored.
type Snapshot struct {
	Expenses  []TaggedExpense  `json:"expenses"`
	Payments  []TaggedPayment  `json:"payments"`
	Deadlines []TaggedDeadline `json:"deadlines"`
	Members   []TaggedMember   `json:"members"`
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		Expenses:  []TaggedExpense{},
		Payments:  []TaggedPayment{},
		Deadlines: []TaggedDeadline{},
		Members:   []TaggedMember{},
	}
}

// Aggregate reads all four record kinds for every room concurrently and
// merges them. It completes only when every read has resolved; any single
// failure aborts the whole run. An empty room list short-circuits without
// issuing reads. The merged content is deterministic regardless of the
// order in which the concurrent reads finish.
func Aggregate(ctx context.Context, r Reader, rooms []model.Room) (*Snapshot, error) {
	snap := emptySnapshot()
	if len(rooms) == 0 {
		return snap, nil
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)

	for _, room := range rooms {
		room := room

		g.Go(func() error {
			expenses, err := r.ListExpenses(ctx, room.ID)
			if err != nil {
				return fmt.Errorf("expenses for room %s: %w", room.ID, err)
			}
			mu.Lock()
			for _, e := range expenses {
				e.RoomID = room.ID
				snap.Expenses = append(snap.Expenses, TaggedExpense{Expense: e, RoomName: room.Name})
			}
			mu.Unlock()
			return nil
		})

		g.Go(func() error {
			payments, err := r.ListPayments(ctx, room.ID)
			if err != nil {
				return fmt.Errorf("payments for room %s: %w", room.ID, err)
			}
			mu.Lock()
			for _, p := range payments {
				p.RoomID = room.ID
				snap.Payments = append(snap.Payments, TaggedPayment{Payment: p, RoomName: room.Name})
			}
			mu.Unlock()
			return nil
		})

		g.Go(func() error {
			deadlines, err := r.ListDeadlines(ctx, room.ID)
			if err != nil {
				return fmt.Errorf("deadlines for room %s: %w", room.ID, err)
			}
			mu.Lock()
			for _, d := range deadlines {
				d.RoomID = room.ID
				snap.Deadlines = append(snap.Deadlines, TaggedDeadline{FundDeadline: d, RoomName: room.Name})
			}
			mu.Unlock()
			return nil
		})

		g.Go(func() error {
			members, err := r.ListMembers(ctx, room.ID)
			if err != nil {
				return fmt.Errorf("members for room %s: %w", room.ID, err)
			}
			mu.Lock()
			for _, m := range members {
				m.RoomID = room.ID
				snap.Members = append(snap.Members, TaggedMember{RoomMember: m, RoomName: room.Name})
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortSnapshot(snap)
	return snap, nil
}

// sortSnapshot fixes a total order per kind so completion order of the
// fan-out never shows through.
func sortSnapshot(s *Snapshot) {
	sort.Slice(s.Expenses, func(i, j int) bool {
		a, b := s.Expenses[i], s.Expenses[j]
		if !a.SpentAt.Equal(b.SpentAt) {
			return a.SpentAt.After(b.SpentAt)
		}
		return a.ID < b.ID
	})
	sort.Slice(s.Payments, func(i, j int) bool {
		a, b := s.Payments[i], s.Payments[j]
		if !a.PaidAt.Equal(b.PaidAt) {
			return a.PaidAt.After(b.PaidAt)
		}
		return a.ID < b.ID
	})
	sort.Slice(s.Deadlines, func(i, j int) bool {
		a, b := s.Deadlines[i], s.Deadlines[j]
		if !a.DueAt.Equal(b.DueAt) {
			return a.DueAt.After(b.DueAt)
		}
		return a.ID < b.ID
	})
	sort.Slice(s.Members, func(i, j int) bool {
		a, b := s.Members[i], s.Members[j]
		if !a.JoinedAt.Equal(b.JoinedAt) {
			return a.JoinedAt.Before(b.JoinedAt)
		}
		return a.ID < b.ID
	})
}
