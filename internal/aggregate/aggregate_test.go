package aggregate

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/model"
)

// fakeReader serves canned per-room data and counts every read.
type fakeReader struct {
	reads     atomic.Int64
	delay     time.Duration
	failRoom  string
	expenses  map[string][]model.Expense
	payments  map[string][]model.Payment
	deadlines map[string][]model.FundDeadline
	members   map[string][]model.RoomMember
}

func (f *fakeReader) read(ctx context.Context, roomID string) error {
	f.reads.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if roomID == f.failRoom {
		return errors.New("read failed")
	}
	return nil
}

func (f *fakeReader) ListExpenses(ctx context.Context, roomID string) ([]model.Expense, error) {
	if err := f.read(ctx, roomID); err != nil {
		return nil, err
	}
	return f.expenses[roomID], nil
}

func (f *fakeReader) ListPayments(ctx context.Context, roomID string) ([]model.Payment, error) {
	if err := f.read(ctx, roomID); err != nil {
		return nil, err
	}
	return f.payments[roomID], nil
}

func (f *fakeReader) ListDeadlines(ctx context.Context, roomID string) ([]model.FundDeadline, error) {
	if err := f.read(ctx, roomID); err != nil {
		return nil, err
	}
	return f.deadlines[roomID], nil
}

func (f *fakeReader) ListMembers(ctx context.Context, roomID string) ([]model.RoomMember, error) {
	if err := f.read(ctx, roomID); err != nil {
		return nil, err
	}
	return f.members[roomID], nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

func twoRoomReader() (*fakeReader, []model.Room) {
	rooms := []model.Room{
		{ID: "r1", Name: "Room One"},
		{ID: "r2", Name: "Room Two"},
	}
	r := &fakeReader{
		expenses: map[string][]model.Expense{
			"r1": {{ID: "e1", Title: "Banner", AmountCents: 25000, SpentAt: day(2024, 1, 10)}},
			"r2": {{ID: "e2", Title: "Venue", AmountCents: 150000, SpentAt: day(2024, 2, 3)}},
		},
		payments: map[string][]model.Payment{
			"r1": {
				{ID: "p1", UserID: "alice", AmountCents: 50000, PaidAt: day(2024, 1, 15), DeadlineID: strPtr("d1")},
				{ID: "p2", UserID: "bob", AmountCents: 20000, PaidAt: day(2024, 1, 20)},
			},
			"r2": {{ID: "p3", UserID: "alice", AmountCents: 30000, PaidAt: day(2024, 2, 10)}},
		},
		deadlines: map[string][]model.FundDeadline{
			"r1": {{ID: "d1", Title: "January Dues", AmountPerStudentCents: 50000, DueAt: day(2024, 1, 31)}},
			"r2": {{ID: "d2", Title: "February Dues", AmountPerStudentCents: 40000, DueAt: day(2024, 2, 28)}},
		},
		members: map[string][]model.RoomMember{
			"r1": {{ID: "m1", UserID: "alice", JoinedAt: day(2024, 1, 1)}, {ID: "m2", UserID: "bob", JoinedAt: day(2024, 1, 2)}},
			"r2": {{ID: "m3", UserID: "alice", JoinedAt: day(2024, 2, 1)}},
		},
	}
	return r, rooms
}

func TestAggregateMergesAndTags(t *testing.T) {
	r, rooms := twoRoomReader()

	snap, err := Aggregate(context.Background(), r, rooms)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	if len(snap.Expenses) != 2 || len(snap.Payments) != 3 || len(snap.Deadlines) != 2 || len(snap.Members) != 3 {
		t.Fatalf("unexpected snapshot sizes: %d/%d/%d/%d",
			len(snap.Expenses), len(snap.Payments), len(snap.Deadlines), len(snap.Members))
	}

	for _, e := range snap.Expenses {
		if e.RoomName == "" || e.RoomID == "" {
			t.Errorf("expense %s missing room tag: %+v", e.ID, e)
		}
	}
	// One read per kind per room.
	if got := r.reads.Load(); got != 8 {
		t.Errorf("read count = %d, want 8", got)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	r, rooms := twoRoomReader()
	// Force the fan-out goroutines to interleave.
	r.delay = time.Millisecond

	first, err := Aggregate(context.Background(), r, rooms)
	if err != nil {
		t.Fatalf("first aggregate: %v", err)
	}
	second, err := Aggregate(context.Background(), r, rooms)
	if err != nil {
		t.Fatalf("second aggregate: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("aggregation is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestAggregateEmptyRoomsIssuesNoReads(t *testing.T) {
	r := &fakeReader{}

	snap, err := Aggregate(context.Background(), r, nil)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(snap.Expenses)+len(snap.Payments)+len(snap.Deadlines)+len(snap.Members) != 0 {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
	if got := r.reads.Load(); got != 0 {
		t.Errorf("read count = %d, want 0", got)
	}
}

func TestAggregateFailureAbortsWholeRun(t *testing.T) {
	r, rooms := twoRoomReader()
	r.failRoom = "r2"

	snap, err := Aggregate(context.Background(), r, rooms)
	if err == nil {
		t.Fatal("expected error when one room's reads fail")
	}
	if snap != nil {
		t.Errorf("expected nil snapshot on failure, got %+v", snap)
	}
}

func TestTotals(t *testing.T) {
	r, rooms := twoRoomReader()

	snap, err := Aggregate(context.Background(), r, rooms)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	totals := snap.Totals()
	if totals.CollectedCents != 100000 {
		t.Errorf("collected = %d, want 100000", totals.CollectedCents)
	}
	if totals.ExpensesCents != 175000 {
		t.Errorf("expenses = %d, want 175000", totals.ExpensesCents)
	}
	if totals.NetCents != totals.CollectedCents-totals.ExpensesCents {
		t.Errorf("net = %d, want collected-expenses = %d", totals.NetCents, totals.CollectedCents-totals.ExpensesCents)
	}
	if totals.Students != 3 {
		t.Errorf("students = %d, want 3", totals.Students)
	}
}

func TestRecentTransactionsOrderAndTruncation(t *testing.T) {
	snap := emptySnapshot()
	// 15 records with distinct, known dates.
	for i := 0; i < 5; i++ {
		snap.Expenses = append(snap.Expenses, TaggedExpense{Expense: model.Expense{
			ID: fmt.Sprintf("e%d", i), SpentAt: day(2024, 3, 1+i),
		}})
	}
	for i := 0; i < 6; i++ {
		snap.Payments = append(snap.Payments, TaggedPayment{Payment: model.Payment{
			ID: fmt.Sprintf("p%d", i), PaidAt: day(2024, 3, 10+i),
		}})
	}
	for i := 0; i < 4; i++ {
		snap.Deadlines = append(snap.Deadlines, TaggedDeadline{FundDeadline: model.FundDeadline{
			ID: fmt.Sprintf("d%d", i), DueAt: day(2024, 3, 20+i),
		}})
	}

	recent := RecentTransactions(snap, 10)
	if len(recent) != 10 {
		t.Fatalf("expected 10 transactions, got %d", len(recent))
	}
	for i := 1; i < len(recent); i++ {
		if recent[i].Date.After(recent[i-1].Date) {
			t.Fatalf("feed not descending at %d: %v after %v", i, recent[i].Date, recent[i-1].Date)
		}
	}
	// The top 10 by date are the 4 deadlines (Mar 20-23) and the 6 payments
	// (Mar 10-15); every expense (Mar 1-5) must be cut.
	for _, tx := range recent {
		if tx.Kind == TxExpense {
			t.Errorf("expense %s should not be in the top 10", tx.ID)
		}
	}
	// Deadlines use the due date as the effective date.
	if recent[0].ID != "d3" || recent[0].Kind != TxDeadline {
		t.Errorf("newest entry = %s/%s, want deadline d3", recent[0].Kind, recent[0].ID)
	}
}

func TestDeadlinePaidRules(t *testing.T) {
	snap := emptySnapshot()
	snap.Deadlines = append(snap.Deadlines, TaggedDeadline{FundDeadline: model.FundDeadline{
		ID: "d1", AmountPerStudentCents: 50000,
	}})

	// No payments at all: unpaid under both rules.
	if DeadlinePaid(snap, "d1", 50000, PaidRuleAnyPayment) {
		t.Error("no payments: AnyPayment rule should be unpaid")
	}
	if DeadlinePaid(snap, "d1", 50000, PaidRuleAmountMet) {
		t.Error("no payments: AmountMet rule should be unpaid")
	}

	// A partial payment of 200.00 against a 500.00 deadline.
	snap.Payments = append(snap.Payments, TaggedPayment{Payment: model.Payment{
		ID: "p1", AmountCents: 20000, DeadlineID: strPtr("d1"),
	}})
	if !DeadlinePaid(snap, "d1", 50000, PaidRuleAnyPayment) {
		t.Error("partial payment: AnyPayment rule should be paid")
	}
	if DeadlinePaid(snap, "d1", 50000, PaidRuleAmountMet) {
		t.Error("partial payment: AmountMet rule should be unpaid")
	}

	// Topping up to the full amount satisfies both.
	snap.Payments = append(snap.Payments, TaggedPayment{Payment: model.Payment{
		ID: "p2", AmountCents: 30000, DeadlineID: strPtr("d1"),
	}})
	if !DeadlinePaid(snap, "d1", 50000, PaidRuleAmountMet) {
		t.Error("full payment: AmountMet rule should be paid")
	}
}

func TestRunnerDiscardsStaleRun(t *testing.T) {
	slow := &fakeReader{
		delay: 200 * time.Millisecond,
		expenses: map[string][]model.Expense{
			"old": {{ID: "stale", Title: "Stale", SpentAt: day(2024, 1, 1)}},
		},
	}
	runner := NewRunner(slow)

	oldRooms := []model.Room{{ID: "old", Name: "Old Room"}}
	done := make(chan struct{})
	go func() {
		runner.Refresh(context.Background(), oldRooms)
		close(done)
	}()

	// Give the slow run a head start, then supersede it with an empty list,
	// which completes immediately.
	time.Sleep(20 * time.Millisecond)
	runner.Refresh(context.Background(), nil)

	<-done

	snap, err := runner.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Expenses) != 0 {
		t.Errorf("stale run overwrote newer data: %+v", snap.Expenses)
	}
}

func TestRunnerKeepsLastGoodSnapshotOnFailure(t *testing.T) {
	r, rooms := twoRoomReader()
	runner := NewRunner(r)

	runner.Refresh(context.Background(), rooms)
	good, err := runner.Snapshot()
	if err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	if len(good.Payments) != 3 {
		t.Fatalf("expected 3 payments, got %d", len(good.Payments))
	}

	r.failRoom = "r1"
	runner.Refresh(context.Background(), rooms)

	snap, err := runner.Snapshot()
	if err == nil {
		t.Error("expected surfaced error after failed refresh")
	}
	if !reflect.DeepEqual(snap, good) {
		t.Error("failed refresh should keep the last good snapshot")
	}
}
