package store

import (
	"testing"
	"time"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/database"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/model"
)

type financeFixture struct {
	expenses  *ExpenseStore
	deadlines *DeadlineStore
	payments  *PaymentStore
	rooms     *RoomStore
	chair     *model.User
	student   *model.User
	room      *model.Room
}

func setupFinanceDB(t *testing.T) *financeFixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	us := NewUserStore(db)
	rs := NewRoomStore(db)

	chair := createTestUser(t, us, "chair", model.RoleChairperson)
	student := createTestUser(t, us, "student", model.RoleStudent)

	room, err := rs.Create(chair.ID, "Dues", "")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if _, err := rs.AddMember(room.ID, student.ID); err != nil {
		t.Fatalf("add member: %v", err)
	}

	return &financeFixture{
		expenses:  NewExpenseStore(db),
		deadlines: NewDeadlineStore(db),
		payments:  NewPaymentStore(db),
		rooms:     rs,
		chair:     chair,
		student:   student,
		room:      room,
	}
}

func TestExpenseCreateAndList(t *testing.T) {
	f := setupFinanceDB(t)

	older := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	if _, err := f.expenses.Create(f.room.ID, "Banner", "tarpaulin print", 25000, older, f.chair.ID); err != nil {
		t.Fatalf("create expense: %v", err)
	}
	e, err := f.expenses.Create(f.room.ID, "Venue", "", 150000, newer, f.chair.ID)
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if e.AmountCents != 150000 {
		t.Errorf("amount = %d, want 150000", e.AmountCents)
	}

	list, err := f.expenses.ListByRoom(f.room.ID)
	if err != nil {
		t.Fatalf("list expenses: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(list))
	}
	// Newest first.
	if list[0].Title != "Venue" {
		t.Errorf("first expense = %q, want Venue", list[0].Title)
	}
}

func TestDeadlineCreateAndGet(t *testing.T) {
	f := setupFinanceDB(t)

	due := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	d, err := f.deadlines.Create(f.room.ID, "June Dues", 50000, due, "June 2024", "Pay before the 30th.")
	if err != nil {
		t.Fatalf("create deadline: %v", err)
	}
	if d.AmountPerStudentCents != 50000 {
		t.Errorf("amount per student = %d, want 50000", d.AmountPerStudentCents)
	}

	got, err := f.deadlines.GetByID(d.ID)
	if err != nil {
		t.Fatalf("get deadline: %v", err)
	}
	if got == nil || got.Title != "June Dues" {
		t.Fatalf("expected June Dues, got %+v", got)
	}

	missing, err := f.deadlines.GetByID("no-such-id")
	if err != nil {
		t.Fatalf("get missing deadline: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing deadline, got %+v", missing)
	}
}

func TestPaymentCreateAndFilter(t *testing.T) {
	f := setupFinanceDB(t)

	due := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	d, err := f.deadlines.Create(f.room.ID, "June Dues", 50000, due, "June 2024", "")
	if err != nil {
		t.Fatalf("create deadline: %v", err)
	}

	paidAt := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	p, err := f.payments.Create(f.room.ID, f.student.ID, &d.ID, 50000, "gcash", paidAt, f.student.ID)
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if p.DeadlineID == nil || *p.DeadlineID != d.ID {
		t.Errorf("deadline link = %v, want %s", p.DeadlineID, d.ID)
	}

	// A payment without a deadline link (chairperson mark-as-paid, no target).
	if _, err := f.payments.Create(f.room.ID, f.chair.ID, nil, 10000, "cash", paidAt, f.chair.ID); err != nil {
		t.Fatalf("create unlinked payment: %v", err)
	}

	all, err := f.payments.ListByRoom(f.room.ID)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 payments, got %d", len(all))
	}

	mine, err := f.payments.ListByRoomAndUser(f.room.ID, f.student.ID)
	if err != nil {
		t.Fatalf("list my payments: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("expected 1 payment for student, got %d", len(mine))
	}
	if mine[0].Note != "gcash" {
		t.Errorf("note = %q, want gcash", mine[0].Note)
	}
}

func TestRecordReaderScopedToUser(t *testing.T) {
	f := setupFinanceDB(t)

	other := createTestUser(t, NewUserStore(f.payments.db), "classmate", model.RoleStudent)
	if _, err := f.rooms.AddMember(f.room.ID, other.ID); err != nil {
		t.Fatalf("add member: %v", err)
	}

	paidAt := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	if _, err := f.payments.Create(f.room.ID, f.student.ID, nil, 50000, "gcash", paidAt, f.student.ID); err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if _, err := f.payments.Create(f.room.ID, other.ID, nil, 30000, "cash", paidAt, other.ID); err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if _, err := f.expenses.Create(f.room.ID, "Banner", "", 25000, paidAt, f.chair.ID); err != nil {
		t.Fatalf("create expense: %v", err)
	}

	reader := NewRecordReader(f.expenses, f.payments, f.deadlines, f.rooms)
	ctx := t.Context()

	all, err := reader.ListPayments(ctx, f.room.ID)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("unscoped reader: expected 2 payments, got %d", len(all))
	}

	scoped := reader.ForUser(f.student.ID)
	mine, err := scoped.ListPayments(ctx, f.room.ID)
	if err != nil {
		t.Fatalf("scoped list payments: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("scoped reader: expected 1 payment, got %d", len(mine))
	}
	if mine[0].UserID != f.student.ID {
		t.Errorf("payment user = %s, want %s", mine[0].UserID, f.student.ID)
	}

	// Everything but payments stays room-wide.
	expenses, err := scoped.ListExpenses(ctx, f.room.ID)
	if err != nil {
		t.Fatalf("scoped list expenses: %v", err)
	}
	if len(expenses) != 1 {
		t.Errorf("scoped reader: expected 1 expense, got %d", len(expenses))
	}
	members, err := scoped.ListMembers(ctx, f.room.ID)
	if err != nil {
		t.Fatalf("scoped list members: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("scoped reader: expected 2 members, got %d", len(members))
	}
}
