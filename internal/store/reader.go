package store

import (
	"context"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/aggregate"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/model"
)

// RecordReader bundles the per-room list reads the aggregator fans out over.
type RecordReader struct {
	expenses  *ExpenseStore
	payments  *PaymentStore
	deadlines *DeadlineStore
	rooms     *RoomStore
}

func NewRecordReader(es *ExpenseStore, ps *PaymentStore, ds *DeadlineStore, rs *RoomStore) *RecordReader {
	return &RecordReader{expenses: es, payments: ps, deadlines: ds, rooms: rs}
}

func (r *RecordReader) ListExpenses(ctx context.Context, roomID string) ([]model.Expense, error) {
	return r.expenses.ListByRoom(roomID)
}

func (r *RecordReader) ListPayments(ctx context.Context, roomID string) ([]model.Payment, error) {
	return r.payments.ListByRoom(roomID)
}

func (r *RecordReader) ListDeadlines(ctx context.Context, roomID string) ([]model.FundDeadline, error) {
	return r.deadlines.ListByRoom(roomID)
}

func (r *RecordReader) ListMembers(ctx context.Context, roomID string) ([]model.RoomMember, error) {
	return r.rooms.ListMembers(roomID)
}

// ForUser returns a reader whose payment reads see only one user's payments.
// Everything else reads room-wide.
func (r *RecordReader) ForUser(userID string) aggregate.Reader {
	return &userScopedReader{RecordReader: r, userID: userID}
}

type userScopedReader struct {
	*RecordReader
	userID string
}

func (r *userScopedReader) ListPayments(ctx context.Context, roomID string) ([]model.Payment, error) {
	return r.payments.ListByRoomAndUser(roomID, r.userID)
}
