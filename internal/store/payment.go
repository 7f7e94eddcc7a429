package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/model"
)

type PaymentStore struct {
	db *sql.DB
}

func NewPaymentStore(db *sql.DB) *PaymentStore {
	return &PaymentStore{db: db}
}

func scanPayment(scanner interface{ Scan(...any) error }) (*model.Payment, error) {
	var p model.Payment
	var deadlineID sql.NullString

	err := scanner.Scan(
		&p.ID, &p.RoomID, &p.UserID, &deadlineID, &p.AmountCents,
		&p.Note, &p.PaidAt, &p.RecordedBy, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if deadlineID.Valid {
		p.DeadlineID = &deadlineID.String
	}
	return &p, nil
}

const paymentCols = `id, room_id, user_id, deadline_id, amount_cents, note, paid_at, recorded_by, created_at`

func (s *PaymentStore) Create(roomID, userID string, deadlineID *string, amountCents int64, note string, paidAt time.Time, recordedBy string) (*model.Payment, error) {
	var dID sql.NullString
	if deadlineID != nil {
		dID = sql.NullString{String: *deadlineID, Valid: true}
	}

	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO payments (id, room_id, user_id, deadline_id, amount_cents, note, paid_at, recorded_by) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, roomID, userID, dID, amountCents, note, paidAt.UTC(), recordedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+paymentCols+` FROM payments WHERE id = ?`, id)
	return scanPayment(row)
}

func (s *PaymentStore) ListByRoom(roomID string) ([]model.Payment, error) {
	rows, err := s.db.Query(
		`SELECT `+paymentCols+` FROM payments WHERE room_id = ? ORDER BY paid_at DESC, id`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	return collectPayments(rows)
}

// ListByRoomAndUser returns one student's payments in a room, for the
// personal statement.
func (s *PaymentStore) ListByRoomAndUser(roomID, userID string) ([]model.Payment, error) {
	rows, err := s.db.Query(
		`SELECT `+paymentCols+` FROM payments WHERE room_id = ? AND user_id = ? ORDER BY paid_at DESC, id`,
		roomID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list payments by user: %w", err)
	}
	defer rows.Close()

	return collectPayments(rows)
}

func collectPayments(rows *sql.Rows) ([]model.Payment, error) {
	var payments []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}
