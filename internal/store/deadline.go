package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/model"
)

type DeadlineStore struct {
	db *sql.DB
}

func NewDeadlineStore(db *sql.DB) *DeadlineStore {
	return &DeadlineStore{db: db}
}

func scanDeadline(scanner interface{ Scan(...any) error }) (*model.FundDeadline, error) {
	var d model.FundDeadline
	err := scanner.Scan(
		&d.ID, &d.RoomID, &d.Title, &d.AmountPerStudentCents,
		&d.DueAt, &d.BillingPeriod, &d.Announcement, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

const deadlineCols = `id, room_id, title, amount_per_student_cents, due_at, billing_period, announcement, created_at`

func (s *DeadlineStore) Create(roomID, title string, amountPerStudentCents int64, dueAt time.Time, billingPeriod, announcement string) (*model.FundDeadline, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO fund_deadlines (id, room_id, title, amount_per_student_cents, due_at, billing_period, announcement) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, roomID, title, amountPerStudentCents, dueAt.UTC(), billingPeriod, announcement,
	)
	if err != nil {
		return nil, fmt.Errorf("insert deadline: %w", err)
	}
	return s.GetByID(id)
}

func (s *DeadlineStore) GetByID(id string) (*model.FundDeadline, error) {
	row := s.db.QueryRow(`SELECT `+deadlineCols+` FROM fund_deadlines WHERE id = ?`, id)
	d, err := scanDeadline(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get deadline: %w", err)
	}
	return d, nil
}

func (s *DeadlineStore) ListByRoom(roomID string) ([]model.FundDeadline, error) {
	rows, err := s.db.Query(
		`SELECT `+deadlineCols+` FROM fund_deadlines WHERE room_id = ? ORDER BY due_at DESC, id`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("list deadlines: %w", err)
	}
	defer rows.Close()

	var deadlines []model.FundDeadline
	for rows.Next() {
		d, err := scanDeadline(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deadline: %w", err)
		}
		deadlines = append(deadlines, *d)
	}
	return deadlines, rows.Err()
}
