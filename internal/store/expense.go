package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/model"
)

type ExpenseStore struct {
	db *sql.DB
}

func NewExpenseStore(db *sql.DB) *ExpenseStore {
	return &ExpenseStore{db: db}
}

func scanExpense(scanner interface{ Scan(...any) error }) (*model.Expense, error) {
	var e model.Expense
	err := scanner.Scan(
		&e.ID, &e.RoomID, &e.Title, &e.Description, &e.AmountCents,
		&e.SpentAt, &e.CreatedBy, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

const expenseCols = `id, room_id, title, description, amount_cents, spent_at, created_by, created_at`

func (s *ExpenseStore) Create(roomID, title, description string, amountCents int64, spentAt time.Time, createdBy string) (*model.Expense, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO expenses (id, room_id, title, description, amount_cents, spent_at, created_by) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, roomID, title, description, amountCents, spentAt.UTC(), createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+expenseCols+` FROM expenses WHERE id = ?`, id)
	return scanExpense(row)
}

func (s *ExpenseStore) ListByRoom(roomID string) ([]model.Expense, error) {
	rows, err := s.db.Query(
		`SELECT `+expenseCols+` FROM expenses WHERE room_id = ? ORDER BY spent_at DESC, id`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}
