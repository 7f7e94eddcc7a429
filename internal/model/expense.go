package model

import "time"

// Expense is money spent out of a room's collected funds. Expenses are
// immutable once recorded.
type Expense struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"room_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amount_cents"`
	SpentAt     time.Time `json:"spent_at"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}
