package model

import "time"

// Payment records money a student put into a room's fund, either self-reported
// or marked as paid by the chairperson (RecordedBy tells which). DeadlineID
// links the payment to the fund deadline it settles, when there is one.
type Payment struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"room_id"`
	UserID      string    `json:"user_id"`
	DeadlineID  *string   `json:"deadline_id,omitempty"`
	AmountCents int64     `json:"amount_cents"`
	Note        string    `json:"note"`
	PaidAt      time.Time `json:"paid_at"`
	RecordedBy  string    `json:"recorded_by"`
	CreatedAt   time.Time `json:"created_at"`
}
