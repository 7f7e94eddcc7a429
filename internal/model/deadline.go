package model

import "time"

// FundDeadline is a collection target announced by the chairperson: every
// student in the room owes AmountPerStudentCents by DueAt.
type FundDeadline struct {
	ID                    string    `json:"id"`
	RoomID                string    `json:"room_id"`
	Title                 string    `json:"title"`
	AmountPerStudentCents int64     `json:"amount_per_student_cents"`
	DueAt                 time.Time `json:"due_at"`
	BillingPeriod         string    `json:"billing_period"`
	Announcement          string    `json:"announcement"`
	CreatedAt             time.Time `json:"created_at"`
}
