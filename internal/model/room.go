package model

import "time"

type Room struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	JoinCode    string     `json:"join_code,omitempty"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Archived reports whether the room has been soft-deleted by its chairperson.
func (r *Room) Archived() bool {
	return r.ArchivedAt != nil
}

type RoomMember struct {
	ID       string    `json:"id"`
	RoomID   string    `json:"room_id"`
	UserID   string    `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// JoinedRoom is a student's view of a room they belong to, resolved through
// an indexed membership query rather than a per-student copy of the room.
type JoinedRoom struct {
	RoomID          string    `json:"room_id"`
	OwnerID         string    `json:"owner_id"`
	RoomName        string    `json:"room_name"`
	RoomDescription string    `json:"room_description"`
	JoinedAt        time.Time `json:"joined_at"`
}
