package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/joincode"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/model"
)

type RoomStore struct {
	db *sql.DB
}

func NewRoomStore(db *sql.DB) *RoomStore {
	return &RoomStore{db: db}
}

func scanRoom(scanner interface{ Scan(...any) error }) (*model.Room, error) {
	var r model.Room
	var joinCode sql.NullString
	var archivedAt sql.NullTime

	err := scanner.Scan(
		&r.ID, &r.OwnerID, &r.Name, &r.Description, &joinCode,
		&archivedAt, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if joinCode.Valid {
		r.JoinCode = joinCode.String
	}
	if archivedAt.Valid {
		t := archivedAt.Time
		r.ArchivedAt = &t
	}
	return &r, nil
}

const roomCols = `id, owner_id, name, description, join_code, archived_at, created_at, updated_at`

// Create inserts a room with a freshly generated join code. The code lives
// in a flat global namespace; on the (unlikely) collision the insert is
// retried with a new code.
func (s *RoomStore) Create(ownerID, name, description string) (*model.Room, error) {
	id := uuid.NewString()

	for attempt := 0; attempt < 5; attempt++ {
		code, err := joincode.New()
		if err != nil {
			return nil, err
		}

		_, err = s.db.Exec(
			`INSERT INTO rooms (id, owner_id, name, description, join_code) VALUES (?, ?, ?, ?, ?)`,
			id, ownerID, name, description, code,
		)
		if err == nil {
			return s.GetByID(id)
		}
		if strings.Contains(err.Error(), "rooms.join_code") {
			continue
		}
		return nil, fmt.Errorf("insert room: %w", err)
	}
	return nil, fmt.Errorf("insert room: could not allocate a unique join code")
}

func (s *RoomStore) GetByID(id string) (*model.Room, error) {
	row := s.db.QueryRow(`SELECT `+roomCols+` FROM rooms WHERE id = ?`, id)
	r, err := scanRoom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	return r, nil
}

// GetByJoinCode resolves the flat join-code namespace to a room. Archived
// rooms release their code, so this never returns one.
func (s *RoomStore) GetByJoinCode(code string) (*model.Room, error) {
	row := s.db.QueryRow(`SELECT `+roomCols+` FROM rooms WHERE join_code = ?`, code)
	r, err := scanRoom(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get room by code: %w", err)
	}
	return r, nil
}

func (s *RoomStore) ListByOwner(ownerID string) ([]model.Room, error) {
	rows, err := s.db.Query(
		`SELECT `+roomCols+` FROM rooms WHERE owner_id = ? AND archived_at IS NULL ORDER BY created_at DESC, id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []model.Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, *r)
	}
	return rooms, rows.Err()
}

// Archive soft-deletes a room and frees its join code.
func (s *RoomStore) Archive(id string) error {
	_, err := s.db.Exec(
		`UPDATE rooms SET archived_at = CURRENT_TIMESTAMP, join_code = NULL, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND archived_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("archive room: %w", err)
	}
	return nil
}

// --- Membership ---

func scanMember(scanner interface{ Scan(...any) error }) (*model.RoomMember, error) {
	var m model.RoomMember
	err := scanner.Scan(&m.ID, &m.RoomID, &m.UserID, &m.Role, &m.JoinedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const memberCols = `id, room_id, user_id, role, joined_at`

func (s *RoomStore) AddMember(roomID, userID string) (*model.RoomMember, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO room_members (id, room_id, user_id, role) VALUES (?, ?, ?, ?)`,
		id, roomID, userID, model.RoleStudent,
	)
	if err != nil {
		return nil, fmt.Errorf("insert member: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+memberCols+` FROM room_members WHERE id = ?`, id)
	return scanMember(row)
}

func (s *RoomStore) GetMember(roomID, userID string) (*model.RoomMember, error) {
	row := s.db.QueryRow(
		`SELECT `+memberCols+` FROM room_members WHERE room_id = ? AND user_id = ?`,
		roomID, userID,
	)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (s *RoomStore) ListMembers(roomID string) ([]model.RoomMember, error) {
	rows, err := s.db.Query(
		`SELECT `+memberCols+` FROM room_members WHERE room_id = ? ORDER BY joined_at, id`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.RoomMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *RoomStore) RemoveMember(roomID, userID string) error {
	_, err := s.db.Exec(
		`DELETE FROM room_members WHERE room_id = ? AND user_id = ?`,
		roomID, userID,
	)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

// ListJoinedRooms enumerates the active rooms a student belongs to through
// the membership index, joined against the room record for display fields.
func (s *RoomStore) ListJoinedRooms(userID string) ([]model.JoinedRoom, error) {
	rows, err := s.db.Query(
		`SELECT r.id, r.owner_id, r.name, r.description, m.joined_at
		 FROM room_members m
		 JOIN rooms r ON r.id = m.room_id
		 WHERE m.user_id = ? AND r.archived_at IS NULL
		 ORDER BY m.joined_at DESC, r.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list joined rooms: %w", err)
	}
	defer rows.Close()

	var joined []model.JoinedRoom
	for rows.Next() {
		var jr model.JoinedRoom
		var joinedAt time.Time
		if err := rows.Scan(&jr.RoomID, &jr.OwnerID, &jr.RoomName, &jr.RoomDescription, &joinedAt); err != nil {
			return nil, fmt.Errorf("scan joined room: %w", err)
		}
		jr.JoinedAt = joinedAt
		joined = append(joined, jr)
	}
	return joined, rows.Err()
}
