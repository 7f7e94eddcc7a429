package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userCols = `id, name, email, role, password_hash, created_at, updated_at`

func (s *UserStore) CreateUser(name, email, role, passwordHash string) (*model.User, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO users (id, name, email, role, password_hash) VALUES (?, ?, ?, ?, ?)`,
		id, name, email, role, passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetUserByID(id)
}

func (s *UserStore) GetUserByID(id string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetUserByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// NamesByID returns a display-name lookup for the given user ids.
// Unknown ids are simply absent from the result.
func (s *UserStore) NamesByID(ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		if _, ok := names[id]; ok {
			continue
		}
		var name string
		err := s.db.QueryRow(`SELECT name FROM users WHERE id = ?`, id).Scan(&name)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lookup name: %w", err)
		}
		names[id] = name
	}
	return names, nil
}

func (s *UserStore) UpdateProfile(id, name string) (*model.User, error) {
	_, err := s.db.Exec(
		`UPDATE users SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.GetUserByID(id)
}
