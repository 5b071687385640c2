package postgres

import (
	"database/sql"
	"errors"

	"github.com/taskgraph/taskgraph/internal/auth"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetPasswordForUsername(username string) (string, int64, error) {
	var passwordHash string
	var userID int64
	query := `SELECT id, password_hash FROM users WHERE username = ? AND is_active = true`

	row := r.db.Raw(query, username).Row()
	if err := row.Scan(&userID, &passwordHash); err != nil {
		if err == sql.ErrNoRows {
			return "", 0, auth.ErrUserNotFound
		}
		return "", 0, err
	}
	return passwordHash, userID, nil
}

func (r *Repository) GetUserByID(userID int64) (*auth.User, error) {
	var u auth.User
	query := `SELECT id, username, role, score FROM users WHERE id = ? AND is_active = true`

	row := r.db.Raw(query, userID).Row()
	if err := row.Scan(&u.ID, &u.Username, &u.Role, &u.Score); err != nil {
		if err == sql.ErrNoRows {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) CreateUser(username, passwordHash string, role int) (*auth.User, error) {
	query := `INSERT INTO users (username, password_hash, role, score, is_active, created_at, updated_at)
	          VALUES (?, ?, ?, 100, true, now(), now())`

	if err := r.db.Exec(query, username, passwordHash, role).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, auth.ErrUsernameTaken
		}
		return nil, err
	}

	var u auth.User
	row := r.db.Raw(`SELECT id, username, role, score FROM users WHERE username = ?`, username).Row()
	if err := row.Scan(&u.ID, &u.Username, &u.Role, &u.Score); err != nil {
		return nil, err
	}
	return &u, nil
}
