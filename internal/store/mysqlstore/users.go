package mysqlstore

import (
	"context"
	"fmt"

	"github.com/01moynul/storefront-fulfillment/internal/database"
	"github.com/01moynul/storefront-fulfillment/internal/models"
)

const userColumns = `id, username, email, full_name, password_hash, role, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FullName,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, email, full_name, password_hash, role)
		VALUES (?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.FullName, user.PasswordHash, user.Role)
	if err != nil {
		if database.IsDuplicate(err) {
			return database.ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get new user id: %w", err)
	}

	stored, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	*user = *stored
	return nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}
