// Package postgres persists development backend accounts in Postgres.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hongminglow/wayfarer/internal/models"
	"github.com/hongminglow/wayfarer/internal/storage"
)

var _ storage.UserStore = (*Store)(nil)

const userColumns = `id, username, email, role, full_name, bio, avatar_url, password_hash, created_at`

// Store provides Postgres-backed persistence for users.
type Store struct {
	pool *pgxpool.Pool
}

// NewUserStore connects and runs migrations.
func NewUserStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS wayfarer_users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'TRAVELER',
			full_name TEXT NOT NULL DEFAULT '',
			bio TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS wayfarer_users_username_idx ON wayfarer_users (lower(username));`,
		`CREATE UNIQUE INDEX IF NOT EXISTS wayfarer_users_email_idx ON wayfarer_users (lower(email));`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `INSERT INTO wayfarer_users (username, email, role, full_name, bio, avatar_url, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query, user.Username, user.Email, user.Role, user.FullName, user.Bio, user.AvatarURL, user.PasswordHash)
	return scanUser(row)
}

// FindByID fetches a user by id.
func (s *Store) FindByID(ctx context.Context, id int64) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM wayfarer_users WHERE id = $1`, id)
	return scanUser(row)
}

// FindByUsername fetches a user by username, ignoring case.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM wayfarer_users WHERE lower(username) = lower($1)`, username)
	return scanUser(row)
}

// FindByUsernameOrEmail fetches the first user matching the identifier as username or email.
func (s *Store) FindByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM wayfarer_users
		WHERE lower(username) = lower($1) OR lower(email) = lower($1)
		LIMIT 1`, identifier)
	return scanUser(row)
}

// UpdateUser saves the editable profile fields.
func (s *Store) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	row := s.pool.QueryRow(ctx, `UPDATE wayfarer_users
		SET email = $2, full_name = $3, bio = $4, avatar_url = $5
		WHERE id = $1
		RETURNING `+userColumns, user.ID, user.Email, user.FullName, user.Bio, user.AvatarURL)
	return scanUser(row)
}

// DeleteUser removes an account.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM wayfarer_users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SearchUsers matches usernames by case-insensitive substring.
func (s *Store) SearchUsers(ctx context.Context, query string, limit int) ([]models.UserSummary, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, username, role FROM wayfarer_users
		WHERE username ILIKE '%' || $1 || '%'
		ORDER BY username
		LIMIT $2`, query, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.UserSummary, error) {
		var user models.UserSummary
		err := row.Scan(&user.ID, &user.Username, &user.Role)
		return user, err
	})
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Role, &user.FullName, &user.Bio, &user.AvatarURL, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return user, nil
}
