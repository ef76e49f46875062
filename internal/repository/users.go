package repository

import (
	"context"
	"database/sql"

	"kassa/internal/database"
	"kassa/internal/models"
)

// UserRepository is the user directory: the external identity collaborator
// the booking core consumes requester identities from. Lookup is O(1)
// average on the indexed username.
type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT user_id, username, display_name, email, phone, password_hash,
		       registered_at, is_active
		FROM users
		WHERE username = $1`

	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.UserID,
		&user.Username,
		&user.DisplayName,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.RegisteredAt,
		&user.IsActive,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return user, err
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, display_name, email, phone, password_hash, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (username) DO NOTHING
		RETURNING user_id, registered_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.DisplayName,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.IsActive,
	).Scan(&user.UserID, &user.RegisteredAt)

	if err == sql.ErrNoRows {
		// Already present; not an error for the seeder.
		return nil
	}
	return err
}

// Identity converts a directory row into the opaque identity tuple the
// booking core works with.
func Identity(u *models.User) models.Identity {
	return models.Identity{
		Username: u.Username,
		Phone:    u.Phone,
		Email:    u.Email,
	}
}
