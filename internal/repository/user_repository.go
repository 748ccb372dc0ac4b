package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/khetbazaar/estate-admin-api/internal/database"
	"github.com/khetbazaar/estate-admin-api/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// FindByEmail looks a user up by email.
	// Returns nil, nil if no user is found (not an error).
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// CreateUser inserts a user row and returns it with its assigned id.
	CreateUser(ctx context.Context, email, hashedPassword string) (*models.User, error)

	// CreateProfile inserts an unverified profile row for the user.
	CreateProfile(ctx context.Context, userID int64) error

	// CreateRoleLink assigns a role to the user.
	CreateRoleLink(ctx context.Context, userID int64, roleID int) error

	// DeleteUser removes a user row. Used to compensate a half-finished
	// signup when profile or role creation fails.
	DeleteUser(ctx context.Context, userID int64) error

	// FindRoleLink fetches the user's role assignment.
	// Returns nil, nil if the user has no role (not an error).
	FindRoleLink(ctx context.Context, userID int64) (*models.UserRoleLink, error)

	// ExportRows returns the users+profiles join for the CSV export,
	// outer-join semantics: profile fields are nil when absent.
	ExportRows(ctx context.Context) ([]models.UserExportRow, error)
}

// userRepository is the concrete implementation of UserRepository.
type userRepository struct {
	db *database.Database
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *database.Database) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT user_id, email, hashed_password, phone_number, created_at
		FROM users
		WHERE email = $1
	`

	var u models.User
	err := r.db.Pool.QueryRow(ctx, query, email).Scan(
		&u.UserID,
		&u.Email,
		&u.HashedPassword,
		&u.PhoneNumber,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}

	return &u, nil
}

func (r *userRepository) CreateUser(ctx context.Context, email, hashedPassword string) (*models.User, error) {
	query := `
		INSERT INTO users (email, hashed_password)
		VALUES ($1, $2)
		RETURNING user_id, created_at
	`

	u := models.User{
		Email:          email,
		HashedPassword: hashedPassword,
	}
	err := r.db.Pool.QueryRow(ctx, query, email, hashedPassword).Scan(&u.UserID, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return &u, nil
}

func (r *userRepository) CreateProfile(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO user_profile (user_id, email_verified, active, phone_verified)
		VALUES ($1, FALSE, TRUE, FALSE)
	`

	if _, err := r.db.Pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to insert profile for user %d: %w", userID, err)
	}
	return nil
}

func (r *userRepository) CreateRoleLink(ctx context.Context, userID int64, roleID int) error {
	query := `INSERT INTO user_role_links (user_id, role_id) VALUES ($1, $2)`

	if _, err := r.db.Pool.Exec(ctx, query, userID, roleID); err != nil {
		return fmt.Errorf("failed to insert role link for user %d: %w", userID, err)
	}
	return nil
}

func (r *userRepository) DeleteUser(ctx context.Context, userID int64) error {
	query := `DELETE FROM users WHERE user_id = $1`

	if _, err := r.db.Pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete user %d: %w", userID, err)
	}
	return nil
}

func (r *userRepository) FindRoleLink(ctx context.Context, userID int64) (*models.UserRoleLink, error) {
	query := `SELECT user_id, role_id FROM user_role_links WHERE user_id = $1`

	var link models.UserRoleLink
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(&link.UserID, &link.RoleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query role link for user %d: %w", userID, err)
	}

	return &link, nil
}

func (r *userRepository) ExportRows(ctx context.Context) ([]models.UserExportRow, error) {
	query := `
		SELECT
			u.user_id,
			u.email,
			u.phone_number,
			u.created_at,
			p.first_name,
			p.last_name,
			p.active,
			COALESCE(p.email_verified, FALSE),
			COALESCE(p.phone_verified, FALSE)
		FROM users u
		LEFT JOIN user_profile p ON p.user_id = u.user_id
		ORDER BY u.user_id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query user export rows: %w", err)
	}
	defer rows.Close()

	var result []models.UserExportRow
	for rows.Next() {
		var row models.UserExportRow
		err := rows.Scan(
			&row.UserID,
			&row.Email,
			&row.PhoneNumber,
			&row.CreatedAt,
			&row.FirstName,
			&row.LastName,
			&row.Active,
			&row.EmailVerified,
			&row.PhoneVerified,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user export row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user export rows: %w", err)
	}

	if result == nil {
		result = []models.UserExportRow{}
	}

	return result, nil
}
