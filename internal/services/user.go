package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HammerMeetNail/reelcanon/internal/logging"
	"github.com/HammerMeetNail/reelcanon/internal/models"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
)

const userColumns = `id, username, email, password_hash, is_admin, created_at, updated_at`

// friendshipPurger removes a user's pairs inside the caller's transaction.
type friendshipPurger interface {
	DeleteAllFor(ctx context.Context, q Querier, userID uuid.UUID) (int64, error)
}

type UserService struct {
	db          DB
	friendships friendshipPurger
	cache       CacheInvalidator
}

func NewUserService(db DB, friendships friendshipPurger, cache CacheInvalidator) *UserService {
	return &UserService{db: db, friendships: friendships, cache: cache}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func scanUser(row Row) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// duplicateUserError joins the conflicts found so callers can report each field.
func duplicateUserError(usernameTaken, emailTaken bool) error {
	var errs []error
	if usernameTaken {
		errs = append(errs, ErrUsernameAlreadyExists)
	}
	if emailTaken {
		errs = append(errs, ErrEmailAlreadyExists)
	}
	return errors.Join(errs...)
}

func mapUserUniqueViolation(err error) error {
	switch {
	case isUniqueViolation(err, "users_username_key"):
		return ErrUsernameAlreadyExists
	case isUniqueViolation(err, "users_email_lower_key"):
		return ErrEmailAlreadyExists
	}
	return nil
}

func (s *UserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	email := normalizeEmail(params.Email)

	var usernameTaken, emailTaken bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1),
		        EXISTS(SELECT 1 FROM users WHERE LOWER(email) = $2)`,
		params.Username, email,
	).Scan(&usernameTaken, &emailTaken)
	if err != nil {
		return nil, fmt.Errorf("checking user uniqueness: %w", err)
	}
	if err := duplicateUserError(usernameTaken, emailTaken); err != nil {
		return nil, err
	}

	user, err := scanUser(s.db.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, is_admin)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		params.Username, email, params.PasswordHash, params.IsAdmin,
	))
	if mapped := mapUserUniqueViolation(err); mapped != nil {
		return nil, mapped
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by id: %w", err)
	}
	return user, nil
}

// FindByLogin looks a user up by username or, case-insensitively, by email.
func (s *UserService) FindByLogin(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	user, err := scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE username = $1 OR LOWER(email) = LOWER($1)
		 LIMIT 1`,
		identifier,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding user by login: %w", err)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, params models.UpdateUserParams) (*models.User, error) {
	var email *string
	if params.Email != nil {
		e := normalizeEmail(*params.Email)
		email = &e
	}

	user, err := scanUser(s.db.QueryRow(ctx,
		`UPDATE users
		 SET username = COALESCE($2, username),
		     email = COALESCE($3, email),
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, params.Username, email,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if mapped := mapUserUniqueViolation(err); mapped != nil {
		return nil, mapped
	}
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	if params.Username != nil {
		invalidateCache(ctx, s.cache)
	}
	return user, nil
}

func (s *UserService) UpdatePassword(ctx context.Context, userID uuid.UUID, newPasswordHash string) error {
	result, err := s.db.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		newPasswordHash, userID,
	)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Delete removes the user together with their friendships and reel progress
// in a single transaction.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete user transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	removed, err := s.friendships.DeleteAllFor(ctx, tx, id)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM reel_progress WHERE user_id = $1`, id); err != nil {
		return fmt.Errorf("deleting reel progress for user: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete user: %w", err)
	}
	committed = true

	logging.Info("User deleted", map[string]interface{}{
		"user_id":             id.String(),
		"friendships_removed": removed,
	})
	invalidateCache(ctx, s.cache)
	return nil
}
