package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/avaldes/remarket-api/internal/cognito"
	"github.com/avaldes/remarket-api/internal/database"
	"github.com/avaldes/remarket-api/internal/models"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUnregisteredUser = errors.New("no account exists for this identity")
	ErrAccountBlocked   = errors.New("account is blocked")
	ErrAccountPending   = errors.New("account is pending activation")
)

// OnMissing selects what Resolve does when no local account matches the
// token subject.
type OnMissing int

const (
	// RejectUnknown fails resolution with ErrUnregisteredUser.
	RejectUnknown OnMissing = iota
	// CreatePending creates a PENDING account keyed by the subject.
	CreatePending
)

const userColumns = `id, cognito_sub, email, full_name, role, status, created_at, updated_at`

type UserService struct {
	db     *database.DB
	logger *slog.Logger
}

func NewUserService(db *database.DB, logger *slog.Logger) *UserService {
	return &UserService{db: db, logger: logger.With(slog.String("component", "user_service"))}
}

// Resolve maps verified claims to a local user. The subject must be a
// Cognito sub (UUID). Status gating: BLOCKED always fails; PENDING fails
// except on the JIT path, where a fresh or still-pending account is
// returned as-is so the caller can report "awaiting activation" rather
// than a generic rejection.
func (s *UserService) Resolve(ctx context.Context, claims *cognito.Claims, onMissing OnMissing) (*models.User, error) {
	sub := claims.Subject
	if sub == "" {
		return nil, fmt.Errorf("token has no subject: %w", cognito.ErrInvalidToken)
	}
	if _, err := uuid.Parse(sub); err != nil {
		return nil, fmt.Errorf("subject %q is not a valid identifier: %w", sub, cognito.ErrInvalidToken)
	}

	user, err := s.GetByCognitoSub(ctx, sub)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if onMissing == CreatePending {
			return s.createPending(ctx, sub, claims.Email)
		}
		return nil, ErrUnregisteredUser
	}

	switch user.Status {
	case models.StatusBlocked:
		s.logger.Warn("blocked account attempted access", slog.Int64("user_id", user.ID))
		return nil, ErrAccountBlocked
	case models.StatusPending:
		if onMissing == CreatePending {
			return user, nil
		}
		return nil, ErrAccountPending
	}

	return user, nil
}

// ResolveStrict requires an existing ACTIVE account.
func (s *UserService) ResolveStrict(ctx context.Context, claims *cognito.Claims) (*models.User, error) {
	return s.Resolve(ctx, claims, RejectUnknown)
}

// ResolveOrCreate provisions a PENDING account on first sight of a subject.
func (s *UserService) ResolveOrCreate(ctx context.Context, claims *cognito.Claims) (*models.User, error) {
	return s.Resolve(ctx, claims, CreatePending)
}

// createPending inserts the just-in-time account. ON CONFLICT DO NOTHING
// plus a re-read keeps the unique-subject invariant when two requests race
// on the same unseen subject: exactly one row ends up created.
func (s *UserService) createPending(ctx context.Context, sub, email string) (*models.User, error) {
	var user models.User
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO users (cognito_sub, email)
		VALUES ($1, $2)
		ON CONFLICT (cognito_sub) DO NOTHING
		RETURNING `+userColumns+`
	`, sub, email).Scan(
		&user.ID, &user.CognitoSub, &user.Email, &user.FullName,
		&user.Role, &user.Status, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == nil {
		s.logger.Info("created account just-in-time", slog.Int64("user_id", user.ID), slog.String("sub", sub))
		return &user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Lost the insert race; the winner's row is committed now.
	return s.GetByCognitoSub(ctx, sub)
}

func (s *UserService) GetByCognitoSub(ctx context.Context, sub string) (*models.User, error) {
	var user models.User
	err := s.db.Pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE cognito_sub = $1
	`, sub).Scan(
		&user.ID, &user.CognitoSub, &user.Email, &user.FullName,
		&user.Role, &user.Status, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.db.Pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id).Scan(
		&user.ID, &user.CognitoSub, &user.Email, &user.FullName,
		&user.Role, &user.Status, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id int64, fullName string) (*models.User, error) {
	var user models.User
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE users SET full_name = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+userColumns+`
	`, fullName, id).Scan(
		&user.ID, &user.CognitoSub, &user.Email, &user.FullName,
		&user.Role, &user.Status, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SetStatus performs the admin status transitions: PENDING→ACTIVE on
// activation, any→BLOCKED on block.
func (s *UserService) SetStatus(ctx context.Context, id int64, status string) (*models.User, error) {
	var user models.User
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE users SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+userColumns+`
	`, status, id).Scan(
		&user.ID, &user.CognitoSub, &user.Email, &user.FullName,
		&user.Role, &user.Status, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.logger.Info("account status changed", slog.Int64("user_id", id), slog.String("status", status))
	return &user, nil
}
