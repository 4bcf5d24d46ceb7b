package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avaldes/remarket-api/internal/cognito"
	"github.com/avaldes/remarket-api/internal/database"
	"github.com/avaldes/remarket-api/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupUserService(t *testing.T) (*UserService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewUserService(db, testLogger()), mock
}

func claimsWithSub(sub, email string) *cognito.Claims {
	c := &cognito.Claims{Email: email}
	c.Subject = sub
	return c
}

func userRow(id int64, sub, email, role, status string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "cognito_sub", "email", "full_name", "role", "status", "created_at", "updated_at",
	}).AddRow(id, sub, email, nil, role, status, now, now)
}

func TestUserService_ResolveStrict_ActiveUser(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	sub := uuid.New().String()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE cognito_sub`).
		WithArgs(sub).
		WillReturnRows(userRow(1, sub, "a@example.com", models.RoleUser, models.StatusActive))

	user, err := svc.ResolveStrict(ctx, claimsWithSub(sub, "a@example.com"))

	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, models.StatusActive, user.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_ResolveStrict_UnknownSubject(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	sub := uuid.New().String()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE cognito_sub`).
		WithArgs(sub).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.ResolveStrict(ctx, claimsWithSub(sub, "a@example.com"))

	assert.ErrorIs(t, err, ErrUnregisteredUser)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Resolve_BlockedUser(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	sub := uuid.New().String()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE cognito_sub`).
		WithArgs(sub).
		WillReturnRows(userRow(2, sub, "b@example.com", models.RoleUser, models.StatusBlocked))

	_, err := svc.ResolveStrict(ctx, claimsWithSub(sub, "b@example.com"))

	assert.ErrorIs(t, err, ErrAccountBlocked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_ResolveStrict_PendingUser(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	sub := uuid.New().String()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE cognito_sub`).
		WithArgs(sub).
		WillReturnRows(userRow(3, sub, "c@example.com", models.RoleUser, models.StatusPending))

	_, err := svc.ResolveStrict(ctx, claimsWithSub(sub, "c@example.com"))

	assert.ErrorIs(t, err, ErrAccountPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_ResolveOrCreate_PendingUserPasses(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	sub := uuid.New().String()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE cognito_sub`).
		WithArgs(sub).
		WillReturnRows(userRow(3, sub, "c@example.com", models.RoleUser, models.StatusPending))

	user, err := svc.ResolveOrCreate(ctx, claimsWithSub(sub, "c@example.com"))

	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, user.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_ResolveOrCreate_CreatesPending(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	sub := uuid.New().String()
	email := "new@example.com"

	mock.ExpectQuery(`SELECT .+ FROM users WHERE cognito_sub`).
		WithArgs(sub).
		WillReturnError(pgx.ErrNoRows)

	mock.ExpectQuery(`INSERT INTO users .+ ON CONFLICT \(cognito_sub\) DO NOTHING`).
		WithArgs(sub, email).
		WillReturnRows(userRow(4, sub, email, models.RoleUser, models.StatusPending))

	user, err := svc.ResolveOrCreate(ctx, claimsWithSub(sub, email))

	require.NoError(t, err)
	assert.Equal(t, int64(4), user.ID)
	assert.Equal(t, models.StatusPending, user.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_ResolveOrCreate_LostInsertRace(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	sub := uuid.New().String()
	email := "racer@example.com"

	mock.ExpectQuery(`SELECT .+ FROM users WHERE cognito_sub`).
		WithArgs(sub).
		WillReturnError(pgx.ErrNoRows)

	// ON CONFLICT DO NOTHING returns no row when another request won.
	mock.ExpectQuery(`INSERT INTO users .+ ON CONFLICT \(cognito_sub\) DO NOTHING`).
		WithArgs(sub, email).
		WillReturnError(pgx.ErrNoRows)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE cognito_sub`).
		WithArgs(sub).
		WillReturnRows(userRow(5, sub, email, models.RoleUser, models.StatusPending))

	user, err := svc.ResolveOrCreate(ctx, claimsWithSub(sub, email))

	require.NoError(t, err)
	assert.Equal(t, int64(5), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Resolve_MissingSubject(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()

	_, err := svc.ResolveStrict(ctx, claimsWithSub("", "x@example.com"))

	assert.ErrorIs(t, err, cognito.ErrInvalidToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Resolve_MalformedSubject(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()

	_, err := svc.ResolveStrict(ctx, claimsWithSub("not-a-uuid", "x@example.com"))

	assert.ErrorIs(t, err, cognito.ErrInvalidToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetByID(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	sub := uuid.New().String()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs(int64(7)).
		WillReturnRows(userRow(7, sub, "g@example.com", models.RoleUser, models.StatusActive))

	user, err := svc.GetByID(ctx, 7)

	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetByID_NotFound(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetByID(ctx, 404)

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_UpdateProfile(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	sub := uuid.New().String()
	name := "Renamed Seller"

	now := time.Now()
	rows := pgxmock.NewRows([]string{
		"id", "cognito_sub", "email", "full_name", "role", "status", "created_at", "updated_at",
	}).AddRow(int64(8), sub, "h@example.com", &name, models.RoleUser, models.StatusActive, now, now)

	mock.ExpectQuery(`UPDATE users SET full_name`).
		WithArgs(name, int64(8)).
		WillReturnRows(rows)

	user, err := svc.UpdateProfile(ctx, 8, name)

	require.NoError(t, err)
	require.NotNil(t, user.FullName)
	assert.Equal(t, name, *user.FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_SetStatus(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	sub := uuid.New().String()

	mock.ExpectQuery(`UPDATE users SET status`).
		WithArgs(models.StatusActive, int64(9)).
		WillReturnRows(userRow(9, sub, "i@example.com", models.RoleUser, models.StatusActive))

	user, err := svc.SetStatus(ctx, 9, models.StatusActive)

	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, user.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_SetStatus_NotFound(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()

	mock.ExpectQuery(`UPDATE users SET status`).
		WithArgs(models.StatusBlocked, int64(404)).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.SetStatus(ctx, 404, models.StatusBlocked)

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
