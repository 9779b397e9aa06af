package user

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gymhub/internal/auth"
)

var userRowColumns = []string{"id", "username", "email", "password_hash", "first_name", "last_name", "role", "enabled", "created_at", "updated_at"}

func setupUserMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func userRow(id int, username, role string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userRowColumns).
		AddRow(id, username, username+"@example.com", "hash", "Alice", "Smith", role, true, now, now)
}

func TestCreateAndFindUser(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (username, email, password_hash, first_name, last_name, role, enabled)")).
		WithArgs("alice", "alice@example.com", "hash", "Alice", "Smith", "TRAINER", true).
		WillReturnRows(userRow(1, "alice", "TRAINER"))

	u, err := repo.Create(ctx, &User{
		Username: "alice", Email: "alice@example.com", PasswordHash: "hash",
		FirstName: "Alice", LastName: "Smith", Role: auth.RoleTrainer, Enabled: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, u.ID)
	assert.Equal(t, auth.RoleTrainer, u.Role)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1 OR email = $1")).
		WithArgs("alice@example.com").
		WillReturnRows(userRow(1, "alice", "TRAINER"))

	fu, err := repo.FindByLogin(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", fu.Username)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)")).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.EmailExists(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockByID(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1 FOR UPDATE")).
		WithArgs(7).
		WillReturnRows(userRow(7, "coach", "TRAINER"))

	u, err := repo.LockByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByRole(t *testing.T) {
	repo, mock, close := setupUserMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE role = $1 ORDER BY id")).
		WithArgs("TRAINER").
		WillReturnRows(userRow(2, "coach", "TRAINER"))

	users, err := repo.ListByRole(context.Background(), auth.RoleTrainer)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUser(t *testing.T) {
	tests := []struct {
		name        string
		rows        int64
		expectedErr error
	}{
		{"deleted", 1, nil},
		{"missing", 0, ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, close := setupUserMock(t)
			defer close()

			mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
				WithArgs(3).
				WillReturnResult(sqlmock.NewResult(0, tt.rows))

			err := repo.Delete(context.Background(), 3)
			assert.Equal(t, tt.expectedErr, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
