package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fekuna/omnipos-invoice-service/internal/model"
	"github.com/fekuna/omnipos-invoice-service/internal/user"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T, driver string) (*SQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewSQLRepository(sqlx.NewDb(mockDB, driver)), mock
}

func TestCreate_DuplicateEmail(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		err    error
	}{
		{"postgres", "pgx", &pgconn.PgError{Code: "23505"}},
		{"mysql", "mysql", &mysql.MySQLError{Number: 1062}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t, tt.driver)
			now := time.Now()
			u := &model.User{BaseModel: model.BaseModel{ID: "u1", CreatedAt: now, UpdatedAt: now}, Email: "ana@example.com", PasswordHash: "h"}

			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).WillReturnError(tt.err)

			err := repo.Create(context.Background(), u)
			assert.ErrorIs(t, err, user.ErrEmailTaken)
		})
	}
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t, "pgx")
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1 LIMIT 1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	u, err := repo.FindByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestFindByID_ScansPasswordHash(t *testing.T) {
	repo, mock := newMockRepo(t, "pgx")
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "created_at", "updated_at"}).
			AddRow("u1", "ana@example.com", "Ana", "$2a$10$hash", now, now))

	u, err := repo.FindByID(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "$2a$10$hash", u.PasswordHash)
}
