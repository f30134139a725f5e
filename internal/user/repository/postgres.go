package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-invoice-service/internal/database"
	"github.com/fekuna/omnipos-invoice-service/internal/model"
	"github.com/fekuna/omnipos-invoice-service/internal/user"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, email, name, password_hash, created_at, updated_at`

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) Create(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (id, email, name, password_hash, created_at, updated_at)
        VALUES (:id, :email, :name, :password_hash, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, u)
	if database.IsUniqueViolation(err) {
		return user.ErrEmailTaken
	}
	return err
}

func (r *SQLRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	query := r.DB.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ? LIMIT 1`)
	if err := r.DB.GetContext(ctx, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *SQLRepository) FindAll(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	if err := r.DB.SelectContext(ctx, &users, query); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *SQLRepository) Update(ctx context.Context, u *model.User) error {
	query := `
        UPDATE users
        SET email = :email, name = :name, password_hash = :password_hash, updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, u)
	if database.IsUniqueViolation(err) {
		return user.ErrEmailTaken
	}
	return err
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind("DELETE FROM users WHERE id = ?"), id)
	return err
}
