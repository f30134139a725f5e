package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-invoice-service/internal/model"
	"github.com/jmoiron/sqlx"
)

const customerColumns = `id, name, email, phone, country, state, city, address1, address2, zip, created_at, updated_at`

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) Create(ctx context.Context, c *model.Customer) error {
	query := `
        INSERT INTO customers (id, name, email, phone, country, state, city, address1, address2, zip, created_at, updated_at)
        VALUES (:id, :name, :email, :phone, :country, :state, :city, :address1, :address2, :zip, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return err
}

func (r *SQLRepository) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	var c model.Customer
	query := r.DB.Rebind(`SELECT ` + customerColumns + ` FROM customers WHERE id = ? LIMIT 1`)
	if err := r.DB.GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *SQLRepository) FindAll(ctx context.Context) ([]model.Customer, error) {
	customers := []model.Customer{}
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at DESC`
	if err := r.DB.SelectContext(ctx, &customers, query); err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *SQLRepository) Update(ctx context.Context, c *model.Customer) error {
	query := `
        UPDATE customers
        SET name = :name, email = :email, phone = :phone, country = :country, state = :state,
            city = :city, address1 = :address1, address2 = :address2, zip = :zip, updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return err
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind("DELETE FROM customers WHERE id = ?"), id)
	return err
}
