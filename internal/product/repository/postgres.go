package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-invoice-service/internal/model"
	"github.com/jmoiron/sqlx"
)

const productColumns = `id, name, short_description, content, sku, sale_price, stock_quantity,
	publish_status, created_at, updated_at`

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
        INSERT INTO products (
            id, name, short_description, content, sku, sale_price, stock_quantity,
            publish_status, created_at, updated_at
        )
        VALUES (
            :id, :name, :short_description, :content, :sku, :sale_price, :stock_quantity,
            :publish_status, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}

func (r *SQLRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	query := r.DB.Rebind(`SELECT ` + productColumns + ` FROM products WHERE id = ? LIMIT 1`)
	err := r.DB.GetContext(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// FindAll returns the full catalog ordered by name.
func (r *SQLRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	products := []model.Product{}
	query := `SELECT ` + productColumns + ` FROM products ORDER BY name, created_at`
	if err := r.DB.SelectContext(ctx, &products, query); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *SQLRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
        UPDATE products
        SET name = :name,
            short_description = :short_description,
            content = :content,
            sku = :sku,
            sale_price = :sale_price,
            stock_quantity = :stock_quantity,
            publish_status = :publish_status,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	return err
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind("DELETE FROM products WHERE id = ?"), id)
	return err
}
