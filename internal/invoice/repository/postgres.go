package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-invoice-service/internal/database"
	"github.com/fekuna/omnipos-invoice-service/internal/invoice"
	"github.com/fekuna/omnipos-invoice-service/internal/model"
	"github.com/jmoiron/sqlx"
)

const invoiceColumns = `id, invoice_number, status, customer_id, items, shipping, discount, tax_rate,
	subtotal, tax_amount, total_amount, issue_date, due_date, created_at, updated_at`

// SQLRepository works against both postgres and mysql; positional queries are
// rebound to the driver's placeholder style.
type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) Create(ctx context.Context, inv *model.Invoice) error {
	query := `
        INSERT INTO invoices (
            id, invoice_number, status, customer_id, items, shipping, discount, tax_rate,
            subtotal, tax_amount, total_amount, issue_date, due_date, created_at, updated_at
        )
        VALUES (
            :id, :invoice_number, :status, :customer_id, :items, :shipping, :discount, :tax_rate,
            :subtotal, :tax_amount, :total_amount, :issue_date, :due_date, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, inv)
	if database.IsUniqueViolation(err) {
		return invoice.ErrInvoiceNumberConflict
	}
	return err
}

// Update overwrites every mutable column. invoice_number and created_at are
// never written after insert.
func (r *SQLRepository) Update(ctx context.Context, inv *model.Invoice) error {
	query := `
        UPDATE invoices
        SET status = :status,
            customer_id = :customer_id,
            items = :items,
            shipping = :shipping,
            discount = :discount,
            tax_rate = :tax_rate,
            subtotal = :subtotal,
            tax_amount = :tax_amount,
            total_amount = :total_amount,
            issue_date = :issue_date,
            due_date = :due_date,
            updated_at = :updated_at
        WHERE id = :id
    `
	res, err := r.DB.NamedExecContext(ctx, query, inv)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return invoice.ErrInvoiceNotFound
	}
	return nil
}

func (r *SQLRepository) FindByID(ctx context.Context, id string) (*model.Invoice, error) {
	var inv model.Invoice
	query := r.DB.Rebind(`SELECT ` + invoiceColumns + ` FROM invoices WHERE id = ? LIMIT 1`)
	err := r.DB.GetContext(ctx, &inv, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *SQLRepository) FindLatest(ctx context.Context) (*model.Invoice, error) {
	var inv model.Invoice
	query := `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY created_at DESC LIMIT 1`
	err := r.DB.GetContext(ctx, &inv, query)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

type invoiceWithCustomer struct {
	model.Invoice
	CustomerName     sql.NullString `db:"customer_name"`
	CustomerEmail    sql.NullString `db:"customer_email"`
	CustomerPhone    sql.NullString `db:"customer_phone"`
	CustomerCountry  sql.NullString `db:"customer_country"`
	CustomerState    sql.NullString `db:"customer_state"`
	CustomerCity     sql.NullString `db:"customer_city"`
	CustomerAddress1 sql.NullString `db:"customer_address1"`
	CustomerAddress2 sql.NullString `db:"customer_address2"`
	CustomerZip      sql.NullString `db:"customer_zip"`
}

func (r *SQLRepository) FindAll(ctx context.Context) ([]model.Invoice, error) {
	query := `
        SELECT i.id, i.invoice_number, i.status, i.customer_id, i.items, i.shipping, i.discount,
               i.tax_rate, i.subtotal, i.tax_amount, i.total_amount, i.issue_date, i.due_date,
               i.created_at, i.updated_at,
               c.name AS customer_name, c.email AS customer_email, c.phone AS customer_phone,
               c.country AS customer_country, c.state AS customer_state, c.city AS customer_city,
               c.address1 AS customer_address1, c.address2 AS customer_address2, c.zip AS customer_zip
        FROM invoices i
        LEFT JOIN customers c ON c.id = i.customer_id
        ORDER BY i.created_at DESC
    `
	var rows []invoiceWithCustomer
	if err := r.DB.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	invoices := make([]model.Invoice, 0, len(rows))
	for _, row := range rows {
		inv := row.Invoice
		if row.CustomerName.Valid {
			inv.Customer = &model.Customer{
				BaseModel: model.BaseModel{ID: inv.CustomerID},
				Name:      row.CustomerName.String,
				Email:     row.CustomerEmail.String,
				Phone:     row.CustomerPhone.String,
				Country:   row.CustomerCountry.String,
				State:     row.CustomerState.String,
				City:      row.CustomerCity.String,
				Address1:  row.CustomerAddress1.String,
				Address2:  row.CustomerAddress2.String,
				Zip:       row.CustomerZip.String,
			}
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

func (r *SQLRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	query, args, err := sqlx.In(`DELETE FROM invoices WHERE id IN (?)`, ids)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx, r.DB.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
