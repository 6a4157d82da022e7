package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
INSERT INTO orders (id, session_id, status, subtotal, tax, shipping, grand_total,
    ship_to_name, ship_to_email, ship_to_address, ship_to_city, ship_to_postal_code, ship_to_country, created_at)
VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7::numeric, $8, $9, $10, $11, $12, $13, $14)
`,
		o.ID, o.SessionID, o.Status,
		o.Subtotal.String(), o.Tax.String(), o.ShippingCost.String(), o.GrandTotal.String(),
		o.ShipTo.Name, o.ShipTo.Email, o.ShipTo.Address, o.ShipTo.City, o.ShipTo.PostalCode, o.ShipTo.Country,
		o.CreatedAt,
	)
	if err != nil {
		return err
	}

	for i, line := range o.Lines {
		if _, err := tx.Exec(ctx, `
INSERT INTO order_lines (order_id, position, product_id, name, unit_price, quantity, total)
VALUES ($1, $2, $3, $4, $5::numeric, $6, $7::numeric)
`, o.ID, i, line.ProductID, line.Name, line.UnitPrice.String(), line.Quantity, line.Total.String()); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var (
		o                              domain.Order
		subtotal, tax, shipping, total string
	)
	err := r.pool.QueryRow(ctx, `
SELECT id::text, session_id, status, subtotal::text, tax::text, shipping::text, grand_total::text,
    ship_to_name, ship_to_email, ship_to_address, ship_to_city, ship_to_postal_code, ship_to_country, created_at
FROM orders
WHERE id::text = $1
`, id).Scan(
		&o.ID, &o.SessionID, &o.Status, &subtotal, &tax, &shipping, &total,
		&o.ShipTo.Name, &o.ShipTo.Email, &o.ShipTo.Address, &o.ShipTo.City, &o.ShipTo.PostalCode, &o.ShipTo.Country,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if o.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return nil, fmt.Errorf("order %s subtotal: %w", id, err)
	}
	if o.Tax, err = decimal.NewFromString(tax); err != nil {
		return nil, fmt.Errorf("order %s tax: %w", id, err)
	}
	if o.ShippingCost, err = decimal.NewFromString(shipping); err != nil {
		return nil, fmt.Errorf("order %s shipping: %w", id, err)
	}
	if o.GrandTotal, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("order %s total: %w", id, err)
	}

	rows, err := r.pool.Query(ctx, `
SELECT product_id, name, unit_price::text, quantity, total::text
FROM order_lines
WHERE order_id = $1::uuid
ORDER BY position ASC
`, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line            domain.OrderLine
			unit, lineTotal string
		)
		if err := rows.Scan(&line.ProductID, &line.Name, &unit, &line.Quantity, &lineTotal); err != nil {
			return nil, err
		}
		if line.UnitPrice, err = decimal.NewFromString(unit); err != nil {
			return nil, fmt.Errorf("order %s line %s price: %w", id, line.ProductID, err)
		}
		if line.Total, err = decimal.NewFromString(lineTotal); err != nil {
			return nil, fmt.Errorf("order %s line %s total: %w", id, line.ProductID, err)
		}
		o.Lines = append(o.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}
