package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/onieto/order-service/internal/domain/coupon"
	"github.com/onieto/order-service/internal/domain/order"
)

const (
	orderColumns = `o.id, o.user_email, o.status, o.subtotal, o.discount_applied,
		o.final_price, o.order_date, o.version,
		c.id, c.code, c.discount_amount, c.active`

	getOrderByIDSQL = `SELECT ` + orderColumns + `
		FROM orders o LEFT JOIN coupons c ON c.id = o.coupon_id
		WHERE o.id = $1`

	listOrdersSQL = `SELECT ` + orderColumns + `
		FROM orders o LEFT JOIN coupons c ON c.id = o.coupon_id
		ORDER BY o.id`

	findActivePendingSQL = `SELECT ` + orderColumns + `
		FROM orders o LEFT JOIN coupons c ON c.id = o.coupon_id
		WHERE o.user_email = $1 AND o.status = $2
		ORDER BY o.order_date DESC, o.id DESC
		LIMIT 1`

	insertOrderSQL = `INSERT INTO orders
		(user_email, status, coupon_id, subtotal, discount_applied, final_price, order_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, version`

	replaceOrderSQL = `UPDATE orders SET
		user_email = $1, status = $2, coupon_id = $3, subtotal = $4,
		discount_applied = $5, final_price = $6, order_date = $7,
		version = version + 1
		WHERE id = $8 AND version = $9
		RETURNING version`

	orderExistsSQL = `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`

	setOrderStatusSQL = `UPDATE orders SET status = $2 WHERE id = $1`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`

	insertItemSQL = `INSERT INTO order_items
		(order_id, position, product_id, product_name, product_description,
		product_image, unit_price, quantity, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	deleteItemsSQL = `DELETE FROM order_items WHERE order_id = $1`

	getItemsSQL = `SELECT id, product_id, product_name, product_description,
		product_image, unit_price, quantity, subtotal
		FROM order_items WHERE order_id = $1 ORDER BY position`

	redeemCouponSQL = `UPDATE coupons SET active = FALSE
		WHERE UPPER(code) = UPPER($1) AND active = TRUE`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Writes
// that carry a coupon code to redeem deactivate the coupon inside the same
// transaction, and Replace enforces the optimistic version check.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts a new order with its line items. When redeemCouponCode is
// non-empty the coupon is deactivated in the same transaction; if it was
// already inactive the whole insert rolls back with coupon.ErrInactive.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order, redeemCouponCode string) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if err := redeemCoupon(ctx, tx, redeemCouponCode); err != nil {
			return err
		}

		err := tx.QueryRow(ctx, insertOrderSQL,
			o.UserEmail, string(o.Status), couponID(o), o.Subtotal,
			o.DiscountApplied, o.FinalPrice, o.OrderDate,
		).Scan(&o.ID, &o.Version)
		if err != nil {
			return fmt.Errorf("inserting order: %w", err)
		}

		return insertItems(ctx, tx, o)
	})
}

// Replace rewrites the order header and its entire line-item collection.
// The update only matches when the stored version equals o.Version; a
// mismatch surfaces as order.ErrVersionConflict and nothing is written.
func (r *OrderRepository) Replace(ctx context.Context, o *order.Order, redeemCouponCode string) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		if err := redeemCoupon(ctx, tx, redeemCouponCode); err != nil {
			return err
		}

		err := tx.QueryRow(ctx, replaceOrderSQL,
			o.UserEmail, string(o.Status), couponID(o), o.Subtotal,
			o.DiscountApplied, o.FinalPrice, o.OrderDate,
			o.ID, o.Version,
		).Scan(&o.Version)
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := tx.QueryRow(ctx, orderExistsSQL, o.ID).Scan(&exists); err != nil {
				return fmt.Errorf("checking order %d: %w", o.ID, err)
			}
			if exists {
				return errors.Wrapf(order.ErrVersionConflict, "order %d", o.ID)
			}
			return errors.Wrapf(order.ErrNotFound, "order %d", o.ID)
		}
		if err != nil {
			return fmt.Errorf("updating order %d: %w", o.ID, err)
		}

		if _, err := tx.Exec(ctx, deleteItemsSQL, o.ID); err != nil {
			return fmt.Errorf("deleting items of order %d: %w", o.ID, err)
		}
		return insertItems(ctx, tx, o)
	})
}

// SetStatus persists a status change.
func (r *OrderRepository) SetStatus(ctx context.Context, id int64, status order.Status) error {
	tag, err := r.pool.Exec(ctx, setOrderStatusSQL, id, string(status))
	if err != nil {
		return fmt.Errorf("setting status of order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(order.ErrNotFound, "order %d", id)
	}
	return nil
}

// Delete removes the order; its items go with it via ON DELETE CASCADE.
func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteOrderSQL, id)
	if err != nil {
		return fmt.Errorf("deleting order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(order.ErrNotFound, "order %d", id)
	}
	return nil
}

// GetByID loads a single order with its line items.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("querying order %d: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(order.ErrNotFound, "order %d", id)
		}
		return nil, fmt.Errorf("scanning order %d: %w", id, err)
	}

	if err := r.loadItems(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// List returns all orders with their line items.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("scanning orders: %w", err)
	}

	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// FindActivePending returns the most recently created PENDING order for the
// buyer, or order.ErrNotFound when the buyer has no cart.
func (r *OrderRepository) FindActivePending(ctx context.Context, email string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, findActivePendingSQL, email, string(order.StatusPending))
	if err != nil {
		return nil, fmt.Errorf("querying cart of %s: %w", email, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(order.ErrNotFound, "pending order for %s", email)
		}
		return nil, fmt.Errorf("scanning cart of %s: %w", email, err)
	}

	if err := r.loadItems(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (r *OrderRepository) loadItems(ctx context.Context, o *order.Order) error {
	rows, err := r.pool.Query(ctx, getItemsSQL, o.ID)
	if err != nil {
		return fmt.Errorf("querying items of order %d: %w", o.ID, err)
	}

	items, err := pgx.CollectRows(rows, scanItem)
	if err != nil {
		return fmt.Errorf("scanning items of order %d: %w", o.ID, err)
	}
	o.Items = items
	return nil
}

// redeemCoupon flips the coupon inactive as part of the surrounding
// transaction. Zero affected rows means a concurrent redemption won the
// race; the caller's transaction is rolled back.
func redeemCoupon(ctx context.Context, tx pgx.Tx, code string) error {
	if code == "" {
		return nil
	}
	tag, err := tx.Exec(ctx, redeemCouponSQL, code)
	if err != nil {
		return fmt.Errorf("redeeming coupon %q: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(coupon.ErrInactive, "coupon %s", code)
	}
	return nil
}

func insertItems(ctx context.Context, tx pgx.Tx, o *order.Order) error {
	for i := range o.Items {
		item := &o.Items[i]
		err := tx.QueryRow(ctx, insertItemSQL,
			o.ID, i, item.ProductID, item.ProductName, item.ProductDescription,
			item.ProductImage, item.UnitPrice, item.Quantity, item.Subtotal,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("inserting item %s of order %d: %w", item.ProductID, o.ID, err)
		}
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o              order.Order
		status         string
		couponIDVal    *int64
		couponCode     *string
		couponDiscount *decimal.Decimal
		couponActive   *bool
	)
	err := row.Scan(
		&o.ID, &o.UserEmail, &status, &o.Subtotal, &o.DiscountApplied,
		&o.FinalPrice, &o.OrderDate, &o.Version,
		&couponIDVal, &couponCode, &couponDiscount, &couponActive,
	)
	if err != nil {
		return order.Order{}, err
	}

	o.Status = order.Status(status)
	if couponIDVal != nil {
		o.Coupon = &coupon.Coupon{
			ID:             *couponIDVal,
			Code:           *couponCode,
			DiscountAmount: *couponDiscount,
			Active:         *couponActive,
		}
	}
	return o, nil
}

func scanItem(row pgx.CollectableRow) (order.LineItem, error) {
	var item order.LineItem
	err := row.Scan(
		&item.ID, &item.ProductID, &item.ProductName, &item.ProductDescription,
		&item.ProductImage, &item.UnitPrice, &item.Quantity, &item.Subtotal,
	)
	return item, err
}

func couponID(o *order.Order) *int64 {
	if o.Coupon == nil {
		return nil
	}
	return &o.Coupon.ID
}
