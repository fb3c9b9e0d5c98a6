package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/onieto/order-service/internal/domain/coupon"
)

const (
	listCouponsSQL = `SELECT id, code, discount_amount, active FROM coupons ORDER BY id`

	getCouponByIDSQL = `SELECT id, code, discount_amount, active FROM coupons WHERE id = $1`

	getCouponByCodeSQL = `SELECT id, code, discount_amount, active
		FROM coupons WHERE UPPER(code) = UPPER($1)`

	insertCouponSQL = `INSERT INTO coupons (code, discount_amount, active)
		VALUES ($1, $2, $3) RETURNING id`

	updateCouponSQL = `UPDATE coupons SET code = $2, discount_amount = $3, active = $4
		WHERE id = $1`

	deleteCouponSQL = `DELETE FROM coupons WHERE id = $1`

	setCouponActiveSQL = `UPDATE coupons SET active = $2 WHERE UPPER(code) = UPPER($1)`

	upsertCouponSQL = `INSERT INTO coupons (code, discount_amount, active)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE
		SET discount_amount = EXCLUDED.discount_amount, active = EXCLUDED.active`
)

var _ coupon.Ledger = (*CouponRepository)(nil)

// CouponRepository implements coupon.Ledger backed by PostgreSQL. Code
// lookups are case-insensitive.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// List returns all coupons.
func (r *CouponRepository) List(ctx context.Context) ([]coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, listCouponsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing coupons: %w", err)
	}

	coupons, err := pgx.CollectRows(rows, scanCoupon)
	if err != nil {
		return nil, fmt.Errorf("scanning coupons: %w", err)
	}
	return coupons, nil
}

// GetByID looks up a coupon by its surrogate id.
func (r *CouponRepository) GetByID(ctx context.Context, id int64) (*coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, getCouponByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("finding coupon %d: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(coupon.ErrNotFound, "coupon %d", id)
		}
		return nil, fmt.Errorf("finding coupon %d: %w", id, err)
	}
	return &c, nil
}

// FindByCode looks up a coupon by its code (case-insensitive). Returns
// coupon.ErrNotFound when no coupon matches.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, getCouponByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(coupon.ErrNotFound, "coupon %s", code)
		}
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}
	return &c, nil
}

// Create inserts a new coupon and assigns its id.
func (r *CouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	err := r.pool.QueryRow(ctx, insertCouponSQL, c.Code, c.DiscountAmount, c.Active).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("creating coupon %q: %w", c.Code, err)
	}
	return nil
}

// Update rewrites a coupon record.
func (r *CouponRepository) Update(ctx context.Context, c *coupon.Coupon) error {
	tag, err := r.pool.Exec(ctx, updateCouponSQL, c.ID, c.Code, c.DiscountAmount, c.Active)
	if err != nil {
		return fmt.Errorf("updating coupon %d: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(coupon.ErrNotFound, "coupon %d", c.ID)
	}
	return nil
}

// Delete removes a coupon.
func (r *CouponRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteCouponSQL, id)
	if err != nil {
		return fmt.Errorf("deleting coupon %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(coupon.ErrNotFound, "coupon %d", id)
	}
	return nil
}

// SetActiveByCode flips the active flag for the given code. Used
// administratively; redemption goes through the order repository so it joins
// the order's transaction.
func (r *CouponRepository) SetActiveByCode(ctx context.Context, code string, active bool) error {
	tag, err := r.pool.Exec(ctx, setCouponActiveSQL, code, active)
	if err != nil {
		return fmt.Errorf("setting active of coupon %q: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(coupon.ErrNotFound, "coupon %s", code)
	}
	return nil
}

// Upsert inserts or refreshes a coupon by code. Used by the bulk ingest and
// seed tools.
func (r *CouponRepository) Upsert(ctx context.Context, c *coupon.Coupon) error {
	_, err := r.pool.Exec(ctx, upsertCouponSQL, c.Code, c.DiscountAmount, c.Active)
	if err != nil {
		return fmt.Errorf("upserting coupon %q: %w", c.Code, err)
	}
	return nil
}

func scanCoupon(row pgx.CollectableRow) (coupon.Coupon, error) {
	var c coupon.Coupon
	err := row.Scan(&c.ID, &c.Code, &c.DiscountAmount, &c.Active)
	return c, err
}
