package coupon

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when no coupon matches the requested code or id.
	ErrNotFound = errors.New("coupon not found")
	// ErrInactive is returned when a coupon exists but has already been
	// redeemed or was deactivated administratively.
	ErrInactive = errors.New("coupon is not active")
)

// Coupon is a single-use discount token with a fixed monetary reduction.
// Redemption flips Active to false in the same transaction that persists the
// redeeming order, so a code can back at most one order.
type Coupon struct {
	ID             int64
	Code           string
	DiscountAmount decimal.Decimal
	Active         bool
}

// Ledger owns coupon records and their single state transition
// (deactivate by code). Admin operations are included because this service
// is the system of record for coupons.
type Ledger interface {
	List(ctx context.Context) ([]Coupon, error)
	GetByID(ctx context.Context, id int64) (*Coupon, error)
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	Create(ctx context.Context, c *Coupon) error
	Update(ctx context.Context, c *Coupon) error
	Delete(ctx context.Context, id int64) error
	SetActiveByCode(ctx context.Context, code string, active bool) error
}

// NewCode generates a 9-character uppercase coupon code.
func NewCode() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(raw[:9])
}
