package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/onieto/order-service/internal/domain/coupon"
)

// Status is the lifecycle state of an order. An order in StatusPending is the
// buyer's cart and the only state the cart mutation engine may touch.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusShipped   Status = "SHIPPED"
	StatusCancelled Status = "CANCELLED"
)

// transitions is the closed set of legal status moves:
// PENDING → PAID → SHIPPED, and anything not yet shipped may be cancelled.
var transitions = map[Status][]Status{
	StatusPending:   {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusShipped, StatusCancelled},
	StatusShipped:   {},
	StatusCancelled: {},
}

// ParseStatus validates a status string received over the wire.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return "", &InvalidStatusError{Value: s}
	}
	return st, nil
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// LineItem is one product entry within an order. Name, description, image and
// unit price are frozen copies of the catalog record taken when the item
// entered the order; later catalog edits never change them. Subtotal is
// always derived from UnitPrice and Quantity.
type LineItem struct {
	ID                 int64
	ProductID          string
	ProductName        string
	ProductDescription string
	ProductImage       []byte
	UnitPrice          decimal.Decimal
	Quantity           int
	Subtotal           decimal.Decimal
}

// SetQuantity updates the quantity and recomputes the derived subtotal from
// the frozen unit price.
func (li *LineItem) SetQuantity(quantity int) {
	li.Quantity = quantity
	li.Subtotal = li.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Order is a buyer's purchase aggregate: a header plus an ordered sequence of
// line items. Totals always satisfy
//
//	FinalPrice = Subtotal - DiscountApplied
//	0 ≤ DiscountApplied ≤ Subtotal
//
// which Recalculate maintains. Version backs optimistic concurrency control
// on writes.
type Order struct {
	ID              int64
	UserEmail       string
	Status          Status
	Coupon          *coupon.Coupon
	Subtotal        decimal.Decimal
	DiscountApplied decimal.Decimal
	FinalPrice      decimal.Decimal
	OrderDate       time.Time
	Version         int64
	Items           []LineItem
}

// FindItem returns the line item for the given product, or nil.
func (o *Order) FindItem(productID string) *LineItem {
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			return &o.Items[i]
		}
	}
	return nil
}

// Recalculate recomputes the order totals from its line items and attached
// coupon. The discount is clamped to the subtotal so the final price can
// never go negative.
func (o *Order) Recalculate() {
	subtotal := decimal.Zero
	for i := range o.Items {
		subtotal = subtotal.Add(o.Items[i].Subtotal)
	}

	desired := decimal.Zero
	if o.Coupon != nil {
		desired = o.Coupon.DiscountAmount
	}

	o.Subtotal = subtotal
	o.DiscountApplied = decimal.Min(desired, subtotal)
	o.FinalPrice = subtotal.Sub(o.DiscountApplied)
}

// Sentinel errors shared by the order services.
var (
	ErrNotFound        = errors.New("order not found")
	ErrEmptyItems      = errors.New("order must contain at least one item")
	ErrVersionConflict = errors.New("order was modified concurrently")
)

// ProductNotFoundError indicates a requested product does not exist in the
// catalog (or carries no price and therefore cannot be ordered).
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidQuantityError indicates a line item request with a non-positive
// quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// InvalidStatusError indicates an unknown status value.
type InvalidStatusError struct {
	Value string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid order status %q", e.Value)
}

// InvalidTransitionError indicates a status move the transition table forbids.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

// Repository defines persistence for orders. Create and Replace accept an
// optional coupon code to redeem: when non-empty, the implementation must
// deactivate that coupon in the same transaction as the order write and fail
// with coupon.ErrInactive if the coupon was already inactive, which makes
// redemption effectively single-use even under concurrent creates.
type Repository interface {
	Create(ctx context.Context, o *Order, redeemCouponCode string) error
	Replace(ctx context.Context, o *Order, redeemCouponCode string) error
	SetStatus(ctx context.Context, id int64, status Status) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	// FindActivePending returns the most recently created PENDING order for
	// the buyer, or ErrNotFound when the buyer has no cart.
	FindActivePending(ctx context.Context, email string) (*Order, error)
}
