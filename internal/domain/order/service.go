package order

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/onieto/order-service/internal/domain/coupon"
	"github.com/onieto/order-service/internal/domain/user"
)

// ItemRequest is one requested product line in a build request.
type ItemRequest struct {
	ProductID string
	Quantity  int
}

// BuildRequest holds the input for creating or fully replacing an order.
type BuildRequest struct {
	UserEmail  string
	Items      []ItemRequest
	CouponCode string
}

// Service orchestrates full-order creation and replacement, status
// transitions, and deletion. It composes the buyer identity client, the
// coupon ledger, and the snapshot builder; the incremental cart path lives in
// CartEngine.
type Service struct {
	orders    Repository
	coupons   coupon.Ledger
	users     user.Client
	snapshots *SnapshotBuilder

	now func() time.Time
}

// NewService creates an order Service with the required collaborators.
func NewService(
	orders Repository,
	coupons coupon.Ledger,
	users user.Client,
	snapshots *SnapshotBuilder,
) *Service {
	return &Service{
		orders:    orders,
		coupons:   coupons,
		users:     users,
		snapshots: snapshots,
		now:       time.Now,
	}
}

// Create builds a new PENDING order from scratch: it resolves the buyer,
// freezes every requested item, redeems the coupon when a code is supplied,
// and persists the result. The coupon is deactivated in the same transaction
// as the insert.
func (s *Service) Create(ctx context.Context, req BuildRequest) (*Order, error) {
	o, redeem, err := s.build(ctx, req, nil)
	if err != nil {
		return nil, err
	}

	if err := s.orders.Create(ctx, o, redeem); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// Update fully replaces an existing order: buyer and every item are
// re-resolved and re-frozen, and the old line items are discarded. The
// original status and order date are preserved. When no coupon code is
// supplied the order's currently attached coupon is reused without being
// redeemed again.
func (s *Service) Update(ctx context.Context, id int64, req BuildRequest) (*Order, error) {
	existing, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	o, redeem, err := s.build(ctx, req, existing)
	if err != nil {
		return nil, err
	}
	o.ID = existing.ID
	o.Version = existing.Version

	if err := s.orders.Replace(ctx, o, redeem); err != nil {
		return nil, errors.Wrapf(err, "replace order %d", id)
	}
	return o, nil
}

// UpdateStatus transitions an order to the target status, rejecting moves the
// transition table forbids.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status Status) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !o.Status.CanTransitionTo(status) {
		return nil, &InvalidTransitionError{From: o.Status, To: status}
	}

	if err := s.orders.SetStatus(ctx, id, status); err != nil {
		return nil, errors.Wrapf(err, "set status of order %d", id)
	}
	o.Status = status
	return o, nil
}

// Delete removes the order and, by ownership, all its line items.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.orders.Delete(ctx, id)
}

// Get returns a single order by id.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// List returns all orders.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.orders.List(ctx)
}

// ActiveCart returns the buyer's current PENDING order, resolving the buyer
// first so an unknown email surfaces as a user error rather than an empty
// cart.
func (s *Service) ActiveCart(ctx context.Context, email string) (*Order, error) {
	u, err := s.resolveBuyer(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.orders.FindActivePending(ctx, u.Email)
}

// build assembles an order from a request. When current is non-nil the new
// order inherits its status, order date and (absent a new code) its coupon.
// It returns the coupon code to redeem atomically with the write, or "" when
// no fresh redemption is needed.
func (s *Service) build(ctx context.Context, req BuildRequest, current *Order) (*Order, string, error) {
	u, err := s.resolveBuyer(ctx, req.UserEmail)
	if err != nil {
		return nil, "", err
	}

	if len(req.Items) == 0 {
		return nil, "", ErrEmptyItems
	}

	items := make([]LineItem, 0, len(req.Items))
	for _, ir := range req.Items {
		if ir.Quantity <= 0 {
			return nil, "", &InvalidQuantityError{ProductID: ir.ProductID}
		}
		item, err := s.snapshots.FetchAndFreeze(ctx, ir.ProductID, ir.Quantity)
		if err != nil {
			return nil, "", err
		}
		items = append(items, item)
	}

	var (
		attached *coupon.Coupon
		redeem   string
	)
	if code := strings.TrimSpace(req.CouponCode); code != "" {
		c, err := s.coupons.FindByCode(ctx, code)
		if err != nil {
			return nil, "", err
		}
		if !c.Active {
			return nil, "", errors.Wrapf(coupon.ErrInactive, "coupon %s", c.Code)
		}
		attached = c
		redeem = c.Code
	} else if current != nil && current.Coupon != nil {
		// Reuse the already-redeemed coupon without touching the ledger.
		attached = current.Coupon
	}

	o := &Order{
		UserEmail: u.Email,
		Status:    StatusPending,
		Coupon:    attached,
		OrderDate: s.now(),
		Items:     items,
	}
	if current != nil {
		o.Status = current.Status
		o.OrderDate = current.OrderDate
	}
	o.Recalculate()

	return o, redeem, nil
}

// resolveBuyer fetches the buyer account and rejects inactive ones.
func (s *Service) resolveBuyer(ctx context.Context, email string) (*user.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, errors.Wrapf(user.ErrNotFound, "buyer %s", email)
		}
		return nil, errors.Wrapf(err, "resolve buyer %s", email)
	}
	if !u.IsActive() {
		return nil, &user.InactiveError{Email: u.Email}
	}
	return u, nil
}
