package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/onieto/order-service/internal/domain/user"
)

// AddItemResult is the outcome of a cart mutation. Created distinguishes the
// new-cart path (201-equivalent) from an update of an existing cart.
type AddItemResult struct {
	Order   *Order
	Created bool
}

// CartEngine resolves "add item for buyer X" against the buyer's zero-or-one
// existing PENDING order, creating the cart or upserting the line item and
// recomputing totals.
//
// The read-resolve-mutate-write sequence is serialized per buyer with a keyed
// mutex, and the repository additionally guards writes with an optimistic
// version check. A version conflict under the lock means another process
// raced us; the engine retries the whole sequence once before surfacing the
// conflict.
type CartEngine struct {
	orders    Repository
	users     user.Client
	snapshots *SnapshotBuilder

	buyers *keyedMutex
	now    func() time.Time
}

// NewCartEngine creates a CartEngine with the required collaborators.
func NewCartEngine(orders Repository, users user.Client, snapshots *SnapshotBuilder) *CartEngine {
	return &CartEngine{
		orders:    orders,
		users:     users,
		snapshots: snapshots,
		buyers:    newKeyedMutex(),
		now:       time.Now,
	}
}

// AddItem adds quantity units of a product to the buyer's cart, creating the
// cart when none exists. An existing line item for the same product is
// incremented in place, keeping the unit price frozen at its original value;
// only a genuinely new product triggers a catalog fetch. Any failure aborts
// the whole mutation with nothing persisted.
func (e *CartEngine) AddItem(ctx context.Context, email, productID string, quantity int) (*AddItemResult, error) {
	if quantity <= 0 {
		return nil, &InvalidQuantityError{ProductID: productID}
	}

	u, err := e.resolveBuyer(ctx, email)
	if err != nil {
		return nil, err
	}

	unlock := e.buyers.lock(u.Email)
	defer unlock()

	result, err := e.addItem(ctx, u.Email, productID, quantity)
	if errors.Is(err, ErrVersionConflict) {
		result, err = e.addItem(ctx, u.Email, productID, quantity)
	}
	return result, err
}

func (e *CartEngine) addItem(ctx context.Context, email, productID string, quantity int) (*AddItemResult, error) {
	cart, err := e.orders.FindActivePending(ctx, email)
	switch {
	case errors.Is(err, ErrNotFound):
		return e.createCart(ctx, email, productID, quantity)
	case err != nil:
		return nil, errors.Wrapf(err, "find cart for %s", email)
	}

	if item := cart.FindItem(productID); item != nil {
		item.SetQuantity(item.Quantity + quantity)
	} else {
		frozen, err := e.snapshots.FetchAndFreeze(ctx, productID, quantity)
		if err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, frozen)
	}
	cart.Recalculate()

	if err := e.orders.Replace(ctx, cart, ""); err != nil {
		return nil, err
	}
	return &AddItemResult{Order: cart}, nil
}

func (e *CartEngine) createCart(ctx context.Context, email, productID string, quantity int) (*AddItemResult, error) {
	frozen, err := e.snapshots.FetchAndFreeze(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}

	cart := &Order{
		UserEmail: email,
		Status:    StatusPending,
		OrderDate: e.now(),
		Items:     []LineItem{frozen},
	}
	cart.Recalculate()

	if err := e.orders.Create(ctx, cart, ""); err != nil {
		return nil, errors.Wrap(err, "create cart")
	}
	return &AddItemResult{Order: cart, Created: true}, nil
}

func (e *CartEngine) resolveBuyer(ctx context.Context, email string) (*user.User, error) {
	u, err := e.users.GetByEmail(ctx, email)
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
