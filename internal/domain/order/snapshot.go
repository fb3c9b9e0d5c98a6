package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/onieto/order-service/internal/domain/product"
)

// SnapshotBuilder converts catalog volatility into stable order data: it
// fetches a product from the remote catalog exactly once per call and freezes
// name, description, price and image into an immutable line item. There is no
// caching; every invocation re-fetches.
type SnapshotBuilder struct {
	catalog product.Source
}

// NewSnapshotBuilder creates a SnapshotBuilder reading from the given source.
func NewSnapshotBuilder(catalog product.Source) *SnapshotBuilder {
	return &SnapshotBuilder{catalog: catalog}
}

// FetchAndFreeze fetches the product and returns a frozen line item for the
// given quantity. A missing product, or one without a price, yields a
// ProductNotFoundError; any other catalog failure is surfaced wrapped so
// errors.Is(err, product.ErrUnavailable) still holds. Quantity validation is
// the caller's responsibility.
func (b *SnapshotBuilder) FetchAndFreeze(ctx context.Context, productID string, quantity int) (LineItem, error) {
	p, err := b.catalog.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return LineItem{}, &ProductNotFoundError{ProductID: productID}
		}
		return LineItem{}, errors.Wrapf(err, "fetch product %s", productID)
	}

	if p.Price == nil {
		return LineItem{}, &ProductNotFoundError{ProductID: productID}
	}

	unitPrice := *p.Price
	return LineItem{
		ProductID:          p.ID,
		ProductName:        p.Name,
		ProductDescription: p.Description,
		ProductImage:       p.Image,
		UnitPrice:          unitPrice,
		Quantity:           quantity,
		Subtotal:           unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}
