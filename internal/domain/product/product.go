package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when the catalog has no product with the
	// requested identifier.
	ErrNotFound = errors.New("product not found")
	// ErrUnavailable is returned when the catalog service cannot be reached
	// or answers with a server error. Callers may retry; ErrNotFound must
	// never be retried.
	ErrUnavailable = errors.New("catalog unavailable")
)

// Product is a catalog record as served by the remote catalog service.
// Price is nil when the record carries no price; such products cannot be
// ordered.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       *decimal.Decimal
	Image       []byte
}

// Source fetches products from the independently deployed catalog service.
// Implementations classify failures as ErrNotFound or ErrUnavailable.
type Source interface {
	GetByID(ctx context.Context, id string) (*Product, error)
}
