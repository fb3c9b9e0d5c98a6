// Package client implements HTTP clients for the order service's remote
// collaborators: the catalog service (product price source) and the users
// service (buyer identity). Both services are deployed independently and can
// fail independently of this service's own storage, so every call carries a
// bounded timeout and failures are classified into not-found versus
// unavailable. Nothing is retried here; retry on unavailable is the caller's
// decision.
package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"

	"github.com/onieto/order-service/internal/domain/product"
)

// Catalog fetches products from the catalog service.
type Catalog struct {
	baseURL string
	httpc   *http.Client
	tracer  trace.Tracer
}

// NewCatalog creates a catalog client. baseURL points at the products
// resource, e.g. "http://catalog:8081/api/products".
func NewCatalog(baseURL string, timeout time.Duration, tp trace.TracerProvider) *Catalog {
	return &Catalog{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		tracer:  tp.Tracer("order-service/client"),
	}
}

type productResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Image       []byte           `json:"image"`
}

// GetByID implements product.Source. A 404 from the catalog maps to
// product.ErrNotFound; transport failures and any other non-200 answer map
// to product.ErrUnavailable.
func (c *Catalog) GetByID(ctx context.Context, id string) (*product.Product, error) {
	ctx, span := c.tracer.Start(ctx, "Catalog.GetByID")
	defer span.End()

	u := c.baseURL + "/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build catalog request")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrapf(product.ErrUnavailable, "get product %s: %v", id, err)
	}
	defer drainClose(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, product.ErrNotFound
	default:
		return nil, errors.Wrapf(product.ErrUnavailable,
			"get product %s: catalog answered %d", id, resp.StatusCode)
	}

	var pr productResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, errors.Wrapf(product.ErrUnavailable, "decode product %s: %v", id, err)
	}

	return &product.Product{
		ID:          pr.ID,
		Name:        pr.Name,
		Description: pr.Description,
		Price:       pr.Price,
		Image:       pr.Image,
	}, nil
}

// drainClose drains and closes a response body so the underlying connection
// can be reused.
func drainClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 1<<16))
	_ = body.Close()
}
