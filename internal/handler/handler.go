// Package handler exposes the order service over HTTP.
package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"

	"github.com/onieto/order-service/internal/domain/coupon"
	"github.com/onieto/order-service/internal/domain/order"
)

// Handler maps HTTP requests to the order services and the coupon ledger.
type Handler struct {
	orders  *order.Service
	carts   *order.CartEngine
	coupons coupon.Ledger

	ordersCreated metric.Int64Counter
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	orders *order.Service,
	carts *order.CartEngine,
	coupons coupon.Ledger,
	mp metric.MeterProvider,
) (*Handler, error) {
	meter := mp.Meter("order-service/handler")
	ordersCreated, err := meter.Int64Counter("orders_created_total",
		metric.WithDescription("Number of orders created, including new carts"))
	if err != nil {
		return nil, errors.Wrap(err, "create orders counter")
	}

	return &Handler{
		orders:        orders,
		carts:         carts,
		coupons:       coupons,
		ordersCreated: ordersCreated,
	}, nil
}

// Register wires all API routes onto the mux. Literal segments (cart) are
// registered alongside the {id} patterns; the mux picks the more specific
// one.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/orders", h.listOrders)
	mux.HandleFunc("POST /api/orders", h.createOrder)
	mux.HandleFunc("GET /api/orders/cart", h.getActiveCart)
	mux.HandleFunc("POST /api/orders/cart/items", h.addItemToCart)
	mux.HandleFunc("GET /api/orders/{id}", h.getOrder)
	mux.HandleFunc("PUT /api/orders/{id}", h.updateOrder)
	mux.HandleFunc("PATCH /api/orders/{id}/status", h.updateOrderStatus)
	mux.HandleFunc("DELETE /api/orders/{id}", h.deleteOrder)

	mux.HandleFunc("GET /api/coupons", h.listCoupons)
	mux.HandleFunc("POST /api/coupons", h.createCoupon)
	mux.HandleFunc("GET /api/coupons/{id}", h.getCoupon)
	mux.HandleFunc("PUT /api/coupons/{id}", h.updateCoupon)
	mux.HandleFunc("DELETE /api/coupons/{id}", h.deleteCoupon)
	mux.HandleFunc("PATCH /api/coupons/{code}/status", h.setCouponStatus)
}
