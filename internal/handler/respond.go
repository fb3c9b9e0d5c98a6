package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/onieto/order-service/internal/domain/coupon"
	"github.com/onieto/order-service/internal/domain/order"
	"github.com/onieto/order-service/internal/domain/product"
	"github.com/onieto/order-service/internal/domain/user"
)

// errorResponse is the uniform failure body: a code mirroring the HTTP
// status and a message naming the offending entity and id/code.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError classifies a domain error into the HTTP taxonomy: not-found
// 404, invalid argument 400, upstream unavailable 502, concurrent mutation
// 409, everything else 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	msg := err.Error()

	if status == http.StatusInternalServerError {
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		msg = "internal server error"
	}

	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

func errorStatus(err error) int {
	var (
		productNotFound   *order.ProductNotFoundError
		invalidQuantity   *order.InvalidQuantityError
		invalidStatus     *order.InvalidStatusError
		invalidTransition *order.InvalidTransitionError
		inactiveUser      *user.InactiveError
	)

	switch {
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, coupon.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.As(err, &productNotFound):
		return http.StatusNotFound

	case errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, coupon.ErrInactive),
		errors.As(err, &invalidQuantity),
		errors.As(err, &invalidStatus),
		errors.As(err, &invalidTransition),
		errors.As(err, &inactiveUser):
		return http.StatusBadRequest

	case errors.Is(err, product.ErrUnavailable),
		errors.Is(err, user.ErrUnavailable):
		return http.StatusBadGateway

	case errors.Is(err, order.ErrVersionConflict):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

// Wire DTOs. Money crosses the wire as JSON numbers; exact decimals are an
// internal concern.

type orderResponse struct {
	ID              int64           `json:"id"`
	UserEmail       string          `json:"userEmail"`
	Status          string          `json:"status"`
	Coupon          *couponResponse `json:"coupon,omitempty"`
	Subtotal        float64         `json:"subtotal"`
	DiscountApplied float64         `json:"discountApplied"`
	FinalPrice      float64         `json:"finalPrice"`
	OrderDate       time.Time       `json:"orderDate"`
	Items           []itemResponse  `json:"items"`
}

type itemResponse struct {
	ID                 int64   `json:"id"`
	ProductID          string  `json:"productId"`
	ProductName        string  `json:"productName"`
	ProductDescription string  `json:"productDescription"`
	ProductImage       []byte  `json:"productImage,omitempty"`
	UnitPrice          float64 `json:"unitPrice"`
	Quantity           int     `json:"quantity"`
	Subtotal           float64 `json:"subtotal"`
}

type couponResponse struct {
	ID             int64   `json:"id"`
	Code           string  `json:"code"`
	DiscountAmount float64 `json:"discountAmount"`
	Active         bool    `json:"active"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]itemResponse, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		items[i] = itemResponse{
			ID:                 item.ID,
			ProductID:          item.ProductID,
			ProductName:        item.ProductName,
			ProductDescription: item.ProductDescription,
			ProductImage:       item.ProductImage,
			UnitPrice:          item.UnitPrice.InexactFloat64(),
			Quantity:           item.Quantity,
			Subtotal:           item.Subtotal.InexactFloat64(),
		}
	}

	resp := orderResponse{
		ID:              o.ID,
		UserEmail:       o.UserEmail,
		Status:          string(o.Status),
		Subtotal:        o.Subtotal.InexactFloat64(),
		DiscountApplied: o.DiscountApplied.InexactFloat64(),
		FinalPrice:      o.FinalPrice.InexactFloat64(),
		OrderDate:       o.OrderDate,
		Items:           items,
	}
	if o.Coupon != nil {
		c := toCouponResponse(o.Coupon)
		resp.Coupon = &c
	}
	return resp
}

func toCouponResponse(c *coupon.Coupon) couponResponse {
	return couponResponse{
		ID:             c.ID,
		Code:           c.Code,
		DiscountAmount: c.DiscountAmount.InexactFloat64(),
		Active:         c.Active,
	}
}
