package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/onieto/order-service/internal/domain/coupon"
)

type couponRequest struct {
	Code           string  `json:"code,omitempty"`
	DiscountAmount float64 `json:"discountAmount"`
	Active         *bool   `json:"active,omitempty"`
}

func (h *Handler) listCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]couponResponse, len(coupons))
	for i := range coupons {
		resp[i] = toCouponResponse(&coupons[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

// createCoupon registers a new coupon. A missing code gets a generated one,
// matching how bulk-issued promotion batches are minted.
func (h *Handler) createCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.DiscountAmount <= 0 {
		badRequest(w, "discountAmount must be greater than 0")
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		code = coupon.NewCode()
	}

	c := &coupon.Coupon{
		Code:           code,
		DiscountAmount: decimal.NewFromFloat(req.DiscountAmount),
		Active:         true,
	}
	if req.Active != nil {
		c.Active = *req.Active
	}

	if err := h.coupons.Create(r.Context(), c); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCouponResponse(c))
}

func (h *Handler) getCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	c, err := h.coupons.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCouponResponse(c))
}

func (h *Handler) updateCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req couponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.DiscountAmount <= 0 {
		badRequest(w, "discountAmount must be greater than 0")
		return
	}

	c, err := h.coupons.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if code := strings.ToUpper(strings.TrimSpace(req.Code)); code != "" {
		c.Code = code
	}
	c.DiscountAmount = decimal.NewFromFloat(req.DiscountAmount)
	if req.Active != nil {
		c.Active = *req.Active
	}

	if err := h.coupons.Update(r.Context(), c); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCouponResponse(c))
}

func (h *Handler) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.coupons.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "coupon deleted"})
}

func (h *Handler) setCouponStatus(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	active, err := strconv.ParseBool(r.URL.Query().Get("active"))
	if err != nil {
		badRequest(w, "active must be true or false")
		return
	}

	if err := h.coupons.SetActiveByCode(r.Context(), code, active); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.coupons.FindByCode(r.Context(), code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCouponResponse(c))
}
