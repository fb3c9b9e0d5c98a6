package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/onieto/order-service/internal/domain/order"
)

type orderRequest struct {
	UserEmail  string            `json:"userEmail"`
	CouponCode string            `json:"couponCode,omitempty"`
	Items      []itemRequestBody `json:"items"`
}

type itemRequestBody struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type addItemRequest struct {
	UserEmail string `json:"userEmail"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (r orderRequest) toBuildRequest() order.BuildRequest {
	items := make([]order.ItemRequest, len(r.Items))
	for i, it := range r.Items {
		items[i] = order.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return order.BuildRequest{
		UserEmail:  r.UserEmail,
		Items:      items,
		CouponCode: r.CouponCode,
	}
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i := range orders {
		resp[i] = toOrderResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.UserEmail == "" {
		badRequest(w, "userEmail is required")
		return
	}

	o, err := h.orders.Create(r.Context(), req.toBuildRequest())
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.ordersCreated.Add(r.Context(), 1)
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.UserEmail == "" {
		badRequest(w, "userEmail is required")
		return
	}

	o, err := h.orders.Update(r.Context(), id, req.toBuildRequest())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	status, err := order.ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), id, status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.orders.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "order deleted"})
}

func (h *Handler) getActiveCart(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("userEmail")
	if email == "" {
		badRequest(w, "userEmail is required")
		return
	}

	o, err := h.orders.ActiveCart(r.Context(), email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) addItemToCart(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.UserEmail == "" {
		badRequest(w, "userEmail is required")
		return
	}

	result, err := h.carts.AddItem(r.Context(), req.UserEmail, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		h.ordersCreated.Add(r.Context(), 1)
		status = http.StatusCreated
	}
	writeJSON(w, status, toOrderResponse(result.Order))
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		badRequest(w, "invalid id")
		return 0, false
	}
	return id, true
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Code:    http.StatusBadRequest,
		Message: msg,
	})
}
