package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/boutique/internal/domain"
)

type orderRequest struct {
	Email      string      `json:"email" validate:"required,max=254"`
	ProductIDs []uuid.UUID `json:"product_ids" validate:"required,min=1"`
}

// PlaceOrderResponse reports the stored order and whether the owner was notified.
type PlaceOrderResponse struct {
	Order    domain.Order `json:"order"`
	Notified bool         `json:"notified"`
}

// PaginationMeta describes one page of a paginated list.
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// OrderListResponse is the body of GET /admin/orders.
type OrderListResponse struct {
	Data       []domain.Order `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
}

// PlaceOrder handles POST /orders.
// The order is stored even when the notification email fails; the response
// then carries notified=false.
func (s *Server) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondDecodeError(w, r, err)
		return
	}
	order, notified, err := s.orders.Place(r.Context(), req.Email, req.ProductIDs)
	if err != nil {
		s.respondError(w, r, err, "product")
		return
	}
	writeJSON(w, http.StatusCreated, PlaceOrderResponse{Order: order, Notified: notified})
}

// ListOrders handles GET /admin/orders, newest first.
func (s *Server) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	params := domain.NewPaginationParams(page, limit)

	orders, total, err := s.orders.List(r.Context(), params)
	if err != nil {
		s.respondError(w, r, err, "order")
		return
	}
	writeJSON(w, http.StatusOK, OrderListResponse{
		Data: nonNil(orders),
		Pagination: PaginationMeta{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      total,
			TotalPages: params.TotalPages(total),
		},
	})
}
