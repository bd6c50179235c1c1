package handler

import (
	"net/http"

	"github.com/pkordes/boutique/internal/domain"
)

// ShopResponse is one composed storefront page.
type ShopResponse struct {
	Items         []domain.Product `json:"items"`
	Page          int              `json:"page"`
	PerPage       int              `json:"per_page"`
	TotalPages    int              `json:"total_pages"`
	TotalItems    int              `json:"total_items"`
	SelectedTags  []string         `json:"selected_tags"`
	AvailableTags []domain.Tag     `json:"available_tags"`
}

// GetShop handles GET /shop.
// Repeat ?tag= to narrow to products carrying every listed label.
func (s *Server) GetShop(w http.ResponseWriter, r *http.Request) {
	selected, err := queryStrings(r, "tag")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	page, err := queryInt(r, "page")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	perPage, err := queryInt(r, "per_page")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	view, err := s.storefront.Page(r.Context(), selected, derefInt(page), derefInt(perPage))
	if err != nil {
		s.respondError(w, r, err, "page")
		return
	}
	writeJSON(w, http.StatusOK, ShopResponse{
		Items:         nonNil(view.Items),
		Page:          view.Page,
		PerPage:       view.PageSize,
		TotalPages:    view.TotalPages,
		TotalItems:    view.TotalItems,
		SelectedTags:  nonNil(selected),
		AvailableTags: nonNil(view.AvailableTags),
	})
}
