package handler

import (
	"net/http"
)

// tagRequest is the JSON body of POST /tags and PUT /tags/{id}.
type tagRequest struct {
	Label    string `json:"label" validate:"required"`
	Category string `json:"category" validate:"required"`
}

// ListTags handles GET /tags.
// The optional ?category= narrows to one category and ?q= filters by label prefix.
func (s *Server) ListTags(w http.ResponseWriter, r *http.Request) {
	category, err := queryString(r, "category")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	prefix, err := queryString(r, "q")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	tags, err := s.tags.List(r.Context(), category, prefix)
	if err != nil {
		s.respondError(w, r, err, "tag")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(tags))
}

// CreateTag handles POST /tags.
func (s *Server) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondDecodeError(w, r, err)
		return
	}
	t, err := s.tags.Create(r.Context(), req.Label, req.Category)
	if err != nil {
		s.respondError(w, r, err, "tag")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// UpdateTag handles PUT /tags/{id}.
func (s *Server) UpdateTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req tagRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondDecodeError(w, r, err)
		return
	}
	t, err := s.tags.Update(r.Context(), id, req.Label, req.Category)
	if err != nil {
		s.respondError(w, r, err, "tag")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTag handles DELETE /tags/{id}.
// A tag still attached to a product is refused with 409 in_use.
func (s *Server) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.tags.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, err, "tag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
