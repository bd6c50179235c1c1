package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pkordes/boutique/internal/domain"
)

// productRequest is the JSON body of PUT /products/{id}.
type productRequest struct {
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Tags        []tagRefRequest  `json:"tags" validate:"dive"`
}

type tagRefRequest struct {
	Label    string `json:"label" validate:"required"`
	Category string `json:"category" validate:"required"`
}

func (p productRequest) draft() domain.ProductDraft {
	return domain.ProductDraft{
		Name:        p.Name,
		Description: p.Description,
		Price:       *p.Price,
		Tags:        tagRefs(p.Tags),
	}
}

func tagRefs(in []tagRefRequest) []domain.TagRef {
	out := make([]domain.TagRef, len(in))
	for i, t := range in {
		out[i] = domain.TagRef{Label: t.Label, Category: t.Category}
	}
	return out
}

// ListProducts handles GET /products.
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.products.List(r.Context())
	if err != nil {
		s.respondError(w, r, err, "product")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(products))
}

// GetProduct handles GET /products/{id}.
func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	p, err := s.products.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "product")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreateProduct handles POST /products.
// The body is multipart/form-data with fields name, description, price,
// tags (a JSON array of {label, category}) and an optional image file.
func (s *Server) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
			return
		}
		badRequest(w, "request body must be multipart/form-data")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	draft, err := parseProductForm(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	image, err := s.readImage(r)
	if err != nil {
		if errors.Is(err, errImageTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", err.Error())
			return
		}
		badRequest(w, err.Error())
		return
	}

	p, err := s.products.Create(r.Context(), draft, image)
	if err != nil {
		s.respondError(w, r, err, "product")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// UpdateProduct handles PUT /products/{id}. The image is left untouched.
func (s *Server) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req productRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondDecodeError(w, r, err)
		return
	}

	p, err := s.products.Update(r.Context(), id, req.draft())
	if err != nil {
		s.respondError(w, r, err, "product")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteProduct handles DELETE /products/{id}.
func (s *Server) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.products.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, err, "product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseProductForm reads the text fields of a product multipart form.
func parseProductForm(r *http.Request) (domain.ProductDraft, error) {
	draft := domain.ProductDraft{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
	}

	rawPrice := strings.TrimSpace(r.FormValue("price"))
	if rawPrice == "" {
		return draft, errors.New("price is required")
	}
	price, err := decimal.NewFromString(rawPrice)
	if err != nil {
		return draft, fmt.Errorf("price %q is not a number", rawPrice)
	}
	draft.Price = price

	if raw := strings.TrimSpace(r.FormValue("tags")); raw != "" {
		var tags []tagRefRequest
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			return draft, errors.New("tags must be a JSON array of {label, category}")
		}
		draft.Tags = tagRefs(tags)
	}
	return draft, nil
}

var errImageTooLarge = errors.New("image too large")

// readImage returns the optional "image" file part, or nil when none was sent.
func (s *Server) readImage(r *http.Request) (*domain.ImageUpload, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.New("image could not be read")
	}
	defer file.Close()

	if header.Size > s.maxUpload {
		return nil, fmt.Errorf("%w: limit is %d bytes", errImageTooLarge, s.maxUpload)
	}
	data, err := io.ReadAll(io.LimitReader(file, s.maxUpload+1))
	if err != nil {
		return nil, errors.New("image could not be read")
	}
	if int64(len(data)) > s.maxUpload {
		return nil, fmt.Errorf("%w: limit is %d bytes", errImageTooLarge, s.maxUpload)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &domain.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// nonNil turns a nil slice into an empty one so it encodes as [].
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
