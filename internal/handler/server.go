// Package handler implements the HTTP handlers for the Boutique API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, product.go, etc.) but all share the same Server struct so
// they can access its dependencies. Routes registers them on a chi router.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/boutique/internal/catalog"
	"github.com/pkordes/boutique/internal/domain"
	"github.com/pkordes/boutique/internal/middleware"
	"github.com/pkordes/boutique/internal/storage"
	"github.com/pkordes/boutique/internal/validation"
)

// ProductServicer defines the business operations the product handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type ProductServicer interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error)
	Create(ctx context.Context, draft domain.ProductDraft, image *domain.ImageUpload) (domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, draft domain.ProductDraft) (domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TagServicer defines the tag operations the tag handlers depend on.
type TagServicer interface {
	List(ctx context.Context, category, prefix string) ([]domain.Tag, error)
	Create(ctx context.Context, label, category string) (domain.Tag, error)
	Update(ctx context.Context, id uuid.UUID, label, category string) (domain.Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderServicer places orders and lists them for the admin.
type OrderServicer interface {
	Place(ctx context.Context, email string, productIDs []uuid.UUID) (domain.Order, bool, error)
	List(ctx context.Context, p domain.PaginationParams) ([]domain.Order, int64, error)
}

// ExportServicer produces the flat order export.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.OrderExportRow, error)
}

// AuthServicer logs the admin in and resolves session tokens.
type AuthServicer interface {
	Login(ctx context.Context, username, password string) (domain.Session, error)
	Authenticate(ctx context.Context, token string) (string, error)
}

// StorefrontServicer composes the public shop page.
type StorefrontServicer interface {
	Page(ctx context.Context, selected []string, page, perPage int) (catalog.Page, error)
}

// ImageReader reads stored product images back by key.
type ImageReader interface {
	Open(ctx context.Context, key string) (storage.Object, error)
}

// Default request size limits used when Deps leaves them at zero.
const (
	DefaultMaxBodyBytes   int64 = 1 << 20
	DefaultMaxUploadBytes int64 = 8 << 20
)

// multipartOverhead is allowed on top of the image limit for the other form
// fields and part headers.
const multipartOverhead int64 = 64 << 10

// Deps carries everything NewServer wires into the Server.
type Deps struct {
	Products   ProductServicer
	Tags       TagServicer
	Orders     OrderServicer
	Export     ExportServicer
	Auth       AuthServicer
	Storefront StorefrontServicer
	Images     ImageReader

	Validator *validation.Validator
	Logger    *slog.Logger

	// LoginLimit throttles POST /auth/login. Nil disables throttling.
	LoginLimit func(http.Handler) http.Handler

	MaxBodyBytes   int64
	MaxUploadBytes int64

	// SecureCookies marks the session cookie Secure. Enable behind TLS.
	SecureCookies bool
}

// Server holds the handler dependencies.
type Server struct {
	products   ProductServicer
	tags       TagServicer
	orders     OrderServicer
	export     ExportServicer
	auth       AuthServicer
	storefront StorefrontServicer
	images     ImageReader

	validate   *validation.Validator
	logger     *slog.Logger
	loginLimit func(http.Handler) http.Handler

	maxBody       int64
	maxUpload     int64
	secureCookies bool
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	s := &Server{
		products:      d.Products,
		tags:          d.Tags,
		orders:        d.Orders,
		export:        d.Export,
		auth:          d.Auth,
		storefront:    d.Storefront,
		images:        d.Images,
		validate:      d.Validator,
		logger:        d.Logger,
		loginLimit:    d.LoginLimit,
		maxBody:       d.MaxBodyBytes,
		maxUpload:     d.MaxUploadBytes,
		secureCookies: d.SecureCookies,
	}
	if s.validate == nil {
		s.validate = validation.New()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.loginLimit == nil {
		s.loginLimit = func(next http.Handler) http.Handler { return next }
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	if s.maxUpload <= 0 {
		s.maxUpload = DefaultMaxUploadBytes
	}
	return s
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(Deps{})
}

// Routes registers every endpoint on r. Writes to the catalog and the admin
// order views sit behind middleware.RequireSession.
func (s *Server) Routes(r chi.Router) {
	jsonBody := middleware.NewMaxBodySizeHandler(s.maxBody)
	uploadBody := middleware.NewMaxBodySizeHandler(s.maxUpload + multipartOverhead)

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.With(s.loginLimit, jsonBody).Post("/auth/login", s.Login)
	r.Post("/auth/logout", s.Logout)

	r.Get("/products", s.ListProducts)
	r.Get("/products/{id}", s.GetProduct)
	r.Get("/tags", s.ListTags)
	r.Get("/shop", s.GetShop)
	r.With(jsonBody).Post("/orders", s.PlaceOrder)
	r.Get("/uploads/{key}", s.GetUpload)
	r.Head("/uploads/{key}", s.GetUpload)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(s.auth))

		r.With(uploadBody).Post("/products", s.CreateProduct)
		r.With(jsonBody).Put("/products/{id}", s.UpdateProduct)
		r.Delete("/products/{id}", s.DeleteProduct)

		r.With(jsonBody).Post("/tags", s.CreateTag)
		r.With(jsonBody).Put("/tags/{id}", s.UpdateTag)
		r.Delete("/tags/{id}", s.DeleteTag)

		r.Get("/admin/orders", s.ListOrders)
		r.Get("/admin/orders/export", s.ExportOrders)
	})
}

// Handler returns a chi router with every endpoint registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}
