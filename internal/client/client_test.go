package client_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/boutique/internal/client"
	"github.com/pkordes/boutique/internal/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...client.Option) *client.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := client.New(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

func TestNew_RejectsNonHTTPURL(t *testing.T) {
	_, err := client.New("ftp://example.com")
	require.Error(t, err)
}

func TestWithTimeout_LeavesSuppliedClientAlone(t *testing.T) {
	hc := &http.Client{Timeout: time.Minute}
	_, err := client.New("http://example.com", client.WithHTTPClient(hc), client.WithTimeout(time.Second))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, hc.Timeout)
}

func TestWithTimeout_AppliesToDefaultClient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusNoContent)
	}, client.WithTimeout(50*time.Millisecond))

	err := c.DeleteTag(context.Background(), uuid.New())
	assert.ErrorIs(t, err, client.ErrTransport)
}

func TestLogin_StoresTokenAndSendsBearer(t *testing.T) {
	expires := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var in map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, "admin", in["username"])
			assert.Equal(t, "hunter2", in["password"])
			writeJSON(t, w, http.StatusOK, domain.Session{Token: "tok-123", ExpiresAt: expires})
		case "/products/" + uuid.Nil.String():
			gotAuth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	})

	sess, err := c.Login(context.Background(), "admin", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", sess.Token)
	assert.True(t, expires.Equal(sess.ExpiresAt))
	assert.Equal(t, "tok-123", c.Token())

	require.NoError(t, c.DeleteProduct(context.Background(), uuid.Nil))
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestLogout_StopsSendingToken(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(t, w, http.StatusOK, []domain.Product{})
	}, client.WithToken("tok"))

	c.Logout()
	_, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestListTags_SendsCategoryQuery(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tags", r.URL.Path)
		gotQuery = r.URL.RawQuery
		writeJSON(t, w, http.StatusOK, []domain.Tag{{ID: uuid.New(), Label: "red", Category: "color"}})
	})

	tags, err := c.ListTags(context.Background(), "color")
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "red", tags[0].Label)
	assert.Equal(t, "category=color", gotQuery)
}

func TestSearchTags_SendsPrefix(t *testing.T) {
	var gotPrefix string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPrefix = r.URL.Query().Get("q")
		writeJSON(t, w, http.StatusOK, []domain.Tag{})
	})

	_, err := c.SearchTags(context.Background(), "", "re")
	require.NoError(t, err)
	assert.Equal(t, "re", gotPrefix)
}

func TestErrors_MapToSentinels(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   string
		want   error
	}{
		{"not found", http.StatusNotFound, "not_found", domain.ErrNotFound},
		{"unauthorized", http.StatusUnauthorized, "unauthorized", domain.ErrUnauthorized},
		{"conflict", http.StatusConflict, "conflict", domain.ErrConflict},
		{"in use", http.StatusConflict, "in_use", domain.ErrInUse},
		{"validation", http.StatusUnprocessableEntity, "validation_error", domain.ErrValidation},
		{"too large", http.StatusRequestEntityTooLarge, "payload_too_large", domain.ErrValidation},
		{"rate limited", http.StatusTooManyRequests, "rate_limited", client.ErrRateLimited},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				writeAPIError(w, tc.status, tc.code, "nope")
			})

			_, err := c.CreateTag(context.Background(), "red", "color")
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)

			var apiErr *client.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.code, apiErr.Code)
			assert.Equal(t, "nope", apiErr.Message)
		})
	}
}

func TestErrors_ServerErrorHasNoSentinel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	})

	_, err := c.ListProducts(context.Background())
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Empty(t, apiErr.Code)
	for _, sentinel := range []error{domain.ErrNotFound, domain.ErrValidation, domain.ErrConflict, client.ErrTransport} {
		assert.NotErrorIs(t, err, sentinel)
	}
}

func TestTransportFailure_WrapsErrTransport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c, err := client.New(srv.URL)
	require.NoError(t, err)
	srv.Close()

	_, err = c.ListProducts(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrTransport)
}

func TestUndecodableBody_WrapsErrTransport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "not json")
	})

	_, err := c.ListProducts(context.Background())
	assert.ErrorIs(t, err, client.ErrTransport)
}

func TestCreateProduct_SendsMultipartForm(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nrest-of-image")
	created := domain.Product{ID: uuid.New(), Name: "Mug", Price: decimal.RequireFromString("12.50")}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/products", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "Mug", r.FormValue("name"))
		assert.Equal(t, "Holds coffee", r.FormValue("description"))
		assert.Equal(t, "12.5", r.FormValue("price"))

		var tags []domain.TagRef
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("tags")), &tags))
		assert.Equal(t, []domain.TagRef{{Label: "kitchen", Category: "type"}}, tags)

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "mug.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, png, data)

		writeJSON(t, w, http.StatusCreated, created)
	})

	draft := domain.ProductDraft{
		Name:        "Mug",
		Description: "Holds coffee",
		Price:       decimal.RequireFromString("12.50"),
		Tags:        []domain.TagRef{{Label: "kitchen", Category: "type"}},
	}
	p, err := c.CreateProduct(context.Background(), draft, &domain.ImageUpload{Filename: "mug.png", Data: png})
	require.NoError(t, err)
	assert.Equal(t, created.ID, p.ID)
}

func TestCreateProduct_WithoutImage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, _, err := r.FormFile("image")
		assert.ErrorIs(t, err, http.ErrMissingFile)
		assert.Equal(t, "[]", r.FormValue("tags"))
		writeJSON(t, w, http.StatusCreated, domain.Product{ID: uuid.New()})
	})

	_, err := c.CreateProduct(context.Background(), domain.ProductDraft{Name: "Mug", Price: decimal.NewFromInt(1)}, nil)
	require.NoError(t, err)
}

func TestUpdateProduct_SendsJSON(t *testing.T) {
	id := uuid.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/products/"+id.String(), r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Mug", in["name"])
		assert.Equal(t, "3.25", in["price"])
		writeJSON(t, w, http.StatusOK, domain.Product{ID: id, Name: "Mug"})
	})

	p, err := c.UpdateProduct(context.Background(), id, domain.ProductDraft{Name: "Mug", Price: decimal.RequireFromString("3.25")})
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
}

func TestGetProduct_DecodesProduct(t *testing.T) {
	id := uuid.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/products/"+id.String(), r.URL.Path)
		writeJSON(t, w, http.StatusOK, domain.Product{ID: id, Name: "Mug", Price: decimal.RequireFromString("4.50")})
	})

	p, err := c.GetProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Mug", p.Name)
	assert.True(t, decimal.RequireFromString("4.5").Equal(p.Price))
}

func TestUpdateTag_SendsLabelAndCategory(t *testing.T) {
	id := uuid.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/tags/"+id.String(), r.URL.Path)
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "crimson", in["label"])
		assert.Equal(t, "color", in["category"])
		writeJSON(t, w, http.StatusOK, domain.Tag{ID: id, Label: in["label"], Category: in["category"]})
	})

	tag, err := c.UpdateTag(context.Background(), id, "crimson", "color")
	require.NoError(t, err)
	assert.Equal(t, "crimson", tag.Label)
}

func TestUpdateTag_DuplicateLabelIsConflict(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		writeAPIError(w, http.StatusConflict, "conflict", "tag label already exists")
	})

	_, err := c.UpdateTag(context.Background(), uuid.New(), "red", "color")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NotErrorIs(t, err, domain.ErrInUse)
}

func TestPlaceOrder_KeepsRepeatedIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Email      string      `json:"email"`
			ProductIDs []uuid.UUID `json:"product_ids"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "ann@example.com", in.Email)
		assert.Equal(t, []uuid.UUID{a, a, b}, in.ProductIDs)
		writeJSON(t, w, http.StatusCreated, map[string]any{
			"order":    domain.Order{ID: uuid.New(), Email: in.Email},
			"notified": true,
		})
	})

	order, notified, err := c.PlaceOrder(context.Background(), "ann@example.com", []uuid.UUID{a, a, b})
	require.NoError(t, err)
	assert.True(t, notified)
	assert.Equal(t, "ann@example.com", order.Email)
}

func TestShop_SendsRepeatedTags(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, []string{"red", "mug"}, q["tag"])
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "24", q.Get("per_page"))
		writeJSON(t, w, http.StatusOK, client.ShopPage{Page: 2, PerPage: 24, TotalPages: 3})
	})

	page, err := c.Shop(context.Background(), []string{"red", "mug"}, 2, 24)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.TotalPages)
}

func TestListOrders_DecodesPagination(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/orders", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = io.WriteString(w, `{"data":[],"pagination":{"page":1,"limit":5,"total":7,"total_pages":2}}`)
	})

	page, err := c.ListOrders(context.Background(), 0, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(7), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
}

func TestExportOrders_StreamsBody(t *testing.T) {
	const csv = "order_id,email\nabc,ann@example.com\n"
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "csv", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, csv)
	}, client.WithToken("tok"))

	var buf bytes.Buffer
	require.NoError(t, c.ExportOrders(context.Background(), "csv", &buf))
	assert.Equal(t, csv, buf.String())
}

func TestExportOrders_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeAPIError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	})

	err := c.ExportOrders(context.Background(), "json", io.Discard)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}
