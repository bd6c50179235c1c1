package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// pathUUID binds the {name} path parameter as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid format for parameter %s: must be a UUID", name)
	}
	return id, nil
}

// queryString binds an optional form-style query parameter.
func queryString(r *http.Request, name string) (string, error) {
	var v *string
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return "", fmt.Errorf("invalid format for parameter %s", name)
	}
	return derefString(v), nil
}

// queryInt binds an optional integer query parameter; nil when absent.
func queryInt(r *http.Request, name string) (*int, error) {
	var v *int
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return nil, fmt.Errorf("invalid format for parameter %s: must be an integer", name)
	}
	return v, nil
}

// queryStrings binds a repeated query parameter (?tag=a&tag=b).
func queryStrings(r *http.Request, name string) ([]string, error) {
	var v *[]string
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return nil, fmt.Errorf("invalid format for parameter %s", name)
	}
	if v == nil {
		return nil, nil
	}
	return *v, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

func chiParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
