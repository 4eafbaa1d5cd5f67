package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/transport"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

// RequestValidator checks request parameters and bodies against an OpenAPI document.
type RequestValidator struct {
	router routers.Router
	base   *transport.BaseHandler
}

// NewRequestValidator loads and validates the document once at startup.
func NewRequestValidator(ctx context.Context, spec []byte, base *transport.BaseHandler) (*RequestValidator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	return &RequestValidator{router: router, base: base}, nil
}

// Middleware rejects requests that violate the document with a 400. Requests for routes the
// document does not describe pass through untouched. Authentication is left to the handlers.
func (v *RequestValidator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, pathParams, err := v.router.FindRoute(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
			},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			v.base.HandleServiceError(w, toValidationError(err))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func toValidationError(err error) error {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		field := ""
		if reqErr.Parameter != nil {
			field = reqErr.Parameter.Name
		}
		if field != "" {
			return internal.NewValidationFieldError(field, reqErr.Error(), internal.ErrCodeValidationFailed)
		}
		return internal.NewValidationError(reqErr.Error(), internal.ErrCodeValidationFailed).WithCause(err)
	}
	return internal.NewValidationError("request does not match the API contract", internal.ErrCodeValidationFailed).WithCause(err)
}
