package httpadapter

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	legacyrouter "github.com/getkin/kin-openapi/routers/legacy"
)

//go:embed openapi.yaml
var openapiSpec []byte

// NewOpenAPIValidator builds a middleware that validates incoming requests
// against the embedded OpenAPI document. Multipart bodies are checked for
// shape by the handlers themselves; the validator covers methods, paths,
// parameters and JSON bodies. Paths outside the document pass through.
func NewOpenAPIValidator() (func(http.Handler) http.Handler, error) {
	loader := &openapi3.Loader{Context: context.Background()}
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	router, err := legacyrouter.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options:    &openapi3filter.Options{},
			}
			if !isJSONRequest(r) {
				input.Options.ExcludeRequestBody = true
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}

func isJSONRequest(r *http.Request) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return false
	}
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
