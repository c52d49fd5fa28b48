// Package v1 implements the versioned HTTP API routers.
package v1

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/praxisops/praxis/infrastructure/api/middleware"
)

var validate = validator.New()

// decode reads and validates a JSON request body.
func decode[T any](r *http.Request) (T, error) {
	var body T
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return body, middleware.NewAPIError(http.StatusBadRequest, "invalid request body", err)
	}
	if err := validate.Struct(body); err != nil {
		return body, middleware.NewAPIError(http.StatusBadRequest, err.Error(), err)
	}
	return body, nil
}

// splitParam splits a comma-separated query parameter into trimmed,
// non-empty values.
func splitParam(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			values = append(values, v)
		}
	}
	return values
}
