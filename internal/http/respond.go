package http

import (
	"encoding/json"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/apperr"
	"github.com/fjod/go_cart/storefront/pkg/logger"
)

type errorMessage struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Errors []errorMessage `json:"errors"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response", logger.Err(err))
	}
}

// respondError is the single place errors are rendered. Anything that is not
// an *apperr.Error is logged and reported without detail.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.As(err)
	if e.Kind == apperr.KindInternal {
		logger.FromContext(r.Context()).Error("request failed",
			"method", r.Method, "path", r.URL.Path, logger.Err(err))
	}
	respondJSON(w, r, e.Kind.Status(), ErrorResponse{Errors: []errorMessage{{Message: e.Message}}})
}
