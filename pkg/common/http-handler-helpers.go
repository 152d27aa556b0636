package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/matst80/slask-catalog/pkg/types"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// JsonHandler wraps fn with CORS preflight handling and maps returned errors
// onto JSON error responses.
func JsonHandler(logger *zap.Logger, fn func(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			RespondToOptions(w, r)
			return
		}
		genericHeaders(w, r)
		enc := json.NewEncoder(w)
		if err := fn(w, r, enc); err != nil {
			status := StatusFromError(err)
			if status >= http.StatusInternalServerError {
				logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
			} else {
				logger.Debug("request rejected", zap.String("path", r.URL.Path), zap.Error(err))
			}
			WriteError(w, enc, status, err)
		}
	}
}

func StatusFromError(err error) int {
	var validation *types.ValidationError
	var invalidRange *types.InvalidRangeError
	switch {
	case errors.As(err, &validation), errors.As(err, &invalidRange):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrUnknownView):
		return http.StatusNotFound
	case errors.Is(err, types.ErrClosed):
		return http.StatusGone
	}
	return http.StatusInternalServerError
}

func WriteError(w http.ResponseWriter, enc *json.Encoder, status int, err error) {
	resp := ErrorResponse{Error: err.Error()}
	var validation *types.ValidationError
	if errors.As(err, &validation) {
		resp.Field = validation.Field
		resp.Reason = validation.Reason
	}
	w.WriteHeader(status)
	_ = enc.Encode(resp)
}

func genericHeaders(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	origin := r.Header.Get("Origin")
	if origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
}

func RespondToOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	origin := r.Header.Get("Origin")
	if origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
	w.Header().Set("Age", "0")
	w.WriteHeader(http.StatusAccepted)
}
