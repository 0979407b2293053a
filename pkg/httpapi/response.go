// Package httpapi holds the JSON envelope and middleware shared by the
// module HTTP handlers.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Black-And-White-Club/pic-perfect/pkg/arcadeerrors"
	"github.com/Black-And-White-Club/pic-perfect/pkg/observability/attr"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Envelope wraps every JSON response.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody carries a stable code and a human readable message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes data in a success envelope.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, Envelope{Success: true, Data: data})
}

// WriteError maps err onto a status and error envelope. Infrastructure
// errors are logged and answered with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := arcadeerrors.HTTPStatus(err)
	body := &ErrorBody{Code: arcadeerrors.Code(err), Message: err.Error()}

	if !arcadeerrors.IsDomain(err) {
		if logger != nil {
			logger.ErrorContext(r.Context(), "Request failed",
				attr.ExtractCorrelationID(r.Context()),
				attr.String("method", r.Method),
				attr.String("path", r.URL.Path),
				attr.Error(err),
			)
		}
		body.Message = "internal error"
	}

	writeEnvelope(w, status, Envelope{Success: false, Error: body})
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// DecodeJSON reads a JSON body into v. Malformed or oversized bodies yield
// ErrValidation.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", arcadeerrors.ErrValidation)
		}
		return fmt.Errorf("%w: invalid request body: %v", arcadeerrors.ErrValidation, err)
	}
	return nil
}

// WriteFile sends a binary download.
func WriteFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
