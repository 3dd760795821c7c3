package server

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/oceanbase/cinedeck-go/pkg/core"
	"github.com/oceanbase/cinedeck-go/pkg/logging"
	"github.com/oceanbase/cinedeck-go/pkg/validation"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("failed to write JSON response")
	}
}

func respondError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.Error().Err(err).Int("status", status).Msg("request failed")
	}

	resp := errorResponse{Error: err.Error()}
	var verr *validation.Error
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}
	respondJSON(w, status, resp)
}

func statusFor(err error) int {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr), errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrEmptyDeck):
		return http.StatusConflict
	case errors.Is(err, core.ErrCatalogUnavailable), errors.Is(err, core.ErrLLMOperation):
		return http.StatusBadGateway
	case errors.Is(err, core.ErrStorageOperation):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeAndValidate reads a JSON body into v and checks its struct rules.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &badRequest{err: err}
	}
	return validation.Struct(v)
}

type badRequest struct {
	err error
}

func (e *badRequest) Error() string { return "invalid request body: " + e.err.Error() }

func (e *badRequest) Unwrap() []error { return []error{core.ErrInvalidInput, e.err} }
