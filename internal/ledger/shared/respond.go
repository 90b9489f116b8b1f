package shared

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Line  int    `json:"line,omitempty"`
}

// WriteJSON serialises v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps the ledger error taxonomy onto HTTP statuses.
// Unrecognised errors are logged and reported as 500 without detail.
func WriteError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		ve *ValidationError
		nf *NotFoundError
		is *InvalidStateError
		pc *PeriodClosedError
	)
	switch {
	case errors.As(err, &ve):
		WriteJSON(w, http.StatusUnprocessableEntity, errorBody{Error: ve.Error(), Field: ve.Field, Line: ve.Line})
	case errors.As(err, &nf):
		WriteJSON(w, http.StatusNotFound, errorBody{Error: nf.Error()})
	case errors.As(err, &is):
		WriteJSON(w, http.StatusConflict, errorBody{Error: is.Error()})
	case errors.As(err, &pc):
		WriteJSON(w, http.StatusUnprocessableEntity, errorBody{Error: pc.Error()})
	default:
		if logger != nil {
			logger.Error("unhandled ledger error", slog.Any("error", err))
		}
		WriteJSON(w, http.StatusInternalServerError, errorBody{Error: http.StatusText(http.StatusInternalServerError)})
	}
}
