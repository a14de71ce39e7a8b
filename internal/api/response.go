package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hearthledger/hearthledger/internal/auth"
	"github.com/hearthledger/hearthledger/internal/calculator"
	"github.com/hearthledger/hearthledger/internal/service"
	"github.com/hearthledger/hearthledger/internal/storage"
)

// errorBody is the uniform error payload: a machine-readable kind, a
// human-readable detail, and optional diagnostics (mismatch delta,
// edit-conflict overruns).
type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
	Data   any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

// writeError translates domain errors into HTTP responses. Every error
// kind from the split engine and the ledger maps to a 4xx with its
// diagnostic payload; nothing is swallowed into a generic success.
func writeError(w http.ResponseWriter, err error) {
	var (
		mismatch *calculator.MismatchError
		conflict *service.EditConflictError
	)

	switch {
	case errors.As(err, &mismatch):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:  "split_mismatch",
			Detail: err.Error(),
			Data:   map[string]any{"delta": mismatch.Delta, "unit": mismatch.Unit},
		})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorBody{
			Error:  "edit_conflict",
			Detail: err.Error(),
			Data:   map[string]any{"overruns": conflict.Overruns},
		})
	case errors.Is(err, calculator.ErrInvalidAmount):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_amount", Detail: err.Error()})
	case errors.Is(err, calculator.ErrInvalidSplit):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_split", Detail: err.Error()})
	case errors.Is(err, service.ErrInvalidPayment):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_payment", Detail: err.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		writeJSON(w, http.StatusForbidden, errorBody{Error: "permission_denied", Detail: err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Detail: err.Error()})
	case errors.Is(err, storage.ErrVersionConflict):
		writeJSON(w, http.StatusConflict, errorBody{Error: "version_conflict", Detail: err.Error()})
	case errors.Is(err, auth.ErrEmailExists):
		writeJSON(w, http.StatusConflict, errorBody{Error: "email_exists", Detail: err.Error()})
	case errors.Is(err, auth.ErrWeakPassword):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "weak_password", Detail: err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid_credentials", Detail: err.Error()})
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthenticated", Detail: err.Error()})
	default:
		slog.Error("Internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal"})
	}
}

func badRequest(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Detail: detail})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		badRequest(w, "malformed request body: "+err.Error())
		return false
	}
	return true
}
