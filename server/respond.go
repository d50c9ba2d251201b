package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	checkoutx "github.com/kittipatv/checkout-agent/agent/agents/checkout"
	contractx "github.com/kittipatv/checkout-agent/agent/contract"
	statex "github.com/kittipatv/checkout-agent/agent/state"
)

// response is the JSON envelope used by every endpoint.
type response struct {
	Data  any            `json:"data,omitempty"`
	Error *errorResponse `json:"error,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, response{Error: &errorResponse{Code: code, Message: message}})
}

// writeError maps domain sentinels onto HTTP statuses. Anything unrecognized
// is a 500 and gets logged; sentinel errors carry their own message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, contractx.ErrValidation),
		errors.Is(err, contractx.ErrToolArguments),
		errors.Is(err, statex.ErrInvalidCart),
		errors.Is(err, checkoutx.ErrInvalidMessage),
		errors.Is(err, checkoutx.ErrInvalidSession),
		errors.Is(err, statex.ErrInvalidSession):
		writeErrorMessage(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, statex.ErrSessionNotFound),
		errors.Is(err, contractx.ErrProfileNotFound),
		errors.Is(err, contractx.ErrChargeNotFound),
		errors.Is(err, contractx.ErrProductNotFound):
		writeErrorMessage(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, statex.ErrInvalidTransition):
		writeErrorMessage(w, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, contractx.ErrModelInvoke):
		writeErrorMessage(w, http.StatusBadGateway, "UPSTREAM_ERROR", err.Error())
	default:
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("internal error")
		writeErrorMessage(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
	}
}

// writeGatewayError is writeError for the payment admin proxies: sentinel
// errors keep their mapping, everything else is a 502 from the gateway.
func writeGatewayError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, contractx.ErrChargeNotFound),
		errors.Is(err, contractx.ErrValidation):
		writeError(w, r, err)
	default:
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("payment gateway request failed")
		writeErrorMessage(w, http.StatusBadGateway, "UPSTREAM_ERROR", "payment gateway request failed: "+err.Error())
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body: "+err.Error())
		return false
	}
	return true
}
