package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	contractx "github.com/kittipatv/checkout-agent/agent/contract"
)

type refundRequest struct {
	// Amount in minor units. Zero or absent refunds the full remaining amount.
	Amount int64 `json:"amount,omitempty"`
}

func (s *Server) handleListCharges(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	charges, err := s.gateway.ListCharges(r.Context(), limit, offset)
	if err != nil {
		writeGatewayError(w, r, err)
		return
	}
	if charges == nil {
		charges = []contractx.Charge{}
	}
	writeJSON(w, http.StatusOK, response{Data: charges})
}

func (s *Server) handleGetCharge(w http.ResponseWriter, r *http.Request) {
	charge, err := s.gateway.GetCharge(r.Context(), chi.URLParam(r, "chargeID"))
	if err != nil {
		writeGatewayError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: charge})
}

func (s *Server) handleRefundCharge(w http.ResponseWriter, r *http.Request) {
	var req refundRequest
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
	}

	refund, err := s.gateway.CreateRefund(r.Context(), chi.URLParam(r, "chargeID"), req.Amount)
	if err != nil {
		writeGatewayError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, response{Data: refund})
}

func (s *Server) handlePaymentMethods(w http.ResponseWriter, r *http.Request) {
	capabilities, err := s.gateway.Capabilities(r.Context())
	if err != nil {
		writeGatewayError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: capabilities})
}
