package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	contractx "github.com/kittipatv/checkout-agent/agent/contract"
)

type profileResponse struct {
	Profile        *contractx.Profile        `json:"profile"`
	Addresses      []contractx.Address       `json:"addresses"`
	PaymentMethods []contractx.PaymentMethod `json:"payment_methods"`
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req contractx.ProfileInput
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := s.profiles.CreateProfile(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, response{Data: profile})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	profile, err := s.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	addresses, err := s.profiles.ListAddresses(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	methods, err := s.profiles.ListPaymentMethods(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if addresses == nil {
		addresses = []contractx.Address{}
	}
	if methods == nil {
		methods = []contractx.PaymentMethod{}
	}
	writeJSON(w, http.StatusOK, response{Data: profileResponse{
		Profile:        profile,
		Addresses:      addresses,
		PaymentMethods: methods,
	}})
}
