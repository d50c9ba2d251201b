package server

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	statex "github.com/kittipatv/checkout-agent/agent/state"
)

type createSessionRequest struct {
	Items    []statex.CartItem `json:"items"`
	Currency string            `json:"currency,omitempty"`
	UserID   string            `json:"user_id,omitempty"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	SessionID   string `json:"session_id"`
	Reply       string `json:"reply"`
	Status      string `json:"status,omitempty"`
	TotalAmount int64  `json:"total_amount"`
	Currency    string `json:"currency,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := s.registry.Create(r.Context(), req.Items, req.Currency, req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, response{Data: session})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.registry.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: session})
}

func (s *Server) sessionLock(sessionID string) *sync.Mutex {
	lock, _ := s.chatLocks.LoadOrStore(sessionID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	reply, err := s.chat.Chat(r.Context(), sessionID, req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := chatResponse{SessionID: sessionID, Reply: reply}
	if session, err := s.registry.Get(r.Context(), sessionID); err == nil {
		resp.Status = string(session.Status)
		resp.TotalAmount = session.TotalAmount
		resp.Currency = session.Currency
	}
	writeJSON(w, http.StatusOK, response{Data: resp})
}

func (s *Server) handleCancelSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.registry.Get(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := session.MarkCancelled(); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.registry.Save(r.Context(), session); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: session})
}
