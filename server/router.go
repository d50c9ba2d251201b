// Package server exposes the checkout agent over HTTP: session lifecycle,
// the chat turn endpoint, payment admin proxies, and profile management.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	contractx "github.com/kittipatv/checkout-agent/agent/contract"
	statex "github.com/kittipatv/checkout-agent/agent/state"
)

// ChatService runs one conversational turn against a checkout session.
type ChatService interface {
	Chat(ctx context.Context, sessionID, message string) (string, error)
}

// CheckFunc reports whether a dependency is reachable.
type CheckFunc func(ctx context.Context) error

type Deps struct {
	Registry *statex.Registry
	Chat     ChatService
	Gateway  contractx.PaymentGateway
	Profiles contractx.ProfileStore
}

type Server struct {
	registry *statex.Registry
	chat     ChatService
	gateway  contractx.PaymentGateway
	profiles contractx.ProfileStore

	// chatLocks serializes turns per session id. Concurrent turns against
	// one session would interleave transcript appends and status changes.
	chatLocks sync.Map

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

func New(deps Deps) (*Server, error) {
	if deps.Registry == nil {
		return nil, errors.New("session registry is required")
	}
	if deps.Chat == nil {
		return nil, errors.New("chat service is required")
	}
	if deps.Gateway == nil {
		return nil, errors.New("payment gateway is required")
	}
	if deps.Profiles == nil {
		return nil, errors.New("profile store is required")
	}

	return &Server{
		registry: deps.Registry,
		chat:     deps.Chat,
		gateway:  deps.Gateway,
		profiles: deps.Profiles,
		checks:   make(map[string]CheckFunc),
	}, nil
}

// RegisterCheck adds a named dependency probe to /healthz.
func (s *Server) RegisterCheck(name string, check CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(requestLogging)
	r.Use(requestMetrics)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/checkout/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Get("/{sessionID}", s.handleGetSession)
			r.Post("/{sessionID}/chat", s.handleChat)
			r.Post("/{sessionID}/cancel", s.handleCancelSession)
		})
		r.Route("/payments", func(r chi.Router) {
			r.Get("/charges", s.handleListCharges)
			r.Get("/charges/{chargeID}", s.handleGetCharge)
			r.Post("/charges/{chargeID}/refund", s.handleRefundCharge)
			r.Get("/methods", s.handlePaymentMethods)
		})
		r.Route("/profiles", func(r chi.Router) {
			r.Post("/", s.handleCreateProfile)
			r.Get("/{userID}", s.handleGetProfile)
		})
	})

	return r
}

/* --------------------------------- Health ---------------------------------- */

type healthStatus string

const (
	healthUp   healthStatus = "up"
	healthDown healthStatus = "down"
)

type healthCheck struct {
	Status healthStatus `json:"status"`
	Error  string       `json:"error,omitempty"`
}

type healthResponse struct {
	Status    healthStatus           `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]healthCheck `json:"checks,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s.mu.RLock()
	checks := make(map[string]CheckFunc, len(s.checks))
	for name, check := range s.checks {
		checks[name] = check
	}
	s.mu.RUnlock()

	resp := healthResponse{
		Status:    healthUp,
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]healthCheck, len(checks)),
	}
	for name, check := range checks {
		if err := check(ctx); err != nil {
			resp.Checks[name] = healthCheck{Status: healthDown, Error: err.Error()}
			resp.Status = healthDown
		} else {
			resp.Checks[name] = healthCheck{Status: healthUp}
		}
	}

	status := http.StatusOK
	if resp.Status == healthDown {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
