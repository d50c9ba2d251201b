package checkout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var chatTurns = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "checkout_chat_turns_total",
		Help: "Chat turns by outcome.",
	},
	[]string{"outcome"},
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)
