package tool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var toolExecutions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "checkout_tool_executions_total",
		Help: "Tool executions by tool name and outcome.",
	},
	[]string{"tool", "outcome"},
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)
