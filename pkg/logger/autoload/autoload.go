// Package autoload configures the global logger from LOG_* environment
// variables at import time. Blank-import it from main.
package autoload

import (
	"github.com/kelseyhightower/envconfig"

	logx "github.com/kittipatv/checkout-agent/pkg/logger"
)

func init() {
	var cfg logx.Config
	if err := envconfig.Process("log", &cfg); err != nil {
		logx.Init()
		return
	}
	logx.Init(cfg)
}
