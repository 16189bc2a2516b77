package llm

import (
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/ragcore/v1/logger"
	"github.com/Aleph-Alpha/ragcore/v1/observability"
)

// FXModule provides *Gateway built from Config.
var FXModule = fx.Module("llm",
	fx.Provide(NewGatewayWithDI),
)

// GatewayParams groups the dependencies of NewGatewayWithDI.
type GatewayParams struct {
	fx.In

	Config   Config
	Logger   logger.Logger
	Observer observability.Observer `optional:"true"`
}

// NewGatewayWithDI builds the Gateway for fx.
func NewGatewayWithDI(p GatewayParams) (*Gateway, error) {
	return New(p.Config, p.Logger, p.Observer)
}
