package metrics

import (
	"github.com/Aleph-Alpha/ragcore/v1/observability"
)

// OperationObserver records component operations into the Metrics registry.
type OperationObserver struct {
	metrics *Metrics
}

// NewOperationObserver returns an observability.Observer backed by m.
func NewOperationObserver(m *Metrics) *OperationObserver {
	return &OperationObserver{metrics: m}
}

// ObserveOperation implements observability.Observer.
func (o *OperationObserver) ObserveOperation(ctx observability.OperationContext) {
	if o == nil || o.metrics == nil {
		return
	}
	o.metrics.operationsTotal.WithLabelValues(ctx.Component, ctx.Operation, observability.Status(ctx.Error)).Inc()
	o.metrics.operationDuration.WithLabelValues(ctx.Component, ctx.Operation).Observe(ctx.Duration.Seconds())
}
