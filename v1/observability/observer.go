// Package observability defines the hook through which ragcore components report
// the operations they perform (embedding calls, vector store requests, LLM calls).
//
// Components hold an optional Observer and notify it after every operation. The metrics
// package ships an Observer that turns these notifications into Prometheus series; tests
// can plug in a recording observer instead.
package observability

import "time"

// OperationContext describes a single completed operation.
type OperationContext struct {
	// Component is the reporting package, e.g. "embedding", "vectorstore", "llm".
	Component string

	// Operation is the verb, e.g. "encode", "upsert", "search", "generate".
	Operation string

	// Resource is the primary target, such as a collection or model name.
	Resource string

	// SubResource carries secondary context, such as a user collection.
	SubResource string

	Duration time.Duration

	// Error is nil on success.
	Error error

	// Size is an operation specific count (texts embedded, points written, results returned).
	Size int64

	Metadata map[string]interface{}
}

// Observer receives OperationContext notifications.
// Implementations must be safe for concurrent use and must not block.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(ctx OperationContext)

// ObserveOperation calls f(ctx).
func (f ObserverFunc) ObserveOperation(ctx OperationContext) {
	f(ctx)
}

// Status returns "success" or "error" depending on err; used as a metric label.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
