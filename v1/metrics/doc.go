// Package metrics provides Prometheus-based metrics for ragcore.
//
// Each service gets an isolated registry whose series all carry a constant
// service="<name>" label, plus an HTTP server exposing /metrics whose lifetime
// is managed by fx.
//
// Besides HTTP request metrics the package tracks the retrieval pipeline:
//   - operations_total / operation_duration_seconds, fed by OperationObserver from
//     the observability hooks of the embedding, vector store and LLM components
//   - retrieval_points_used, the number of chunks that survived the relevance floor
//   - side_write_failures_total, failed best-effort writes to user collections
//   - documents_ingested_total, ingest pipeline outcomes
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,
//		metrics.FXModule, // *Metrics, MetricsCollector and observability.Observer
//		fx.Provide(func() metrics.Config {
//			return metrics.Config{Address: ":9090", Namespace: "ragcore", ServiceName: "ragserver"}
//		}),
//	)
package metrics
