// Package logger provides structured logging for ragcore services.
//
// The package wraps go.uber.org/zap behind a small, stable API: every method takes a
// message, an optional error and any number of field maps. It integrates with the fx
// dependency injection framework and, optionally, with OpenTelemetry trace correlation.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - Logger interface: the contract consumed by other packages
//   - LoggerClient struct: concrete implementation backed by zap
//   - NewLoggerClient constructor: returns *LoggerClient
//   - FXModule: provides both *LoggerClient and the Logger interface
//
// # Direct Usage (Without FX)
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:         "info",
//		ServiceName:   "ragcore",
//		EnableTracing: true,
//	})
//
//	log.Info("Document ingested", nil, map[string]interface{}{
//		"document_id": 42,
//	})
//
//	// trace_id and span_id are added automatically when a span is active
//	log.InfoWithContext(ctx, "Retrieval finished", nil, map[string]interface{}{
//		"k_points_used": 3,
//	})
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,
//		fx.Provide(func() logger.Config {
//			return logger.Config{Level: "info", ServiceName: "ragcore"}
//		}),
//	)
//
// # Testing
//
// A gomock mock of the Logger interface is generated into mock_logger.go:
//
//	ctrl := gomock.NewController(t)
//	log := logger.NewMockLogger(ctrl)
//	log.EXPECT().Error("Failed to store chat message in user collection", gomock.Any(), gomock.Any())
//
// # Thread Safety
//
// All methods are safe for concurrent use by multiple goroutines.
package logger
