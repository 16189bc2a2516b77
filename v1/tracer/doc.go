// Package tracer sets up OpenTelemetry tracing for ragcore.
//
// NewClient installs a global TracerProvider (optionally exporting over OTLP/HTTP)
// and the W3C propagators. Components open spans through StartSpan and annotate them
// with SetAttributes and RecordErrorOnSpan. The logger's *WithContext methods pick up
// the resulting trace and span ids.
package tracer
