// Package otel registers goGate metrics as OpenTelemetry observable
// instruments.
//
// Counters become Int64ObservableCounters with the same gogate_*_total names
// as the Prometheus exporter. The latency histogram is exported as one
// cumulative gauge per bucket plus a count gauge.
//
// # What this package must NOT do
//
//   - Install a global MeterProvider.
package otel
