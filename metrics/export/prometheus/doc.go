// Package prometheus exposes goGate metrics through a client_golang collector.
//
// [New] wraps a Gate; [Exporter.Handler] serves a private registry, so
// nothing is registered globally. Counters are named gogate_*_total; the
// histogram is gogate_decide_latency_seconds.
package prometheus
