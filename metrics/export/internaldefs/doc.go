// Package internaldefs holds the metric names and bucket boundaries shared by
// the Prometheus and OTel exporters.
//
// # What this package must NOT do
//
//   - Import an exporter package.
//   - Perform I/O.
package internaldefs
