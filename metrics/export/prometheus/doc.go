// Package prometheus renders engine metrics in Prometheus text exposition
// format.
//
// [PrometheusExporter.Handler] is mounted at GET /metrics by the HTTP service.
// Counter names are prefixed authservice_ and end in _total; the single
// histogram is authservice_verify_token_latency_seconds. Nothing is
// registered in a global registry.
package prometheus
