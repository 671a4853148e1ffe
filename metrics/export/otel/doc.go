// Package otel publishes engine metrics through an OpenTelemetry Meter.
//
// Callers own the MeterProvider; the service binary passes the global one, so
// any provider installed with otel.SetMeterProvider picks the series up.
package otel
