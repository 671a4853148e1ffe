package otel

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/MrEthical07/authservice"
	"github.com/MrEthical07/authservice/metrics/export/internaldefs"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

// MetricsSource is satisfied by *authservice.Engine.
type MetricsSource interface {
	MetricsSnapshot() authservice.MetricsSnapshot
}

// histogramSeries publishes one engine histogram as a cumulative bucket gauge
// keyed by the "le" attribute, plus a count gauge.
type histogramSeries struct {
	id      authservice.MetricID
	buckets metric.Int64ObservableGauge
	count   metric.Int64ObservableGauge
}

// OTelExporter reads an engine snapshot once per collection and reports it
// through observable instruments.
type OTelExporter struct {
	source       MetricsSource
	registration metric.Registration

	counters   map[authservice.MetricID]metric.Int64ObservableCounter
	histograms []histogramSeries
	bucketAttr []metric.ObserveOption
}

func NewOTelExporter(meter metric.Meter, source MetricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{
		source:   source,
		counters: make(map[authservice.MetricID]metric.Int64ObservableCounter),
	}
	for _, b := range internaldefs.Buckets {
		e.bucketAttr = append(e.bucketAttr, metric.WithAttributes(attribute.String("le", b.LE)))
	}

	var observables []metric.Observable
	for _, def := range internaldefs.Defs {
		switch def.Kind {
		case internaldefs.Counter:
			c, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
			if err != nil {
				return nil, fmt.Errorf("counter %s: %w", def.Name, err)
			}
			e.counters[def.ID] = c
			observables = append(observables, c)

		case internaldefs.Histogram:
			buckets, err := meter.Int64ObservableGauge(def.Name+"_bucket",
				metric.WithDescription(def.Help+" Cumulative count per upper bound."))
			if err != nil {
				return nil, fmt.Errorf("gauge %s_bucket: %w", def.Name, err)
			}
			count, err := meter.Int64ObservableGauge(def.Name+"_count", metric.WithDescription(def.Help))
			if err != nil {
				return nil, fmt.Errorf("gauge %s_count: %w", def.Name, err)
			}
			e.histograms = append(e.histograms, histogramSeries{id: def.ID, buckets: buckets, count: count})
			observables = append(observables, buckets, count)
		}
	}

	reg, err := meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	e.registration = reg
	return e, nil
}

func (e *OTelExporter) observe(_ context.Context, o metric.Observer) error {
	snap := e.source.MetricsSnapshot()
	for id, c := range e.counters {
		o.ObserveInt64(c, int64(snap.Counters[id]))
	}
	for _, h := range e.histograms {
		raw, ok := snap.Histograms[h.id]
		if !ok {
			continue
		}
		cumulative := internaldefs.Cumulative(raw)
		for i, v := range cumulative {
			o.ObserveInt64(h.buckets, int64(v), e.bucketAttr[i])
		}
		o.ObserveInt64(h.count, int64(cumulative[len(cumulative)-1]))
	}
	return nil
}

// Close unregisters the callback. The meter provider is left to the caller.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
