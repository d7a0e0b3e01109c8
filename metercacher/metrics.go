// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metercacher

import (
	"github.com/jmgilman/go/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultLabel = "result"
	tierLabel   = "tier"
)

var (
	hitLabels       = prometheus.Labels{resultLabel: "hit"}
	missLabels      = prometheus.Labels{resultLabel: "miss"}
	loadedLabels    = prometheus.Labels{resultLabel: "loaded"}
	duplicateLabels = prometheus.Labels{resultLabel: "duplicate"}
	okLabels        = prometheus.Labels{resultLabel: "ok"}
	failedLabels    = prometheus.Labels{resultLabel: "failed"}
	foundLabels     = prometheus.Labels{tierLabel: "found"}
	notFoundLabels  = prometheus.Labels{tierLabel: "not_found"}
)

type cacheMetrics struct {
	lookups     *prometheus.CounterVec
	lookupTime  *prometheus.CounterVec
	loads       *prometheus.CounterVec
	unloads     prometheus.Counter
	allocations *prometheus.CounterVec

	entries       *prometheus.GaugeVec
	size          prometheus.Gauge
	portionFilled prometheus.Gauge
}

func newMetrics(namespace string, reg prometheus.Registerer) (*cacheMetrics, error) {
	m := &cacheMetrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "number of lookups by result",
		}, []string{resultLabel}),
		lookupTime: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_time_total",
			Help:      "time spent (ns) in lookups by result",
		}, []string{resultLabel}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "number of loads by result",
		}, []string{resultLabel}),
		unloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unloads_total",
			Help:      "number of entries explicitly unloaded",
		}),
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocations_total",
			Help:      "number of allocate calls by result",
		}, []string{resultLabel}),
		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entries",
			Help:      "number of cached entries by tier",
		}, []string{tierLabel}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "size",
			Help:      "units charged against the size budget",
		}),
		portionFilled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "portion_filled",
			Help:      "fraction of the size budget in use",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.lookups,
		m.lookupTime,
		m.loads,
		m.unloads,
		m.allocations,
		m.entries,
		m.size,
		m.portionFilled,
	} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrapf(err, errors.CodeAlreadyExists, "registering %s cache metrics", namespace)
		}
	}
	return m, nil
}
