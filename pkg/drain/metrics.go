// Copyright 2025 ACLDrain Authors
// SPDX-License-Identifier: Apache-2.0

package drain

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RunsTotal tracks completed runs by outcome
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "acldrain",
		Subsystem: "drain",
		Name:      "runs_total",
		Help:      "Total number of drain runs by outcome",
	}, []string{"outcome"}) // outcome: "archived", "no_op", "degraded", "failed"

	// EntriesArchivedTotal tracks entries durably written to the archive
	EntriesArchivedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "acldrain",
		Subsystem: "drain",
		Name:      "entries_archived_total",
		Help:      "Total number of ACL log entries archived",
	})

	// ErrorsTotal tracks failures by pipeline stage
	ErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "acldrain",
		Subsystem: "drain",
		Name:      "errors_total",
		Help:      "Total number of errors by pipeline stage",
	}, []string{"stage"}) // stage: "fetch", "parse", "write", "reset"
)

// RegisterMetrics registers the drain collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{RunsTotal, EntriesArchivedTotal, ErrorsTotal} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
