// Package metrics exposes Prometheus collectors for the ingestion pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StatementsProcessed counts finished ingestions by terminal status.
	StatementsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statements_processed_total",
		Help: "Statements that finished ingestion, labeled by terminal status.",
	}, []string{"status"})

	// RowsParsed counts parsed transaction rows by source extractor.
	RowsParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "statement_rows_parsed_total",
		Help: "Transaction rows produced by the parsers, labeled by source.",
	}, []string{"source"})

	// RowsDuplicate counts rows skipped by the dedup guard.
	RowsDuplicate = promauto.NewCounter(prometheus.CounterOpts{
		Name: "statement_rows_duplicate_total",
		Help: "Parsed rows skipped because they were already ingested.",
	})

	// RowsRejected counts rows the storage layer refused.
	RowsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "statement_rows_rejected_total",
		Help: "Parsed rows rejected during persistence.",
	})
)
