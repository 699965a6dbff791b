// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package snapshot

import (
	"context"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Package-level meter for snapshot metrics.
var meter = otel.Meter("reconf.snapshot")

// Metric instruments for snapshot operations.
var (
	capturesTotal metric.Int64Counter
	restoresTotal metric.Int64Counter
	rollbackTotal metric.Int64Counter
	batchFiles    metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// metricsEnabled controls whether metrics are recorded.
//
// Thread Safety: Uses atomic operations for safe concurrent access.
var metricsEnabled atomic.Bool

func init() {
	metricsEnabled.Store(true)
}

// SetMetricsEnabled controls whether metrics are recorded.
//
// Thread Safety: Safe for concurrent use.
func SetMetricsEnabled(enabled bool) {
	metricsEnabled.Store(enabled)
}

// initMetrics initializes all metric instruments.
// Safe to call multiple times; uses sync.Once internally.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		capturesTotal, err = meter.Int64Counter(
			"snapshot_captures_total",
			metric.WithDescription("Total number of single-file capture operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		restoresTotal, err = meter.Int64Counter(
			"snapshot_restores_total",
			metric.WithDescription("Total number of single-file restore operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		rollbackTotal, err = meter.Int64Counter(
			"snapshot_rollbacks_total",
			metric.WithDescription("Total number of partial-batch rollbacks"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		batchFiles, err = meter.Int64Histogram(
			"snapshot_batch_files",
			metric.WithDescription("Number of files per batch operation"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// statusAttr converts a success flag to the bounded status attribute.
func statusAttr(success bool) attribute.KeyValue {
	if success {
		return attribute.String("status", "success")
	}
	return attribute.String("status", "error")
}

// recordCapture records a single-file capture operation.
func recordCapture(ctx context.Context, success bool) {
	if !metricsEnabled.Load() {
		return
	}
	if err := initMetrics(); err != nil {
		return
	}
	capturesTotal.Add(ctx, 1, metric.WithAttributes(statusAttr(success)))
}

// recordRestore records a single-file restore operation.
func recordRestore(ctx context.Context, success bool) {
	if !metricsEnabled.Load() {
		return
	}
	if err := initMetrics(); err != nil {
		return
	}
	restoresTotal.Add(ctx, 1, metric.WithAttributes(statusAttr(success)))
}

// recordRollback records a defensive rollback of a partial batch.
//
// # Inputs
//
//   - ctx: Context for metric recording.
//   - files: Number of snapshots restored by the rollback.
func recordRollback(ctx context.Context, files int) {
	if !metricsEnabled.Load() {
		return
	}
	if err := initMetrics(); err != nil {
		return
	}
	rollbackTotal.Add(ctx, 1)
	batchFiles.Record(ctx, int64(files), metric.WithAttributes(
		attribute.String("operation", "rollback"),
	))
}

// recordBatchCapture records a batch capture operation.
func recordBatchCapture(ctx context.Context, files int, success bool) {
	if !metricsEnabled.Load() {
		return
	}
	if err := initMetrics(); err != nil {
		return
	}
	batchFiles.Record(ctx, int64(files), metric.WithAttributes(
		attribute.String("operation", "capture"),
		statusAttr(success),
	))
}

// recordBatchRestore records a batch restore operation.
//
// # Inputs
//
//   - ctx: Context for metric recording.
//   - files: Number of snapshots attempted (always the full batch).
//   - failed: Number of restores that failed.
func recordBatchRestore(ctx context.Context, files, failed int) {
	if !metricsEnabled.Load() {
		return
	}
	if err := initMetrics(); err != nil {
		return
	}
	batchFiles.Record(ctx, int64(files), metric.WithAttributes(
		attribute.String("operation", "restore"),
		statusAttr(failed == 0),
	))
}
