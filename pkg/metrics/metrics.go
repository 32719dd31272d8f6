package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// 业务指标，Init 之前全部是 noop
var (
	leaveTransitions    metric.Int64Counter
	geofenceEvaluations metric.Int64Counter
	recomputeDuration   metric.Float64Histogram
	recomputeEmployees  metric.Int64Counter
)

func init() {
	_ = Init(noop.NewMeterProvider().Meter("noop"))
}

func Init(meter metric.Meter) error {
	var err error

	if leaveTransitions, err = meter.Int64Counter("hrcore.leave.transitions",
		metric.WithDescription("Leave and permission state transitions"),
		metric.WithUnit("{transition}"),
	); err != nil {
		return err
	}

	if geofenceEvaluations, err = meter.Int64Counter("hrcore.geofence.evaluations",
		metric.WithDescription("Check-in geofence evaluations"),
		metric.WithUnit("{evaluation}"),
	); err != nil {
		return err
	}

	if recomputeDuration, err = meter.Float64Histogram("hrcore.balance.recompute.duration",
		metric.WithDescription("Duration of a balance recompute run"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 5, 15, 30, 60, 300),
	); err != nil {
		return err
	}

	recomputeEmployees, err = meter.Int64Counter("hrcore.balance.recompute.employees",
		metric.WithDescription("Employees handled by balance recompute"),
		metric.WithUnit("{employee}"),
	)
	return err
}

// RecordTransition kind 为 leave 或 permission，result 为 ok / conflict / error
func RecordTransition(ctx context.Context, kind, action, result string) {
	leaveTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("action", action),
		attribute.String("result", result),
	))
}

func RecordGeofence(ctx context.Context, evaluated, inside bool) {
	result := "unknown"
	if evaluated {
		result = "outside"
		if inside {
			result = "inside"
		}
	}
	geofenceEvaluations.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordRecompute 记录一次重算
func RecordRecompute(ctx context.Context, trigger string, dryRun bool, processed, updated, failed int, elapsed time.Duration) {
	base := []attribute.KeyValue{
		attribute.String("trigger", trigger),
		attribute.Bool("dry_run", dryRun),
	}
	recomputeDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(base...))

	for outcome, n := range map[string]int{"processed": processed, "updated": updated, "failed": failed} {
		if n == 0 {
			continue
		}
		recomputeEmployees.Add(ctx, int64(n), metric.WithAttributes(append(base, attribute.String("outcome", outcome))...))
	}
}
