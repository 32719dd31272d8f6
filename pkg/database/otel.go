package database

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	spanKey  = "hrcore:otel_span"
	startKey = "hrcore:otel_start"
	maxSQL   = 500
)

type instruments struct {
	queries  metric.Int64Counter
	duration metric.Float64Histogram
}

// 未初始化时使用 noop，避免空指针
var inst = mustInstruments(noop.NewMeterProvider().Meter("noop"))

func newInstruments(meter metric.Meter) (instruments, error) {
	var i instruments
	var err error

	if i.queries, err = meter.Int64Counter("db.queries.total",
		metric.WithDescription("Total number of database statements"),
		metric.WithUnit("{query}"),
	); err != nil {
		return i, err
	}

	i.duration, err = meter.Float64Histogram("db.query.duration",
		metric.WithDescription("Database statement duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5),
	)
	return i, err
}

func mustInstruments(meter metric.Meter) instruments {
	i, err := newInstruments(meter)
	if err != nil {
		panic(err)
	}
	return i
}

// InitDatabaseMetrics 初始化数据库指标
func InitDatabaseMetrics(meter metric.Meter) error {
	i, err := newInstruments(meter)
	if err != nil {
		return err
	}
	inst = i
	return nil
}

// TracePlugin 为每条 SQL 生成 client span 并记录耗时
type TracePlugin struct {
	tracer trace.Tracer
	dbName string
}

func NewTracePlugin(serviceName, dbName string) *TracePlugin {
	return &TracePlugin{
		tracer: otel.Tracer(serviceName + ".gorm"),
		dbName: dbName,
	}
}

func (p *TracePlugin) Name() string {
	return "hrcore:otel"
}

func (p *TracePlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	errs := []error{
		cb.Create().Before("gorm:create").Register("hrcore:before_create", p.before("insert")),
		cb.Create().After("gorm:create").Register("hrcore:after_create", p.after("insert")),
		cb.Query().Before("gorm:query").Register("hrcore:before_query", p.before("select")),
		cb.Query().After("gorm:query").Register("hrcore:after_query", p.after("select")),
		cb.Update().Before("gorm:update").Register("hrcore:before_update", p.before("update")),
		cb.Update().After("gorm:update").Register("hrcore:after_update", p.after("update")),
		cb.Delete().Before("gorm:delete").Register("hrcore:before_delete", p.before("delete")),
		cb.Delete().After("gorm:delete").Register("hrcore:after_delete", p.after("delete")),
		cb.Row().Before("gorm:row").Register("hrcore:before_row", p.before("row")),
		cb.Row().After("gorm:row").Register("hrcore:after_row", p.after("row")),
		cb.Raw().Before("gorm:raw").Register("hrcore:before_raw", p.before("raw")),
		cb.Raw().After("gorm:raw").Register("hrcore:after_raw", p.after("raw")),
	}
	return errors.Join(errs...)
}

func (p *TracePlugin) before(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if db.Statement == nil || db.Statement.Context == nil {
			return
		}
		ctx, span := p.tracer.Start(db.Statement.Context, "db."+op,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.DBSystemPostgreSQL,
				semconv.DBName(p.dbName),
				semconv.DBOperation(op),
				attribute.String("db.table", db.Statement.Table),
			),
		)
		db.Statement.Context = ctx
		db.InstanceSet(spanKey, span)
		db.InstanceSet(startKey, time.Now())
	}
}

func (p *TracePlugin) after(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(spanKey)
		if !ok {
			return
		}
		span, ok := v.(trace.Span)
		if !ok {
			return
		}
		defer span.End()

		sql := db.Statement.SQL.String()
		if len(sql) > maxSQL {
			sql = sql[:maxSQL] + "..."
		}
		span.SetAttributes(
			semconv.DBStatement(sql),
			attribute.Int64("db.rows_affected", db.Statement.RowsAffected),
		)

		status := "success"
		switch {
		case db.Error == nil:
		case errors.Is(db.Error, gorm.ErrRecordNotFound):
			status = "not_found"
		default:
			status = "error"
			span.RecordError(db.Error)
			span.SetStatus(codes.Error, db.Error.Error())
		}

		if t, ok := db.InstanceGet(startKey); ok {
			if started, ok := t.(time.Time); ok {
				recordQuery(db.Statement.Context, op, db.Statement.Table, status, time.Since(started))
			}
		}
	}
}

func recordQuery(ctx context.Context, op, table, status string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("db.operation", op),
		attribute.String("db.table", table),
		attribute.String("db.status", status),
	)
	inst.queries.Add(ctx, 1, attrs)
	inst.duration.Record(ctx, elapsed.Seconds(), attrs)
}
