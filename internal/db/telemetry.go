package db

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/PabloPavan/sniply_inject/internal/telemetry"
)

var (
	dbMetricsEnabled bool
	dbQueryDuration  metric.Float64Histogram
	dbQueryErrors    metric.Int64Counter
	dbTracer         = otel.Tracer("sniply-inject/db")
)

// InitTelemetry binds the db instruments to the current global providers.
// Call it after the providers are installed.
func InitTelemetry(serviceName string) {
	dbTracer = otel.Tracer(serviceName + "/db")
	meter := otel.Meter(serviceName + "/db")

	var err error
	dbQueryDuration, err = meter.Float64Histogram(
		"sniply_db_query_duration_seconds",
		metric.WithDescription("Snippet store query latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return
	}

	dbQueryErrors, err = meter.Int64Counter(
		"sniply_db_query_errors_total",
		metric.WithDescription("Snippet store query errors"),
	)
	if err != nil {
		return
	}

	dbMetricsEnabled = true
}

// probe times one statement from start to its first observable outcome.
// For Query that is Rows.Close, for QueryRow it is Scan.
type probe struct {
	ctx   context.Context
	span  trace.Span
	op    string
	table string
	start time.Time
	once  sync.Once
}

func startProbe(ctx context.Context, sql string) *probe {
	op, table := describe(sql)
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", op),
	}
	if table != "" {
		attrs = append(attrs, attribute.String("db.sql.table", table))
	}
	ctx, span := dbTracer.Start(ctx, "DB "+op, trace.WithAttributes(attrs...))
	return &probe{ctx: ctx, span: span, op: op, table: table, start: time.Now()}
}

func (p *probe) finish(err error) {
	p.once.Do(func() {
		telemetry.FailSpan(p.span, err, "db_error")
		p.span.End()

		if !dbMetricsEnabled {
			return
		}
		status := "ok"
		if err != nil {
			status = "error"
		}
		attrs := metric.WithAttributes(
			attribute.String("db.operation", p.op),
			attribute.String("db.sql.table", p.table),
			attribute.String("db.status", status),
		)
		dbQueryDuration.Record(p.ctx, time.Since(p.start).Seconds(), attrs)
		if err != nil {
			dbQueryErrors.Add(p.ctx, 1, attrs)
		}
	})
}

type instrumentedQueryer struct {
	q Queryer
}

func (i instrumentedQueryer) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	p := startProbe(ctx, sql)
	tag, err := i.q.Exec(p.ctx, sql, arguments...)
	p.span.SetAttributes(attribute.Int64("db.rows_affected", tag.RowsAffected()))
	p.finish(err)
	return tag, err
}

func (i instrumentedQueryer) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	p := startProbe(ctx, sql)
	rows, err := i.q.Query(p.ctx, sql, args...)
	if err != nil {
		p.finish(err)
		return rows, err
	}
	return &instrumentedRows{Rows: rows, probe: p}, nil
}

func (i instrumentedQueryer) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	p := startProbe(ctx, sql)
	return &instrumentedRow{Row: i.q.QueryRow(p.ctx, sql, args...), probe: p}
}

type instrumentedRows struct {
	pgx.Rows
	probe *probe
}

func (r *instrumentedRows) Close() {
	r.Rows.Close()
	r.probe.finish(r.Rows.Err())
}

type instrumentedRow struct {
	pgx.Row
	probe *probe
}

func (r *instrumentedRow) Scan(dest ...any) error {
	err := r.Row.Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		r.probe.finish(nil)
	} else {
		r.probe.finish(err)
	}
	return err
}

// describe extracts the statement verb and, for the simple statements the
// repositories issue, the table it targets.
func describe(sql string) (op, table string) {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "UNKNOWN", ""
	}
	op = strings.ToUpper(fields[0])

	var marker string
	switch op {
	case "SELECT", "DELETE":
		marker = "FROM"
	case "INSERT":
		marker = "INTO"
	case "UPDATE":
		return op, tableName(fields, 1)
	default:
		return op, ""
	}
	for i, f := range fields {
		if strings.EqualFold(f, marker) {
			return op, tableName(fields, i+1)
		}
	}
	return op, ""
}

func tableName(fields []string, i int) string {
	if i >= len(fields) {
		return ""
	}
	name := strings.Trim(fields[i], `"(;`)
	return strings.ToLower(name)
}
