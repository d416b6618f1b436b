package otel

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const maxStatementLen = 512

// DBSpan starts a client span for a repository call. operation is
// "<table>.<verb>", e.g. "leads.insert".
func DBSpan(ctx context.Context, operation string, query string) (context.Context, trace.Span) {
	table, verb, ok := strings.Cut(operation, ".")
	if !ok {
		table, verb = "", operation
	}
	attrs := []attribute.KeyValue{
		semconv.DBSystemPostgreSQL,
		semconv.DBOperationKey.String(verb),
		attribute.String("db.statement", compactStatement(query)),
	}
	if table != "" {
		attrs = append(attrs, attribute.String("db.sql.table", table))
	}
	return Tracer().Start(ctx, "db."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// compactStatement collapses whitespace and caps the length of a SQL
// statement for span attributes.
func compactStatement(query string) string {
	s := strings.Join(strings.Fields(query), " ")
	if len(s) > maxStatementLen {
		s = s[:maxStatementLen] + "..."
	}
	return s
}

// WrapDBError records err on span. Lookups that find nothing are not
// failures.
func WrapDBError(span trace.Span, err error) {
	if err == nil || errors.Is(err, pgx.ErrNoRows) {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Query runs fn inside a db span.
func Query(ctx context.Context, operation string, query string, fn func(context.Context) error) error {
	ctx, span := DBSpan(ctx, operation, query)
	defer span.End()

	err := fn(ctx)
	WrapDBError(span, err)
	return err
}
