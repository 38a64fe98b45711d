package aggregates

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/schemastore/internal/domain/aggregates"
	"github.com/yungbote/schemastore/internal/pkg/dbctx"
	"github.com/yungbote/schemastore/internal/pkg/logger"
)

const tracerName = "github.com/yungbote/schemastore/internal/data/aggregates"

type BaseDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Runner   TxRunner
	Hooks    Hooks
	CASGuard CASGuard
	Tracer   trace.Tracer
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.CASGuard.db == nil {
		d.CASGuard = NewCASGuard(d.DB)
	}
	if d.Tracer == nil {
		d.Tracer = otel.Tracer(tracerName)
	}
	return d
}

// executeRead runs fn on the caller's context. Reads never open a transaction.
func executeRead(dbc dbctx.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	return execute(dbc, deps, op, false, fn)
}

// executeWrite runs fn inside the caller's transaction when one is attached,
// otherwise inside a transaction opened by deps.Runner.
func executeWrite(dbc dbctx.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	return execute(dbc, deps, op, true, fn)
}

func execute(dbc dbctx.Context, deps BaseDeps, op string, write bool, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.op"
	}
	ctx := dbc.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := deps.Tracer.Start(ctx, op, trace.WithAttributes(
		attribute.Bool("aggregate.write", write),
		attribute.Bool("aggregate.caller_tx", dbc.Tx != nil),
	))
	defer span.End()
	dbc.Ctx = ctx

	var err error
	switch {
	case !write || dbc.Tx != nil:
		err = fn(dbc)
	default:
		err = deps.Runner.InTx(ctx, fn)
	}
	mapped := MapError(op, err)

	status := "success"
	if mapped != nil {
		status = aggregateErrorStatus(mapped)
		if domainagg.IsCode(mapped, domainagg.CodeConflict) {
			deps.Hooks.IncConflict(op)
		}
		if domainagg.IsCode(mapped, domainagg.CodeRetryable) {
			deps.Hooks.IncRetry(op)
		}
		span.RecordError(mapped)
		span.SetStatus(codes.Error, status)
	}
	span.SetAttributes(attribute.String("aggregate.status", status))
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}
