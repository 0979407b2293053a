// Package operations wraps service operations with tracing, metrics,
// logging, panic recovery and a database transaction.
package operations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/pic-perfect/pkg/observability"
	"github.com/Black-And-White-Club/pic-perfect/pkg/observability/attr"
	"github.com/Black-And-White-Club/pic-perfect/pkg/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// errDomainRollback aborts a transaction whose operation returned a failure
// result. It never escapes RunInTx.
var errDomainRollback = errors.New("domain failure rollback")

// Runner holds the collaborators every operation needs.
type Runner struct {
	Service string
	Logger  *slog.Logger
	Metrics observability.OperationMetrics
	Tracer  trace.Tracer
	DB      *bun.DB
}

// OperationFunc is the generic signature for service operation functions.
type OperationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// TxFunc is an operation body that runs against a transaction handle.
type TxFunc[S any, F any] func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error)

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// WithTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func WithTelemetry[S any, F any](
	r *Runner,
	ctx context.Context,
	operationName string,
	identifier string,
	op OperationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	logger := r.logger()

	// Start span
	var span trace.Span
	if r.Tracer != nil {
		ctx, span = r.Tracer.Start(ctx, r.Service+"."+operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if r.Metrics != nil {
		r.Metrics.RecordOperationAttempt(ctx, operationName, r.Service)
	}

	startTime := time.Now()
	defer func() {
		if r.Metrics != nil {
			r.Metrics.RecordOperationDuration(ctx, operationName, r.Service, time.Since(startTime))
		}
	}()

	logger.InfoContext(ctx, "Operation triggered",
		attr.ExtractCorrelationID(ctx),
		attr.String("operation", operationName),
		attr.String("identifier", identifier),
	)

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, rec)
			logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			if r.Metrics != nil {
				r.Metrics.RecordOperationFailure(ctx, operationName, r.Service)
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "panic")
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	// Infrastructure error
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if r.Metrics != nil {
			r.Metrics.RecordOperationFailure(ctx, operationName, r.Service)
		}
		span.RecordError(wrappedErr)
		span.SetStatus(codes.Error, wrappedErr.Error())
		return result, wrappedErr
	}

	// Domain failure
	if result.IsFailure() {
		logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	if r.Metrics != nil {
		r.Metrics.RecordOperationSuccess(ctx, operationName, r.Service)
	}

	return result, nil
}

// RunInTx runs fn in a transaction. A failure result rolls the transaction
// back and is returned without an error. With no DB configured fn receives
// a nil handle and the repositories fall back to their own connection.
func RunInTx[S any, F any](
	r *Runner,
	ctx context.Context,
	fn TxFunc[S, F],
) (results.OperationResult[S, F], error) {
	if r.DB == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]

	err := r.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		if txErr != nil {
			return txErr
		}
		if result.IsFailure() {
			return errDomainRollback
		}
		return nil
	})
	if errors.Is(err, errDomainRollback) {
		return result, nil
	}

	return result, err
}

// Execute runs fn in a transaction under telemetry and unwraps the result:
// a failure payload comes back as the error.
func Execute[S any](
	r *Runner,
	ctx context.Context,
	operationName string,
	identifier string,
	fn TxFunc[S, error],
) (S, error) {
	var zero S

	result, err := WithTelemetry(r, ctx, operationName, identifier, func(ctx context.Context) (results.OperationResult[S, error], error) {
		return RunInTx(r, ctx, fn)
	})
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	if result.Success == nil {
		return zero, fmt.Errorf("%s: operation returned no result", operationName)
	}
	return *result.Success, nil
}
