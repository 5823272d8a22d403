// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
package query

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/alem-hub/studyhub/internal/domain/platform"
	"github.com/alem-hub/studyhub/pkg/timeutil"
)

var tracer = otel.Tracer("github.com/alem-hub/studyhub/internal/application/query")

// Deps are the collaborators shared by all query handlers.
type Deps struct {
	Store platform.Store
	Clock timeutil.Clock

	// Observe is called once per executed query.
	Observe func(operation string, duration time.Duration, err error)
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = timeutil.SystemClock{}
	}
	return d
}

// view runs fn in a read-only unit of work with tracing and observation.
func (d Deps) view(ctx context.Context, operation string, fn func(ctx context.Context, r platform.Repositories) error) (err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "query."+operation)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if d.Observe != nil {
			d.Observe(operation, time.Since(start), err)
		}
	}()

	return d.Store.View(ctx, func(r platform.Repositories) error {
		return fn(ctx, r)
	})
}
