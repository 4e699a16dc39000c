package engine

import (
	"context"
	"errors"
	"time"

	"github.com/finops/backend/internal/domain/query"
	"github.com/finops/backend/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("persistence/engine")

// Observer receives the duration and outcome of every store round trip.
type Observer interface {
	ObserveQuery(source, operation string, d time.Duration, err error)
}

type options struct {
	logger   *zap.Logger
	observer Observer
	dialect  Dialect
}

// Option configures an Engine.
type Option func(*options)

// WithLogger sets the logger used for storage failures.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithObserver sets the query observer (metrics).
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithDialect overrides dialect detection.
func WithDialect(d Dialect) Option {
	return func(o *options) {
		o.dialect = d
	}
}

// Engine executes plans against one Source and scans rows into T.
type Engine[T any] struct {
	db       *gorm.DB
	src      Source
	render   Renderer
	logger   *zap.Logger
	observer Observer
}

// New creates an Engine for src.
func New[T any](db *gorm.DB, src Source, opts ...Option) *Engine[T] {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.dialect == nil {
		o.dialect = DialectFor(db)
	}
	return &Engine[T]{
		db:       db,
		src:      src,
		render:   NewRenderer(o.dialect),
		logger:   o.logger.With(zap.String("source", src.Name)),
		observer: o.observer,
	}
}

// Source returns the source this engine reads.
func (e *Engine[T]) Source() Source {
	return e.src
}

// Find runs the count and data statements of plan concurrently. Either both
// succeed and a complete page is returned, or the call fails with a storage error.
func (e *Engine[T]) Find(ctx context.Context, plan query.Plan) (*query.Page[T], error) {
	ctx, span := tracer.Start(ctx, "engine.Find")
	defer span.End()
	span.SetAttributes(
		attribute.String("source", e.src.Name),
		attribute.Int("page", plan.Page.Page),
		attribute.Int("limit", plan.Page.Limit),
		attribute.Bool("search", plan.Search != nil),
	)

	countStmt := e.render.Count(e.src, plan)
	dataStmt := e.render.Data(e.src, plan)

	var (
		total int64
		rows  []T
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.exec(gctx, "count", countStmt, &total)
	})
	g.Go(func() error {
		return e.exec(gctx, "select", dataStmt, &rows)
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		e.logger.Error("List query failed",
			zap.Error(err),
			zap.Int("page", plan.Page.Page),
			zap.Int("limit", plan.Page.Limit),
		)
		return nil, shared.WrapStorageError("list "+e.src.Name, err)
	}
	if rows == nil {
		rows = []T{}
	}
	return &query.Page[T]{
		Rows: rows,
		Info: query.NewPageInfo(plan.Page, total),
	}, nil
}

// Count runs only the count statement of plan.
func (e *Engine[T]) Count(ctx context.Context, plan query.Plan) (int64, error) {
	var total int64
	if err := e.exec(ctx, "count", e.render.Count(e.src, plan), &total); err != nil {
		e.logger.Error("Count query failed", zap.Error(err))
		return 0, shared.WrapStorageError("count "+e.src.Name, err)
	}
	return total, nil
}

// First returns the first row matching conds, or a not-found error.
func (e *Engine[T]) First(ctx context.Context, resource string, conds ...query.Condition) (*T, error) {
	plan := query.Plan{
		Conditions: conds,
		Page:       query.PageRequest{Page: 1, Limit: 1},
	}
	if e.src.Sort != nil && e.src.Sort.Unique != "" {
		plan.Order.Terms = []query.OrderTerm{{Expr: e.src.Sort.Unique, Direction: query.Asc}}
	}
	var rows []T
	if err := e.exec(ctx, "select", e.render.Data(e.src, plan), &rows); err != nil {
		e.logger.Error("Lookup query failed", zap.Error(err))
		return nil, shared.WrapStorageError("get "+resource, err)
	}
	if len(rows) == 0 {
		return nil, shared.NewNotFoundError(resource)
	}
	return &rows[0], nil
}

// ErrStop ends Each early without an error.
var ErrStop = errors.New("engine: stop iteration")

// Each walks every row of plan in chunks of size rows, ignoring plan.Page.
// fn receives each chunk; only one chunk is held in memory at a time.
func (e *Engine[T]) Each(ctx context.Context, plan query.Plan, size int, fn func([]T) error) error {
	if size <= 0 {
		size = 500
	}
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		plan.Page = query.PageRequest{Page: page, Limit: size}
		var rows []T
		if err := e.exec(ctx, "select", e.render.Data(e.src, plan), &rows); err != nil {
			e.logger.Error("Chunked query failed", zap.Error(err), zap.Int("chunk", page))
			return shared.WrapStorageError("read "+e.src.Name, err)
		}
		if len(rows) > 0 {
			if err := fn(rows); err != nil {
				if errors.Is(err, ErrStop) {
					return nil
				}
				return err
			}
		}
		if len(rows) < size {
			return nil
		}
	}
}

func (e *Engine[T]) exec(ctx context.Context, operation string, stmt Statement, dest any) error {
	start := time.Now()
	err := e.db.WithContext(ctx).Raw(stmt.SQL, stmt.Args...).Scan(dest).Error
	if e.observer != nil {
		e.observer.ObserveQuery(e.src.Name, operation, time.Since(start), err)
	}
	return err
}
