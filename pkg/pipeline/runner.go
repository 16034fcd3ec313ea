package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/partsengine/pkg/engine"
	pkgerrors "github.com/matzehuels/partsengine/pkg/errors"
	"github.com/matzehuels/partsengine/pkg/observability"
)

// Runner resolves batches against an engine.
//
// The Runner holds no per-run state, so one Runner may execute several
// batches concurrently.
type Runner struct {
	Engine      *engine.Engine
	Concurrency int
	Logger      *log.Logger

	// OnOutcome, if set, is called once per finished item. Calls are
	// serialized but arrive in completion order, not input order.
	OnOutcome func(Outcome)
}

// NewRunner creates a runner. Concurrency is clamped to
// [1, MaxConcurrency]; zero selects DefaultConcurrency. A nil logger selects
// log.Default().
func NewRunner(e *engine.Engine, concurrency int, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Engine:      e,
		Concurrency: concurrency,
		Logger:      logger,
	}
}

func (r *Runner) limit() int {
	switch {
	case r.Concurrency <= 0:
		return DefaultConcurrency
	case r.Concurrency > MaxConcurrency:
		return MaxConcurrency
	default:
		return r.Concurrency
	}
}

// Run resolves every item. Item failures are recorded in their outcomes;
// Run itself only fails when ctx is cancelled, in which case the partial
// result is returned alongside ctx.Err().
func (r *Runner) Run(ctx context.Context, items []Item) (*Result, error) {
	result := &Result{
		RunID:    uuid.NewString(),
		Outcomes: make([]Outcome, len(items)),
	}
	hooks := observability.Batch()
	hooks.OnBatchStart(ctx, result.RunID, len(items))
	r.Logger.Info("starting batch", "run", result.RunID, "items", len(items), "concurrency", r.limit())
	start := time.Now()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit())

	for i, item := range items {
		if gctx.Err() != nil {
			result.Outcomes[i] = Outcome{ID: item.ID, Status: StatusFailed, Err: gctx.Err(), Error: gctx.Err().Error()}
			continue
		}
		g.Go(func() error {
			o := r.resolve(gctx, item)
			result.Outcomes[i] = o
			if r.OnOutcome != nil {
				mu.Lock()
				r.OnOutcome(o)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Stats = summarize(result.Outcomes)
	result.Stats.Duration = time.Since(start)
	hooks.OnBatchComplete(ctx, result.RunID, result.Stats.Resolved+result.Stats.Empty+result.Stats.Unknown,
		result.Stats.Failed, result.Stats.Duration)
	r.Logger.Info("finished batch",
		"run", result.RunID,
		"resolved", result.Stats.Resolved,
		"empty", result.Stats.Empty,
		"unknown", result.Stats.Unknown,
		"failed", result.Stats.Failed,
		"duration", result.Stats.Duration)

	return result, ctx.Err()
}

func (r *Runner) resolve(ctx context.Context, item Item) Outcome {
	o := Outcome{ID: item.ID, Footprint: item.Request.FootprinterString}
	if item.Request.SourceComponent != nil {
		o.FType = item.Request.SourceComponent.FType()
	}
	if item.Err != nil {
		return failed(o, item.Err)
	}

	start := time.Now()
	parts, err := r.Engine.FindPart(ctx, item.Request)
	o.Duration = time.Since(start)
	if err != nil {
		r.Logger.Warn("item failed", "id", item.ID, "ftype", o.FType, "error", err)
		return failed(o, err)
	}

	o.Parts = parts
	switch refs, ok := parts[engine.SupplierJLCPCB]; {
	case !ok:
		o.Status = StatusUnknown
	case len(refs) == 0:
		o.Status = StatusEmpty
	default:
		o.Status = StatusResolved
	}
	return o
}

func failed(o Outcome, err error) Outcome {
	o.Status = StatusFailed
	o.Err = err
	o.Code = pkgerrors.GetCode(err)
	o.Error = err.Error()
	return o
}

func summarize(outcomes []Outcome) Stats {
	s := Stats{Total: len(outcomes)}
	for _, o := range outcomes {
		switch o.Status {
		case StatusResolved:
			s.Resolved++
		case StatusEmpty:
			s.Empty++
		case StatusUnknown:
			s.Unknown++
		default:
			s.Failed++
		}
	}
	return s
}
