// Package cli implements the partsengine command-line interface.
//
// The CLI resolves components one at a time (find) or in batches (batch),
// normalizes footprints, serves the HTTP API, and manages the catalog
// response cache. It is built on cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - find: Resolve one component to JLCPCB part numbers
//   - batch: Resolve a JSON array of components
//   - normalize: Translate footprints to catalog package tokens
//   - categories: List the component types that have a catalog category
//   - serve: Run the HTTP API
//   - cache: Manage the file cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/partsengine/pkg/engine"
	"github.com/matzehuels/partsengine/pkg/pipeline"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps ("14:32:01.45").
// Debug output also reports the caller, which is what -v is used for.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		ReportCaller:    level <= log.DebugLevel,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// requestLogger scopes l to one resolution request.
func requestLogger(l *log.Logger, req engine.Request) *log.Logger {
	ftype := "unknown"
	if req.SourceComponent != nil {
		ftype = req.SourceComponent.FType()
	}
	if req.FootprinterString == "" {
		return l.With("ftype", ftype)
	}
	return l.With("ftype", ftype, "footprint", req.FootprinterString)
}

// batchProgress tracks a batch run. Each finished item is logged at debug
// level; done logs the tally with the elapsed time, e.g.
// "Resolved 12 items: 9 resolved, 1 empty, 1 unknown, 1 failed (1.234s)".
//
// observe is called from the runner's OnOutcome, which is serialized.
type batchProgress struct {
	logger *log.Logger
	start  time.Time
	stats  pipeline.Stats
}

func newBatchProgress(l *log.Logger) *batchProgress {
	return &batchProgress{logger: l, start: time.Now()}
}

func (p *batchProgress) observe(o pipeline.Outcome) {
	p.stats.Total++
	switch o.Status {
	case pipeline.StatusResolved:
		p.stats.Resolved++
	case pipeline.StatusEmpty:
		p.stats.Empty++
	case pipeline.StatusUnknown:
		p.stats.Unknown++
	case pipeline.StatusFailed:
		p.stats.Failed++
	}

	kv := []any{"id", o.ID, "status", o.Status}
	if refs := o.References(); len(refs) > 0 {
		kv = append(kv, "parts", refs)
	}
	if o.Err != nil {
		p.logger.Debug("item failed", append(kv, "error", o.Err)...)
		return
	}
	p.logger.Debug("item done", kv...)
}

func (p *batchProgress) done() {
	s := p.stats
	p.logger.Infof("Resolved %d items: %d resolved, %d empty, %d unknown, %d failed (%s)",
		s.Total, s.Resolved, s.Empty, s.Unknown, s.Failed, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() if none
// is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
