// Package batch drives gold graph extraction over a question split:
// resolve and assemble every example, isolate recoverable per-example
// failures, and keep the output aligned with the input by index.
package batch

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/benchforge/goldgraph/internal/corpus"
	"github.com/benchforge/goldgraph/internal/graph"
	"github.com/benchforge/goldgraph/internal/schema"
	"github.com/benchforge/goldgraph/pkg/sqlref"
)

// Failure kinds recorded in the report.
const (
	KindParse      = "parse"
	KindResolution = "resolution"
	KindUnknownDB  = "unknown_db"
)

// Entry is one output record, index-aligned with the question split. Failed
// examples carry an empty graph so downstream consumers can still index by
// position.
type Entry struct {
	Idx         int          `json:"idx"`
	DBID        string       `json:"db_id"`
	Nodes       []graph.Node `json:"nodes"`
	Edges       []graph.Edge `json:"edges"`
	ContextText string       `json:"context_text"`
}

// Failure is one recoverable per-example failure.
type Failure struct {
	Idx   int    `json:"idx"`
	DBID  string `json:"db_id"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// Report summarizes one run.
type Report struct {
	Total     int
	Succeeded int
	ByKind    map[string]int
	Failures  []Failure
}

// Driver runs extraction over examples using a fixed worker pool. The
// schema cache is shared read-only across workers.
type Driver struct {
	cache   *schema.Cache
	workers int
	logger  *slog.Logger
}

// New creates a driver. workers <= 0 selects one worker per CPU.
func New(cache *schema.Cache, workers int, logger *slog.Logger) *Driver {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Driver{cache: cache, workers: workers, logger: logger}
}

// Run processes every example. Parse failures, resolution failures, and
// unknown databases degrade to an empty graph plus a failure record; schema
// and assembly errors abort the run. An aborted run still returns the
// report accumulated up to the abort, alongside the error.
func (d *Driver) Run(ctx context.Context, examples []*corpus.Example) ([]Entry, *Report, error) {
	entries := make([]Entry, len(examples))
	failures := make([]*Failure, len(examples))
	done := make([]bool, len(examples))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for _, ex := range examples {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			entry, failure, err := d.processOne(ex)
			if err != nil {
				return err
			}
			entries[ex.Index] = entry
			failures[ex.Index] = failure
			done[ex.Index] = true
			return nil
		})
	}

	waitErr := g.Wait()

	report := &Report{Total: len(examples), ByKind: make(map[string]int)}
	for i, f := range failures {
		if f != nil {
			report.ByKind[f.Kind]++
			report.Failures = append(report.Failures, *f)
			continue
		}
		if done[i] {
			report.Succeeded++
		}
	}
	sort.Slice(report.Failures, func(i, j int) bool { return report.Failures[i].Idx < report.Failures[j].Idx })

	if waitErr != nil {
		d.logger.Error("batch aborted",
			"error", waitErr,
			"processed", report.Succeeded+len(report.Failures),
			"total", report.Total)
		return nil, report, waitErr
	}

	d.logger.Info("batch complete",
		"total", report.Total,
		"succeeded", report.Succeeded,
		"failed", len(report.Failures))
	return entries, report, nil
}

// processOne extracts the gold graph for one example. The returned failure
// is non-nil for recoverable errors; a returned error is fatal.
func (d *Driver) processOne(ex *corpus.Example) (Entry, *Failure, error) {
	entry := Entry{Idx: ex.Index, DBID: ex.DBID}

	s, err := d.cache.Get(ex.DBID)
	if err != nil {
		var nfe *schema.NotFoundError
		if !errors.As(err, &nfe) {
			return entry, nil, err
		}
		// An example naming a database absent from the index is a bad
		// example, not a corrupt index.
		d.logger.Debug("example failed", "idx", ex.Index, "db_id", ex.DBID, "kind", KindUnknownDB, "error", err)
		empty := graph.Empty()
		entry.Nodes = empty.Nodes
		entry.Edges = empty.Edges
		return entry, &Failure{Idx: ex.Index, DBID: ex.DBID, Kind: KindUnknownDB, Error: err.Error()}, nil
	}

	refs, err := sqlref.Resolve(ex.SQL, s.Catalog())
	if err != nil {
		kind, recoverable := classify(err)
		if !recoverable {
			return entry, nil, err
		}
		d.logger.Debug("example failed", "idx", ex.Index, "db_id", ex.DBID, "kind", kind, "error", err)
		empty := graph.Empty()
		entry.Nodes = empty.Nodes
		entry.Edges = empty.Edges
		return entry, &Failure{Idx: ex.Index, DBID: ex.DBID, Kind: kind, Error: err.Error()}, nil
	}

	gr, err := graph.Build(refs, s)
	if err != nil {
		// Assembly errors mean the resolver and schema disagree; abort.
		return entry, nil, err
	}

	entry.Nodes = gr.Nodes
	entry.Edges = gr.Edges
	entry.ContextText = gr.ContextText()
	return entry, nil, nil
}

// classify maps an error to its failure kind and whether it is recoverable.
func classify(err error) (string, bool) {
	var pe *sqlref.ParseError
	if errors.As(err, &pe) {
		return KindParse, true
	}
	var re *sqlref.ResolutionError
	if errors.As(err, &re) {
		return KindResolution, true
	}
	return "", false
}
