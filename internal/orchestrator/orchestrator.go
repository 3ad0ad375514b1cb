// Package orchestrator routes each reprocessing cycle either to the worker
// offload channel or to the synchronous evaluation engine, and publishes the
// resulting row list. Both paths execute the identical engine functions, so
// for a fixed dataset and query they produce identical results element for
// element.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/gridx/internal/dataset"
	"github.com/oakwood-commons/gridx/internal/engine"
	"github.com/oakwood-commons/gridx/internal/worker"
	"github.com/oakwood-commons/gridx/pkg/logger"
)

// Query is the current search/filter/sort state driving one processing cycle.
type Query struct {
	SearchTerm   string
	SearchFields []string
	Conditions   []engine.Condition
	Expr         *engine.ExprFilter
	Sort         engine.SortConfig
}

// Source records which execution path produced a result.
type Source string

const (
	SourceWorker   Source = "worker"
	SourceSync     Source = "sync"
	SourceFallback Source = "fallback"
)

// Result is a published processing outcome. Records is treated as immutable
// once published; the viewport only reads it.
type Result struct {
	Records []dataset.Record
	Total   int
	Source  Source
	Elapsed time.Duration
}

// filterPayload and sortPayload cross the worker envelope boundary. They stay
// in-process, so records travel by reference.
type filterPayload struct {
	records []dataset.Record
	query   Query
}

type sortPayload struct {
	records []dataset.Record
	sort    engine.SortConfig
}

type validatePayload struct {
	conditions []engine.Condition
	fields     []string
}

// Options configures an Orchestrator.
type Options struct {
	// WorkerDisabled forces the synchronous path for every cycle.
	WorkerDisabled bool
	// WorkerTimeout bounds each offloaded request.
	WorkerTimeout time.Duration
	// Log defaults to the global logger.
	Log *logr.Logger
}

// Orchestrator owns the worker channel as an explicit resource handle,
// constructed lazily by the channel itself and disposed in Close.
type Orchestrator struct {
	channel   *worker.Channel
	log       *logr.Logger
	observers *observerList
}

// New builds an orchestrator and its worker channel.
func New(opts Options) *Orchestrator {
	log := opts.Log
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	o := &Orchestrator{
		log:       log,
		observers: newObserverList(),
	}
	o.channel = worker.NewChannel(worker.Options{
		Handler:  handleRequest,
		Timeout:  opts.WorkerTimeout,
		Disabled: opts.WorkerDisabled,
		Log:      log,
	})
	return o
}

// Channel exposes the offload channel for capability probing and tests.
func (o *Orchestrator) Channel() *worker.Channel {
	return o.channel
}

// Close terminates the worker and drops all observers.
func (o *Orchestrator) Close() {
	o.channel.Terminate()
	o.observers.clear()
}

// handleRequest executes envelopes on the worker goroutine. It calls the same
// engine functions the synchronous path uses; that shared core is the
// equivalence contract between the two paths.
func handleRequest(req worker.Request) worker.Response {
	switch req.Type {
	case worker.FilterData:
		p, ok := req.Payload.(filterPayload)
		if !ok {
			return errorResponse(fmt.Sprintf("unexpected payload %T", req.Payload))
		}
		records, err := applyFilter(p.records, p.query)
		if err != nil {
			return errorResponse(err.Error())
		}
		return worker.Response{Type: worker.FilterResult, Payload: records}
	case worker.SortData:
		p, ok := req.Payload.(sortPayload)
		if !ok {
			return errorResponse(fmt.Sprintf("unexpected payload %T", req.Payload))
		}
		return worker.Response{Type: worker.SortResult, Payload: engine.Sort(p.records, p.sort)}
	case worker.ValidateData:
		p, ok := req.Payload.(validatePayload)
		if !ok {
			return errorResponse(fmt.Sprintf("unexpected payload %T", req.Payload))
		}
		return worker.Response{Type: worker.ValidateResult, Payload: engine.ValidateConditions(p.conditions, p.fields)}
	default:
		return errorResponse(fmt.Sprintf("unknown request type %q", req.Type))
	}
}

func errorResponse(msg string) worker.Response {
	return worker.Response{Type: worker.ErrorResult, Err: msg}
}

// applyFilter runs search, declarative conditions, and the optional CEL
// expression, in that order.
func applyFilter(records []dataset.Record, q Query) ([]dataset.Record, error) {
	out := engine.Search(records, q.SearchTerm, q.SearchFields)
	out, err := engine.Filter(out, q.Conditions)
	if err != nil {
		return nil, err
	}
	return engine.FilterExpr(out, q.Expr)
}

// Process runs one cycle: filter then sort, offloaded when the channel is
// available, synchronously otherwise. A worker rejection (timeout or fault)
// is caught and the operation immediately re-runs synchronously so the UI
// never stalls in a "processing" state. An error surfaces only when both
// paths fail.
func (o *Orchestrator) Process(ctx context.Context, records []dataset.Record, q Query) (Result, error) {
	start := time.Now()

	if !o.channel.Available() {
		return o.finish(ctx, records, q, SourceSync, start)
	}

	processed, err := o.processWorker(ctx, records, q)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		o.log.V(0).Info("worker path failed, falling back to synchronous engine", "error", err.Error())
		return o.finish(ctx, records, q, SourceFallback, start)
	}

	result := Result{Records: processed, Total: len(processed), Source: SourceWorker, Elapsed: time.Since(start)}
	o.observers.publish(result)
	return result, nil
}

// finish runs the synchronous path and publishes.
func (o *Orchestrator) finish(ctx context.Context, records []dataset.Record, q Query, src Source, start time.Time) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	processed, err := processSync(records, q)
	if err != nil {
		return Result{}, err
	}
	result := Result{Records: processed, Total: len(processed), Source: src, Elapsed: time.Since(start)}
	o.observers.publish(result)
	return result, nil
}

func (o *Orchestrator) processWorker(ctx context.Context, records []dataset.Record, q Query) ([]dataset.Record, error) {
	filtered, err := o.channel.Send(worker.FilterData, filterPayload{records: records, query: q}).Await(ctx)
	if err != nil {
		return nil, fmt.Errorf("offload filter: %w", err)
	}
	rows, ok := filtered.([]dataset.Record)
	if !ok {
		return nil, fmt.Errorf("offload filter: unexpected result %T", filtered)
	}

	if q.Sort.Field == "" {
		return rows, nil
	}
	sorted, err := o.channel.Send(worker.SortData, sortPayload{records: rows, sort: q.Sort}).Await(ctx)
	if err != nil {
		return nil, fmt.Errorf("offload sort: %w", err)
	}
	rows, ok = sorted.([]dataset.Record)
	if !ok {
		return nil, fmt.Errorf("offload sort: unexpected result %T", sorted)
	}
	return rows, nil
}

// processSync is the synchronous rendition of exactly the same pipeline.
func processSync(records []dataset.Record, q Query) ([]dataset.Record, error) {
	out, err := applyFilter(records, q)
	if err != nil {
		return nil, err
	}
	if q.Sort.Field != "" {
		out = engine.Sort(out, q.Sort)
	}
	return out, nil
}

// Validate checks a condition set, offloaded when possible, with the same
// synchronous fallback as Process.
func (o *Orchestrator) Validate(ctx context.Context, conds []engine.Condition, fields []string) ([]string, error) {
	if o.channel.Available() {
		res, err := o.channel.Send(worker.ValidateData, validatePayload{conditions: conds, fields: fields}).Await(ctx)
		if err == nil {
			problems, ok := res.([]string)
			if ok {
				return problems, nil
			}
			return nil, fmt.Errorf("offload validate: unexpected result %T", res)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		o.log.V(0).Info("worker validate failed, validating synchronously", "error", err.Error())
	}
	return engine.ValidateConditions(conds, fields), nil
}
