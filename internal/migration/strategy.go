// Package migration implements the four task-migration strategies compared
// by the engine: hierarchical group migration (HGTM), potential-field
// migration (MPFTM), and the two greedy baselines (GBMA, MMLMA).
//
// # Thread Safety
//
// Strategies are NOT thread-safe. Each run mutates the world it is given;
// callers clone the world per run and never share it across goroutines.
//
// # Determinism
//
// Strategies produce deterministic results for a given world: agents are
// visited in ascending id order, heap ties break by id, and candidate scans
// resolve equal scores in favor of the lowest id. The order in which
// migration records are appended is part of the observable output.
//
// # Faulted Agents
//
// An agent with Faulted set is a migration source. Outside HGTM's receiver
// preparation no strategy selects a faulted agent as a destination. That
// pass runs with the flags swapped (receivers faulted, faulted agents
// cleared), so its shedding migrations can land on agents that are faulted
// before and after the pass; the original flags are restored when it ends.
package migration

import (
	"log/slog"
	"time"

	"taskmesh/internal/shortestpath"
	"taskmesh/pkg/apperror"
	"taskmesh/pkg/domain"
	"taskmesh/pkg/logger"
)

// Algorithm identifies a migration strategy.
type Algorithm string

const (
	// AlgorithmHGTM is the hierarchical group task migration strategy:
	// leader election, potential fields, bag merging, receiver preparation.
	AlgorithmHGTM Algorithm = "hgtm"

	// AlgorithmMPFTM migrates one task at a time along the steepest
	// potential-field descent.
	AlgorithmMPFTM Algorithm = "mpftm"

	// AlgorithmGBMA greedily hands tasks to the nearest same-group member.
	AlgorithmGBMA Algorithm = "gbma"

	// AlgorithmMMLMA greedily hands tasks to the same-group member with
	// the most remaining capacity.
	AlgorithmMMLMA Algorithm = "mmlma"
)

// AllAlgorithms returns the strategies in a stable comparison order.
func AllAlgorithms() []Algorithm {
	return []Algorithm{AlgorithmHGTM, AlgorithmMPFTM, AlgorithmGBMA, AlgorithmMMLMA}
}

// ParseAlgorithm resolves a strategy name.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case AlgorithmHGTM, AlgorithmMPFTM, AlgorithmGBMA, AlgorithmMMLMA:
		return Algorithm(name), nil
	default:
		return "", apperror.Newf(apperror.CodeUnknownAlgorithm, "unknown migration algorithm %q", name)
	}
}

// Options configures a strategy run.
//
// Zero values are not meaningful; use DefaultOptions as the base.
type Options struct {
	// CostWeight is the weight of load and cost terms in node scores and
	// in the composite target.
	CostWeight float64

	// SurvivalWeight is the weight of survivability terms.
	SurvivalWeight float64

	// Alpha balances destination congestion against travel distance in
	// the potential-field descent.
	Alpha float64

	// Logger receives per-strategy debug traces. nil uses the package
	// default.
	Logger *slog.Logger
}

// DefaultOptions returns the standard weights.
func DefaultOptions() *Options {
	return &Options{
		CostWeight:     domain.DefaultCostWeight,
		SurvivalWeight: domain.DefaultSurvivalWeight,
		Alpha:          0.1,
		Logger:         logger.Log,
	}
}

// Result contains the outcome of one strategy run.
type Result struct {
	// Algorithm is the strategy that produced the records.
	Algorithm Algorithm

	// Records lists one entry per migrated task, in execution order.
	Records []domain.MigrationRecord

	// Skipped counts tasks that stayed on their source because no legal
	// destination existed.
	Skipped int

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// Run executes the given strategy against the world. The world is mutated;
// callers pass a fresh clone per run.
func Run(w *domain.World, oracle *shortestpath.Oracle, algorithm Algorithm, opts *Options) (*Result, error) {
	start := time.Now()

	if opts == nil {
		opts = DefaultOptions()
	}
	e := newEngine(w, oracle, opts)

	switch algorithm {
	case AlgorithmHGTM:
		e.runHGTM()
	case AlgorithmMPFTM:
		e.runMPFTM()
	case AlgorithmGBMA:
		e.runGreedy(pickNearest)
	case AlgorithmMMLMA:
		e.runGreedy(pickMostHeadroom)
	default:
		return nil, apperror.Newf(apperror.CodeUnknownAlgorithm, "unknown migration algorithm %q", algorithm)
	}

	return &Result{
		Algorithm: algorithm,
		Records:   e.records,
		Skipped:   e.skipped,
		Duration:  time.Since(start),
	}, nil
}

// engine holds the mutable state shared by the strategy phases.
type engine struct {
	w      *domain.World
	oracle *shortestpath.Oracle
	opts   *Options
	log    *slog.Logger

	records []domain.MigrationRecord
	skipped int

	leadersReady bool
}

func newEngine(w *domain.World, oracle *shortestpath.Oracle, opts *Options) *engine {
	log := opts.Logger
	if log == nil {
		log = logger.Log
	}
	return &engine{w: w, oracle: oracle, opts: opts, log: log}
}

// move transfers the task at index idx from src to dst, maintains agent and
// group loads, and appends the migration record.
func (e *engine) move(src, dst *domain.Agent, idx int) {
	t := src.RemoveTaskAt(idx)
	if g := e.w.GroupOf(src); g != nil {
		g.Load -= t.Size
	}
	dst.AddTask(t)
	if g := e.w.GroupOf(dst); g != nil {
		g.Load += t.Size
	}
	e.records = append(e.records, domain.MigrationRecord{From: src.ID, To: dst.ID})
}

// sameGroupNeighbors returns graph neighbors of a that are agents in the
// same group, ascending.
func (e *engine) sameGroupNeighbors(a *domain.Agent) []int {
	var out []int
	for _, v := range e.w.Graph.Neighbors(a.ID) {
		n, ok := e.w.Agents[v]
		if ok && n.GroupID == a.GroupID {
			out = append(out, v)
		}
	}
	return out
}

// agentNeighbors returns graph neighbors of a that are agents, ascending.
func (e *engine) agentNeighbors(a *domain.Agent) []int {
	var out []int
	for _, v := range e.w.Graph.Neighbors(a.ID) {
		if _, ok := e.w.Agents[v]; ok {
			out = append(out, v)
		}
	}
	return out
}
