package migration

import (
	"taskmesh/pkg/domain"
)

// =============================================================================
// GBMA and MMLMA - Greedy Baselines
// =============================================================================
//
// Both baselines walk faulted agents in id order and hand tasks over one at
// a time to a non-faulted member of the same group:
//
//   - GBMA picks the candidate with the minimum shortest-path weight to the
//     source; unreachable candidates are skipped.
//   - MMLMA picks the candidate with the maximum remaining capacity and
//     ignores distance entirely, so it may select a destination the graph
//     cannot reach (the evaluator reports those as diagnostics).
//
// A candidate whose load would exceed its capacity is refused; a task with
// no qualifying candidate stays on its source. Ties resolve to the lowest
// candidate id: candidates are scanned ascending and only strict
// improvements replace the current best.
// =============================================================================

// picker ranks one candidate against the current best; returns true when
// the candidate strictly improves on it.
type picker func(e *engine, srcID int, candidate *domain.Agent, bestScore float64) (float64, bool)

// pickNearest ranks candidates by shortest-path weight from the source.
func pickNearest(e *engine, srcID int, candidate *domain.Agent, bestScore float64) (float64, bool) {
	d := e.oracle.Dist(srcID, candidate.ID)
	if domain.IsInf(d) {
		return 0, false
	}
	return d, d < bestScore-domain.Epsilon
}

// pickMostHeadroom ranks candidates by remaining capacity, negated so that
// a lower score is better for both pickers.
func pickMostHeadroom(e *engine, srcID int, candidate *domain.Agent, bestScore float64) (float64, bool) {
	score := -candidate.Headroom()
	return score, score < bestScore-domain.Epsilon
}

// runGreedy executes a single-pass greedy strategy with the given picker.
func (e *engine) runGreedy(pick picker) {
	for _, id := range e.w.AgentIDs() {
		src := e.w.Agents[id]
		if !src.Faulted {
			continue
		}
		g := e.w.GroupOf(src)
		if g == nil {
			continue
		}

		i := 0
		for i < len(src.Tasks) {
			t := src.Tasks[i]

			bestID := -1
			bestScore := domain.Infinity
			for _, mid := range g.Members {
				m := e.w.Agents[mid]
				if m.Faulted || mid == id || !m.Fits(t) {
					continue
				}
				if score, better := pick(e, id, m, bestScore); better {
					bestID, bestScore = mid, score
				}
			}

			if bestID < 0 {
				// The task stays; no record is emitted
				e.skipped++
				i++
				continue
			}
			e.move(src, e.w.Agents[bestID], i)
		}
	}
}
