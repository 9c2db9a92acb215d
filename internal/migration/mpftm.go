package migration

import (
	"taskmesh/pkg/domain"
)

// =============================================================================
// MPFTM - Potential-Field Task Migration
// =============================================================================
//
// Every faulted agent sheds tasks one at a time toward the destination with
// the steepest potential descent:
//
//   - same-group members are scored with the intra-group field;
//   - leaders of other groups are scored with the global field, scaled by
//     the destination group's interaction level;
//   - the candidate score is potential + alpha * dist(source, candidate).
//
// A task moves only when the best candidate scores strictly below the
// source's own contextual load. Each move removes one task from the source,
// so the per-agent loop terminates after at most len(tasks) iterations.
//
// MPFTM runs standalone and as HGTM's receiver-preparation pass.
// =============================================================================

// runMPFTM drains every faulted agent along the potential gradient.
func (e *engine) runMPFTM() {
	e.ensureLeaders()

	for _, id := range e.w.AgentIDs() {
		src := e.w.Agents[id]
		if !src.Faulted || len(src.Tasks) == 0 {
			continue
		}
		e.drainByGradient(src)
	}
}

// drainByGradient moves tasks off src until it is empty or no destination
// improves on the source potential. Fields are rebuilt after every move.
func (e *engine) drainByGradient(src *domain.Agent) {
	g := e.w.GroupOf(src)
	if g == nil {
		return
	}

	for len(src.Tasks) > 0 {
		intra := e.intraField(g)
		global := e.globalField()
		srcScore := intra[src.ID]

		bestID := -1
		bestScore := domain.Infinity

		// Intra-group candidates; ascending iteration keeps ties on the
		// lowest id because only strict improvements replace the best.
		for _, mid := range g.Members {
			m := e.w.Agents[mid]
			if m.Faulted || mid == src.ID {
				continue
			}
			d := e.oracle.Dist(src.ID, mid)
			if domain.IsInf(d) {
				continue
			}
			score := intra[mid] + e.opts.Alpha*d
			if score < bestScore-domain.Epsilon {
				bestID, bestScore = mid, score
			}
		}

		// Inter-group candidates: leaders of other groups only
		for _, gid := range e.w.GroupIDs() {
			if gid == g.ID {
				continue
			}
			og := e.w.Groups[gid]
			if !og.HasLeader() || e.w.Agents[og.Leader].Faulted {
				continue
			}
			d := e.oracle.Dist(src.ID, og.Leader)
			if domain.IsInf(d) {
				continue
			}
			score := global[og.Leader]*og.Interaction + e.opts.Alpha*d
			if score < bestScore-domain.Epsilon {
				bestID, bestScore = og.Leader, score
			}
		}

		// Strict descent only
		if bestID < 0 || bestScore >= srcScore-domain.Epsilon {
			e.skipped += len(src.Tasks)
			return
		}

		e.move(src, e.w.Agents[bestID], 0)
	}
}
