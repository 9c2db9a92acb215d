package migration

import (
	"taskmesh/pkg/domain"
)

// =============================================================================
// Contextual Load and Potential Fields
// =============================================================================
//
// The contextual load of an agent combines three signals:
//
//	f(r)       = costWeight * load(r)/capacity(r) - survivalWeight * IS(r)
//	domainF(r) = sum of f over neighboring agents
//	costSum(r) = sum of edge weights to those neighbors + dist(leader, r)
//
//	contextual(r) = f(r) + 0.1 * (domainF/(deg+2) + costSum/(deg+1))
//
// The intra-group field evaluates the sums over same-group neighbors only;
// the global field evaluates them over all neighbors. Fields are rebuilt
// from agent state on every use rather than patched incrementally.
// =============================================================================

// neighborWeight is the damping applied to the neighborhood terms.
const neighborWeight = 0.1

// survivability returns IS for an agent in its current group state.
func (e *engine) survivability(a *domain.Agent) float64 {
	return domain.IndividualSurvivability(a, e.w.GroupOf(a))
}

// nodeScore computes f(r), the load-versus-survivability score of one agent.
func (e *engine) nodeScore(a *domain.Agent) float64 {
	return e.opts.CostWeight*a.Ratio() - e.opts.SurvivalWeight*e.survivability(a)
}

// contextual computes the contextual load of a over the given neighbor set.
// leaderID may be NoLeader, in which case the leader-distance term is zero.
func (e *engine) contextual(a *domain.Agent, leaderID int, neighbors []int) float64 {
	var domainF, costSum float64
	for _, nid := range neighbors {
		domainF += e.nodeScore(e.w.Agents[nid])
		if w, ok := e.w.Graph.Weight(a.ID, nid); ok {
			costSum += w
		}
	}
	if leaderID != domain.NoLeader {
		if d := e.oracle.Dist(leaderID, a.ID); !domain.IsInf(d) {
			costSum += d
		}
	}

	deg := float64(len(neighbors))
	return e.nodeScore(a) + neighborWeight*(domainF/(deg+2)+costSum/(deg+1))
}

// intraField builds the per-group potential field: each member is assigned
// its contextual load over same-group neighbors, with the group leader as
// the distance anchor.
func (e *engine) intraField(g *domain.Group) domain.PotentialField {
	field := make(domain.PotentialField, len(g.Members))
	for _, id := range g.Members {
		a := e.w.Agents[id]
		field[id] = e.contextual(a, g.Leader, e.sameGroupNeighbors(a))
	}
	return field
}

// globalField builds the network-wide potential field: each agent is
// assigned its contextual load over all neighbors, anchored at its own
// group leader. Consumers scale cross-group attraction by the destination
// group's interaction level.
func (e *engine) globalField() domain.PotentialField {
	field := make(domain.PotentialField, len(e.w.Agents))
	for _, id := range e.w.AgentIDs() {
		a := e.w.Agents[id]
		field[id] = e.contextual(a, e.w.GroupOf(a).Leader, e.agentNeighbors(a))
	}
	return field
}
