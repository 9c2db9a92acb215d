package migration

import (
	"sort"

	"taskmesh/internal/shortestpath"
	"taskmesh/pkg/domain"
)

// =============================================================================
// Leader Election
// =============================================================================
//
// Each group elects the non-faulted member with the highest betweenness
// centrality on the group's induced subgraph as its leader, plus up to two
// backup leaders ranked next. A group whose members are all faulted stays
// leaderless and contributes no migrations.
// =============================================================================

// ensureLeaders elects leaders and backup leaders for every group.
// Idempotent within one engine run: the HGTM preparation pass reuses the
// election done by the enclosing run.
func (e *engine) ensureLeaders() {
	if e.leadersReady {
		return
	}
	e.leadersReady = true

	for _, gid := range e.w.GroupIDs() {
		e.electGroup(e.w.Groups[gid])
	}
}

// electGroup ranks members by centrality and fills Leader and AdLeaders.
func (e *engine) electGroup(g *domain.Group) {
	g.Leader = domain.NoLeader
	g.AdLeaders = nil

	if len(g.Members) == 0 {
		e.log.Debug("group has no members", "group", g.ID)
		return
	}

	scores := shortestpath.Betweenness(e.w.Graph, g.Members)

	ranked := make([]int, len(g.Members))
	copy(ranked, g.Members)
	sort.Slice(ranked, func(i, j int) bool {
		si, sj := scores[ranked[i]], scores[ranked[j]]
		if si != sj {
			return si > sj
		}
		return ranked[i] < ranked[j]
	})

	for _, id := range ranked {
		if e.w.Agents[id].Faulted {
			continue
		}
		if !g.HasLeader() {
			g.Leader = id
			continue
		}
		g.AdLeaders = append(g.AdLeaders, id)
		if len(g.AdLeaders) == 2 {
			break
		}
	}

	if !g.HasLeader() {
		e.log.Debug("group is leaderless, tasks stay in place", "group", g.ID)
	}
}
