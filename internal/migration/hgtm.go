package migration

import (
	"container/heap"
	"sort"

	"taskmesh/pkg/domain"
)

// =============================================================================
// HGTM - Hierarchical Group Task Migration
// =============================================================================
//
// HGTM composes six sub-phases in a fixed order:
//
//  1. Leader election per group (betweenness on the induced subgraph).
//  2. Up to two backup leaders per group.
//  3. Leaderless groups (all members faulted) contribute no migrations.
//  4. Contextual-load computation for every member.
//  5. Potential fields: per-group and global.
//  6. Bag formation and migration: faulted agents start as singleton bags,
//     bags merge while merging improves the best-neighbor benefit, and each
//     final bag routes all its tasks to the neighbor that maximizes the
//     benefit. Targets with headroom are prepared first: their fault flags
//     are temporarily inverted and a potential-field pass sheds their
//     existing tasks.
//
// Bags merge within a group only; the cross-group variant of bag merging is
// intentionally not part of the run.
// =============================================================================

// bag is a set of co-migrating faulted agents whose tasks route together.
type bag struct {
	members   []int // ascending
	groupID   int
	taskCount int

	// dead marks heap entries superseded by a merge
	dead bool
}

// minMember returns the smallest agent id in the bag.
func (b *bag) minMember() int {
	return b.members[0]
}

// routing binds a final bag to its chosen target.
type routing struct {
	b      *bag
	target int
}

// runHGTM executes all six phases.
func (e *engine) runHGTM() {
	e.ensureLeaders()

	bags := e.formBags()
	if len(bags) == 0 {
		return
	}

	// Resolve each bag's target before any preparation: preparation moves
	// load around and would otherwise skew the benefit comparison.
	var routes []routing
	var receivers []int
	for _, b := range bags {
		if !e.w.Groups[b.groupID].HasLeader() {
			e.skipCount(b)
			continue
		}
		_, target := e.benIntra(b)
		if target < 0 {
			e.log.Debug("bag has no eligible destination", "group", b.groupID, "root", b.minMember())
			e.skipCount(b)
			continue
		}
		routes = append(routes, routing{b: b, target: target})
		if e.hasHeadroom(b, target) {
			receivers = append(receivers, target)
		}
	}

	if len(receivers) > 0 {
		e.prepareReceivers(receivers)
	}

	// Execute the bag migrations: every task of every member to the target
	for _, r := range routes {
		dst := e.w.Agents[r.target]
		for _, mid := range r.b.members {
			src := e.w.Agents[mid]
			for len(src.Tasks) > 0 {
				e.move(src, dst, 0)
			}
		}
	}
}

// skipCount accounts for a bag whose tasks stay in place.
func (e *engine) skipCount(b *bag) {
	for _, mid := range b.members {
		e.skipped += len(e.w.Agents[mid].Tasks)
	}
}

// hasHeadroom decides whether the target becomes a receiving agent:
// bagTasks * (1 - RL) * 2 > queueLen. Receivers shed their queue in the
// preparation pass before the bag arrives; other targets take the bag as is.
func (e *engine) hasHeadroom(b *bag, target int) bool {
	rl := e.w.GroupOf(e.w.Agents[target]).Interaction
	return float64(b.taskCount)*(1-rl)*2 > float64(len(e.w.Agents[target].Tasks))
}

// prepareReceivers runs the potential-field pass with inverted fault flags
// so the receiving agents shed their queues before the bags arrive. The
// original flags are restored afterwards; the shedding migrations stay in
// the record list.
//
// Every faulted agent is cleared for the duration of the pass, not only the
// routed-bag members: the pass must drain exactly the receivers. A faulted
// source left live here would be drained too, and a bag that was skipped
// (leaderless group, no eligible destination) must keep its tasks in place.
func (e *engine) prepareReceivers(receivers []int) {
	type flags struct {
		faulted bool
		risk    float64
	}
	saved := make(map[int]flags)

	save := func(id int) {
		if _, ok := saved[id]; !ok {
			a := e.w.Agents[id]
			saved[id] = flags{faulted: a.Faulted, risk: a.FaultRisk}
		}
	}

	for _, id := range e.w.AgentIDs() {
		a := e.w.Agents[id]
		if a.Faulted {
			save(id)
			a.Faulted = false
			a.FaultRisk = 1
		}
	}
	for _, id := range receivers {
		save(id)
		a := e.w.Agents[id]
		a.Faulted = true
		a.FaultRisk = 0
	}

	e.runMPFTM()

	for id, f := range saved {
		a := e.w.Agents[id]
		a.Faulted = f.faulted
		a.FaultRisk = f.risk
	}
}

// formBags creates a singleton bag per faulted agent and merges bags while
// merging strictly improves the best-neighbor benefit. Bags never merge
// across groups.
func (e *engine) formBags() []*bag {
	var active []*bag
	for _, id := range e.w.AgentIDs() {
		a := e.w.Agents[id]
		if a.Faulted {
			active = append(active, &bag{
				members:   []int{id},
				groupID:   a.GroupID,
				taskCount: len(a.Tasks),
			})
		}
	}

	// Repeat full rounds until one round accepts no merge. Merged bags are
	// popped and reinserted, never key-adjusted in place.
	for {
		merged := e.mergeRound(active)
		if merged == nil {
			break
		}
		active = merged
	}

	sort.Slice(active, func(i, j int) bool {
		return active[i].minMember() < active[j].minMember()
	})
	return active
}

// mergeRound pops bags from a max-heap by task count and accepts the best
// available merge. Returns the updated bag set after the first accepted
// merge, or nil when the heap drains with every pop rejected.
func (e *engine) mergeRound(active []*bag) []*bag {
	h := newBagHeap(active)

	for h.Len() > 0 {
		m := heap.Pop(h).(*bag)
		if m.dead {
			continue
		}

		partner := e.bestMergePartner(m, active)
		if partner == nil {
			continue
		}

		union := mergeBags(m, partner)
		m.dead = true
		partner.dead = true

		next := make([]*bag, 0, len(active)-1)
		for _, b := range active {
			if !b.dead {
				next = append(next, b)
			}
		}
		return append(next, union)
	}
	return nil
}

// bestMergePartner scans same-group bags for the union with the highest
// benefit, accepting only unions that beat the parts combined.
func (e *engine) bestMergePartner(m *bag, active []*bag) *bag {
	benM, _ := e.benIntra(m)

	var best *bag
	bestBen := -domain.Infinity
	for _, n := range active {
		if n == m || n.dead || n.groupID != m.groupID {
			continue
		}
		benN, _ := e.benIntra(n)
		union := mergeBags(m, n)
		benUnion, target := e.benIntra(union)
		if target < 0 {
			continue
		}
		if benUnion <= benM+benN+domain.Epsilon {
			continue
		}
		if benUnion > bestBen+domain.Epsilon || (best != nil && domain.FloatEquals(benUnion, bestBen) && n.minMember() < best.minMember()) {
			best = n
			bestBen = benUnion
		}
	}
	return best
}

// mergeBags unions two bags.
func mergeBags(m, n *bag) *bag {
	members := make([]int, 0, len(m.members)+len(n.members))
	members = append(members, m.members...)
	members = append(members, n.members...)
	sort.Ints(members)
	return &bag{
		members:   members,
		groupID:   m.groupID,
		taskCount: m.taskCount + n.taskCount,
	}
}

// benIntra computes the best-neighbor benefit of migrating the whole bag.
// Candidates are non-faulted same-group neighbors of bag members. Returns
// the best benefit and the argmax agent id, or (-Infinity, -1) when no
// candidate exists.
func (e *engine) benIntra(b *bag) (float64, int) {
	inBag := make(map[int]bool, len(b.members))
	var loadInBag float64
	for _, mid := range b.members {
		inBag[mid] = true
		loadInBag += e.w.Agents[mid].Load
	}

	// Candidate set: union of same-group neighbors, deduplicated, ascending
	candSet := make(map[int]bool)
	for _, mid := range b.members {
		for _, nid := range e.sameGroupNeighbors(e.w.Agents[mid]) {
			if !inBag[nid] && !e.w.Agents[nid].Faulted {
				candSet[nid] = true
			}
		}
	}
	candidates := make([]int, 0, len(candSet))
	for id := range candSet {
		candidates = append(candidates, id)
	}
	sort.Ints(candidates)

	bestBen := -domain.Infinity
	bestID := -1
	for _, nid := range candidates {
		ben := e.benefit(b, inBag, loadInBag, nid)
		if ben > bestBen+domain.Epsilon {
			bestBen, bestID = ben, nid
		}
	}
	return bestBen, bestID
}

// benefit scores one candidate neighbor: completion probability against the
// projected cost increase of hosting the bag.
func (e *engine) benefit(b *bag, inBag map[int]bool, loadInBag float64, nid int) float64 {
	n := e.w.Agents[nid]
	neighbors := e.sameGroupNeighbors(n)

	var cd, meanC float64
	for _, mid := range neighbors {
		m := e.w.Agents[mid]
		if w, ok := e.w.Graph.Weight(nid, mid); ok {
			cd += w * float64(len(m.Tasks))
		}
		meanC += m.Ratio()
	}
	if len(neighbors) > 0 {
		cd /= float64(len(neighbors))
		meanC /= float64(len(neighbors))
	}

	cd += loadInBag
	for _, mid := range b.members {
		if w, ok := e.w.Graph.Weight(mid, nid); ok {
			cd += w
		}
	}

	if meanC < domain.Epsilon {
		meanC = domain.Epsilon
	}
	costIncrease := cd / meanC

	rl := e.w.GroupOf(n).Interaction
	complete := domain.Sig(loadInBag) * rl
	if complete < 0.5 {
		complete = 0.5
	}
	completeP := 1 - complete

	return e.opts.SurvivalWeight*completeP - e.opts.CostWeight*costIncrease
}
