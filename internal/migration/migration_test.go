package migration

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmesh/internal/shortestpath"
	"taskmesh/pkg/domain"
)

// setRisk fills FaultRisk the way the initializer does.
func setRisk(w *domain.World) {
	for _, id := range w.AgentIDs() {
		a := w.Agents[id]
		a.FaultRisk = 1 - domain.IndividualSurvivability(a, w.GroupOf(a))
	}
}

// twoAgentWorld is the trivial scenario: one group, capacities 10/10, a
// single task of size 5 on faulted agent 0, edge 0-1 of weight 1.
func twoAgentWorld() *domain.World {
	w := domain.NewWorld()
	w.Agents[0] = &domain.Agent{ID: 0, Capacity: 10, GroupID: 1, Faulted: true}
	w.Agents[1] = &domain.Agent{ID: 1, Capacity: 10, GroupID: 1}
	w.Agents[0].AddTask(domain.Task{ID: 0, Size: 5, ArriveTime: domain.InitialArrival})
	w.Groups[1] = &domain.Group{ID: 1, Members: []int{0, 1}, Leader: domain.NoLeader, Load: 5, Capacity: 10, Interaction: 0.1}
	w.Graph.AddEdge(0, 1, 1)
	setRisk(w)
	return w
}

func runAlgo(t *testing.T, w *domain.World, algo Algorithm) *Result {
	t.Helper()
	oracle := shortestpath.NewOracle(w.Graph)
	result, err := Run(w, oracle, algo, DefaultOptions())
	require.NoError(t, err)
	return result
}

func TestTrivialMigration_AllAlgorithms(t *testing.T) {
	for _, algo := range AllAlgorithms() {
		t.Run(string(algo), func(t *testing.T) {
			w := twoAgentWorld()
			result := runAlgo(t, w, algo)

			require.Len(t, result.Records, 1)
			assert.Equal(t, domain.MigrationRecord{From: 0, To: 1}, result.Records[0])
			assert.Empty(t, w.Agents[0].Tasks)
			require.Len(t, w.Agents[1].Tasks, 1)
			assert.Equal(t, 5.0, w.Agents[1].Tasks[0].Size)
			assert.InDelta(t, 5.0, w.Agents[1].Load, 1e-9)
			assert.InDelta(t, 0.0, w.Agents[0].Load, 1e-9)
		})
	}
}

func TestNoDestination_AllAlgorithms(t *testing.T) {
	for _, algo := range AllAlgorithms() {
		t.Run(string(algo), func(t *testing.T) {
			w := twoAgentWorld()
			w.Agents[1].Faulted = true
			setRisk(w)

			result := runAlgo(t, w, algo)

			assert.Empty(t, result.Records)
			require.Len(t, w.Agents[0].Tasks, 1)
			assert.InDelta(t, 5.0, w.Agents[0].Load, 1e-9)
		})
	}
}

// crossGroupWorld: two groups on a 4-cycle, the only same-group candidate
// would overflow.
func crossGroupWorld() *domain.World {
	w := domain.NewWorld()
	w.Agents[0] = &domain.Agent{ID: 0, Capacity: 10, GroupID: 1, Faulted: true}
	w.Agents[1] = &domain.Agent{ID: 1, Capacity: 3, GroupID: 1}
	w.Agents[2] = &domain.Agent{ID: 2, Capacity: 10, GroupID: 2}
	w.Agents[3] = &domain.Agent{ID: 3, Capacity: 10, GroupID: 2}
	w.Agents[0].AddTask(domain.Task{ID: 0, Size: 3, ArriveTime: domain.InitialArrival})
	w.Agents[1].AddTask(domain.Task{ID: 1, Size: 2, ArriveTime: domain.InitialArrival})
	w.Groups[1] = &domain.Group{ID: 1, Members: []int{0, 1}, Leader: domain.NoLeader, Load: 5, Capacity: 13, Interaction: 0.1}
	w.Groups[2] = &domain.Group{ID: 2, Members: []int{2, 3}, Leader: domain.NoLeader, Capacity: 20, Interaction: 0.2}
	w.Graph.AddEdge(0, 1, 1)
	w.Graph.AddEdge(1, 2, 1)
	w.Graph.AddEdge(2, 3, 1)
	w.Graph.AddEdge(0, 3, 1)
	setRisk(w)
	return w
}

func TestGreedyRefusesOverflow(t *testing.T) {
	for _, algo := range []Algorithm{AlgorithmGBMA, AlgorithmMMLMA} {
		t.Run(string(algo), func(t *testing.T) {
			w := crossGroupWorld()
			result := runAlgo(t, w, algo)

			// Candidate 1 cannot take the task without exceeding capacity
			assert.Empty(t, result.Records)
			require.Len(t, w.Agents[0].Tasks, 1)
			assert.Equal(t, 1, result.Skipped)
		})
	}
}

func TestCrossGroupConservation(t *testing.T) {
	for _, algo := range AllAlgorithms() {
		t.Run(string(algo), func(t *testing.T) {
			w := crossGroupWorld()
			totalBefore := w.TotalLoad()
			countBefore := w.TaskCount()

			runAlgo(t, w, algo)

			assert.InDelta(t, totalBefore, w.TotalLoad(), 1e-9)
			assert.Equal(t, countBefore, w.TaskCount())
		})
	}
}

// tieWorld: three agents in one group, fully connected with weight 1,
// agents 1 and 2 identical. Every strategy must pick agent 1.
func tieWorld() *domain.World {
	w := domain.NewWorld()
	w.Agents[0] = &domain.Agent{ID: 0, Capacity: 10, GroupID: 1, Faulted: true}
	w.Agents[1] = &domain.Agent{ID: 1, Capacity: 10, GroupID: 1}
	w.Agents[2] = &domain.Agent{ID: 2, Capacity: 10, GroupID: 1}
	w.Agents[0].AddTask(domain.Task{ID: 0, Size: 8, ArriveTime: domain.InitialArrival})
	w.Agents[1].AddTask(domain.Task{ID: 1, Size: 1, ArriveTime: domain.InitialArrival})
	w.Agents[2].AddTask(domain.Task{ID: 2, Size: 1, ArriveTime: domain.InitialArrival})
	w.Groups[1] = &domain.Group{ID: 1, Members: []int{0, 1, 2}, Leader: domain.NoLeader, Load: 10, Capacity: 20, Interaction: 0.1}
	w.Graph.AddEdge(0, 1, 1)
	w.Graph.AddEdge(0, 2, 1)
	w.Graph.AddEdge(1, 2, 1)
	setRisk(w)
	return w
}

func TestTieBreaksToLowestID_AllAlgorithms(t *testing.T) {
	for _, algo := range AllAlgorithms() {
		t.Run(string(algo), func(t *testing.T) {
			w := tieWorld()
			result := runAlgo(t, w, algo)

			require.NotEmpty(t, result.Records, "the task must migrate")
			for _, rec := range result.Records {
				if rec.From == 0 {
					assert.Equal(t, 1, rec.To, "ties must resolve to the lowest id")
				}
			}
		})
	}
}

// splitWorld: the only non-faulted candidate lives in another component.
func splitWorld() *domain.World {
	w := domain.NewWorld()
	w.Agents[0] = &domain.Agent{ID: 0, Capacity: 10, GroupID: 1, Faulted: true}
	w.Agents[1] = &domain.Agent{ID: 1, Capacity: 10, GroupID: 1}
	w.Agents[0].AddTask(domain.Task{ID: 0, Size: 2, ArriveTime: domain.InitialArrival})
	w.Groups[1] = &domain.Group{ID: 1, Members: []int{0, 1}, Leader: domain.NoLeader, Load: 2, Capacity: 20, Interaction: 0.1}
	w.Graph.AddVertex(0)
	w.Graph.AddVertex(1)
	setRisk(w)
	return w
}

func TestUnreachableCandidate(t *testing.T) {
	// MMLMA ignores distance and still migrates
	w := splitWorld()
	result := runAlgo(t, w, AlgorithmMMLMA)
	require.Len(t, result.Records, 1)
	assert.Equal(t, domain.MigrationRecord{From: 0, To: 1}, result.Records[0])

	// GBMA ranks by distance and skips the unreachable candidate
	w = splitWorld()
	result = runAlgo(t, w, AlgorithmGBMA)
	assert.Empty(t, result.Records)
	require.Len(t, w.Agents[0].Tasks, 1)

	// MPFTM needs a finite gradient step
	w = splitWorld()
	result = runAlgo(t, w, AlgorithmMPFTM)
	assert.Empty(t, result.Records)

	// HGTM bags have no graph neighbors to route to
	w = splitWorld()
	result = runAlgo(t, w, AlgorithmHGTM)
	assert.Empty(t, result.Records)
}

// randomWorld builds a reproducible 50-agent, 200-task instance.
func randomWorld(seed int64) *domain.World {
	rng := rand.New(rand.NewSource(seed))
	w := domain.NewWorld()

	const agents = 50
	const groups = 5
	for id := 0; id < agents; id++ {
		gid := id % groups
		w.Agents[id] = &domain.Agent{ID: id, Capacity: 50 + rng.Float64()*50, GroupID: gid}
		g, ok := w.Groups[gid]
		if !ok {
			g = &domain.Group{ID: gid, Leader: domain.NoLeader}
			w.Groups[gid] = g
		}
		g.Members = append(g.Members, id)
	}
	for id := 0; id < agents; id++ {
		w.Graph.AddEdge(id, (id+1)%agents, 1+rng.Float64()*4)
	}
	for i := 0; i < 60; i++ {
		u := rng.Intn(agents)
		v := rng.Intn(agents)
		if u != v {
			w.Graph.AddEdge(u, v, 1+rng.Float64()*9)
		}
	}

	// Place tasks round-robin and inject the deterministic fault pattern
	for i := 0; i < 200; i++ {
		id := i % agents
		task := domain.Task{ID: i, Size: 1 + rng.Float64()*9, ArriveTime: domain.InitialArrival}
		w.Agents[id].AddTask(task)
		w.Groups[id%groups].Load += task.Size
		w.Tasks = append(w.Tasks, task)
	}
	for gid, g := range w.Groups {
		for _, id := range g.Members {
			g.Capacity += w.Agents[id].Capacity
		}
		g.Interaction = domain.InteractionLevels[gid%2]
	}
	for id := 0; id < agents; id++ {
		if id%3 == 1 {
			a := w.Agents[id]
			a.Faulted = true
			w.Groups[a.GroupID].Capacity -= a.Capacity
		}
	}
	setRisk(w)
	return w
}

func TestLoadConservation_AllAlgorithms(t *testing.T) {
	base := randomWorld(42)
	totalBefore := base.TotalLoad()
	countBefore := base.TaskCount()

	for _, algo := range AllAlgorithms() {
		t.Run(string(algo), func(t *testing.T) {
			w := base.Clone()
			result := runAlgo(t, w, algo)

			assert.InDelta(t, totalBefore, w.TotalLoad(), 1e-6)
			assert.Equal(t, countBefore, w.TaskCount())
			// The potential-field strategy may legally refuse every move
			// when no destination strictly improves the gradient
			if algo != AlgorithmMPFTM {
				assert.NotEmpty(t, result.Records)
			}
		})
	}
}

func TestGreedyNeverOverflowsDestinations(t *testing.T) {
	base := randomWorld(7)
	for _, algo := range []Algorithm{AlgorithmGBMA, AlgorithmMMLMA} {
		t.Run(string(algo), func(t *testing.T) {
			w := base.Clone()
			result := runAlgo(t, w, algo)

			for _, rec := range result.Records {
				dst := w.Agents[rec.To]
				assert.LessOrEqualf(t, dst.Load, dst.Capacity+1e-9,
					"destination %d overflows", rec.To)
			}
		})
	}
}

func TestDeterministicRecords_AllAlgorithms(t *testing.T) {
	base := randomWorld(11)
	for _, algo := range AllAlgorithms() {
		t.Run(string(algo), func(t *testing.T) {
			w1 := base.Clone()
			w2 := base.Clone()
			r1 := runAlgo(t, w1, algo)
			r2 := runAlgo(t, w2, algo)

			assert.Equal(t, r1.Records, r2.Records)
			assert.Equal(t, r1.Skipped, r2.Skipped)
		})
	}
}

func TestFaultedAgentsNeverReceive(t *testing.T) {
	base := randomWorld(23)
	for _, algo := range AllAlgorithms() {
		t.Run(string(algo), func(t *testing.T) {
			w := base.Clone()
			faulted := make(map[int]bool)
			for _, id := range w.AgentIDs() {
				if w.Agents[id].Faulted {
					faulted[id] = true
				}
			}

			result := runAlgo(t, w, algo)

			// HGTM's preparation pass may stage tasks through flag-swapped
			// agents, but every faulted agent must end its run no heavier
			for _, id := range w.AgentIDs() {
				if faulted[id] {
					assert.LessOrEqual(t, w.Agents[id].Load, base.Agents[id].Load+1e-9)
				}
			}
			if algo != AlgorithmHGTM {
				for _, rec := range result.Records {
					assert.Falsef(t, faulted[rec.To], "record routes to faulted agent %d", rec.To)
				}
			}
		})
	}
}

func TestSkippedBagsUntouchedByPreparation(t *testing.T) {
	// Group 1 has a routed bag that triggers receiver preparation; group 2
	// is entirely faulted and therefore leaderless. The preparation pass
	// must not drain the leaderless group even though its members can
	// reach a foreign leader.
	w := domain.NewWorld()
	w.Agents[0] = &domain.Agent{ID: 0, Capacity: 10, GroupID: 1, Faulted: true}
	w.Agents[2] = &domain.Agent{ID: 2, Capacity: 40, GroupID: 1}
	w.Agents[10] = &domain.Agent{ID: 10, Capacity: 10, GroupID: 2, Faulted: true}
	w.Agents[11] = &domain.Agent{ID: 11, Capacity: 10, GroupID: 2, Faulted: true}
	w.Agents[0].AddTask(domain.Task{ID: 0, Size: 4, ArriveTime: domain.InitialArrival})
	w.Agents[10].AddTask(domain.Task{ID: 1, Size: 3, ArriveTime: domain.InitialArrival})
	w.Groups[1] = &domain.Group{ID: 1, Members: []int{0, 2}, Leader: domain.NoLeader, Load: 4, Capacity: 40, Interaction: 0.1}
	w.Groups[2] = &domain.Group{ID: 2, Members: []int{10, 11}, Leader: domain.NoLeader, Load: 3, Interaction: 0.2}
	w.Graph.AddEdge(0, 2, 1)
	w.Graph.AddEdge(10, 2, 1)
	w.Graph.AddEdge(10, 11, 1)
	setRisk(w)

	result := runAlgo(t, w, AlgorithmHGTM)

	// The leaderless group keeps its tasks in place
	require.Len(t, w.Agents[10].Tasks, 1)
	assert.InDelta(t, 3, w.Agents[10].Load, 1e-9)
	for _, rec := range result.Records {
		assert.NotEqual(t, 10, rec.From, "skipped-bag source must not migrate")
		assert.NotEqual(t, 11, rec.From)
	}

	// The routed bag still lands on its target
	require.Len(t, result.Records, 1)
	assert.Equal(t, domain.MigrationRecord{From: 0, To: 2}, result.Records[0])
}

func TestCompletionProbabilityMonotonic(t *testing.T) {
	// For a fixed neighbor, growing bag load never increases the completion
	// probability term 1 - max(sig(load)*rl, 0.5)
	for _, rl := range domain.InteractionLevels {
		prev := 2.0
		for load := 0.0; load < 1000; load += 10 {
			c := domain.Sig(load) * rl
			if c < 0.5 {
				c = 0.5
			}
			completeP := 1 - c
			assert.LessOrEqual(t, completeP, prev+1e-12)
			prev = completeP
		}
	}
}

func TestMPFTMStrictDescentStops(t *testing.T) {
	// A nearly idle faulted source has nothing to gain from moving its
	// task; the gradient loop must terminate without a move
	w := domain.NewWorld()
	w.Agents[0] = &domain.Agent{ID: 0, Capacity: 100, GroupID: 1, Faulted: true}
	w.Agents[1] = &domain.Agent{ID: 1, Capacity: 100, GroupID: 1}
	w.Agents[0].AddTask(domain.Task{ID: 0, Size: 0.001, ArriveTime: domain.InitialArrival})
	w.Agents[1].AddTask(domain.Task{ID: 1, Size: 50, ArriveTime: domain.InitialArrival})
	w.Groups[1] = &domain.Group{ID: 1, Members: []int{0, 1}, Leader: domain.NoLeader, Load: 50.001, Capacity: 200, Interaction: 0.1}
	w.Graph.AddEdge(0, 1, 100)
	setRisk(w)

	result := runAlgo(t, w, AlgorithmMPFTM)
	assert.Empty(t, result.Records)
	assert.Len(t, w.Agents[0].Tasks, 1)
}

func TestHGTMSeparateBagsShareTarget(t *testing.T) {
	// Two adjacent faulted agents in one group with one healthy hub: the
	// merge does not beat the two bags' benefits, so the bags stay separate,
	// and both queues end up on the hub
	w := domain.NewWorld()
	w.Agents[0] = &domain.Agent{ID: 0, Capacity: 10, GroupID: 1, Faulted: true}
	w.Agents[1] = &domain.Agent{ID: 1, Capacity: 10, GroupID: 1, Faulted: true}
	w.Agents[2] = &domain.Agent{ID: 2, Capacity: 40, GroupID: 1}
	w.Agents[0].AddTask(domain.Task{ID: 0, Size: 4, ArriveTime: domain.InitialArrival})
	w.Agents[1].AddTask(domain.Task{ID: 1, Size: 6, ArriveTime: domain.InitialArrival})
	w.Groups[1] = &domain.Group{ID: 1, Members: []int{0, 1, 2}, Leader: domain.NoLeader, Load: 10, Capacity: 40, Interaction: 0.1}
	w.Graph.AddEdge(0, 1, 1)
	w.Graph.AddEdge(0, 2, 1)
	w.Graph.AddEdge(1, 2, 1)
	setRisk(w)

	result := runAlgo(t, w, AlgorithmHGTM)

	require.Len(t, result.Records, 2)
	for _, rec := range result.Records {
		assert.Equal(t, 2, rec.To)
	}
	assert.InDelta(t, 10, w.Agents[2].Load, 1e-9)
	assert.Empty(t, w.Agents[0].Tasks)
	assert.Empty(t, w.Agents[1].Tasks)
}
