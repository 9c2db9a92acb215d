package initializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmesh/pkg/domain"
)

func worldWithAgents(caps map[int]float64, groupID int) *domain.World {
	w := domain.NewWorld()
	g := &domain.Group{ID: groupID, Leader: domain.NoLeader}
	for id, c := range caps {
		w.Agents[id] = &domain.Agent{ID: id, Capacity: c, GroupID: groupID}
		g.Members = append(g.Members, id)
	}
	w.Groups[groupID] = g
	return w
}

func TestPlaceTasksLargestFirst(t *testing.T) {
	w := worldWithAgents(map[int]float64{0: 10, 1: 8, 2: 6}, 1)
	w.Tasks = []domain.Task{
		{ID: 0, Size: 5, ArriveTime: domain.InitialArrival},
		{ID: 1, Size: 4, ArriveTime: domain.InitialArrival},
		{ID: 2, Size: 3, ArriveTime: domain.InitialArrival},
		{ID: 3, Size: 2, ArriveTime: domain.InitialArrival},
		{ID: 4, Size: 1, ArriveTime: domain.InitialArrival},
		{ID: 5, Size: 9, ArriveTime: 42}, // not initial, never placed
	}

	New(7).PlaceTasks(w)

	// One-each pass: 5->cap10, 4->cap8, 3->cap6. Remainder by smallest
	// load/capacity ratio with id tie-break: task 2 -> agent 0, task 1 -> agent 1.
	assert.InDelta(t, 7, w.Agents[0].Load, 1e-9)
	assert.InDelta(t, 5, w.Agents[1].Load, 1e-9)
	assert.InDelta(t, 3, w.Agents[2].Load, 1e-9)
	assert.Equal(t, 5, w.TaskCount())
	assert.InDelta(t, 15, w.Groups[1].Load, 1e-9)
	assert.InDelta(t, 24, w.Groups[1].Capacity, 1e-9)
}

func TestPlaceTasksSetsInteractionLevel(t *testing.T) {
	w := worldWithAgents(map[int]float64{0: 10, 1: 10}, 1)
	New(3).PlaceTasks(w)

	rl := w.Groups[1].Interaction
	assert.Contains(t, []float64{0.1, 0.2}, rl)
}

func TestInjectFaultsPattern(t *testing.T) {
	w := domain.NewWorld()
	g := &domain.Group{ID: 1, Leader: domain.NoLeader}
	for id := 0; id < 10; id++ {
		w.Agents[id] = &domain.Agent{ID: id, Capacity: 10, GroupID: 1}
		g.Members = append(g.Members, id)
	}
	g.Capacity = 100
	w.Groups[1] = g

	in := New(1)
	in.InjectFaults(w, 0.3)

	// n=10, k=3, step=3: ids 1, 4, 7 fault
	var faulted []int
	for _, id := range w.AgentIDs() {
		if w.Agents[id].Faulted {
			faulted = append(faulted, id)
		}
	}
	assert.Equal(t, []int{1, 4, 7}, faulted)
	assert.InDelta(t, 70, g.Capacity, 1e-9)
}

func TestInjectFaultsAlwaysAtLeastOneCandidate(t *testing.T) {
	w := worldWithAgents(map[int]float64{0: 10, 1: 10}, 1)
	New(1).InjectFaults(w, 0.1)

	// k clamps to 1, step = 2: agent 1 faults
	assert.False(t, w.Agents[0].Faulted)
	assert.True(t, w.Agents[1].Faulted)
}

func TestInjectFaultsSetsRiskForAllAgents(t *testing.T) {
	w := worldWithAgents(map[int]float64{0: 10, 1: 10, 2: 10}, 1)
	New(1).InjectFaults(w, 0.3)

	for _, id := range w.AgentIDs() {
		risk := w.Agents[id].FaultRisk
		assert.GreaterOrEqual(t, risk, 0.0)
		assert.LessOrEqual(t, risk, 1.0-domain.AgentSurvivalFloor+1e-9)
	}
}

func TestSetupIsDeterministicWithSeed(t *testing.T) {
	build := func() *domain.World {
		w := worldWithAgents(map[int]float64{0: 10, 1: 8, 2: 6, 3: 12}, 1)
		w.Tasks = []domain.Task{
			{ID: 0, Size: 5, ArriveTime: domain.InitialArrival},
			{ID: 1, Size: 2, ArriveTime: domain.InitialArrival},
		}
		return w
	}

	w1 := build()
	w2 := build()
	New(99).Setup(w1, 0.3)
	New(99).Setup(w2, 0.3)

	require.Equal(t, w1.Groups[1].Interaction, w2.Groups[1].Interaction)
	for _, id := range w1.AgentIDs() {
		assert.Equal(t, w1.Agents[id].Load, w2.Agents[id].Load)
		assert.Equal(t, w1.Agents[id].Faulted, w2.Agents[id].Faulted)
		assert.Equal(t, w1.Agents[id].FaultRisk, w2.Agents[id].FaultRisk)
	}
}
