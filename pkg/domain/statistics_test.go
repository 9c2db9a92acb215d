package domain

import (
	"math"
	"testing"
)

func TestCalculateInputStatistics(t *testing.T) {
	w := NewWorld()
	w.Tasks = []Task{
		{ID: 1, Size: 2, ArriveTime: InitialArrival},
		{ID: 2, Size: 4, ArriveTime: InitialArrival},
		{ID: 3, Size: 6, ArriveTime: 10},
	}
	w.Agents[1] = &Agent{ID: 1, Capacity: 10, GroupID: 1}
	w.Agents[2] = &Agent{ID: 2, Capacity: 20, GroupID: 1}
	w.Groups[1] = &Group{ID: 1, Members: []int{1, 2}}
	w.Graph.AddEdge(1, 2, 1)

	stats := CalculateInputStatistics(w)

	if !FloatEquals(stats.MeanCapacity, 15) {
		t.Errorf("MeanCapacity = %v, want 15", stats.MeanCapacity)
	}
	if !FloatEquals(stats.CapacityStd, 5) {
		t.Errorf("CapacityStd = %v, want 5", stats.CapacityStd)
	}
	if !FloatEquals(stats.MeanTaskSize, 4) {
		t.Errorf("MeanTaskSize = %v, want 4", stats.MeanTaskSize)
	}
	want := math.Sqrt((4 + 0 + 4) / 3.0)
	if !FloatEquals(stats.TaskSizeStd, want) {
		t.Errorf("TaskSizeStd = %v, want %v", stats.TaskSizeStd, want)
	}
	if stats.AgentCount != 2 || stats.TaskCount != 3 || stats.GroupCount != 1 || stats.EdgeCount != 1 {
		t.Errorf("counts = %+v", stats)
	}
}

func TestCalculateInputStatisticsEmpty(t *testing.T) {
	stats := CalculateInputStatistics(NewWorld())
	if stats.MeanCapacity != 0 || stats.CapacityStd != 0 {
		t.Errorf("empty world should produce zero stats: %+v", stats)
	}
}
