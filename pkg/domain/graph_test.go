package domain

import (
	"testing"
)

func TestGraphFirstWeightWins(t *testing.T) {
	g := NewGraph()
	g.AddEdge(1, 2, 5)
	g.AddEdge(1, 2, 9)
	g.AddEdge(2, 1, 3)

	w, ok := g.Weight(1, 2)
	if !ok || w != 5 {
		t.Errorf("Weight(1,2) = %v, want 5", w)
	}
	w, ok = g.Weight(2, 1)
	if !ok || w != 5 {
		t.Errorf("Weight(2,1) = %v, want 5 (undirected)", w)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", g.EdgeCount())
	}
}

func TestGraphRejectsSelfLoops(t *testing.T) {
	g := NewGraph()
	g.AddEdge(1, 1, 2)
	if g.EdgeCount() != 0 {
		t.Errorf("self-loop should be dropped, got %d edges", g.EdgeCount())
	}
}

func TestGraphNeighborsSorted(t *testing.T) {
	g := NewGraph()
	g.AddEdge(5, 9, 1)
	g.AddEdge(5, 2, 1)
	g.AddEdge(5, 7, 1)

	ns := g.Neighbors(5)
	want := []int{2, 7, 9}
	if len(ns) != len(want) {
		t.Fatalf("Neighbors = %v, want %v", ns, want)
	}
	for i := range want {
		if ns[i] != want[i] {
			t.Fatalf("Neighbors = %v, want %v", ns, want)
		}
	}
}

func TestGraphComponents(t *testing.T) {
	g := NewGraph()
	g.AddEdge(1, 2, 1)
	g.AddEdge(2, 3, 1)
	g.AddEdge(10, 11, 1)
	g.AddVertex(20)

	comps := g.Components()
	if len(comps) != 3 {
		t.Fatalf("Components = %d, want 3", len(comps))
	}
	if comps[0][0] != 1 || comps[1][0] != 10 || comps[2][0] != 20 {
		t.Errorf("components not ordered by smallest vertex: %v", comps)
	}
	if g.IsConnected() {
		t.Error("IsConnected should be false")
	}

	g.AddEdge(3, 10, 1)
	g.AddEdge(11, 20, 1)
	if !g.IsConnected() {
		t.Error("IsConnected should be true after joining")
	}
}

func TestGraphClone(t *testing.T) {
	g := NewGraph()
	g.AddEdge(1, 2, 4)

	clone := g.Clone()
	clone.AddEdge(2, 3, 1)

	if g.HasVertex(3) {
		t.Error("clone mutation leaked into original")
	}
	if w, _ := clone.Weight(1, 2); w != 4 {
		t.Errorf("clone lost edge weight: %v", w)
	}
}
