package domain

import "math"

// InputStatistics описательные характеристики входного случая,
// попадающие в итоговую запись результата
type InputStatistics struct {
	MeanCapacity float64
	CapacityStd  float64
	MeanTaskSize float64
	TaskSizeStd  float64
	AgentCount   int
	TaskCount    int
	GroupCount   int
	EdgeCount    int
}

// CalculateInputStatistics вычисляет статистику по загруженному состоянию
func CalculateInputStatistics(w *World) *InputStatistics {
	stats := &InputStatistics{
		AgentCount: len(w.Agents),
		TaskCount:  len(w.Tasks),
		GroupCount: len(w.Groups),
		EdgeCount:  w.Graph.EdgeCount(),
	}

	capacities := make([]float64, 0, len(w.Agents))
	for _, id := range w.AgentIDs() {
		capacities = append(capacities, w.Agents[id].Capacity)
	}
	stats.MeanCapacity, stats.CapacityStd = meanStd(capacities)

	sizes := make([]float64, 0, len(w.Tasks))
	for _, t := range w.Tasks {
		sizes = append(sizes, t.Size)
	}
	stats.MeanTaskSize, stats.TaskSizeStd = meanStd(sizes)

	return stats
}

// meanStd среднее и среднеквадратичное отклонение (по совокупности)
func meanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	var variance float64
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	variance /= float64(len(xs))
	return mean, math.Sqrt(variance)
}
