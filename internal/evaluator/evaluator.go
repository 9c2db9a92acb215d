package evaluator

import (
	"taskmesh/internal/shortestpath"
	"taskmesh/pkg/domain"
)

// Metrics итог одного запуска алгоритма по конечному состоянию сети
type Metrics struct {
	// ExecCost суммарное отношение нагрузки к ёмкости по всем агентам
	ExecCost float64

	// MigCost сумма кратчайших расстояний по записям миграции;
	// недостижимые пары дают 0 и считаются отдельно
	MigCost float64

	// SurvivalRate средняя вероятность выживания агента
	SurvivalRate float64

	// TargetOpt составная целевая функция
	// costWeight*(ExecCost+MigCost) - survivalWeight*SurvivalRate
	TargetOpt float64

	// Unreachable число миграций по недостижимым парам
	Unreachable int
}

// Evaluate вычисляет метрики по конечному состоянию и записям миграции.
// Состояние не изменяется: повторный вызов даёт идентичный результат.
// Вероятность отказа по перегрузке пересчитывается из конечных нагрузок,
// чтобы выживаемость отражала каскадные перегрузки после миграции.
func Evaluate(w *domain.World, records []domain.MigrationRecord, oracle *shortestpath.Oracle, costWeight, survivalWeight float64) *Metrics {
	m := &Metrics{}

	for _, id := range w.AgentIDs() {
		a := w.Agents[id]
		if a.Capacity > domain.Epsilon {
			m.ExecCost += a.Load / a.Capacity
		}
	}

	for _, rec := range records {
		d := oracle.Dist(rec.From, rec.To)
		if domain.IsInf(d) {
			m.Unreachable++
			continue
		}
		m.MigCost += d
	}

	if len(w.Agents) > 0 {
		var total float64
		for _, id := range w.AgentIDs() {
			a := w.Agents[id]
			if a.Faulted {
				continue
			}
			total += domain.IndividualSurvivability(a, w.GroupOf(a))
		}
		m.SurvivalRate = total / float64(len(w.Agents))
	}

	m.TargetOpt = costWeight*(m.ExecCost+m.MigCost) - survivalWeight*m.SurvivalRate

	return m
}
