package initializer

import (
	"container/heap"
	"math/rand"
	"sort"
	"time"

	"taskmesh/pkg/domain"
)

// Initializer выполняет начальное размещение задач и инъекцию отказов.
// Единственный источник случайности — уровни взаимодействия групп.
type Initializer struct {
	rng *rand.Rand
}

// New создаёт инициализатор; seed == 0 означает недетерминированный запуск
func New(seed int64) *Initializer {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Initializer{rng: rand.New(rand.NewSource(seed))}
}

// Setup применяет обе фазы по порядку: размещение задач, затем отказы
func (in *Initializer) Setup(w *domain.World, faultRatio float64) {
	in.PlaceTasks(w)
	in.InjectFaults(w, faultRatio)
}

// PlaceTasks распределяет задачи, присутствующие с t=0.
// Сначала крупнейшие задачи раздаются ёмким агентам один-к-одному,
// затем остаток — агенту с наименьшим отношением нагрузки к ёмкости.
// После размещения группы получают агрегаты и уровень взаимодействия.
func (in *Initializer) PlaceTasks(w *domain.World) {
	var preTasks []domain.Task
	for _, t := range w.Tasks {
		if t.IsInitial() {
			preTasks = append(preTasks, t)
		}
	}
	sort.Slice(preTasks, func(i, j int) bool {
		if preTasks[i].Size != preTasks[j].Size {
			return preTasks[i].Size > preTasks[j].Size
		}
		return preTasks[i].ID < preTasks[j].ID
	})

	agents := make([]*domain.Agent, 0, len(w.Agents))
	for _, id := range w.AgentIDs() {
		agents = append(agents, w.Agents[id])
	}
	sort.Slice(agents, func(i, j int) bool {
		if agents[i].Capacity != agents[j].Capacity {
			return agents[i].Capacity > agents[j].Capacity
		}
		return agents[i].ID < agents[j].ID
	})

	// Первый проход: по одной задаче на агента
	next := 0
	for _, a := range agents {
		if next >= len(preTasks) {
			break
		}
		in.assign(w, a, preTasks[next])
		next++
	}

	// Остаток: минимальная куча по отношению нагрузки к ёмкости
	if len(agents) == 0 {
		return
	}
	h := newRatioHeap(agents)
	for ; next < len(preTasks); next++ {
		a := heap.Pop(h).(*domain.Agent)
		in.assign(w, a, preTasks[next])
		heap.Push(h, a)
	}

	for _, gid := range w.GroupIDs() {
		g := w.Groups[gid]
		g.Capacity = 0
		for _, id := range g.Members {
			g.Capacity += w.Agents[id].Capacity
		}
		g.Interaction = domain.InteractionLevels[in.rng.Intn(len(domain.InteractionLevels))]
	}
}

// assign закрепляет задачу за агентом и обновляет агрегат группы
func (in *Initializer) assign(w *domain.World, a *domain.Agent, t domain.Task) {
	a.AddTask(t)
	if g := w.GroupOf(a); g != nil {
		g.Load += t.Size
	}
}

// InjectFaults помечает функционально отказавших агентов по
// детерминированной схеме id mod step == 1 и выставляет каждому
// агенту вероятность отказа по перегрузке
func (in *Initializer) InjectFaults(w *domain.World, ratio float64) {
	n := len(w.Agents)
	if n == 0 {
		return
	}

	k := int(ratio * float64(n))
	if k < 1 {
		k = 1
	}
	step := n / k
	if step < 1 {
		step = 1
	}

	for _, id := range w.AgentIDs() {
		a := w.Agents[id]
		if id%step == 1 {
			a.Faulted = true
			if g := w.GroupOf(a); g != nil {
				g.Capacity -= a.Capacity
			}
		}
	}

	for _, id := range w.AgentIDs() {
		a := w.Agents[id]
		a.FaultRisk = 1 - domain.IndividualSurvivability(a, w.GroupOf(a))
	}
}

// ratioHeap минимальная куча агентов по load/capacity,
// при равенстве — меньший id
type ratioHeap []*domain.Agent

func newRatioHeap(agents []*domain.Agent) *ratioHeap {
	h := make(ratioHeap, len(agents))
	copy(h, agents)
	heap.Init(&h)
	return &h
}

func (h ratioHeap) Len() int { return len(h) }

func (h ratioHeap) Less(i, j int) bool {
	ri, rj := h[i].Ratio(), h[j].Ratio()
	if ri != rj {
		return ri < rj
	}
	return h[i].ID < h[j].ID
}

func (h ratioHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *ratioHeap) Push(x any) {
	*h = append(*h, x.(*domain.Agent))
}

func (h *ratioHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
