package domain

import "sort"

// MigrationRecord запись об одной перемещённой задаче
type MigrationRecord struct {
	From int
	To   int
}

// PotentialField отображение id агента в скалярный потенциал.
// Поле пересчитывается целиком, а не корректируется по месту.
type PotentialField map[int]float64

// World состояние сети: агенты, группы, граф и исходный список задач.
// Создаётся заново (глубоким клоном) перед каждым запуском алгоритма;
// изменяется только инициализатором и движком миграции.
type World struct {
	Tasks  []Task
	Agents map[int]*Agent
	Groups map[int]*Group
	Graph  *Graph
}

// NewWorld создаёт пустое состояние
func NewWorld() *World {
	return &World{
		Agents: make(map[int]*Agent),
		Groups: make(map[int]*Group),
		Graph:  NewGraph(),
	}
}

// AgentIDs возвращает id агентов по возрастанию
func (w *World) AgentIDs() []int {
	ids := make([]int, 0, len(w.Agents))
	for id := range w.Agents {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// GroupIDs возвращает id групп по возрастанию
func (w *World) GroupIDs() []int {
	ids := make([]int, 0, len(w.Groups))
	for id := range w.Groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// GroupOf возвращает группу агента
func (w *World) GroupOf(a *Agent) *Group {
	return w.Groups[a.GroupID]
}

// TotalLoad возвращает суммарную нагрузку всех агентов
func (w *World) TotalLoad() float64 {
	var total float64
	for _, a := range w.Agents {
		total += a.Load
	}
	return total
}

// TaskCount возвращает суммарное число размещённых задач
func (w *World) TaskCount() int {
	total := 0
	for _, a := range w.Agents {
		total += len(a.Tasks)
	}
	return total
}

// Clone создаёт глубокую копию состояния.
// Граф после загрузки неизменяем, но клонируется тоже: каждый запуск
// владеет своим состоянием целиком.
func (w *World) Clone() *World {
	clone := &World{
		Tasks:  make([]Task, len(w.Tasks)),
		Agents: make(map[int]*Agent, len(w.Agents)),
		Groups: make(map[int]*Group, len(w.Groups)),
		Graph:  w.Graph.Clone(),
	}
	copy(clone.Tasks, w.Tasks)
	for id, a := range w.Agents {
		clone.Agents[id] = a.Clone()
	}
	for id, g := range w.Groups {
		clone.Groups[id] = g.Clone()
	}
	return clone
}
