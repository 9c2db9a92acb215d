package loader

import (
	"bufio"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"taskmesh/pkg/apperror"
	"taskmesh/pkg/domain"
	"taskmesh/pkg/logger"
)

// Options настройки загрузки
type Options struct {
	// Bridge сшивает компоненты связности рёберного графа
	// мостами малого веса
	Bridge bool
}

// DefaultOptions возвращает настройки по умолчанию
func DefaultOptions() Options {
	return Options{Bridge: true}
}

// LoadCase читает три текстовых файла и собирает состояние сети
func LoadCase(taskPath, agentPath, edgePath string, opts Options) (*domain.World, error) {
	w := domain.NewWorld()

	tasks, err := loadFile(taskPath, ParseTasks)
	if err != nil {
		return nil, err
	}
	w.Tasks = tasks

	if err := loadInto(agentPath, w, parseAgents); err != nil {
		return nil, err
	}

	if err := loadInto(edgePath, w, parseEdges); err != nil {
		return nil, err
	}

	for _, g := range w.Groups {
		sort.Ints(g.Members)
	}

	if opts.Bridge {
		bridgeComponents(w.Graph)
	}

	return w, nil
}

// loadFile открывает файл и передаёт его парсеру
func loadFile[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, apperror.Wrap(err, apperror.CodeMissingFile, "cannot open input file").WithDetail("path", path)
	}
	defer f.Close()
	return parse(f)
}

// loadInto открывает файл и применяет парсер к состоянию
func loadInto(path string, w *domain.World, parse func(io.Reader, *domain.World) error) error {
	f, err := os.Open(path)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeMissingFile, "cannot open input file").WithDetail("path", path)
	}
	defer f.Close()
	return parse(f, w)
}

// ParseTasks читает строки вида `id size arriveTime`
func ParseTasks(r io.Reader) ([]domain.Task, error) {
	var tasks []domain.Task
	seen := make(map[int]bool)

	err := scanLines(r, func(lineNo int, fields []string) error {
		if len(fields) != 3 {
			logger.Warn("skipping malformed task line", "line", lineNo, "fields", len(fields))
			return nil
		}
		id, err := parseInt(fields[0])
		if err != nil {
			return err
		}
		size, err := parseFloat(fields[1])
		if err != nil {
			return err
		}
		arrive, err := parseInt(fields[2])
		if err != nil {
			return err
		}
		if size < 0 {
			logger.Warn("skipping task with negative size", "line", lineNo, "task", id)
			return nil
		}
		if seen[id] {
			logger.Warn("skipping duplicate task id", "line", lineNo, "task", id)
			return nil
		}
		seen[id] = true
		tasks = append(tasks, domain.Task{ID: id, Size: size, ArriveTime: arrive})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// parseAgents читает строки вида `id capacity groupId`
func parseAgents(r io.Reader, w *domain.World) error {
	return scanLines(r, func(lineNo int, fields []string) error {
		if len(fields) != 3 {
			logger.Warn("skipping malformed agent line", "line", lineNo, "fields", len(fields))
			return nil
		}
		id, err := parseInt(fields[0])
		if err != nil {
			return err
		}
		capacity, err := parseFloat(fields[1])
		if err != nil {
			return err
		}
		groupID, err := parseInt(fields[2])
		if err != nil {
			return err
		}
		if capacity < 0 {
			return apperror.Newf(apperror.CodeNegativeCapacity, "agent %d has negative capacity %f", id, capacity)
		}
		if _, ok := w.Agents[id]; ok {
			logger.Warn("skipping duplicate agent id", "line", lineNo, "agent", id)
			return nil
		}

		w.Agents[id] = &domain.Agent{ID: id, Capacity: capacity, GroupID: groupID}

		g, ok := w.Groups[groupID]
		if !ok {
			g = &domain.Group{ID: groupID, Leader: domain.NoLeader}
			w.Groups[groupID] = g
		}
		g.Members = append(g.Members, id)
		return nil
	})
}

// parseEdges читает строки вида `u v weight`; повторные рёбра
// сохраняют первый прочитанный вес
func parseEdges(r io.Reader, w *domain.World) error {
	return scanLines(r, func(lineNo int, fields []string) error {
		if len(fields) != 3 {
			logger.Warn("skipping malformed edge line", "line", lineNo, "fields", len(fields))
			return nil
		}
		u, err := parseInt(fields[0])
		if err != nil {
			return err
		}
		v, err := parseInt(fields[1])
		if err != nil {
			return err
		}
		weight, err := parseFloat(fields[2])
		if err != nil {
			return err
		}
		if weight <= 0 {
			logger.Warn("skipping edge with non-positive weight", "line", lineNo, "u", u, "v", v)
			return nil
		}
		w.Graph.AddEdge(u, v, weight)
		return nil
	})
}

// bridgeComponents соединяет компоненты связности мостами малого веса:
// наименьшая вершина каждой компоненты с наименьшей вершиной первой.
// Агенты, не упомянутые в файле рёбер, остаются изолированными.
func bridgeComponents(g *domain.Graph) {
	components := g.Components()
	if len(components) <= 1 {
		return
	}
	anchor := components[0][0]
	for _, comp := range components[1:] {
		logger.Warn("bridging disconnected component", "anchor", anchor, "component_root", comp[0])
		g.AddEdge(anchor, comp[0], domain.BridgeWeight)
	}
}

// scanLines построчно разбивает вход на поля; пустые строки пропускаются
func scanLines(r io.Reader, handle func(lineNo int, fields []string) error) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if err := handle(lineNo, fields); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.CodeBadToken, "integer expected").WithDetail("token", s)
	}
	return v, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.CodeBadToken, "number expected").WithDetail("token", s)
	}
	return v, nil
}
