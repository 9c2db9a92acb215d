package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskmesh/internal/evaluator"
	"taskmesh/internal/initializer"
	"taskmesh/internal/loader"
	"taskmesh/internal/migration"
	"taskmesh/internal/report"
	"taskmesh/internal/shortestpath"
	"taskmesh/pkg/apperror"
	"taskmesh/pkg/config"
	"taskmesh/pkg/domain"
	"taskmesh/pkg/logger"
	"taskmesh/pkg/metrics"
)

// Case тройка входных файлов одного случая
type Case struct {
	Name      string
	TaskPath  string
	AgentPath string
	EdgePath  string
}

// Runner прогоняет случаи по всем алгоритмам и собирает результаты
type Runner struct {
	cfg     *config.Config
	metrics *metrics.Metrics

	// seed фиксируется один раз на весь пакет: нулевой seed из
	// конфигурации разворачивается в конкретное значение здесь, а не в
	// каждом запуске, иначе алгоритмы получили бы разные уровни
	// взаимодействия и их результаты были бы несравнимы
	seed int64
}

// NewRunner создаёт runner; metrics может быть nil
func NewRunner(cfg *config.Config, m *metrics.Metrics) *Runner {
	seed := cfg.Batch.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
		logger.Info("resolved random batch seed", "seed", seed)
	}
	return &Runner{cfg: cfg, metrics: m, seed: seed}
}

// DiscoverCases ищет тройки `<case>_tasks.txt`, `<case>_agents.txt`,
// `<case>_edges.txt` в каталоге. Неполная тройка — фатальная ошибка.
func DiscoverCases(dir string) ([]Case, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeMissingFile, "cannot read input dir").WithDetail("dir", dir)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(e.Name(), "_tasks.txt"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, apperror.Newf(apperror.CodeMissingFile, "no input cases found in %s", dir)
	}

	cases := make([]Case, 0, len(names))
	for _, name := range names {
		c := Case{
			Name:      name,
			TaskPath:  filepath.Join(dir, name+"_tasks.txt"),
			AgentPath: filepath.Join(dir, name+"_agents.txt"),
			EdgePath:  filepath.Join(dir, name+"_edges.txt"),
		}
		for _, p := range []string{c.AgentPath, c.EdgePath} {
			if _, err := os.Stat(p); err != nil {
				return nil, apperror.Wrap(err, apperror.CodeMissingFile, "incomplete case").WithDetail("path", p)
			}
		}
		cases = append(cases, c)
	}
	return cases, nil
}

// Run прогоняет все случаи по всем настроенным алгоритмам
func (r *Runner) Run() ([]report.ResultRecord, error) {
	cases, err := DiscoverCases(r.cfg.Batch.InputDir)
	if err != nil {
		return nil, err
	}

	algorithms, err := r.algorithms()
	if err != nil {
		return nil, err
	}

	var records []report.ResultRecord
	for _, c := range cases {
		log := logger.WithCase(c.Name)
		log.Info("loading case")

		base, err := loader.LoadCase(c.TaskPath, c.AgentPath, c.EdgePath, loader.DefaultOptions())
		if err != nil {
			return nil, err
		}
		if r.metrics != nil {
			r.metrics.CasesTotal.Inc()
		}

		for _, algo := range algorithms {
			rec, err := r.runOne(c, base, algo)
			if err != nil {
				if r.metrics != nil {
					r.metrics.RunsFailed.WithLabelValues(string(algo)).Inc()
				}
				return nil, err
			}
			records = append(records, *rec)
		}
	}
	return records, nil
}

// runOne выполняет один запуск: клон состояния, инициализация,
// миграция, оценка
func (r *Runner) runOne(c Case, base *domain.World, algo migration.Algorithm) (*report.ResultRecord, error) {
	w := base.Clone()

	// Один и тот же seed на каждый запуск: уровни взаимодействия
	// одинаковы для всех алгоритмов, сравнение честное
	init := initializer.New(r.seed)
	init.Setup(w, r.cfg.Batch.FaultRatio)

	stats := domain.CalculateInputStatistics(w)

	oracle := shortestpath.NewOracle(w.Graph)
	oracle.Precompute()

	opts := migration.DefaultOptions()
	opts.CostWeight = r.cfg.Batch.CostWeight
	opts.SurvivalWeight = r.cfg.Batch.SurvivalWeight
	opts.Alpha = r.cfg.Batch.Alpha
	opts.Logger = logger.WithAlgorithm(string(algo))

	result, err := migration.Run(w, oracle, algo, opts)
	if err != nil {
		return nil, err
	}

	m := evaluator.Evaluate(w, result.Records, oracle, r.cfg.Batch.CostWeight, r.cfg.Batch.SurvivalWeight)

	if r.metrics != nil {
		r.metrics.ObserveRun(string(algo), result.Duration, len(result.Records), m.Unreachable)
	}

	opts.Logger.Info("run complete",
		"case", c.Name,
		"target", m.TargetOpt,
		"survival", m.SurvivalRate,
		"migrations", len(result.Records),
		"unreachable", m.Unreachable,
		"elapsed", result.Duration,
	)

	return &report.ResultRecord{
		RunID:         uuid.NewString(),
		Case:          c.Name,
		Algorithm:     string(algo),
		ExecCost:      m.ExecCost,
		MigCost:       m.MigCost,
		TargetOpt:     m.TargetOpt,
		SurvivalRate:  m.SurvivalRate,
		ElapsedMillis: result.Duration.Milliseconds(),
		Migrations:    len(result.Records),
		Unreachable:   m.Unreachable,
		Skipped:       result.Skipped,
		MeanCapacity:  stats.MeanCapacity,
		CapacityStd:   stats.CapacityStd,
		MeanTaskSize:  stats.MeanTaskSize,
		TaskSizeStd:   stats.TaskSizeStd,
	}, nil
}

// WriteReports пишет отчёты в настроенных форматах
func (r *Runner) WriteReports(records []report.ResultRecord) error {
	if err := os.MkdirAll(r.cfg.Batch.OutputDir, 0755); err != nil {
		return err
	}

	title := fmt.Sprintf("%s Migration Comparison", r.cfg.Report.CompanyName)
	for _, format := range r.cfg.Report.Formats {
		var err error
		var path string
		switch strings.ToLower(format) {
		case "excel":
			path = filepath.Join(r.cfg.Batch.OutputDir, "results.xlsx")
			err = report.WriteExcel(path, records)
		case "csv":
			path = filepath.Join(r.cfg.Batch.OutputDir, "results.csv")
			err = report.WriteCSV(path, records)
		case "markdown":
			path = filepath.Join(r.cfg.Batch.OutputDir, "results.md")
			err = report.WriteMarkdown(path, title, records)
		case "pdf":
			path = filepath.Join(r.cfg.Batch.OutputDir, "results.pdf")
			err = report.WritePDF(path, title, records)
		default:
			return apperror.Newf(apperror.CodeReport, "unknown report format %q", format)
		}
		if err != nil {
			return apperror.Wrap(err, apperror.CodeReport, "report write failed").WithDetail("path", path)
		}
		if r.metrics != nil {
			r.metrics.ReportsWrittenTotal.WithLabelValues(strings.ToLower(format)).Inc()
		}
		logger.Info("report written", "path", path)
	}
	return nil
}

// algorithms разбирает список алгоритмов из конфигурации
func (r *Runner) algorithms() ([]migration.Algorithm, error) {
	if len(r.cfg.Batch.Algorithms) == 0 {
		return migration.AllAlgorithms(), nil
	}
	out := make([]migration.Algorithm, 0, len(r.cfg.Batch.Algorithms))
	for _, name := range r.cfg.Batch.Algorithms {
		algo, err := migration.ParseAlgorithm(strings.ToLower(name))
		if err != nil {
			return nil, err
		}
		out = append(out, algo)
	}
	return out, nil
}
