// Package main is the entry point for the taskmesh batch driver.
//
// taskmesh compares task-migration strategies on a faulted multi-agent
// network. Each input case is a triple of text files describing tasks,
// agents and weighted edges; the driver runs every configured strategy on a
// fresh clone of the case, evaluates the outcome and writes reports in the
// configured formats (spreadsheet, CSV, Markdown, PDF).
//
// # Pipeline
//
//	┌────────────────────────────────────────────────────────┐
//	│ Loader      (internal/loader)                          │
//	│  text files -> world state (agents, groups, graph)     │
//	├────────────────────────────────────────────────────────┤
//	│ Initializer (internal/initializer)                     │
//	│  initial task matching, fault injection                │
//	├────────────────────────────────────────────────────────┤
//	│ Migration   (internal/migration)                       │
//	│  HGTM, MPFTM, GBMA, MMLMA                              │
//	├────────────────────────────────────────────────────────┤
//	│ Evaluator   (internal/evaluator)                       │
//	│  exec cost, migration cost, survival rate, target      │
//	├────────────────────────────────────────────────────────┤
//	│ Reports     (internal/report)                          │
//	│  Excel, CSV, Markdown, PDF                             │
//	└────────────────────────────────────────────────────────┘
//
// # Configuration
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Command-line flags
//  2. Environment variables (prefix: TASKMESH_)
//  3. Config files (config.yaml, config/config.yaml, /etc/taskmesh/config.yaml)
//  4. Default values
//
// Key environment variables:
//
//	TASKMESH_BATCH_INPUT_DIR    - input case directory (default: data)
//	TASKMESH_BATCH_OUTPUT_DIR   - report directory (default: out)
//	TASKMESH_BATCH_SEED         - interaction-level RNG seed, 0 = time-based
//	TASKMESH_BATCH_FAULT_RATIO  - functional fault ratio (default: 0.3)
//	TASKMESH_LOG_LEVEL          - debug, info, warn, error
//	TASKMESH_METRICS_ENABLED    - expose Prometheus metrics while running
//
// # Exit Codes
//
//	0 - success
//	2 - missing input file
//	3 - malformed input (bad numeric token, negative capacity)
//	4 - invalid configuration
//	5 - report write failure
//	1 - any other error
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"taskmesh/internal/batch"
	"taskmesh/internal/supply"
	"taskmesh/pkg/apperror"
	"taskmesh/pkg/config"
	"taskmesh/pkg/logger"
	"taskmesh/pkg/metrics"
)

func main() {
	var (
		inputDir   = flag.String("input", "", "input case directory")
		outputDir  = flag.String("output", "", "report output directory")
		algorithms = flag.String("algorithms", "", "comma-separated strategies (hgtm,mpftm,gbma,mmlma)")
		seed       = flag.Int64("seed", -1, "interaction-level RNG seed (0 = time-based)")
		faultRatio = flag.Float64("fault-ratio", -1, "functional fault ratio")
		supplyDir  = flag.String("supply", "", "build a case from supply-chain CSVs in this directory and exit")
		caseName   = flag.String("case", "supply", "case name for -supply mode")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("config error: %v\n", err)
		exit(apperror.Wrap(err, apperror.CodeInvalidConfig, "configuration load failed"))
	}

	if *inputDir != "" {
		cfg.Batch.InputDir = *inputDir
	}
	if *outputDir != "" {
		cfg.Batch.OutputDir = *outputDir
	}
	if *algorithms != "" {
		cfg.Batch.Algorithms = strings.Split(*algorithms, ",")
	}
	if *seed >= 0 {
		cfg.Batch.Seed = *seed
	}
	if *faultRatio >= 0 {
		cfg.Batch.FaultRatio = *faultRatio
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	if *supplyDir != "" {
		builder := supply.NewBuilder()
		if err := builder.BuildCase(*supplyDir, cfg.Batch.InputDir, *caseName); err != nil {
			logger.Error("supply preprocessing failed", "error", err)
			exit(err)
		}
		logger.Info("case built from supply csv",
			"case", *caseName,
			"regions", builder.SortedRegions(),
		)
		return
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace)
		go serveMetrics(cfg, m)
	}

	runner := batch.NewRunner(cfg, m)
	records, err := runner.Run()
	if err != nil {
		logger.Error("batch failed", "error", err)
		exit(err)
	}
	if err := runner.WriteReports(records); err != nil {
		logger.Error("report writing failed", "error", err)
		exit(err)
	}

	logger.Info("batch complete", "runs", len(records))
}

// serveMetrics exposes /metrics while the batch runs.
func serveMetrics(cfg *config.Config, m *metrics.Metrics) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, m.Handler())
	addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("metrics endpoint stopped", "error", err)
	}
}

// exit maps the error to a process exit code via the apperror taxonomy.
func exit(err error) {
	code := apperror.ExitCode(err)
	logger.Error("exiting", "code", code, "error", err)
	os.Exit(code)
}
