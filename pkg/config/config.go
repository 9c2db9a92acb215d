// pkg/config/config.go
package config

import (
	"fmt"
	"strings"
)

// Config - главная структура конфигурации
type Config struct {
	App     AppConfig     `koanf:"app"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	Batch   BatchConfig   `koanf:"batch"`
	Report  ReportConfig  `koanf:"report"`
}

// AppConfig - общие настройки приложения
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level      string `koanf:"level"`  // debug, info, warn, error
	Format     string `koanf:"format"` // json, text
	Output     string `koanf:"output"` // stdout, stderr, file
	FilePath   string `koanf:"file_path"`
	MaxSize    int    `koanf:"max_size"` // MB
	MaxBackups int    `koanf:"max_backups"`
	MaxAge     int    `koanf:"max_age"` // days
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig - настройки Prometheus метрик
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
}

// BatchConfig - настройки пакетного прогона
type BatchConfig struct {
	InputDir       string   `koanf:"input_dir"`
	OutputDir      string   `koanf:"output_dir"`
	Algorithms     []string `koanf:"algorithms"`
	Seed           int64    `koanf:"seed"`
	FaultRatio     float64  `koanf:"fault_ratio"`
	CostWeight     float64  `koanf:"cost_weight"`
	SurvivalWeight float64  `koanf:"survival_weight"`
	Alpha          float64  `koanf:"alpha"`
}

// ReportConfig - настройки выгрузки отчётов
type ReportConfig struct {
	Formats     []string `koanf:"formats"` // excel, csv, markdown, pdf
	CompanyName string   `koanf:"company_name"`
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	if c.Batch.FaultRatio < 0 || c.Batch.FaultRatio > 1 {
		return fmt.Errorf("fault ratio out of range: %f", c.Batch.FaultRatio)
	}
	if c.Batch.CostWeight < 0 || c.Batch.SurvivalWeight < 0 {
		return fmt.Errorf("target weights must be non-negative")
	}
	if c.Batch.Alpha < 0 {
		return fmt.Errorf("alpha must be non-negative")
	}

	for _, f := range c.Report.Formats {
		switch strings.ToLower(f) {
		case "excel", "csv", "markdown", "pdf":
		default:
			return fmt.Errorf("unknown report format: %s", f)
		}
	}

	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		return fmt.Errorf("invalid metrics port: %d", c.Metrics.Port)
	}

	return nil
}
