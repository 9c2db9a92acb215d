package report

import (
	"bytes"
	"fmt"
	"os"
	"time"
)

// WriteMarkdown пишет сравнительный отчёт в Markdown
func WriteMarkdown(path, title string, records []ResultRecord) error {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "Generated: %s\n\n", time.Now().Format(time.RFC3339))

	// Сводка по алгоритмам
	buf.WriteString("## Algorithm Comparison\n\n")
	buf.WriteString("| Algorithm | Runs | Mean Exec Cost | Mean Mig Cost | Mean Target | Mean Survival | Mean Elapsed (ms) |\n")
	buf.WriteString("|---|---|---|---|---|---|---|\n")
	for _, s := range Summarize(records) {
		fmt.Fprintf(&buf, "| %s | %d | %.4f | %.4f | %.4f | %.4f | %.1f |\n",
			s.Algorithm, s.Runs, s.MeanExecCost, s.MeanMigCost,
			s.MeanTargetOpt, s.MeanSurvivalRate, s.MeanElapsed)
	}
	buf.WriteString("\n")

	// Отдельные прогоны
	buf.WriteString("## Runs\n\n")
	buf.WriteString("| Case | Algorithm | Exec Cost | Mig Cost | Target | Survival | Migrations | Unreachable |\n")
	buf.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, r := range records {
		fmt.Fprintf(&buf, "| %s | %s | %.4f | %.4f | %.4f | %.4f | %d | %d |\n",
			r.Case, r.Algorithm, r.ExecCost, r.MigCost,
			r.TargetOpt, r.SurvivalRate, r.Migrations, r.Unreachable)
	}
	buf.WriteString("\n---\n")

	return os.WriteFile(path, buf.Bytes(), 0644)
}
