package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// csvWriter обёртка для отслеживания ошибок
type csvWriter struct {
	w   *csv.Writer
	err error
}

func (cw *csvWriter) Write(record []string) {
	if cw.err != nil {
		return
	}
	cw.err = cw.w.Write(record)
}

func (cw *csvWriter) Flush() {
	if cw.err != nil {
		return
	}
	cw.w.Flush()
	cw.err = cw.w.Error()
}

func (cw *csvWriter) Error() error {
	return cw.err
}

// WriteCSV пишет строки прогонов в CSV
func WriteCSV(path string, records []ResultRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cw := &csvWriter{w: csv.NewWriter(f)}
	cw.Write(runColumns)

	for _, r := range records {
		cw.Write([]string{
			r.RunID, r.Case, r.Algorithm,
			formatFloat(r.ExecCost), formatFloat(r.MigCost),
			formatFloat(r.TargetOpt), formatFloat(r.SurvivalRate),
			strconv.FormatInt(r.ElapsedMillis, 10),
			strconv.Itoa(r.Migrations), strconv.Itoa(r.Unreachable), strconv.Itoa(r.Skipped),
			formatFloat(r.MeanCapacity), formatFloat(r.CapacityStd),
			formatFloat(r.MeanTaskSize), formatFloat(r.TaskSizeStd),
		})
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
