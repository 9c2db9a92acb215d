package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// runColumns заголовки листа с прогонами
var runColumns = []string{
	"Run ID", "Case", "Algorithm",
	"Exec Cost", "Mig Cost", "Target", "Survival Rate",
	"Elapsed (ms)", "Migrations", "Unreachable", "Skipped",
	"Mean Capacity", "Capacity Std", "Mean Task Size", "Task Size Std",
}

// WriteExcel пишет книгу: лист Runs со строками прогонов и по одному
// сводному листу на алгоритм
func WriteExcel(path string, records []ResultRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	writeRunsSheet(f, headerStyle, records)
	for _, s := range Summarize(records) {
		writeSummarySheet(f, headerStyle, s, records)
	}

	f.DeleteSheet("Sheet1")
	return f.SaveAs(path)
}

func writeRunsSheet(f *excelize.File, headerStyle int, records []ResultRecord) {
	const sheet = "Runs"
	f.NewSheet(sheet)

	for i, name := range runColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, name)
	}
	last, _ := excelize.CoordinatesToCellName(len(runColumns), 1)
	f.SetCellStyle(sheet, "A1", last, headerStyle)

	for i, r := range records {
		row := i + 2
		values := []any{
			r.RunID, r.Case, r.Algorithm,
			r.ExecCost, r.MigCost, r.TargetOpt, r.SurvivalRate,
			r.ElapsedMillis, r.Migrations, r.Unreachable, r.Skipped,
			r.MeanCapacity, r.CapacityStd, r.MeanTaskSize, r.TaskSizeStd,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}
}

func writeSummarySheet(f *excelize.File, headerStyle int, s Summary, records []ResultRecord) {
	sheet := fmt.Sprintf("Summary %s", s.Algorithm)
	f.NewSheet(sheet)

	row := 1
	f.SetCellValue(sheet, cellAddr("A", row), fmt.Sprintf("Algorithm: %s", s.Algorithm))
	f.MergeCell(sheet, cellAddr("A", row), cellAddr("B", row))
	f.SetCellStyle(sheet, cellAddr("A", row), cellAddr("B", row), headerStyle)
	row += 2

	pairs := []struct {
		label string
		value any
	}{
		{"Runs", s.Runs},
		{"Mean Exec Cost", s.MeanExecCost},
		{"Mean Mig Cost", s.MeanMigCost},
		{"Mean Target", s.MeanTargetOpt},
		{"Mean Survival Rate", s.MeanSurvivalRate},
		{"Mean Elapsed (ms)", s.MeanElapsed},
		{"Best Target", s.BestTargetOpt},
		{"Best Case", s.BestCase},
	}
	for _, p := range pairs {
		f.SetCellValue(sheet, cellAddr("A", row), p.label)
		f.SetCellValue(sheet, cellAddr("B", row), p.value)
		row++
	}
	row++

	// Отдельные прогоны алгоритма
	f.SetCellValue(sheet, cellAddr("A", row), "Case")
	f.SetCellValue(sheet, cellAddr("B", row), "Target")
	f.SetCellValue(sheet, cellAddr("C", row), "Survival Rate")
	f.SetCellStyle(sheet, cellAddr("A", row), cellAddr("C", row), headerStyle)
	row++
	for _, r := range records {
		if r.Algorithm != s.Algorithm {
			continue
		}
		f.SetCellValue(sheet, cellAddr("A", row), r.Case)
		f.SetCellValue(sheet, cellAddr("B", row), r.TargetOpt)
		f.SetCellValue(sheet, cellAddr("C", row), r.SurvivalRate)
		row++
	}
}

func cellAddr(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
