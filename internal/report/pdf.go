package report

import (
	"fmt"
	"os"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// Стили
var (
	headerBgColor = &props.Color{Red: 44, Green: 62, Blue: 80}    // #2c3e50
	darkGrayColor = &props.Color{Red: 127, Green: 140, Blue: 141} // #7f8c8d

	titleStyle = props.Text{
		Size:  20,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: headerBgColor,
	}

	h2Style = props.Text{
		Size:  14,
		Style: fontstyle.Bold,
		Color: headerBgColor,
		Top:   4,
	}

	cellStyle = props.Text{
		Size: 9,
	}

	cellBoldStyle = props.Text{
		Size:  9,
		Style: fontstyle.Bold,
	}

	smallStyle = props.Text{
		Size:  8,
		Color: darkGrayColor,
	}
)

// WritePDF пишет сводку по алгоритмам в PDF
func WritePDF(path, title string, records []ResultRecord) error {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	m.AddRow(15,
		text.NewCol(12, title, titleStyle),
	)
	m.AddRow(5,
		line.NewCol(12),
	)
	m.AddRow(6,
		text.NewCol(12, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04:05")), smallStyle),
	)

	m.AddRow(10,
		text.NewCol(12, "Algorithm Comparison", h2Style),
	)
	m.AddRow(7,
		text.NewCol(3, "Algorithm", cellBoldStyle),
		text.NewCol(1, "Runs", cellBoldStyle),
		text.NewCol(3, "Mean Target", cellBoldStyle),
		text.NewCol(3, "Mean Survival", cellBoldStyle),
		text.NewCol(2, "Best Case", cellBoldStyle),
	)
	for _, s := range Summarize(records) {
		m.AddRow(6,
			text.NewCol(3, s.Algorithm, cellStyle),
			text.NewCol(1, fmt.Sprintf("%d", s.Runs), cellStyle),
			text.NewCol(3, fmt.Sprintf("%.4f", s.MeanTargetOpt), cellStyle),
			text.NewCol(3, fmt.Sprintf("%.4f", s.MeanSurvivalRate), cellStyle),
			text.NewCol(2, s.BestCase, cellStyle),
		)
	}

	m.AddRow(5,
		line.NewCol(12),
	)
	m.AddRow(6,
		text.NewCol(12, fmt.Sprintf("%d runs total", len(records)), smallStyle),
	)

	doc, err := m.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate PDF: %w", err)
	}
	return os.WriteFile(path, doc.GetBytes(), 0644)
}
