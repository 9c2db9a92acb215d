package report

// ResultRecord строка результата одного запуска алгоритма на одном случае
type ResultRecord struct {
	RunID         string
	Case          string
	Algorithm     string
	ExecCost      float64
	MigCost       float64
	TargetOpt     float64
	SurvivalRate  float64
	ElapsedMillis int64
	Migrations    int
	Unreachable   int
	Skipped       int
	MeanCapacity  float64
	CapacityStd   float64
	MeanTaskSize  float64
	TaskSizeStd   float64
}

// Summary агрегат по алгоритму
type Summary struct {
	Algorithm        string
	Runs             int
	MeanExecCost     float64
	MeanMigCost      float64
	MeanTargetOpt    float64
	MeanSurvivalRate float64
	MeanElapsed      float64
	BestTargetOpt    float64
	BestCase         string
}

// Summarize строит сводки по алгоритмам в порядке первого появления
func Summarize(records []ResultRecord) []Summary {
	index := make(map[string]int)
	var summaries []Summary

	for _, r := range records {
		i, ok := index[r.Algorithm]
		if !ok {
			i = len(summaries)
			index[r.Algorithm] = i
			summaries = append(summaries, Summary{
				Algorithm:     r.Algorithm,
				BestTargetOpt: r.TargetOpt,
				BestCase:      r.Case,
			})
		}
		s := &summaries[i]
		s.Runs++
		s.MeanExecCost += r.ExecCost
		s.MeanMigCost += r.MigCost
		s.MeanTargetOpt += r.TargetOpt
		s.MeanSurvivalRate += r.SurvivalRate
		s.MeanElapsed += float64(r.ElapsedMillis)
		if r.TargetOpt < s.BestTargetOpt {
			s.BestTargetOpt = r.TargetOpt
			s.BestCase = r.Case
		}
	}

	for i := range summaries {
		n := float64(summaries[i].Runs)
		summaries[i].MeanExecCost /= n
		summaries[i].MeanMigCost /= n
		summaries[i].MeanTargetOpt /= n
		summaries[i].MeanSurvivalRate /= n
		summaries[i].MeanElapsed /= n
	}
	return summaries
}
