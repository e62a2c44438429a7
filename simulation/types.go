package simulation

import (
	"slices"

	"trollmod-model/model"

	"gonum.org/v1/gonum/stat"
)

// RunResult summarises the model reporters of one finished run
type RunResult struct {
	Steps int `msgpack:"steps" json:"steps"`
	// value at the last collected tick
	Final map[string]float64 `msgpack:"final" json:"final"`
	// mean over every collected tick, tick 0 included
	Mean map[string]float64 `msgpack:"mean" json:"mean"`
}

// NewRunResult reads the final and mean value of every model reporter
func NewRunResult(m *model.Model) *RunResult {
	dc := m.DataCollector
	r := &RunResult{
		Steps: m.CurStep,
		Final: make(map[string]float64),
		Mean:  make(map[string]float64),
	}
	for _, name := range dc.ModelReporterNames() {
		if v, ok := dc.Final(name); ok {
			r.Final[name] = v
		}
		r.Mean[name] = dc.SeriesMean(name)
	}
	return r
}

// RunRecord is one sweep run as stored in the result db
type RunRecord struct {
	RunID       string
	Sweep       string
	Combination int
	Iteration   int

	// the swept values of this run
	Variables map[string]float64
	// every model parameter of this run
	Params map[string]any

	RunResult
}

// CombinationSummary aggregates one reporter over the iterations of a combination
type CombinationSummary struct {
	Combination int
	Variables   map[string]float64
	Runs        int
	FinalMean   float64
	FinalStdDev float64
	MeanMean    float64
}

// Summarize groups records by combination, in combination order
func Summarize(records []*RunRecord, reporter string) []CombinationSummary {
	byCombination := make(map[int][]*RunRecord)
	for _, r := range records {
		byCombination[r.Combination] = append(byCombination[r.Combination], r)
	}

	keys := make([]int, 0, len(byCombination))
	for k := range byCombination {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	ret := make([]CombinationSummary, 0, len(keys))
	for _, k := range keys {
		runs := byCombination[k]
		finals := make([]float64, len(runs))
		means := make([]float64, len(runs))
		for i, r := range runs {
			finals[i] = r.Final[reporter]
			means[i] = r.Mean[reporter]
		}

		summary := CombinationSummary{
			Combination: k,
			Variables:   runs[0].Variables,
			Runs:        len(runs),
			FinalMean:   stat.Mean(finals, nil),
			MeanMean:    stat.Mean(means, nil),
		}
		if len(runs) > 1 {
			summary.FinalStdDev = stat.StdDev(finals, nil)
		}
		ret = append(ret, summary)
	}
	return ret
}
