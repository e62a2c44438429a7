package model

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

const (
	ReporterAverageHarm      = "Average Harm"
	ReporterAverageDeltaHarm = "Average Delta Harm"
	ReporterHarmReceived     = "Harm Received"
	ReporterHarmDelta        = "Harm Delta"

	ReporterAvgMisinfoSeen    = "Avg Misinfo Seen"
	ReporterAvgMisinfoBlocked = "Avg Misinfo Blocked"
	ReporterMisinfoSeen       = "Misinfo Seen"
	ReporterMisinfoBlocked    = "Misinfo Blocked"
)

// AgentRecord is one agent's observations at one tick, ordered like the agent reporters
type AgentRecord struct {
	Step    int
	AgentID int
	Values  []float64
}

// DataCollector records model reporters once per tick and agent reporters
// once per agent per tick
type DataCollector struct {
	modelReporters []ModelReporter
	agentReporters []AgentReporter

	Steps        []int
	ModelVars    map[string][]float64
	AgentRecords []AgentRecord
}

func NewDataCollector(modelReporters []ModelReporter, agentReporters []AgentReporter) *DataCollector {
	dc := &DataCollector{
		modelReporters: modelReporters,
		agentReporters: agentReporters,
		ModelVars:      make(map[string][]float64),
	}
	for _, r := range modelReporters {
		dc.ModelVars[r.Name] = make([]float64, 0)
	}
	return dc
}

// Collect appends one row for the model's current tick
func (dc *DataCollector) Collect(m *Model) {
	dc.Steps = append(dc.Steps, m.CurStep)

	for _, r := range dc.modelReporters {
		dc.ModelVars[r.Name] = append(dc.ModelVars[r.Name], r.Report(m))
	}

	if len(dc.agentReporters) == 0 {
		return
	}
	for _, agent := range m.Schedule.Agents {
		values := make([]float64, len(dc.agentReporters))
		for i, r := range dc.agentReporters {
			values[i] = r.Report(agent)
		}
		dc.AgentRecords = append(dc.AgentRecords, AgentRecord{
			Step:    m.CurStep,
			AgentID: agent.ID(),
			Values:  values,
		})
	}
}

// ModelReporterNames lists the model reporters in registration order
func (dc *DataCollector) ModelReporterNames() []string {
	ret := make([]string, len(dc.modelReporters))
	for i, r := range dc.modelReporters {
		ret[i] = r.Name
	}
	return ret
}

// AgentReporterNames lists the agent reporters in registration order
func (dc *DataCollector) AgentReporterNames() []string {
	ret := make([]string, len(dc.agentReporters))
	for i, r := range dc.agentReporters {
		ret[i] = r.Name
	}
	return ret
}

// ModelSeries returns a copy of one model reporter's time series
func (dc *DataCollector) ModelSeries(name string) []float64 {
	return slices.Clone(dc.ModelVars[name])
}

// Final returns the latest value of a model reporter
func (dc *DataCollector) Final(name string) (float64, bool) {
	series := dc.ModelVars[name]
	if len(series) == 0 {
		return 0, false
	}
	return series[len(series)-1], true
}

// SeriesMean averages a model reporter over every collected tick
func (dc *DataCollector) SeriesMean(name string) float64 {
	series := dc.ModelVars[name]
	if len(series) == 0 {
		return 0
	}
	return stat.Mean(series, nil)
}

// AgentSeries returns one agent's values of an agent reporter, one per tick
func (dc *DataCollector) AgentSeries(name string, agentID int) []float64 {
	idx := slices.Index(dc.AgentReporterNames(), name)
	if idx < 0 {
		return nil
	}
	var ret []float64
	for _, rec := range dc.AgentRecords {
		if rec.AgentID == agentID {
			ret = append(ret, rec.Values[idx])
		}
	}
	return ret
}
