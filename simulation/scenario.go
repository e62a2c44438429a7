package simulation

import (
	"context"
	"fmt"
	"log"

	"trollmod-model/model"
	"trollmod-model/utils"

	"github.com/schollz/progressbar/v3"
)

// Scenario runs one configuration to MaxSimulationStep. With an empty dir
// nothing is written to disk.
type Scenario struct {
	metadata   *ScenarioMetadata
	model      *model.Model
	serializer *SimulationSerializer

	// ShowProgress draws a progress bar on stderr
	ShowProgress bool
	// EventHook, if set, receives every model event
	EventHook func(*model.EventRecord)
}

func NewScenario(dir string, metadata *ScenarioMetadata) *Scenario {
	s := &Scenario{metadata: metadata}
	if dir != "" {
		s.serializer = NewSimulationSerializer(dir, metadata.UniqueName, 1)
	}
	return s
}

// Init builds the topology and the model, then writes metadata and the graph
func (s *Scenario) Init() error {
	if s.metadata.MaxSimulationStep < 0 {
		return fmt.Errorf("%w: max simulation step %d is negative", model.ErrConfiguration, s.metadata.MaxSimulationStep)
	}

	m, err := model.NewModel(&s.metadata.Params, s.EventHook)
	if err != nil {
		return err
	}
	s.model = m

	if s.serializer == nil {
		return nil
	}

	if err := s.serializer.ClearFinished(); err != nil {
		return fmt.Errorf("failed to clear finished mark: %w", err)
	}
	if err := s.serializer.SaveMetadata(s.metadata); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}
	if err := s.serializer.SaveGraph(utils.SerializeGraph(m.Graph), m.CurStep); err != nil {
		return fmt.Errorf("failed to save graph: %w", err)
	}

	return nil
}

// Model returns nil before Init
func (s *Scenario) Model() *model.Model {
	return s.model
}

func (s *Scenario) Step() {
	s.model.Step()
}

// IsFinished reports whether a previous run of this scenario completed
func (s *Scenario) IsFinished() bool {
	if s.serializer == nil {
		return false
	}
	finished, err := s.serializer.IsFinished()
	if err != nil {
		log.Printf("Failed to read finished mark: %v", err)
	}
	return finished
}

// StepTillEnd steps until MaxSimulationStep. ctx is checked between ticks,
// never inside one.
func (s *Scenario) StepTillEnd(ctx context.Context) error {
	if s.model == nil {
		return fmt.Errorf("scenario %s is not initialized", s.metadata.UniqueName)
	}

	maxStep := s.metadata.MaxSimulationStep

	var bar *progressbar.ProgressBar
	if s.ShowProgress {
		bar = progressbar.Default(int64(maxStep), s.metadata.UniqueName)
		bar.Set(s.model.CurStep)
	}

	for s.model.CurStep < maxStep {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Step()
		if bar != nil {
			bar.Set(s.model.CurStep)
		}
	}

	return s.finish()
}

func (s *Scenario) finish() error {
	if s.serializer == nil {
		return nil
	}

	if err := s.serializer.SaveResult(s.Result()); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	if err := s.serializer.SavePortrayal(s.model.Portrayal()); err != nil {
		return fmt.Errorf("failed to save portrayal: %w", err)
	}
	return s.serializer.MarkFinished(s.model.CurStep)
}

// LoadResult returns the result saved by a finished run, nil if there is none
func (s *Scenario) LoadResult() (*RunResult, error) {
	if s.serializer == nil {
		return nil, nil
	}
	return s.serializer.GetLatestResult()
}

// Result summarises the model reporters collected so far
func (s *Scenario) Result() *RunResult {
	return NewRunResult(s.model)
}

// SetCompress switches the on-disk msgpack artifacts to lz4 framing
func (s *Scenario) SetCompress(compress bool) {
	if s.serializer != nil {
		s.serializer.Compress = compress
	}
}
