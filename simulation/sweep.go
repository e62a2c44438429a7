package simulation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"maps"
	"path/filepath"

	"trollmod-model/model"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
)

// Sweep runs every combination of the swept parameters Iterations times.
// With an empty dir results are only returned, never stored.
type Sweep struct {
	dir        string
	metadata   *SweepMetadata
	serializer *SimulationSerializer

	ShowProgress bool

	// Skipped counts runs whose parameters the model rejected
	Skipped int
}

func NewSweep(dir string, metadata *SweepMetadata) *Sweep {
	s := &Sweep{
		dir:      dir,
		metadata: metadata,
	}
	if dir != "" {
		s.serializer = NewSimulationSerializer(dir, metadata.UniqueName, 1)
	}
	return s
}

// Combinations expands the grid in a fixed order: names sorted, the last
// name varying fastest
func (s *Sweep) Combinations() ([]map[string]float64, error) {
	names, grid, err := s.metadata.Grid()
	if err != nil {
		return nil, err
	}

	ret := []map[string]float64{{}}
	for _, name := range names {
		next := make([]map[string]float64, 0, len(ret)*len(grid[name]))
		for _, combo := range ret {
			for _, v := range grid[name] {
				c := maps.Clone(combo)
				c[name] = v
				next = append(next, c)
			}
		}
		ret = next
	}
	return ret, nil
}

func (s *Sweep) dbPath() string {
	return filepath.Join(s.dir, s.metadata.UniqueName, "results.db")
}

// Run executes the sweep. A sweep already marked finished is read back
// from its result db instead of being rerun.
func (s *Sweep) Run(ctx context.Context) ([]*RunRecord, error) {
	if err := s.metadata.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrConfiguration, err)
	}
	combos, err := s.Combinations()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrConfiguration, err)
	}

	var db *ResultDB
	if s.serializer != nil {
		if err := s.serializer.SaveMetadata(s.metadata); err != nil {
			return nil, fmt.Errorf("failed to save sweep metadata: %w", err)
		}
		db, err = OpenResultDB(s.dbPath())
		if err != nil {
			return nil, err
		}
		defer db.Close()

		finished, err := s.serializer.IsFinished()
		if err != nil {
			return nil, err
		}
		if finished {
			log.Printf("Sweep %s already finished, loading stored runs", s.metadata.UniqueName)
			return db.GetRuns(s.metadata.UniqueName)
		}
		if err := db.DeleteSweep(s.metadata.UniqueName); err != nil {
			return nil, err
		}
	}

	total := len(combos) * s.metadata.Iterations
	var bar *progressbar.ProgressBar
	if s.ShowProgress {
		bar = progressbar.Default(int64(total), s.metadata.UniqueName)
	}

	s.Skipped = 0
	records := make([]*RunRecord, 0, total)
	for ci, combo := range combos {
		for it := 0; it < s.metadata.Iterations; it++ {
			if err := ctx.Err(); err != nil {
				return records, err
			}

			rec, err := s.runOne(ctx, ci, it, combo)
			if bar != nil {
				bar.Add(1)
			}
			if errors.Is(err, model.ErrConfiguration) {
				log.Printf("Skipping combination %d %v: %v", ci, combo, err)
				s.Skipped++
				continue
			}
			if err != nil {
				return records, err
			}

			if db != nil {
				if err := db.StoreRun(rec); err != nil {
					return records, err
				}
			}
			records = append(records, rec)
		}
	}

	if s.serializer != nil {
		if err := s.serializer.MarkFinished(total); err != nil {
			return records, err
		}
	}
	return records, nil
}

// runOne builds the scenario of one (combination, iteration) pair and runs it in memory
func (s *Sweep) runOne(ctx context.Context, combination int, iteration int, combo map[string]float64) (*RunRecord, error) {
	metadata := s.metadata.Base
	metadata.UniqueName = fmt.Sprintf("%s-%d-%d", s.metadata.UniqueName, combination, iteration)
	metadata.MaxSimulationStep = s.metadata.MaxSteps

	for name, v := range combo {
		if err := SetParam(&metadata.Params, name, v); err != nil {
			return nil, fmt.Errorf("%w: %w", model.ErrConfiguration, err)
		}
	}

	// a fixed base seed still gives every run its own stream
	if base := s.metadata.Base.Seed; base != nil {
		seed := *base + int64(combination*s.metadata.Iterations+iteration)
		metadata.Seed = &seed
	}

	scenario := NewScenario("", &metadata)
	if err := scenario.Init(); err != nil {
		return nil, err
	}
	if err := scenario.StepTillEnd(ctx); err != nil {
		return nil, err
	}

	return &RunRecord{
		RunID:       uuid.NewString(),
		Sweep:       s.metadata.UniqueName,
		Combination: combination,
		Iteration:   iteration,
		Variables:   maps.Clone(combo),
		Params:      metadata.Params.ToMap(),
		RunResult:   *scenario.Result(),
	}, nil
}

// SetCompress switches the on-disk msgpack artifacts to lz4 framing
func (s *Sweep) SetCompress(compress bool) {
	if s.serializer != nil {
		s.serializer.Compress = compress
	}
}
