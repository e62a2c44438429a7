package simulation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"trollmod-model/model"
	"trollmod-model/utils"
)

// SimulationSerializer writes the artifacts of one run or sweep under baseDir/simulationID
type SimulationSerializer struct {
	baseDir          string
	simulationID     string
	maxSnapshotCount int

	// Compress frames every msgpack artifact with lz4
	Compress bool
}

func NewSimulationSerializer(baseDir string, simulationID string, maxSnapshotCount int) *SimulationSerializer {
	return &SimulationSerializer{
		baseDir:          baseDir,
		simulationID:     simulationID,
		maxSnapshotCount: maxSnapshotCount,
	}
}

func (s *SimulationSerializer) getSimulationDir() string {
	return filepath.Join(s.baseDir, s.simulationID)
}

// Exists reports whether the simulation directory is present
func (s *SimulationSerializer) Exists() bool {
	_, err := os.Stat(s.getSimulationDir())
	return !os.IsNotExist(err)
}

func (s *SimulationSerializer) ensureSimulationDir() error {
	dir := s.getSimulationDir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

var artifactSuffixes = []string{".msgpack", ".msgpack.lz4"}

func (s *SimulationSerializer) suffix() string {
	if s.Compress {
		return ".msgpack.lz4"
	}
	return ".msgpack"
}

// #region serialize

func (s *SimulationSerializer) _list(fileType string, suffixName string) ([]string, error) {
	dir := s.getSimulationDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), fileType+"-") && strings.HasSuffix(entry.Name(), suffixName) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	// timestamps are ISO 8601, so name order is time order
	sort.Strings(files)
	return files, nil
}

func (s *SimulationSerializer) _getFilePath(fileType string, suffixName string) string {
	timestamp := time.Now().UTC().Format("20060102T150405.000000000Z")
	filename := fmt.Sprintf("%s-%s%s", fileType, timestamp, suffixName)
	return filepath.Join(s.getSimulationDir(), filename)
}

func (s *SimulationSerializer) _write(fileType string, v any) error {
	if err := s.ensureSimulationDir(); err != nil {
		return err
	}

	suffix := s.suffix()
	if err := utils.WriteMsgpackFile(s._getFilePath(fileType, suffix), v); err != nil {
		return err
	}

	return s._clean(fileType, false, suffix)
}

// _latest decodes the newest file of a type into v; false if there is none.
// Files written with the other compression setting are read as a fallback.
func (s *SimulationSerializer) _latest(fileType string, v any) (bool, error) {
	if !s.Exists() {
		return false, nil
	}
	suffixes := artifactSuffixes
	if s.Compress {
		suffixes = []string{artifactSuffixes[1], artifactSuffixes[0]}
	}
	for _, suffix := range suffixes {
		files, err := s._list(fileType, suffix)
		if err != nil {
			return false, err
		}
		if len(files) == 0 {
			continue
		}
		if err := utils.ReadMsgpackFile(files[len(files)-1], v); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// _clean removes the oldest files of a type beyond maxSnapshotCount, or all of them
func (s *SimulationSerializer) _clean(fileType string, all bool, suffixName string) error {
	if !all && s.maxSnapshotCount <= 0 {
		return nil
	}

	files, err := s._list(fileType, suffixName)
	if err != nil {
		return err
	}

	toDelete := len(files)
	if !all {
		if len(files) > s.maxSnapshotCount {
			toDelete -= s.maxSnapshotCount
		} else {
			toDelete = 0
		}
	}

	for i := 0; i < toDelete; i++ {
		if err := os.Remove(files[i]); err != nil {
			return err
		}
	}

	return nil
}

// #endregion

// #region portrayal

func (s *SimulationSerializer) SavePortrayal(p *model.Portrayal) error {
	return s._write("portrayal", p)
}

// GetLatestPortrayal returns nil when no portrayal was saved
func (s *SimulationSerializer) GetLatestPortrayal() (*model.Portrayal, error) {
	p := &model.Portrayal{}
	ok, err := s._latest("portrayal", p)
	if err != nil || !ok {
		return nil, err
	}
	return p, nil
}

// #endregion

// #region result

func (s *SimulationSerializer) SaveResult(r *RunResult) error {
	return s._write("result", r)
}

func (s *SimulationSerializer) GetLatestResult() (*RunResult, error) {
	r := &RunResult{}
	ok, err := s._latest("result", r)
	if err != nil || !ok {
		return nil, err
	}
	return r, nil
}

// #endregion

// #region finished mark

type FinishMark struct {
	Step int `msgpack:"step"`
}

func (s *SimulationSerializer) MarkFinished(step int) error {
	return s._write("finished", &FinishMark{Step: step})
}

// finishedMarks lists marks written with or without compression
func (s *SimulationSerializer) finishedMarks() ([]string, error) {
	var ret []string
	for _, suffix := range artifactSuffixes {
		files, err := s._list("finished", suffix)
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		ret = append(ret, files...)
	}
	return ret, nil
}

func (s *SimulationSerializer) IsFinished() (bool, error) {
	files, err := s.finishedMarks()
	if err != nil {
		return false, err
	}
	return len(files) > 0, nil
}

// ClearFinished drops every finished mark so the next run starts over
func (s *SimulationSerializer) ClearFinished() error {
	files, err := s.finishedMarks()
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := os.Remove(f); err != nil {
			return err
		}
	}
	return nil
}

// #endregion

// #region graph

func (s *SimulationSerializer) graphPath(step int) string {
	return filepath.Join(s.getSimulationDir(), fmt.Sprintf("graph-%d%s", step, s.suffix()))
}

// SaveGraph stores the topology as it was at a tick
func (s *SimulationSerializer) SaveGraph(graph *utils.NetworkXGraph, step int) error {
	if err := s.ensureSimulationDir(); err != nil {
		return err
	}
	return utils.WriteMsgpackFile(s.graphPath(step), graph)
}

// LoadGraph returns nil when the graph of that tick was never saved
func (s *SimulationSerializer) LoadGraph(step int) (*utils.NetworkXGraph, error) {
	filePath := s.graphPath(step)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, nil
	}

	var graph utils.NetworkXGraph
	if err := utils.ReadMsgpackFile(filePath, &graph); err != nil {
		return nil, err
	}
	return &graph, nil
}

// #endregion

// SaveMetadata stores scenario or sweep metadata as indented json
func (s *SimulationSerializer) SaveMetadata(metadata any) error {
	if err := s.ensureSimulationDir(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(s.getSimulationDir(), "metadata.json"), data, 0644)
}

// LoadMetadata decodes metadata.json into metadata; false if it does not exist
func (s *SimulationSerializer) LoadMetadata(metadata any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(s.getSimulationDir(), "metadata.json"))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, metadata); err != nil {
		return false, err
	}
	return true, nil
}
