// Package modelstore persists trained pipelines to directories and
// loads them back, resolving the directory from an ordered list of
// candidate sources.
//
// A model directory holds:
//
//	model.gob   the serialized pipeline (preprocessing + estimator)
//	model.yaml  human-readable metadata about the training run
package modelstore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	xe "github.com/leadscore/leadscore/pkg/errors"
	"github.com/leadscore/leadscore/pkg/ml"
)

const (
	pipelineFile = "model.gob"
	metaFile     = "model.yaml"
)

// Meta describes the training run that produced a persisted model.
type Meta struct {
	ModelName string             `yaml:"model_name"`
	RunID     string             `yaml:"run_id,omitempty"`
	TrainedAt time.Time          `yaml:"trained_at"`
	Params    map[string]string  `yaml:"params,omitempty"`
	Metrics   map[string]float64 `yaml:"metrics,omitempty"`
}

// Save writes pipeline and meta into dir, replacing whatever model
// was there before. The directory is created when absent.
func Save(dir string, pipeline *ml.Pipeline, meta Meta) error {
	if err := os.RemoveAll(dir); err != nil {
		return xe.Wrap(err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return xe.WrapWithNote("can not prepare model directory", err)
	}

	out, err := os.Create(filepath.Join(dir, pipelineFile))
	if err != nil {
		return xe.Wrap(err)
	}
	defer out.Close()
	if err := pipeline.Encode(out); err != nil {
		return xe.WrapWithNote("can not serialize pipeline", err)
	}
	if err := out.Sync(); err != nil {
		return xe.Wrap(err)
	}

	content, err := yaml.Marshal(meta)
	if err != nil {
		return xe.Wrap(err)
	}
	return xe.Wrap(os.WriteFile(filepath.Join(dir, metaFile), content, 0o644))
}

// Load reads the pipeline and its metadata back from dir.
func Load(dir string) (*ml.Pipeline, Meta, error) {
	in, err := os.Open(filepath.Join(dir, pipelineFile))
	if err != nil {
		return nil, Meta{}, xe.WrapWithNote(
			fmt.Sprintf("no model found in %s", dir), err,
		)
	}
	defer in.Close()

	pipeline, err := ml.DecodePipeline(in)
	if err != nil {
		return nil, Meta{}, xe.WrapWithNote("can not deserialize pipeline", err)
	}

	meta := Meta{}
	content, err := os.ReadFile(filepath.Join(dir, metaFile))
	if err == nil {
		// metadata is informational; a missing file is tolerated,
		// a corrupt one is not.
		if err := yaml.Unmarshal(content, &meta); err != nil {
			return nil, Meta{}, xe.WrapWithNote("broken model metadata", err)
		}
	}
	return pipeline, meta, nil
}
