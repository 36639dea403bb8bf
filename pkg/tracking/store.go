// Package tracking is a filesystem-backed experiment tracker and
// model registry. One training run appends parameters, metrics and
// artifact files under a fixed tracking root; nothing is ever
// rewritten after the run ends.
//
// Layout:
//
//	<root>/experiments/<experiment>/meta.yaml
//	<root>/experiments/<experiment>/runs/<run-id>/meta.yaml
//	<root>/experiments/<experiment>/runs/<run-id>/params/<key>
//	<root>/experiments/<experiment>/runs/<run-id>/metrics/<key>
//	<root>/experiments/<experiment>/runs/<run-id>/artifacts/<file>
//	<root>/registry/<model-name>/version-<N>/...
package tracking

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	xe "github.com/leadscore/leadscore/pkg/errors"
	"github.com/leadscore/leadscore/pkg/utils/fsutil"
)

// RunStatus is the terminal state recorded in a run's meta.yaml.
type RunStatus string

const (
	StatusRunning  RunStatus = "RUNNING"
	StatusFinished RunStatus = "FINISHED"
	StatusFailed   RunStatus = "FAILED"
)

type Store struct {
	root string
}

// Open prepares the tracking root, creating it when absent.
func Open(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, xe.WrapWithNote("can not prepare tracking root", err)
	}
	return &Store{root: root}, nil
}

func (s *Store) Root() string {
	return s.root
}

type experimentMeta struct {
	Name      string    `yaml:"name"`
	CreatedAt time.Time `yaml:"created_at"`
}

var safeName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// Experiment returns the named experiment, creating it on first use.
func (s *Store) Experiment(name string) (*Experiment, error) {
	if !safeName.MatchString(name) {
		return nil, xe.New(fmt.Sprintf("invalid experiment name: %q", name))
	}
	dir := filepath.Join(s.root, "experiments", name)
	metaPath := filepath.Join(dir, "meta.yaml")

	if _, err := os.Stat(metaPath); err != nil {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, xe.Wrap(err)
		}
		meta := experimentMeta{Name: name, CreatedAt: time.Now().UTC()}
		if err := writeYAML(metaPath, meta); err != nil {
			return nil, err
		}
	}
	return &Experiment{store: s, name: name, dir: dir}, nil
}

type Experiment struct {
	store *Store
	name  string
	dir   string
}

type runMeta struct {
	RunID      string    `yaml:"run_id"`
	Name       string    `yaml:"name"`
	Experiment string    `yaml:"experiment"`
	Status     RunStatus `yaml:"status"`
	StartedAt  time.Time `yaml:"started_at"`
	EndedAt    time.Time `yaml:"ended_at,omitempty"`
}

// StartRun opens a new run directory in RUNNING state.
func (e *Experiment) StartRun(name string) (*Run, error) {
	id, err := newRunID()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(e.dir, "runs", id)
	for _, sub := range []string{"params", "metrics", "artifacts"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, xe.Wrap(err)
		}
	}

	meta := runMeta{
		RunID:      id,
		Name:       name,
		Experiment: e.name,
		Status:     StatusRunning,
		StartedAt:  time.Now().UTC(),
	}
	if err := writeYAML(filepath.Join(dir, "meta.yaml"), meta); err != nil {
		return nil, err
	}
	return &Run{id: id, dir: dir, meta: meta}, nil
}

func newRunID() (string, error) {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", xe.Wrap(err)
	}
	return fmt.Sprintf(
		"%s-%s", time.Now().UTC().Format("20060102T150405"), hex.EncodeToString(suffix),
	), nil
}

type Run struct {
	id   string
	dir  string
	meta runMeta
}

func (r *Run) ID() string {
	return r.id
}

func (r *Run) Dir() string {
	return r.dir
}

// LogParam records one immutable run parameter.
func (r *Run) LogParam(key string, value string) error {
	if !safeName.MatchString(key) {
		return xe.New(fmt.Sprintf("invalid param key: %q", key))
	}
	path := filepath.Join(r.dir, "params", key)
	return xe.Wrap(os.WriteFile(path, []byte(value+"\n"), 0o644))
}

// LogMetric records one metric value.
func (r *Run) LogMetric(key string, value float64) error {
	if !safeName.MatchString(key) {
		return xe.New(fmt.Sprintf("invalid metric key: %q", key))
	}
	path := filepath.Join(r.dir, "metrics", key)
	line := strconv.FormatFloat(value, 'g', -1, 64) + "\n"
	return xe.Wrap(os.WriteFile(path, []byte(line), 0o644))
}

// LogArtifact copies the file at src into the run's artifact
// directory under its base name.
func (r *Run) LogArtifact(src string) error {
	dest := filepath.Join(r.dir, "artifacts", filepath.Base(src))
	return fsutil.CopyFile(src, dest)
}

// ArtifactPath is where LogArtifact would place name. Callers writing
// artifacts in place use this instead of a temp file + copy.
func (r *Run) ArtifactPath(name string) string {
	return filepath.Join(r.dir, "artifacts", name)
}

// End closes the run with the given terminal status.
func (r *Run) End(status RunStatus) error {
	r.meta.Status = status
	r.meta.EndedAt = time.Now().UTC()
	return writeYAML(filepath.Join(r.dir, "meta.yaml"), r.meta)
}

// Param reads back a logged parameter.
func (r *Run) Param(key string) (string, error) {
	content, err := os.ReadFile(filepath.Join(r.dir, "params", key))
	if err != nil {
		return "", xe.Wrap(err)
	}
	return string(content), nil
}

func writeYAML(path string, v any) error {
	content, err := yaml.Marshal(v)
	if err != nil {
		return xe.Wrap(err)
	}
	return xe.Wrap(os.WriteFile(path, content, 0o644))
}
