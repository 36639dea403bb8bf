// Package configs loads the service configuration from YAML and
// folds in the environment overrides for model sources.
package configs

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	xe "github.com/leadscore/leadscore/pkg/errors"
)

const (
	// EnvModelLocalPath points the server at an already-materialized
	// model directory. It is tried before every other source.
	EnvModelLocalPath = "MODEL_LOCAL_PATH"

	// EnvModelURI names a remote packaged model to fetch at startup.
	// It is tried after EnvModelLocalPath and before configured sources.
	EnvModelURI = "MODEL_URI"
)

type Config struct {
	// RawDataPath is the semicolon-separated CSV of raw campaign records.
	RawDataPath string `yaml:"raw_data_path"`

	// ModelsRoot is where trained models are persisted before registration.
	ModelsRoot string `yaml:"models_root"`

	// TrackingRoot is the experiment tracking and registry root.
	TrackingRoot string `yaml:"tracking_root"`

	// RegisteredModelName is the registry name trained models publish under.
	RegisteredModelName string `yaml:"registered_model_name"`

	// ExperimentName groups training runs in the tracker.
	ExperimentName string `yaml:"experiment_name"`

	Port int `yaml:"port"`

	// TemplateDir holds the HTML pages served at / and /app.
	TemplateDir string `yaml:"template_dir"`

	// ModelSources are candidate model locations, tried in order at
	// startup. Entries are local directories or uris Fetch accepts.
	ModelSources []ModelSource `yaml:"model_sources"`
}

type ModelSource struct {
	// Dir and URI are mutually exclusive.
	Dir string `yaml:"dir,omitempty"`
	URI string `yaml:"uri,omitempty"`
}

func Default() *Config {
	return &Config{
		RawDataPath:         "data/raw/bank-full.csv",
		ModelsRoot:          "models",
		TrackingRoot:        "mlruns",
		RegisteredModelName: "bank_marketing_model",
		ExperimentName:      "bank_marketing",
		Port:                8000,
		TemplateDir:         "templates",
		// tried in order; the fixed fallback paths cover deployments
		// that bake the model into the image outside the models root
		ModelSources: []ModelSource{
			{Dir: filepath.Join("models", "bank_marketing_model")},
			{Dir: filepath.Join("model", "bank_marketing_model")},
			{Dir: "model"},
		},
	}
}

// Load reads the YAML config at path, applies defaults for absent
// fields and prepends model sources from the environment. An empty
// path yields the defaults plus environment sources.
func Load(path string) (*Config, error) {
	conf := Default()
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, xe.WrapWithNote("can not read config file", err)
		}
		if err := yaml.Unmarshal(content, conf); err != nil {
			return nil, xe.WrapWithNote("broken config file", err)
		}
	}

	var fromEnv []ModelSource
	if dir := os.Getenv(EnvModelLocalPath); dir != "" {
		fromEnv = append(fromEnv, ModelSource{Dir: dir})
	}
	if uri := os.Getenv(EnvModelURI); uri != "" {
		fromEnv = append(fromEnv, ModelSource{URI: uri})
	}
	conf.ModelSources = append(fromEnv, conf.ModelSources...)

	return conf, conf.validate()
}

func (c *Config) validate() error {
	if c.Port <= 0 || 65535 < c.Port {
		return xe.New(fmt.Sprintf("invalid port: %d", c.Port))
	}
	for _, s := range c.ModelSources {
		if (s.Dir == "") == (s.URI == "") {
			return xe.New(fmt.Sprintf(
				"model source must set exactly one of dir or uri: %+v", s,
			))
		}
	}
	return nil
}

// ModelDir is the directory trained models are persisted to before
// they are registered.
func (c *Config) ModelDir() string {
	return filepath.Join(c.ModelsRoot, c.RegisteredModelName)
}
