package configs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leadscore/leadscore/pkg/configs"
	"github.com/leadscore/leadscore/pkg/utils/try"
)

func TestLoad(t *testing.T) {
	t.Run("an empty path yields the defaults", func(t *testing.T) {
		conf := try.To(configs.Load("")).OrFatal(t)
		if conf.Port != 8000 {
			t.Errorf("want default port 8000, got %d", conf.Port)
		}
		if conf.RegisteredModelName != "bank_marketing_model" {
			t.Errorf("unexpected default model name: %s", conf.RegisteredModelName)
		}
		want := []string{
			filepath.Join("models", "bank_marketing_model"),
			filepath.Join("model", "bank_marketing_model"),
			"model",
		}
		if len(conf.ModelSources) != len(want) {
			t.Fatalf("unexpected default model sources: %+v", conf.ModelSources)
		}
		for i, dir := range want {
			if conf.ModelSources[i].Dir != dir {
				t.Errorf("source %d: want %s, got %+v", i, dir, conf.ModelSources[i])
			}
		}
	})

	t.Run("file values override the defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
port: 9090
raw_data_path: /data/bank.csv
model_sources:
  - dir: /srv/model
  - uri: https://example.com/model.zip
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		conf := try.To(configs.Load(path)).OrFatal(t)
		if conf.Port != 9090 {
			t.Errorf("want port 9090, got %d", conf.Port)
		}
		if conf.RawDataPath != "/data/bank.csv" {
			t.Errorf("want overridden raw data path, got %s", conf.RawDataPath)
		}
		if len(conf.ModelSources) != 2 ||
			conf.ModelSources[0].Dir != "/srv/model" ||
			conf.ModelSources[1].URI != "https://example.com/model.zip" {
			t.Errorf("unexpected model sources: %+v", conf.ModelSources)
		}
		// fields absent from the file keep their defaults
		if conf.RegisteredModelName != "bank_marketing_model" {
			t.Errorf("default lost: %s", conf.RegisteredModelName)
		}
	})

	t.Run("environment sources are tried before configured ones", func(t *testing.T) {
		t.Setenv(configs.EnvModelLocalPath, "/env/model")
		t.Setenv(configs.EnvModelURI, "https://example.com/env.zip")

		conf := try.To(configs.Load("")).OrFatal(t)
		if len(conf.ModelSources) != 5 {
			t.Fatalf("want 2 env + 3 default sources, got %+v", conf.ModelSources)
		}
		if conf.ModelSources[0].Dir != "/env/model" {
			t.Errorf("MODEL_LOCAL_PATH is not first: %+v", conf.ModelSources)
		}
		if conf.ModelSources[1].URI != "https://example.com/env.zip" {
			t.Errorf("MODEL_URI is not second: %+v", conf.ModelSources)
		}
	})

	t.Run("a missing config file is an error", func(t *testing.T) {
		if _, err := configs.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Fatal("missing file is accepted")
		}
	})

	t.Run("a source with both dir and uri is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
model_sources:
  - dir: /srv/model
    uri: https://example.com/model.zip
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := configs.Load(path); err == nil {
			t.Fatal("ambiguous source is accepted")
		}
	})

	t.Run("an out-of-range port is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("port: 70000\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := configs.Load(path); err == nil {
			t.Fatal("port 70000 is accepted")
		}
	})
}

func TestModelDir(t *testing.T) {
	conf := configs.Default()
	want := filepath.Join("models", "bank_marketing_model")
	if got := conf.ModelDir(); got != want {
		t.Errorf("want %s, got %s", want, got)
	}
}
