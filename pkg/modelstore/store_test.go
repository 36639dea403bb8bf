package modelstore_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leadscore/leadscore/pkg/dataset"
	"github.com/leadscore/leadscore/pkg/ml"
	"github.com/leadscore/leadscore/pkg/modelstore"
	"github.com/leadscore/leadscore/pkg/utils/try"
)

func fittedPipeline(t *testing.T) (*ml.Pipeline, *dataset.Frame) {
	t.Helper()
	f := try.To(dataset.New(
		dataset.NumericColumn("duration", []float64{10, 20, 300, 400, 15, 350, 30, 380}),
		dataset.StringColumn("contact", []string{
			"cellular", "telephone", "cellular", "cellular",
			"telephone", "cellular", "cellular", "telephone",
		}),
	)).OrFatal(t)
	y := []float64{0, 0, 1, 1, 0, 1, 0, 1}

	p := ml.NewPipeline(
		ml.NewColumnTransformer([]string{"duration"}, []string{"contact"}),
		ml.NewLogisticRegression(1.0, ml.L2),
	)
	if err := p.Fit(f, y); err != nil {
		t.Fatal(err)
	}
	return p, f
}

func saveFixture(t *testing.T) (string, *ml.Pipeline, *dataset.Frame) {
	t.Helper()
	p, f := fittedPipeline(t)
	dir := filepath.Join(t.TempDir(), "model")
	err := modelstore.Save(dir, p, modelstore.Meta{
		ModelName: "bank_marketing_model",
		TrainedAt: time.Now().UTC(),
		Params:    map[string]string{"C": "1", "penalty": "l2"},
		Metrics:   map[string]float64{"test_auc": 0.9},
	})
	if err != nil {
		t.Fatal(err)
	}
	return dir, p, f
}

func TestSaveLoad(t *testing.T) {
	t.Run("a saved model predicts identically after loading", func(t *testing.T) {
		dir, p, f := saveFixture(t)

		loaded, meta, err := modelstore.Load(dir)
		if err != nil {
			t.Fatal(err)
		}
		if meta.ModelName != "bank_marketing_model" {
			t.Errorf("metadata lost the model name: %+v", meta)
		}
		before := try.To(p.PredictProba(f)).OrFatal(t)
		after := try.To(loaded.PredictProba(f)).OrFatal(t)
		for i := range before {
			if before[i] != after[i] {
				t.Errorf("row %d: %v != %v", i, before[i], after[i])
			}
		}
	})

	t.Run("Save replaces a previous model", func(t *testing.T) {
		dir, _, _ := saveFixture(t)
		stale := filepath.Join(dir, "leftover.bin")
		if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
			t.Fatal(err)
		}

		p, _ := fittedPipeline(t)
		if err := modelstore.Save(dir, p, modelstore.Meta{ModelName: "m"}); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(stale); !os.IsNotExist(err) {
			t.Error("stale file survived a re-save")
		}
	})

	t.Run("loading an empty directory is an error", func(t *testing.T) {
		if _, _, err := modelstore.Load(t.TempDir()); err == nil {
			t.Fatal("empty directory loaded a model")
		}
	})
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("the first loadable source wins", func(t *testing.T) {
		dir, _, f := saveFixture(t)
		sources := []modelstore.Source{
			modelstore.LocalDir{Dir: filepath.Join(t.TempDir(), "absent")},
			modelstore.LocalDir{Dir: dir},
		}

		pipeline, _, src, err := modelstore.Resolve(ctx, sources)
		if err != nil {
			t.Fatal(err)
		}
		if src.String() != sources[1].String() {
			t.Errorf("wrong source won: %s", src)
		}
		if _, err := pipeline.PredictProba(f); err != nil {
			t.Errorf("resolved pipeline can not predict: %v", err)
		}
	})

	t.Run("when all sources fail the error names each of them", func(t *testing.T) {
		missingA := filepath.Join(t.TempDir(), "a")
		missingB := filepath.Join(t.TempDir(), "b")
		_, _, _, err := modelstore.Resolve(ctx, []modelstore.Source{
			modelstore.LocalDir{Dir: missingA},
			modelstore.LocalDir{Dir: missingB},
		})
		if err == nil {
			t.Fatal("resolution succeeded with no model anywhere")
		}
		for _, dir := range []string{missingA, missingB} {
			if !strings.Contains(err.Error(), dir) {
				t.Errorf("error does not mention %s: %v", dir, err)
			}
		}
	})

	t.Run("no sources configured is an error", func(t *testing.T) {
		if _, _, _, err := modelstore.Resolve(ctx, nil); err == nil {
			t.Fatal("empty source list resolved")
		}
	})
}

func TestFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("a local model directory is copied in place", func(t *testing.T) {
		dir, _, f := saveFixture(t)
		target := filepath.Join(t.TempDir(), "served")

		if err := modelstore.Fetch(ctx, dir, target); err != nil {
			t.Fatal(err)
		}
		loaded, _, err := modelstore.Load(target)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := loaded.PredictProba(f); err != nil {
			t.Error(err)
		}
	})

	t.Run("a packaged model is unzipped", func(t *testing.T) {
		dir, _, f := saveFixture(t)
		zipPath := filepath.Join(t.TempDir(), "model.zip")
		if err := modelstore.Archive(dir, zipPath); err != nil {
			t.Fatal(err)
		}

		target := filepath.Join(t.TempDir(), "served")
		if err := modelstore.Fetch(ctx, zipPath, target); err != nil {
			t.Fatal(err)
		}
		loaded, _, err := modelstore.Load(target)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := loaded.PredictProba(f); err != nil {
			t.Error(err)
		}
	})

	t.Run("an http uri downloads and unpacks the package", func(t *testing.T) {
		dir, _, f := saveFixture(t)
		zipPath := filepath.Join(t.TempDir(), "model.zip")
		if err := modelstore.Archive(dir, zipPath); err != nil {
			t.Fatal(err)
		}
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				http.ServeFile(w, r, zipPath)
			},
		))
		defer server.Close()

		target := filepath.Join(t.TempDir(), "served")
		if err := modelstore.Fetch(ctx, server.URL+"/model.zip", target); err != nil {
			t.Fatal(err)
		}
		loaded, _, err := modelstore.Load(target)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := loaded.PredictProba(f); err != nil {
			t.Error(err)
		}
	})

	t.Run("an http error status does not leave a half-fetched model", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
		))
		defer server.Close()

		target := filepath.Join(t.TempDir(), "served")
		if err := modelstore.Fetch(ctx, server.URL+"/model.zip", target); err == nil {
			t.Fatal("404 download succeeded")
		}
	})

	t.Run("an unsupported uri is a descriptive error", func(t *testing.T) {
		err := modelstore.Fetch(ctx, "ftp://example.com/model.zip", t.TempDir())
		if err == nil {
			t.Fatal("ftp uri is accepted")
		}
	})
}

func TestArchive(t *testing.T) {
	t.Run("archiving without a trained model advises to train first", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "model.zip")
		err := modelstore.Archive(filepath.Join(t.TempDir(), "absent"), dest)
		if err == nil {
			t.Fatal("missing model directory is accepted")
		}
		if !strings.Contains(err.Error(), "train") {
			t.Errorf("error does not point at training: %v", err)
		}
	})
}
