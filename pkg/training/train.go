// Package training runs the end-to-end training job: ingest the raw
// campaign file, search hyperparameters, evaluate on a held-out
// split, and publish the winning model.
package training

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/leadscore/leadscore/pkg/configs"
	"github.com/leadscore/leadscore/pkg/dataset"
	xe "github.com/leadscore/leadscore/pkg/errors"
	"github.com/leadscore/leadscore/pkg/features"
	"github.com/leadscore/leadscore/pkg/ml"
	"github.com/leadscore/leadscore/pkg/modelstore"
	"github.com/leadscore/leadscore/pkg/tracking"
)

type Config struct {
	RawDataPath         string
	ModelDir            string
	TrackingRoot        string
	ExperimentName      string
	RegisteredModelName string

	Grid     ml.ParamGrid
	TestSize float64
	Folds    int
	Seed     int64
}

// FromService derives a training config from the service config.
func FromService(conf *configs.Config) Config {
	return Config{
		RawDataPath:         conf.RawDataPath,
		ModelDir:            conf.ModelDir(),
		TrackingRoot:        conf.TrackingRoot,
		ExperimentName:      conf.ExperimentName,
		RegisteredModelName: conf.RegisteredModelName,
	}
}

func (c Config) withDefaults() Config {
	if len(c.Grid.C) == 0 && len(c.Grid.Penalty) == 0 {
		c.Grid = ml.DefaultGrid()
	}
	if c.TestSize == 0 {
		c.TestSize = 0.2
	}
	if c.Folds == 0 {
		c.Folds = 5
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	return c
}

// Result summarizes a finished training run.
type Result struct {
	RunID    string
	Version  int
	Params   ml.Params
	CVScore  float64
	Test     ml.Metrics
	ModelDir string
}

// Run executes the whole training job. The run is recorded in the
// tracker even when it fails partway, with status FAILED.
func Run(ctx context.Context, conf Config) (*Result, error) {
	conf = conf.withDefaults()

	schema := features.Default()
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	log.Infof("loading raw data from %s", conf.RawDataPath)
	raw, err := dataset.Load(conf.RawDataPath, schema.RawFields())
	if err != nil {
		return nil, err
	}
	cleaned := dataset.Clean(raw, schema.Target)
	x, y, err := features.SplitFeaturesTarget(cleaned, schema)
	if err != nil {
		return nil, err
	}

	split, err := ml.StratifiedSplit(x, y, conf.TestSize, conf.Seed)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, xe.Wrap(err)
	}

	store, err := tracking.Open(conf.TrackingRoot)
	if err != nil {
		return nil, err
	}
	experiment, err := store.Experiment(conf.ExperimentName)
	if err != nil {
		return nil, err
	}
	run, err := experiment.StartRun("train")
	if err != nil {
		return nil, err
	}
	log.Infof("started run %s in experiment %s", run.ID(), conf.ExperimentName)

	result, err := trainAndPublish(ctx, conf, store, run, split)
	if err != nil {
		if endErr := run.End(tracking.StatusFailed); endErr != nil {
			log.Warnf("can not mark run %s as failed: %s", run.ID(), endErr)
		}
		return nil, err
	}
	if err := run.End(tracking.StatusFinished); err != nil {
		return nil, err
	}
	return result, nil
}

func trainAndPublish(
	ctx context.Context,
	conf Config,
	store *tracking.Store,
	run *tracking.Run,
	split *ml.Split,
) (*Result, error) {
	schema := features.Default()

	log.Infof(
		"grid search over %d x %d candidates, %d-fold cross-validation",
		len(conf.Grid.C), len(conf.Grid.Penalty), conf.Folds,
	)
	search, err := ml.GridSearchCV(
		schema.Numeric, schema.Categorical,
		conf.Grid, split.XTrain, split.YTrain, conf.Folds, conf.Seed,
	)
	if err != nil {
		return nil, err
	}
	log.Infof(
		"best params: C=%v penalty=%s (cv auc %.4f)",
		search.Params.C, search.Params.Penalty, search.CVScore,
	)
	if err := ctx.Err(); err != nil {
		return nil, xe.Wrap(err)
	}

	proba, err := search.Pipeline.PredictProba(split.XTest)
	if err != nil {
		return nil, err
	}
	metrics, err := ml.Evaluate(split.YTest, proba, 0.5)
	if err != nil {
		return nil, err
	}
	log.Infof(
		"held-out metrics: auc=%.4f f1=%.4f precision=%.4f recall=%.4f accuracy=%.4f",
		metrics.AUC, metrics.F1, metrics.Precision, metrics.Recall, metrics.Accuracy,
	)

	params := map[string]string{
		"best_C":            strconv.FormatFloat(search.Params.C, 'g', -1, 64),
		"best_penalty":      string(search.Params.Penalty),
		"num_features":      strconv.Itoa(search.Pipeline.Preprocessor.NumFeatures()),
		"num_training_rows": strconv.Itoa(split.XTrain.NumRows()),
		"num_test_rows":     strconv.Itoa(split.XTest.NumRows()),
		"cv_folds":          strconv.Itoa(conf.Folds),
		"seed":              strconv.FormatInt(conf.Seed, 10),
	}
	for key, value := range params {
		if err := run.LogParam(key, value); err != nil {
			return nil, err
		}
	}

	testMetrics := map[string]float64{
		"cv_best_score":  search.CVScore,
		"test_auc":       metrics.AUC,
		"test_f1":        metrics.F1,
		"test_precision": metrics.Precision,
		"test_recall":    metrics.Recall,
		"test_accuracy":  metrics.Accuracy,
	}
	for key, value := range testMetrics {
		if err := run.LogMetric(key, value); err != nil {
			return nil, err
		}
	}

	if err := writeConfusionMatrixPlot(
		run.ArtifactPath("confusion_matrix.png"), metrics.Confusion,
	); err != nil {
		return nil, err
	}
	if err := writeEvaluationReport(
		run.ArtifactPath("evaluation.csv"), split.YTest, proba, 0.5,
	); err != nil {
		return nil, err
	}

	err = modelstore.Save(conf.ModelDir, search.Pipeline, modelstore.Meta{
		ModelName: conf.RegisteredModelName,
		RunID:     run.ID(),
		TrainedAt: time.Now().UTC(),
		Params:    params,
		Metrics:   testMetrics,
	})
	if err != nil {
		return nil, err
	}

	version, err := store.RegisterModel(conf.RegisteredModelName, conf.ModelDir, run.ID())
	if err != nil {
		return nil, err
	}
	log.Infof(
		"registered %s version %d from %s",
		conf.RegisteredModelName, version, conf.ModelDir,
	)

	return &Result{
		RunID:    run.ID(),
		Version:  version,
		Params:   search.Params,
		CVScore:  search.CVScore,
		Test:     metrics,
		ModelDir: conf.ModelDir,
	}, nil
}
