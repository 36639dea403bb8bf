// Command train_model runs the whole training job: it ingests the raw
// campaign file, searches hyperparameters with cross-validation,
// evaluates on a held-out split, records the run and registers the
// winning model.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/leadscore/leadscore/pkg/configs"
	"github.com/leadscore/leadscore/pkg/training"
)

func main() {

	configPath := flag.String("config-path", "", "service config path")
	rawDataPath := flag.String("raw-data", "", "raw campaign CSV (overrides config)")
	experimentName := flag.String("experiment-name", "", "tracking experiment name (overrides config)")
	flag.Parse()

	conf, err := configs.Load(*configPath)
	if err != nil {
		log.Fatalf("can not read configuration: %s", err)
	}

	trainConf := training.FromService(conf)
	if *rawDataPath != "" {
		trainConf.RawDataPath = *rawDataPath
	}
	if *experimentName != "" {
		trainConf.ExperimentName = *experimentName
	}

	result, err := training.Run(context.Background(), trainConf)
	if err != nil {
		log.Fatalf("training failed: %s", err)
	}

	log.Printf(
		"run %s: registered %s version %d (C=%v penalty=%s, cv auc %.4f, test auc %.4f)",
		result.RunID, trainConf.RegisteredModelName, result.Version,
		result.Params.C, result.Params.Penalty, result.CVScore, result.Test.AUC,
	)
}
