// Command setup_model materializes a packaged model into a local
// directory ahead of serving. It is the offline counterpart of the
// server's startup fetch, for deployments that bake the model into
// an image or a shared volume.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/leadscore/leadscore/pkg/configs"
	"github.com/leadscore/leadscore/pkg/modelstore"
)

func main() {

	configPath := flag.String("config-path", "", "service config path")
	modelURI := flag.String("model-uri", "", "model to fetch (defaults to $MODEL_URI)")
	targetDir := flag.String("target-dir", "", "where to materialize the model (defaults to the configured model dir)")
	flag.Parse()

	conf, err := configs.Load(*configPath)
	if err != nil {
		log.Fatalf("can not read configuration: %s", err)
	}

	uri := *modelURI
	if uri == "" {
		uri = os.Getenv(configs.EnvModelURI)
	}
	if uri == "" {
		log.Printf("no model uri given. nothing to set up")
		return
	}

	target := *targetDir
	if target == "" {
		target = conf.ModelDir()
	}

	if err := modelstore.Fetch(context.Background(), uri, target); err != nil {
		log.Fatalf("can not fetch %s: %s", uri, err)
	}
	if _, _, err := modelstore.Load(target); err != nil {
		log.Fatalf("fetched %s but it does not hold a loadable model: %s", uri, err)
	}
	log.Printf("model from %s is ready at %s", uri, target)
}
