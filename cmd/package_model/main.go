// Command package_model zips a trained model directory into a single
// archive that the server can fetch over http(s), wasbs or from disk.
package main

import (
	"flag"
	"log"

	"github.com/leadscore/leadscore/pkg/configs"
	"github.com/leadscore/leadscore/pkg/modelstore"
)

func main() {

	configPath := flag.String("config-path", "", "service config path")
	modelDir := flag.String("model-dir", "", "model directory to package (overrides config)")
	output := flag.String("output", "model.zip", "where to write the package")
	flag.Parse()

	conf, err := configs.Load(*configPath)
	if err != nil {
		log.Fatalf("can not read configuration: %s", err)
	}

	dir := conf.ModelDir()
	if *modelDir != "" {
		dir = *modelDir
	}

	if err := modelstore.Archive(dir, *output); err != nil {
		log.Fatalf("can not package %s: %s", dir, err)
	}
	log.Printf("packaged %s into %s", dir, *output)
}
