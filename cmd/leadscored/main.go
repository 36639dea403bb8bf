package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/leadscore/leadscore/pkg/configs"
	"github.com/leadscore/leadscore/pkg/features"
	"github.com/leadscore/leadscore/pkg/modelstore"
	"github.com/leadscore/leadscore/pkg/utils"
	"github.com/leadscore/leadscore/pkg/utils/echoutil"

	"github.com/leadscore/leadscore/cmd/leadscored/handlers"
)

func main() {

	configPath := flag.String("config-path", "", "service config path")
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	port := flag.Int("port", 0, "port to listen on (overrides config)")
	flag.Parse()

	e := echo.New()

	// set log
	echoutil.SetLevel(e, *loglevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}
	e.Use(echoutil.LogHandlerFunc)
	e.Use(middleware.Recover())

	// read configfile
	conf, err := configs.Load(*configPath)
	if err != nil {
		log.Fatalf("can not read configuration: %s", err)
	}
	if *port != 0 {
		conf.Port = *port
	}

	if err := features.Default().Validate(); err != nil {
		log.Fatalf("broken feature schema: %s", err)
	}

	// resolve the model before accepting traffic. a server without a
	// model can not answer /predict, so a failed resolution is fatal.
	ctx := context.Background()
	sources := utils.Map(conf.ModelSources, func(s configs.ModelSource) modelstore.Source {
		if s.Dir != "" {
			return modelstore.LocalDir{Dir: s.Dir}
		}
		return modelstore.URI{URI: s.URI, CacheDir: conf.ModelDir()}
	})
	pipeline, meta, src, err := modelstore.Resolve(ctx, sources)
	if err != nil {
		log.Fatalf("can not load a model: %s", err)
	}
	e.Logger.Infof("serving model %s (run %s) from %s", meta.ModelName, meta.RunID, src)

	// handlers
	e.GET("/", handlers.IndexHandler(conf.TemplateDir))
	e.GET("/app", handlers.DashboardHandler(conf.TemplateDir))
	e.POST("/predict", handlers.PredictHandler(pipeline))

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", conf.Port)))
}
