package modelstore

import (
	"context"
	"errors"
	"fmt"
	"os"

	xe "github.com/leadscore/leadscore/pkg/errors"
	"github.com/leadscore/leadscore/pkg/ml"
)

// Source is one candidate place a servable model may come from.
// Load either yields a ready pipeline or explains why this source
// can not serve one.
type Source interface {
	fmt.Stringer
	Load(ctx context.Context) (*ml.Pipeline, Meta, error)
}

// LocalDir serves a model already persisted on the local filesystem.
type LocalDir struct {
	Dir string
}

func (s LocalDir) String() string {
	return fmt.Sprintf("local directory %s", s.Dir)
}

func (s LocalDir) Load(_ context.Context) (*ml.Pipeline, Meta, error) {
	if info, err := os.Stat(s.Dir); err != nil || !info.IsDir() {
		return nil, Meta{}, xe.New(fmt.Sprintf("%s is not a directory", s.Dir))
	}
	return Load(s.Dir)
}

// URI fetches a packaged model from a remote location into CacheDir
// and serves it from there.
type URI struct {
	URI      string
	CacheDir string
}

func (s URI) String() string {
	return fmt.Sprintf("uri %s", s.URI)
}

func (s URI) Load(ctx context.Context) (*ml.Pipeline, Meta, error) {
	if err := Fetch(ctx, s.URI, s.CacheDir); err != nil {
		return nil, Meta{}, err
	}
	return Load(s.CacheDir)
}

// Resolve tries each source in order and returns the first model
// that loads. When every source fails, the error aggregates all
// per-source failures so the operator sees the whole picture.
func Resolve(ctx context.Context, sources []Source) (*ml.Pipeline, Meta, Source, error) {
	if len(sources) == 0 {
		return nil, Meta{}, nil, xe.New("no model sources are configured")
	}
	failures := make([]error, 0, len(sources))
	for _, src := range sources {
		pipeline, meta, err := src.Load(ctx)
		if err == nil {
			return pipeline, meta, src, nil
		}
		failures = append(failures, fmt.Errorf("%s: %w", src, err))
	}
	return nil, Meta{}, nil, xe.WrapWithNote(
		"no model source could provide a model", errors.Join(failures...),
	)
}
