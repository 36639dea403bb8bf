package tracking

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	xe "github.com/leadscore/leadscore/pkg/errors"
	"github.com/leadscore/leadscore/pkg/utils/fsutil"
)

type registeredVersionMeta struct {
	Name         string    `yaml:"name"`
	Version      int       `yaml:"version"`
	SourceRunID  string    `yaml:"source_run_id,omitempty"`
	RegisteredAt time.Time `yaml:"registered_at"`
}

const versionPrefix = "version-"

// RegisterModel copies the persisted model directory at srcDir into
// the registry under a stable name, as the next version. Returns the
// version number assigned.
func (s *Store) RegisterModel(name string, srcDir string, sourceRunID string) (int, error) {
	if !safeName.MatchString(name) {
		return 0, xe.New(fmt.Sprintf("invalid registered model name: %q", name))
	}
	if info, err := os.Stat(srcDir); err != nil || !info.IsDir() {
		return 0, xe.New(fmt.Sprintf("model directory %s does not exist", srcDir))
	}

	modelRoot := filepath.Join(s.root, "registry", name)
	version, err := nextVersion(modelRoot)
	if err != nil {
		return 0, err
	}

	dest := filepath.Join(modelRoot, fmt.Sprintf("%s%d", versionPrefix, version))
	if err := fsutil.CopyDir(srcDir, dest); err != nil {
		return 0, err
	}

	meta := registeredVersionMeta{
		Name:         name,
		Version:      version,
		SourceRunID:  sourceRunID,
		RegisteredAt: time.Now().UTC(),
	}
	if err := writeYAML(filepath.Join(dest, "registered.yaml"), meta); err != nil {
		return 0, err
	}
	return version, nil
}

// LatestVersion returns the highest registered version of name, or an
// error when the model was never registered.
func (s *Store) LatestVersion(name string) (int, string, error) {
	modelRoot := filepath.Join(s.root, "registry", name)
	next, err := nextVersion(modelRoot)
	if err != nil {
		return 0, "", err
	}
	if next == 1 {
		return 0, "", xe.New(fmt.Sprintf("model %s is not registered", name))
	}
	latest := next - 1
	return latest, filepath.Join(modelRoot, fmt.Sprintf("%s%d", versionPrefix, latest)), nil
}

func nextVersion(modelRoot string) (int, error) {
	entries, err := os.ReadDir(modelRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, xe.Wrap(err)
	}
	max := 0
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), versionPrefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(e.Name(), versionPrefix))
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max + 1, nil
}
