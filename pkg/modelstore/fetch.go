package modelstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"

	xe "github.com/leadscore/leadscore/pkg/errors"
	"github.com/leadscore/leadscore/pkg/utils/archive"
	"github.com/leadscore/leadscore/pkg/utils/fsutil"
)

// Fetch materializes the model behind uri into targetDir, replacing
// its previous contents. Supported forms:
//
//   - http:// and https:// URLs of a packaged (zipped) model
//   - wasbs:// Azure Blob Storage URLs of a packaged model
//   - local paths, either a model directory or a .zip package
func Fetch(ctx context.Context, uri string, targetDir string) error {
	switch {
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		return fetchHTTP(ctx, uri, targetDir)
	case strings.HasPrefix(uri, "wasbs://"):
		return fetchAzureBlob(ctx, uri, targetDir)
	}

	info, err := os.Stat(uri)
	if err != nil {
		return xe.WrapWithNote(fmt.Sprintf("unsupported model uri: %s", uri), err)
	}
	if info.IsDir() {
		return fsutil.ReplaceDir(uri, targetDir)
	}
	if strings.HasSuffix(uri, ".zip") {
		return unpack(uri, targetDir)
	}
	return xe.New(fmt.Sprintf(
		"model uri %s is neither a directory nor a .zip package", uri,
	))
}

func fetchHTTP(ctx context.Context, uri string, targetDir string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return xe.Wrap(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return xe.WrapWithNote(fmt.Sprintf("can not download %s", uri), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return xe.New(fmt.Sprintf("downloading %s: status %s", uri, resp.Status))
	}
	return unpackStream(resp.Body, targetDir)
}

func fetchAzureBlob(ctx context.Context, uri string, targetDir string) error {
	blobURL, err := wasbsToHTTPS(uri)
	if err != nil {
		return err
	}
	client, err := blob.NewClientWithNoCredential(blobURL, nil)
	if err != nil {
		return xe.Wrap(err)
	}
	resp, err := client.DownloadStream(ctx, nil)
	if err != nil {
		return xe.WrapWithNote(fmt.Sprintf("can not download %s", uri), err)
	}
	defer resp.Body.Close()
	return unpackStream(resp.Body, targetDir)
}

// wasbsToHTTPS rewrites wasbs://<container>@<account-host>/<path>
// into the https form the blob endpoint expects.
func wasbsToHTTPS(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", xe.Wrap(err)
	}
	container := u.User.Username()
	if container == "" || u.Host == "" || u.Path == "" {
		return "", xe.New(fmt.Sprintf(
			"broken wasbs uri %s: want wasbs://<container>@<account>.blob.core.windows.net/<path>", uri,
		))
	}
	return fmt.Sprintf("https://%s/%s%s", u.Host, container, u.Path), nil
}

// unpackStream spools the zip stream to disk first. archive extraction
// needs random access, which a network body can not give.
func unpackStream(r io.Reader, targetDir string) error {
	tmp, err := os.CreateTemp("", "model-*.zip")
	if err != nil {
		return xe.Wrap(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return xe.Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		return xe.Wrap(err)
	}
	return unpack(tmp.Name(), targetDir)
}

func unpack(zipPath string, targetDir string) error {
	if err := os.RemoveAll(targetDir); err != nil {
		return xe.Wrap(err)
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return xe.Wrap(err)
	}
	return archive.Unzip(zipPath, targetDir)
}

// Archive packages the model directory at dir into a zip at dest,
// ready for distribution over any of the uri schemes Fetch accepts.
func Archive(dir string, dest string) error {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return xe.New(fmt.Sprintf(
			"model directory %s does not exist. train a model first", dir,
		))
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return xe.Wrap(err)
	}
	out, err := os.Create(dest)
	if err != nil {
		return xe.Wrap(err)
	}
	defer out.Close()
	if err := archive.ZipDir(dir, out); err != nil {
		return err
	}
	return xe.Wrap(out.Sync())
}
