package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/favisend/internal/common"
	"github.com/dmitrijs2005/favisend/internal/filex"
	"github.com/dmitrijs2005/favisend/internal/logging"
	"github.com/dmitrijs2005/favisend/internal/netx"
)

const fallbackFileName = "file"

// Downloader saves purchased files into a local directory. The URL is
// absolute and usually on another host than the API.
type Downloader struct {
	http *http.Client
	dir  string
	log  logging.Logger
}

func NewDownloader(hc *http.Client, dir string, log logging.Logger) *Downloader {
	if hc == nil {
		hc = http.DefaultClient
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Downloader{http: hc, dir: dir, log: log.With("component", "download")}
}

// Download fetches rawURL and returns the path of the saved file. name is
// the server-supplied file name; when empty the Content-Disposition header
// or the last URL segment is used, then "file". Every failure matches
// common.ErrDownloadFailed.
func (d *Downloader) Download(ctx context.Context, rawURL, name string) (string, error) {
	dir, err := filex.EnsureDir(d.dir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrDownloadFailed, err)
	}

	resp, err := netx.Get(ctx, d.http, rawURL)
	if err != nil {
		d.log.Warn(ctx, "download request failed", "url", rawURL, "error", err)
		return "", fmt.Errorf("%w: %w", common.ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if name == "" {
		name = netx.FileName(resp.Header, rawURL)
	}
	name = filex.SafeName(name, fallbackFileName)

	f, err := filex.CreateUnique(dir, name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrDownloadFailed, err)
	}

	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("%w: %w", common.ErrDownloadFailed, err)
	}

	d.log.Info(ctx, "file downloaded", "path", f.Name(), "bytes", n)
	return f.Name(), nil
}
