// Package netx has helpers for plain HTTP transfers outside the API.
package netx

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
)

// Get fetches an absolute URL. The caller must close the body of a
// returned response; any non-200 status is an error.
func Get(ctx context.Context, hc *http.Client, rawURL string) (*http.Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("url %q is not absolute", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("download failed: %s; body: %s", resp.Status, string(b))
	}
	return resp, nil
}

// FileName returns the name from a Content-Disposition header, or the last
// path segment of rawURL, or "".
func FileName(header http.Header, rawURL string) string {
	if cd := header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
			return params["filename"]
		}
	}
	return LastSegment(rawURL)
}

// LastSegment returns the unescaped last path segment of rawURL.
func LastSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	seg := path.Base(u.Path)
	if seg == "/" || seg == "." {
		return ""
	}
	return seg
}
