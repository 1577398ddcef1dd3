// Package utils opens dataset sources from disk or over HTTP.
package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

var ErrNotFound = errors.New("file not found on server")

type progressWriter struct {
	io.Writer
	total uint64
	last  uint64
	label string
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.total += uint64(n)
	if pw.total-pw.last > 5*1024*1024 { // Log every 5MB
		zap.S().Infof("%s: downloaded %d MB", pw.label, pw.total/1024/1024)
		pw.last = pw.total
	}
	return n, err
}

// IsURL reports whether location should be fetched over HTTP.
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

func get(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		if err := resp.Body.Close(); err != nil {
			zap.S().Warnw("error closing response body", "url", url, "error", err)
		}
		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}
	return resp, nil
}

// DownloadFile downloads a URL to a local path, writing through a temp
// file in the same directory so a partial download never replaces path.
func DownloadFile(ctx context.Context, client *http.Client, url, path string) error {
	resp, err := get(ctx, client, url)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			zap.S().Warnw("error closing response body", "url", url, "error", err)
		}
	}()

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()
	defer func() {
		if err := os.Remove(tmpName); err != nil && !os.IsNotExist(err) {
			zap.S().Warnw("error removing temp file", "path", tmpName, "error", err)
		}
	}()

	pw := &progressWriter{Writer: tmpFile, label: filepath.Base(path)}
	if _, err := io.Copy(pw, resp.Body); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// CacheFileName returns the local file name a URL is cached under.
func CacheFileName(url, label string) string {
	urlParts := strings.Split(strings.SplitN(url, "?", 2)[0], "/")
	fileName := urlParts[len(urlParts)-1]

	sanitized := strings.Trim(label, "[]")
	sanitized = strings.ReplaceAll(sanitized, " ", "_")
	if sanitized != "" {
		fileName = sanitized + "_" + fileName
	}
	return fileName
}

// Opener opens dataset locations. Plain paths are read from disk; http(s)
// URLs are fetched once, through CacheDir when it is set.
type Opener struct {
	Client   *http.Client
	CacheDir string
}

func (o *Opener) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return http.DefaultClient
}

func (o *Opener) Open(ctx context.Context, location, label string) (io.ReadCloser, error) {
	if !IsURL(location) {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", label, err)
		}
		return f, nil
	}

	if o.CacheDir != "" {
		if err := os.MkdirAll(o.CacheDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache dir: %w", err)
		}
		localPath := filepath.Join(o.CacheDir, CacheFileName(location, label))
		if _, err := os.Stat(localPath); os.IsNotExist(err) {
			zap.S().Infow("downloading", "dataset", label, "url", location)
			if err := DownloadFile(ctx, o.client(), location, localPath); err != nil {
				return nil, err
			}
		} else {
			zap.S().Infow("using cached file", "dataset", label, "path", localPath)
		}
		f, err := os.Open(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache: %w", err)
		}
		return f, nil
	}

	zap.S().Infow("streaming", "dataset", label, "url", location)
	resp, err := get(ctx, o.client(), location)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// ReadAll opens location and reads it fully.
func (o *Opener) ReadAll(ctx context.Context, location, label string) ([]byte, error) {
	rc, err := o.Open(ctx, location, label)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rc.Close(); err != nil {
			zap.S().Warnw("error closing source", "dataset", label, "error", err)
		}
	}()
	return io.ReadAll(rc)
}
