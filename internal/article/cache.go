package article

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	cacheEnvVar        = "QRGANIZE_CACHE_DIR"
	cacheSubdir        = "qrganize/pages"
	cacheTTL           = 24 * time.Hour
	partialSuffix      = ".part"
	metaSuffix         = ".meta"
	defaultHTTPTimeout = 90 * time.Second
)

// pageCache stores downloaded pages and PDFs on disk so repeated
// summarize attempts against the same URL do not re-fetch.
type pageCache struct {
	dir    string
	client *http.Client
}

type pageCacheMeta struct {
	URL          string    `json:"url"`
	ContentType  string    `json:"contentType"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"lastModified"`
	CachedAt     time.Time `json:"cachedAt"`
	Size         int64     `json:"size"`
}

func newPageCache(client *http.Client) (*pageCache, error) {
	dir := os.Getenv(cacheEnvVar)
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = filepath.Join(os.TempDir(), "qrganize-cache")
		}
		dir = filepath.Join(base, cacheSubdir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &pageCache{dir: dir, client: client}, nil
}

// Fetch returns the on-disk path of the page plus its content type,
// revalidating with ETag/Last-Modified when the cached copy is stale.
func (c *pageCache) Fetch(ctx context.Context, pageURL string) (string, string, error) {
	key := cacheKey(pageURL)
	pagePath, metaPath, partialPath := c.pathsFor(key)

	meta, _ := readMeta(metaPath)
	if info, err := os.Stat(pagePath); err == nil && time.Since(info.ModTime()) < cacheTTL && info.Size() > 0 {
		return pagePath, meta.ContentType, nil
	}

	info, _ := os.Stat(pagePath)
	contentType, err := c.download(ctx, pageURL, pagePath, metaPath, partialPath, meta, info)
	if err == nil {
		return pagePath, contentType, nil
	}
	// A stale copy beats a failed refresh.
	if info != nil && info.Size() > 0 {
		return pagePath, meta.ContentType, nil
	}
	return "", "", err
}

func (c *pageCache) download(ctx context.Context, pageURL, pagePath, metaPath, partialPath string, meta pageCacheMeta, current os.FileInfo) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf;q=0.9,*/*;q=0.8")
	if current != nil && current.Size() > 0 {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		if current != nil && current.Size() > 0 {
			meta.CachedAt = time.Now().UTC()
			writeMeta(metaPath, meta)
			return meta.ContentType, nil
		}
		return c.download(ctx, pageURL, pagePath, metaPath, partialPath, pageCacheMeta{}, nil)
	case http.StatusOK:
		return c.saveBody(resp, pagePath, metaPath, partialPath)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("page download failed: %s (%s)", resp.Status, string(body))
	}
}

func (c *pageCache) saveBody(resp *http.Response, pagePath, metaPath, partialPath string) (string, error) {
	file, err := os.OpenFile(partialPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(partialPath, pagePath); err != nil {
		return "", err
	}

	meta := pageCacheMeta{
		URL:          resp.Request.URL.String(),
		ContentType:  resp.Header.Get("Content-Type"),
		ETag:         resp.Header.Get("Etag"),
		LastModified: resp.Header.Get("Last-Modified"),
		CachedAt:     time.Now().UTC(),
	}
	if info, err := os.Stat(pagePath); err == nil {
		meta.Size = info.Size()
	}
	if err := writeMeta(metaPath, meta); err != nil {
		return "", err
	}
	return meta.ContentType, nil
}

func (c *pageCache) pathsFor(key string) (string, string, string) {
	return filepath.Join(c.dir, key+".page"), filepath.Join(c.dir, key+metaSuffix), filepath.Join(c.dir, key+partialSuffix)
}

func cacheKey(pageURL string) string {
	sum := sha1.Sum([]byte(pageURL))
	return hex.EncodeToString(sum[:])
}

func readMeta(path string) (pageCacheMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pageCacheMeta{}, err
	}
	var meta pageCacheMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return pageCacheMeta{}, err
	}
	return meta, nil
}

func writeMeta(path string, meta pageCacheMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
