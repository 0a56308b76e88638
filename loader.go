package flipbook

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"net/http"
	"strings"

	_ "golang.org/x/image/webp"
)

var errNilImage = errors.New("loader returned no image")

// Loader fetches and decodes the asset behind a frame URL. Load is called
// concurrently from preload goroutines.
type Loader interface {
	Load(ctx context.Context, url string) (image.Image, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, url string) (image.Image, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context, url string) (image.Image, error) {
	return f(ctx, url)
}

// FSLoader decodes PNG, JPEG and WebP frames from a filesystem. URLs are
// slash-separated paths relative to FS; a leading slash is ignored.
type FSLoader struct {
	FS fs.FS
}

// Load implements Loader.
func (l FSLoader) Load(ctx context.Context, url string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := strings.TrimPrefix(url, "/")
	f, err := l.FS.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return img, nil
}

// HTTPLoader fetches frames over HTTP. Relative URLs are resolved against
// BaseURL by plain concatenation.
type HTTPLoader struct {
	Client  *http.Client
	BaseURL string
}

// Load implements Loader.
func (l HTTPLoader) Load(ctx context.Context, url string) (image.Image, error) {
	if !strings.Contains(url, "://") {
		url = strings.TrimSuffix(l.BaseURL, "/") + "/" + strings.TrimPrefix(url, "/")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: status %s", url, resp.Status)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return img, nil
}
