// Package pdfsource turns the pages of a PDF into a flipbook frame sequence.
package pdfsource

import (
	"context"
	"fmt"
	"image"
	"strconv"

	"github.com/gen2brain/go-fitz"
)

// Source renders PDF pages as frames. Frame URLs are page indices.
type Source struct {
	path  string
	dpi   float64
	pages int
}

// Open reads the page count of the PDF at path. Pages are rendered at dpi.
func Open(path string, dpi float64) (*Source, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer doc.Close()
	return &Source{path: path, dpi: dpi, pages: doc.NumPage()}, nil
}

// Pages returns the number of pages, the frame count of the sequence.
func (s *Source) Pages() int {
	return s.pages
}

// URLForIndex maps frame i to its page URL.
func (s *Source) URLForIndex(i int) string {
	return strconv.Itoa(i)
}

// Load implements flipbook.Loader. Each call opens its own document handle so
// pages can render concurrently.
func (s *Source) Load(ctx context.Context, url string) (image.Image, error) {
	page, err := pageIndex(url, s.pages)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := fitz.New(s.path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", s.path, err)
	}
	defer doc.Close()

	img, err := doc.ImageDPI(page, s.dpi)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page, err)
	}
	return img, nil
}

func pageIndex(url string, pages int) (int, error) {
	page, err := strconv.Atoi(url)
	if err != nil {
		return 0, fmt.Errorf("page url %q: %w", url, err)
	}
	if page < 0 || page >= pages {
		return 0, fmt.Errorf("page %d out of range [0, %d)", page, pages)
	}
	return page, nil
}
