package flipbook

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is wrapped by every Config validation failure.
	ErrInvalidConfig = errors.New("flipbook: invalid config")
	// ErrSurfaceUnavailable means the drawing surface cannot be used. The
	// engine logs it once and stops drawing for the rest of its life.
	ErrSurfaceUnavailable = errors.New("flipbook: surface unavailable")
	// ErrNoGeometry is returned by Mount when no GeometrySource is given.
	ErrNoGeometry = errors.New("flipbook: no geometry source")
	// ErrEmptyScript is returned for a test script without steps.
	ErrEmptyScript = errors.New("flipbook: script has no steps")
)

// AssetError records a frame that failed to load or decode. It is counted as
// loaded so readiness is never blocked by one bad asset.
type AssetError struct {
	Index int
	URL   string
	Err   error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("frame %d (%s): %v", e.Index, e.URL, e.Err)
}

func (e *AssetError) Unwrap() error { return e.Err }
