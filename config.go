package flipbook

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes one frame sequence and how it is played back.
//
// Sequence assets are addressed by URLForIndex when set, otherwise by
// formatting PathTemplate with index+IndexOffset:
//
//	pathTemplate: sequence/frame_%03d_delay-0.042s.webp
//	indexOffset: 6
//
// maps index 0 to sequence/frame_006_delay-0.042s.webp.
type Config struct {
	FrameCount   int    `yaml:"frameCount"`
	PathTemplate string `yaml:"pathTemplate"`
	IndexOffset  int    `yaml:"indexOffset"`

	// IntroStart is the frame position the intro starts from before easing
	// back to frame 0. Zero disables the visible reveal.
	IntroStart float64 `yaml:"introStart"`
	// IntroDuration is the intro length in seconds.
	IntroDuration float64 `yaml:"introDurationSeconds"`
	// IntroEase names a gween easing, see EaseNames.
	IntroEase string `yaml:"introEase"`

	// Smoothing is the per-tick damping factor in (0, 1]. Higher is snappier.
	Smoothing float64 `yaml:"smoothing"`
	// Epsilon is the cursor distance below which the cursor snaps to target.
	Epsilon float64 `yaml:"epsilon"`
	// MaxDeviceScale caps the device pixel ratio used for the backing store.
	MaxDeviceScale float64 `yaml:"maxDeviceScale"`

	// LoadConcurrency bounds the number of decodes in flight.
	LoadConcurrency int `yaml:"loadConcurrency"`
	// MemoryBudget is the share of available RAM the decoded sequence may
	// use before a warning is logged. Zero disables the check.
	MemoryBudget float64 `yaml:"memoryBudget"`
	// FPS is the timeline rate used by the video-scrub backend.
	FPS float64 `yaml:"fps"`

	URLForIndex func(i int) string                 `yaml:"-"`
	OnProgress  func(loaded, total int, done bool) `yaml:"-"`
	Logger      *log.Logger                        `yaml:"-"`
}

// DefaultConfig returns a Config with every tuning constant set. FrameCount
// and the asset addressing are left to the caller.
func DefaultConfig() Config {
	return Config{
		IntroStart:      1.0,
		IntroDuration:   2.5,
		IntroEase:       "outCubic",
		Smoothing:       0.12,
		Epsilon:         0.01,
		MaxDeviceScale:  2,
		LoadConcurrency: 8,
		MemoryBudget:    0.5,
		FPS:             24,
	}
}

// ParseConfig decodes YAML (or JSON) over DefaultConfig and validates it.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return ParseConfig(data)
}

// Validate checks the ranges every component relies on.
func (c *Config) Validate() error {
	switch {
	case c.FrameCount <= 0:
		return fmt.Errorf("%w: frameCount must be positive, got %d", ErrInvalidConfig, c.FrameCount)
	case c.URLForIndex == nil && c.PathTemplate == "":
		return fmt.Errorf("%w: pathTemplate or URLForIndex required", ErrInvalidConfig)
	case c.IntroStart < 0:
		return fmt.Errorf("%w: introStart must be >= 0, got %g", ErrInvalidConfig, c.IntroStart)
	case c.IntroDuration <= 0:
		return fmt.Errorf("%w: introDurationSeconds must be > 0, got %g", ErrInvalidConfig, c.IntroDuration)
	case c.Smoothing <= 0 || c.Smoothing > 1:
		return fmt.Errorf("%w: smoothing must be in (0, 1], got %g", ErrInvalidConfig, c.Smoothing)
	case c.Epsilon < 0:
		return fmt.Errorf("%w: epsilon must be >= 0, got %g", ErrInvalidConfig, c.Epsilon)
	case c.MaxDeviceScale < 1:
		return fmt.Errorf("%w: maxDeviceScale must be >= 1, got %g", ErrInvalidConfig, c.MaxDeviceScale)
	case c.LoadConcurrency <= 0:
		return fmt.Errorf("%w: loadConcurrency must be positive, got %d", ErrInvalidConfig, c.LoadConcurrency)
	case c.FPS <= 0:
		return fmt.Errorf("%w: fps must be positive, got %g", ErrInvalidConfig, c.FPS)
	}
	if _, ok := easeByName(c.IntroEase); !ok {
		return fmt.Errorf("%w: unknown introEase %q", ErrInvalidConfig, c.IntroEase)
	}
	return nil
}

// URL returns the asset URL for frame i.
func (c *Config) URL(i int) string {
	if c.URLForIndex != nil {
		return c.URLForIndex(i)
	}
	return fmt.Sprintf(c.PathTemplate, i+c.IndexOffset)
}

func (c *Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}
