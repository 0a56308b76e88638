// Package ffmpeg extracts still frames from a video with the ffmpeg CLI.
package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Pattern is the file name pattern of extracted frames. ffmpeg numbers them
// from 1, so the flipbook IndexOffset for these files is 1.
const Pattern = "frame_%04d.png"

// Args returns the ffmpeg arguments that sample input at fps frames per
// second into outDir.
func Args(input, outDir string, fps float64) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", input,
		"-vf", fmt.Sprintf("fps=%g", fps),
		filepath.Join(outDir, Pattern),
	}
}

// Extract writes the frames of input into outDir and returns how many were
// written.
func Extract(ctx context.Context, input, outDir string, fps float64) (int, error) {
	if fps <= 0 {
		return 0, fmt.Errorf("extract %s: fps must be positive, got %g", input, fps)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("extract %s: %w", input, err)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", Args(input, outDir, fps)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffmpeg %s: %w: %s", input, err, strings.TrimSpace(string(out)))
	}
	return CountFrames(outDir)
}

// CountFrames counts the extracted frame files in dir.
func CountFrames(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "frame_") && strings.HasSuffix(e.Name(), ".png") {
			n++
		}
	}
	return n, nil
}
