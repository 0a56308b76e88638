package flipbook

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action   string  `yaml:"action"`
	Label    string  `yaml:"label,omitempty"`
	DY       float64 `yaml:"dy,omitempty"`
	Y        float64 `yaml:"y,omitempty"`
	Duration float32 `yaml:"duration,omitempty"`
	Frames   int     `yaml:"frames,omitempty"`
}

// testScript is the top-level structure for a test script.
type testScript struct {
	Steps []testStep `yaml:"steps"`
}

// TestRunner sequences scroll input, waits and screenshots across ticks for
// automated visual checks of a playback.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a YAML or JSON test script:
//
//	steps:
//	  - {action: wait, frames: 180}
//	  - {action: screenshot, label: after-intro}
//	  - {action: scroll, dy: 2400, frames: 30}
//	  - {action: scrollTo, y: 0, duration: 1.5}
//	  - {action: jump, y: 5000}
func LoadTestScript(data []byte) (*TestRunner, error) {
	var script testScript
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: %w", ErrEmptyScript)
	}
	return &TestRunner{steps: script.Steps}, nil
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// Step advances the runner by one tick. Call it before ScrollView.Update.
func (r *TestRunner) Step(e *Engine, v *ScrollView) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if v.Pending() > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		e.Screenshot(st.Label)
	case "scroll":
		v.InjectScrollSteps(st.DY, st.Frames)
	case "scrollTo":
		v.ScrollTo(st.Y, st.Duration, nil)
	case "jump":
		v.Jump(st.Y)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this tick counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && v.Pending() == 0 {
		r.done = true
	}
}
