package composer

import (
	"encoding/json"
	"fmt"
)

// scriptStep is a single action in a script. Coordinates are viewport
// pixels for pointer actions and model units for layer actions.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	Text   string  `json:"text,omitempty"`
	Source string  `json:"source,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

type script struct {
	Steps []scriptStep `json:"steps"`
}

var knownActions = map[string]bool{
	"snapshot":  true,
	"click":     true,
	"drag":      true,
	"wait":      true,
	"leave":     true,
	"add_text":  true,
	"add_image": true,
	"nudge":     true,
	"deselect":  true,
	"resize":    true,
	"remove":    true,
}

// ScriptRunner sequences injected input, layer edits and snapshots across
// ticks for automated visual checks. Attach it with Editor.SetScriptRunner.
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a JSON script of the form {"steps": [...]}.
func LoadScript(jsonData []byte) (*ScriptRunner, error) {
	var sc script
	if err := json.Unmarshal(jsonData, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range sc.Steps {
		if !knownActions[st.Action] {
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &ScriptRunner{steps: sc.Steps}, nil
}

// Done reports whether every step has run.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// step advances the runner by one tick. Called from Editor.Update.
func (r *ScriptRunner) step(e *Editor) {
	if r.done {
		return
	}
	// Wait for pending injections and nudges to drain before advancing.
	if e.Controller.PendingInjections() > 0 || e.Controller.Nudging() {
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
	case "snapshot":
		e.RequestSnapshot(st.Label)
	case "click":
		e.Controller.InjectClick(st.X, st.Y)
	case "drag":
		e.Controller.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "leave":
		e.Controller.InjectLeave()
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this tick counts as one
		}
	case "add_text":
		e.Session.AddTextLayer(st.Text, scriptLayerOptions(st)...)
	case "add_image":
		e.Session.AddImageLayer(st.Source, scriptLayerOptions(st)...)
	case "nudge":
		e.Controller.Nudge(st.X, st.Y)
	case "deselect":
		e.Session.ClearSelection()
	case "resize":
		e.Resize(st.Width, st.Height)
	case "remove":
		if id, ok := e.Session.SelectedLayerID(); ok {
			e.Session.RemoveLayer(id)
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 &&
		e.Controller.PendingInjections() == 0 && !e.Controller.Nudging() {
		r.done = true
	}
}

func scriptLayerOptions(st scriptStep) []LayerOption {
	opts := []LayerOption{WithPosition(Position{Top: st.Y, Left: st.X})}
	if st.Width > 0 && st.Height > 0 {
		opts = append(opts, WithDimension(Dimension{Width: st.Width, Height: st.Height}))
	}
	return opts
}
