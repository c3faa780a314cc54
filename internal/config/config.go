// Package config loads the viewer's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kestrel-edit/kestrel/internal/display/wrap"
)

// ErrUnknownWrapMode reports an unrecognized wrap.mode value.
var ErrUnknownWrapMode = errors.New("config: unknown wrap mode")

// Wrap selects the soft-wrap policy.
type Wrap struct {
	Mode   string  `yaml:"mode"`
	Column uint32  `yaml:"column"`
	Width  float64 `yaml:"width"`
}

// Diff configures diff view rendering.
type Diff struct {
	ContextLines uint32 `yaml:"context_lines"`
}

// View is the full viewer configuration.
type View struct {
	TabWidth        int  `yaml:"tab_width"`
	ShowDiagnostics bool `yaml:"show_diagnostics"`
	Wrap            Wrap `yaml:"wrap"`
	Diff            Diff `yaml:"diff"`
}

// Default returns the configuration used when no file is given.
func Default() View {
	return View{
		TabWidth:        4,
		ShowDiagnostics: true,
		Wrap:            Wrap{Mode: "editor"},
		Diff:            Diff{ContextLines: 3},
	}
}

// Load reads a YAML config file over the defaults. Unknown keys are
// rejected.
func Load(path string) (View, error) {
	v := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return v, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if _, err := v.WrapStyle(); err != nil {
		return v, err
	}
	return v, nil
}

// WrapStyle converts the configured wrap mode to an engine style.
func (v View) WrapStyle() (wrap.Style, error) {
	switch v.Wrap.Mode {
	case "", "none":
		return wrap.Style{Mode: wrap.ModeNone}, nil
	case "editor":
		return wrap.Style{Mode: wrap.ModeEditorWidth}, nil
	case "column":
		return wrap.Style{Mode: wrap.ModeFixedColumn, Column: v.Wrap.Column}, nil
	case "width":
		return wrap.Style{Mode: wrap.ModeFixedWidth, Width: v.Wrap.Width}, nil
	default:
		return wrap.Style{}, fmt.Errorf("%w: %q", ErrUnknownWrapMode, v.Wrap.Mode)
	}
}
