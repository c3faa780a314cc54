// Package main is the entry point for the kestrel-view pager.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/kestrel-edit/kestrel/internal/config"
	"github.com/kestrel-edit/kestrel/internal/display/diff"
	"github.com/kestrel-edit/kestrel/internal/display/folding"
	"github.com/kestrel-edit/kestrel/internal/display/screen"
	"github.com/kestrel-edit/kestrel/internal/display/wrap"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

type options struct {
	ConfigPath string
	DiffPath   string
	File       string
}

func run() int {
	opts := parseFlags()

	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	text := ""
	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		text = string(data)
	}

	v, err := newViewer(text, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if opts.DiffPath != "" {
		data, err := os.ReadFile(opts.DiffPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if err := v.setCounterpart(string(data)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	term, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := term.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to init terminal: %v\n", err)
		return 1
	}
	defer term.Fini()

	if err := v.loop(term); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.DiffPath, "diff", "", "Counterpart file for diff view")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "kestrel-view - folding, wrapping file viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: kestrel-view [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys: arrows/hjkl move, z fold, u unfold, q quit\n")
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("kestrel-view %s (%s)\n", version, commit)
		os.Exit(0)
	}
	if args := flag.Args(); len(args) > 0 {
		opts.File = args[0]
	}
	return opts
}

// viewer owns the engine state and the cursor for one viewed document.
type viewer struct {
	lines   *screen.Lines
	cfg     config.View
	metrics wrap.Monospace

	cursor int64
	aff    screen.Affinity
	sticky *screen.ColPosition
	top    float64
}

func newViewer(text string, cfg config.View) (*viewer, error) {
	style, err := cfg.WrapStyle()
	if err != nil {
		return nil, err
	}
	metrics := wrap.Monospace{CellWidth: 1, TabWidth: cfg.TabWidth}
	ln := screen.New(text,
		screen.WithWrapStyle(style),
		screen.WithLineHeight(1),
		screen.WithMetrics(metrics),
	)
	ln.Phantoms().SetShowDiagnostics(cfg.ShowDiagnostics)
	return &viewer{lines: ln, cfg: cfg, metrics: metrics}, nil
}

// setCounterpart switches to diff view against another file version.
func (v *viewer) setCounterpart(text string) error {
	left := strings.Split(strings.ReplaceAll(v.lines.Buffer().Text(), "\r\n", "\n"), "\n")
	right := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	overlay, err := diff.FromLines(left, right, v.cfg.Diff.ContextLines)
	if err != nil {
		return err
	}
	v.lines.SetDiffOverlay(overlay)
	return nil
}

func (v *viewer) loop(term tcell.Screen) error {
	for {
		v.render(term)
		switch ev := term.PollEvent().(type) {
		case *tcell.EventResize:
			term.Sync()
		case *tcell.EventKey:
			quit, err := v.handleKey(ev, term)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

func (v *viewer) handleKey(ev *tcell.EventKey, term tcell.Screen) (bool, error) {
	_, height := term.Size()
	page := height - 1
	if page < 1 {
		page = 1
	}

	key := ev.Key()
	r := ev.Rune()
	switch {
	case key == tcell.KeyEscape || key == tcell.KeyCtrlC || r == 'q':
		return true, nil
	case key == tcell.KeyLeft || r == 'h':
		off, aff, err := v.lines.MoveLeft(v.cursor, v.aff)
		if err != nil {
			return false, err
		}
		v.cursor, v.aff, v.sticky = off, aff, nil
	case key == tcell.KeyRight || r == 'l':
		off, aff, err := v.lines.MoveRight(v.cursor, v.aff)
		if err != nil {
			return false, err
		}
		v.cursor, v.aff, v.sticky = off, aff, nil
	case key == tcell.KeyUp || r == 'k':
		return false, v.vertical(-1, 1)
	case key == tcell.KeyDown || r == 'j':
		return false, v.vertical(1, 1)
	case key == tcell.KeyPgUp:
		return false, v.vertical(-1, page)
	case key == tcell.KeyPgDn:
		return false, v.vertical(1, page)
	case r == 'z':
		if err := v.lines.UpdateFolding(folding.FoldAtOffset(v.cursor)); err != nil {
			return false, err
		}
	case r == 'u':
		if err := v.lines.UpdateFolding(folding.UnfoldContaining(v.cursor)); err != nil {
			return false, err
		}
	}
	return false, nil
}

func (v *viewer) vertical(dir, count int) error {
	move := v.lines.MoveUp
	if dir > 0 {
		move = v.lines.MoveDown
	}
	off, col, aff, err := move(v.cursor, v.aff, v.sticky, screen.ModeInsert, count)
	if err != nil {
		return err
	}
	v.cursor, v.aff = off, aff
	v.sticky = &col
	return nil
}

func (v *viewer) render(term tcell.Screen) {
	term.Clear()
	width, height := term.Size()
	if height < 2 {
		term.Show()
		return
	}
	body := height - 1

	v.lines.SetViewportWidth(float64(width - v.gutterWidth()))

	pos, err := v.lines.PointAtOffset(v.cursor, v.aff)
	if err == nil {
		if pos.Y < v.top {
			v.top = pos.Y
		}
		if pos.Y >= v.top+float64(body) {
			v.top = pos.Y - float64(body) + 1
		}
	}

	snap, err := v.lines.Compute(v.top, float64(body))
	if err != nil {
		v.drawText(term, 0, 0, err.Error(), tcell.StyleDefault)
		term.Show()
		return
	}

	gutter := v.gutterWidth()
	for _, vl := range snap.Lines {
		row := int(vl.Y - v.top)
		if gutter > 0 {
			v.drawGutter(term, row, vl.Origin)
		}
		v.drawText(term, gutter, row, vl.Text, tcell.StyleDefault)
	}
	v.drawStatus(term, width, height-1)

	if err == nil {
		term.ShowCursor(gutter+int(pos.X), int(pos.Y-v.top))
	}
	term.Show()
}

func (v *viewer) gutterWidth() int {
	if v.lines.DiffOverlay() != nil {
		return 2
	}
	return 0
}

func (v *viewer) drawGutter(term tcell.Screen, row int, origin uint32) {
	overlay := v.lines.DiffOverlay()
	if overlay == nil {
		return
	}
	marker := ' '
	style := tcell.StyleDefault
	if overlay.IsChanged(diff.SideLeft, origin) {
		marker = '-'
		style = style.Foreground(tcell.ColorRed)
	}
	term.SetContent(0, row, marker, nil, style)
}

// drawText places one rendered row, advancing by the same metrics the
// wrap engine used so cursor x stays aligned with cell positions.
func (v *viewer) drawText(term tcell.Screen, x, y int, text string, style tcell.Style) {
	gx := 0.0
	state := -1
	for len(text) > 0 {
		cluster, rest, _, next := uniseg.FirstGraphemeClusterInString(text, state)
		w := v.metrics.Advance(cluster, gx)
		if cluster != "\t" {
			runes := []rune(cluster)
			term.SetContent(x+int(gx), y, runes[0], runes[1:], style)
		}
		gx += w
		text = rest
		state = next
	}
}

func (v *viewer) drawStatus(term tcell.Screen, width, row int) {
	p, err := v.lines.Buffer().OffsetToPoint(v.cursor)
	status := fmt.Sprintf(" %d:%d  offset %d  folds hidden %d",
		p.Line+1, p.Column+1, v.cursor, v.lines.Folding().FoldedLineCount())
	if err != nil {
		status = " ?"
	}
	if c := v.lines.Diagnostics().Counts(); c.Total() > 0 {
		status += fmt.Sprintf("  E%d W%d", c.Errors, c.Warnings)
	}
	style := tcell.StyleDefault.Reverse(true)
	v.drawText(term, 0, row, status, style)
	for x := len(status); x < width; x++ {
		term.SetContent(x, row, ' ', nil, style)
	}
}
