package ui

import (
	"context"
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/colx/pkg/autocomplete"
	"github.com/oakwood-commons/colx/pkg/collection"
	"github.com/oakwood-commons/colx/pkg/logger"
)

// RunOptions configures RunModel.
type RunOptions struct {
	Title      string
	NoColor    bool
	ShowKeys   bool
	DebounceMs int
	// Width and Height of 0 auto-detect the terminal size.
	Width  int
	Height int
}

// RunModel runs the interactive filter over session until the user picks an
// item or quits. It returns the chosen item, or nil when canceled.
// Extra ProgramOptions (e.g., custom IO) are passed to tea.NewProgram.
func RunModel(ctx context.Context, session *autocomplete.Session, opts RunOptions, progOpts ...tea.ProgramOption) (*collection.Node, error) {
	m := NewModel(ctx, session)
	m.Title = opts.Title
	m.NoColor = opts.NoColor
	m.ShowKeys = opts.ShowKeys
	m.DebounceMs = opts.DebounceMs

	w, h := opts.Width, opts.Height
	if w <= 0 || h <= 0 {
		if tw, th, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			if w <= 0 {
				w = tw
			}
			if h <= 0 {
				h = th
			}
		}
	}
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	m.Width, m.Height = w, h
	m.Input.SetWidth(max(w-2, 1))
	progOpts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithWindowSize(w, h)}, progOpts...)

	lgr := logger.ForComponent(logger.FromContext(ctx), "ui")
	lgr.V(1).Info("starting interactive filter", "width", w, "height", h, "debounceMs", opts.DebounceMs)

	prog := tea.NewProgram(&m, progOpts...)
	final, err := prog.Run()
	if err != nil {
		return nil, err
	}
	fm, ok := final.(*Model)
	if !ok || fm == nil || fm.Canceled {
		return nil, nil
	}
	if fm.Selected != nil {
		lgr.V(1).Info("item selected", "key", string(fm.Selected.Key))
	}
	return fm.Selected, nil
}
