package main

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goodnatureofminers/stateinsight7000/internal/analysis"
	"github.com/goodnatureofminers/stateinsight7000/internal/render"
	"github.com/goodnatureofminers/stateinsight7000/internal/tui"
)

const (
	outputTUI   = "tui"
	outputJSON  = "json"
	outputTable = "table"
	outputDOT   = "dot"
)

func write(w io.Writer, format string, r *analysis.Result) error {
	switch format {
	case outputJSON:
		return render.JSON(w, r)
	case outputTable:
		return render.Table(w, r)
	case outputDOT:
		return render.DOT(w, r)
	}
	return fmt.Errorf("unknown output format %q", format)
}

func runTUI(a *app, r *analysis.Result, snapshots <-chan *analysis.Result) error {
	p := tea.NewProgram(tui.New(r, snapshots), tea.WithAltScreen(), tea.WithContext(a.ctx))
	if _, err := p.Run(); err != nil && a.ctx.Err() == nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
