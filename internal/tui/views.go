package tui

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/goodnatureofminers/stateinsight7000/internal/datum"
	"github.com/goodnatureofminers/stateinsight7000/internal/render"
	"github.com/goodnatureofminers/stateinsight7000/internal/stategraph"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2CD7C7"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#808B96"))
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2CD7C7"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F4D03F"))
	sectionStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	hexLineLength = 64
)

func (m Model) renderHeader() string {
	r := m.result
	name := r.Address
	if r.Schema != nil && r.Schema.Contract.Name != "" {
		name = r.Schema.Contract.Name + " " + render.Short(r.Address)
	}
	return titleStyle.Render(fmt.Sprintf("%s | %s | %d states, %d transitions | %s",
		name, m.view, r.Graph.Len(), len(r.Graph.Edges), r.Report.Kind))
}

func (m Model) renderFooter() string {
	help := "j/k move  enter open  esc back  t txs  d datum  p pattern  ? help  q quit"
	if m.view == ViewDatum {
		help = "x toggle hex  " + help
	}
	return mutedStyle.Render(help)
}

func classLabel(c stategraph.Classification) string {
	return lipgloss.NewStyle().Foreground(render.ClassColor(c)).Render(fmt.Sprintf("%-9s", c))
}

func (m Model) renderOverview() string {
	var b strings.Builder
	r := m.result

	b.WriteString(sectionStyle.Render("Classes"))
	b.WriteString("\n")
	for _, c := range stategraph.Classifications {
		if n := r.Summary[c]; n > 0 {
			fmt.Fprintf(&b, "  %s %d\n", classLabel(c), n)
		}
	}
	fmt.Fprintf(&b, "\n%s %s (%d components)\n\n", sectionStyle.Render("Pattern"), r.Report.Kind, r.Report.Components)

	b.WriteString(sectionStyle.Render("States"))
	b.WriteString("\n")
	if len(m.keys) == 0 {
		b.WriteString(mutedStyle.Render("  no states at this address"))
		b.WriteString("\n")
	}
	for i, key := range m.keys {
		n, _ := r.Graph.Node(key)
		line := fmt.Sprintf("%s#%d  %s  %s lovelace", render.Short(n.TxHash), n.Key.Index, classLabel(n.Class), n.Output.Lovelace())
		b.WriteString(m.cursor(i == m.selected, line))
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(&b, "\n%s\n", warningStyle.Render(fmt.Sprintf("%d warnings", len(r.Warnings))))
	}
	return b.String()
}

func (m Model) cursor(on bool, line string) string {
	if on {
		return cursorStyle.Render("> ") + line + "\n"
	}
	return "  " + line + "\n"
}

func (m Model) renderState() string {
	n, idx, ok := m.selectedNode()
	if !ok {
		return mutedStyle.Render("no state selected")
	}
	g := m.result.Graph
	v := render.NewStateView(n)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", sectionStyle.Render("State"), v.Key)
	fmt.Fprintf(&b, "  Class       %s\n", classLabel(n.Class))
	fmt.Fprintf(&b, "  Lovelace    %s\n", v.Lovelace)
	fmt.Fprintf(&b, "  Block       %d (slot %d)\n", v.Block, v.Slot)
	if !n.BlockTime.IsZero() {
		fmt.Fprintf(&b, "  Time        %s\n", n.BlockTime.UTC().Format("2006-01-02 15:04:05"))
	}
	if v.DatumHash != "" {
		fmt.Fprintf(&b, "  Datum hash  %s\n", v.DatumHash)
	}
	switch {
	case v.DatumError != "":
		fmt.Fprintf(&b, "  Datum       %s\n", warningStyle.Render(v.DatumError))
	case v.Datum != "":
		fmt.Fprintf(&b, "  Datum       %s\n", v.Datum)
	}
	for _, f := range v.Fields {
		mark := ""
		if !f.TypeOK {
			mark = warningStyle.Render(" (type mismatch)")
		}
		fmt.Fprintf(&b, "    %-12s %s%s\n", f.Name, f.Value, mark)
	}
	if v.SpentBy != "" {
		fmt.Fprintf(&b, "  Spent by    %s %s\n", render.Short(v.SpentBy), v.SpentRedeemer)
	}

	if in := g.Incoming(idx); len(in) > 0 {
		fmt.Fprintf(&b, "\n%s\n", sectionStyle.Render("From"))
		for _, e := range in {
			fmt.Fprintf(&b, "  %s via %s\n", g.Nodes[e.From].Key, render.EdgeLabel(m.result, e.Redeemer))
		}
	}
	if out := g.Outgoing(idx); len(out) > 0 {
		fmt.Fprintf(&b, "\n%s\n", sectionStyle.Render("To"))
		for _, e := range out {
			fmt.Fprintf(&b, "  %s via %s\n", g.Nodes[e.To].Key, render.EdgeLabel(m.result, e.Redeemer))
		}
	}
	for _, w := range v.Warnings {
		fmt.Fprintf(&b, "\n%s", warningStyle.Render("warning: "+w))
	}
	return b.String()
}

func (m Model) renderTransactions() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render(fmt.Sprintf("%-16s %10s %12s %6s %7s", "Hash", "Block", "Slot", "Inputs", "Outputs")))
	b.WriteString("\n")
	for i, tx := range m.result.Transactions {
		line := fmt.Sprintf("%-14s %10d %12d %6d %7d", render.Short(tx.Hash), tx.BlockHeight, tx.Slot, len(tx.Inputs), len(tx.Outputs))
		b.WriteString(m.cursor(i == m.txSelected, line))
	}
	return b.String()
}

func (m Model) renderDatum() string {
	n, _, ok := m.selectedNode()
	if !ok {
		return mutedStyle.Render("no state selected")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", sectionStyle.Render("Datum of"), n.Key)
	d := n.Datum
	if d == nil {
		b.WriteString(mutedStyle.Render("no datum"))
		return b.String()
	}
	if d.Hash != "" {
		fmt.Fprintf(&b, "hash %s\n\n", d.Hash)
	}

	if m.hex {
		if len(d.Raw) == 0 {
			b.WriteString(mutedStyle.Render("payload not available"))
			return b.String()
		}
		raw := hex.EncodeToString(d.Raw)
		for len(raw) > hexLineLength {
			b.WriteString(raw[:hexLineLength] + "\n")
			raw = raw[hexLineLength:]
		}
		b.WriteString(raw + "\n\n")
		b.WriteString(mutedStyle.Render(datum.Diagnose(d.Raw)))
		return b.String()
	}

	switch {
	case d.Err != nil:
		b.WriteString(warningStyle.Render("decode failed: " + d.Err.Error()))
	case d.Value != nil:
		b.WriteString(datum.Render(d.Value))
	default:
		b.WriteString(mutedStyle.Render("payload not available"))
	}
	return b.String()
}

func (m Model) renderPattern() string {
	p := m.result.Report
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", sectionStyle.Render("Pattern"), p.Kind)
	fmt.Fprintf(&b, "  States            %d\n", p.NodeCount)
	fmt.Fprintf(&b, "  Transitions       %d\n", p.EdgeCount)
	fmt.Fprintf(&b, "  Components        %d\n", p.Components)
	fmt.Fprintf(&b, "  Max out-degree    %d\n", p.MaxOutDegree)
	fmt.Fprintf(&b, "  Max in-degree     %d\n", p.MaxInDegree)
	fmt.Fprintf(&b, "  Branching factor  %.2f\n", p.BranchingFactor)
	fmt.Fprintf(&b, "  Max depth         %d\n", p.MaxDepth)
	if len(p.CycleMembers) > 0 {
		fmt.Fprintf(&b, "\n%s\n", sectionStyle.Render("Cycle"))
		for _, key := range p.CycleMembers {
			fmt.Fprintf(&b, "  %s\n", key)
		}
	}
	if len(m.result.Warnings) > 0 {
		fmt.Fprintf(&b, "\n%s\n", sectionStyle.Render("Warnings"))
		for _, w := range m.result.Warnings {
			fmt.Fprintf(&b, "  %s\n", warningStyle.Render(w))
		}
	}
	return b.String()
}

func renderHelp() string {
	return strings.Join([]string{
		sectionStyle.Render("Keys"),
		"",
		"  j / down     next item",
		"  k / up       previous item",
		"  enter        open the selected item",
		"  esc          back",
		"  g            overview",
		"  t            transactions",
		"  d / i        datum inspector",
		"  x            toggle decoded / hex datum",
		"  p            pattern analysis",
		"  tab          next view",
		"  ? / h        this help",
		"  q            quit",
	}, "\n")
}
