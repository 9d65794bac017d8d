package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/goodnatureofminers/stateinsight7000/internal/analysis"
	"github.com/goodnatureofminers/stateinsight7000/internal/stategraph"
)

const (
	hashWidth  = 11
	datumWidth = 60
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F4D03F"))
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#2C4A54"))
)

// ClassColor is the terminal colour of a classification.
func ClassColor(c stategraph.Classification) lipgloss.Color {
	switch c {
	case stategraph.Initial:
		return lipgloss.Color("#5DADE2")
	case stategraph.Active:
		return lipgloss.Color("#58D68D")
	case stategraph.Completed:
		return lipgloss.Color("#239B56")
	case stategraph.Failed:
		return lipgloss.Color("#E74C3C")
	case stategraph.Locked:
		return lipgloss.Color("#F4D03F")
	default:
		return lipgloss.Color("#808B96")
	}
}

// Table writes a human-readable report of r.
func Table(w io.Writer, r *analysis.Result) error {
	rep := NewReport(r)
	var b strings.Builder

	title := "State analysis of " + rep.Address
	if rep.Contract != "" {
		title = rep.Contract + " - " + title
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	summary := [][]string{
		{"Transactions", strconv.Itoa(rep.Summary.TotalTransactions)},
		{"States", strconv.Itoa(rep.Summary.TotalStates)},
		{"Transitions", strconv.Itoa(rep.Summary.TotalTransitions)},
		{"Datums", strconv.Itoa(rep.Summary.TotalDatums)},
		{"Pattern", rep.Pattern.Kind},
	}
	for _, c := range stategraph.Classifications {
		if n := rep.Summary.Classes[string(c)]; n > 0 {
			summary = append(summary, []string{string(c), strconv.Itoa(n)})
		}
	}
	b.WriteString(newTable([]string{"Summary", ""}, summary, nil).String())
	b.WriteString("\n\n")

	if len(rep.States) > 0 {
		rows := make([][]string, 0, len(rep.States))
		for _, s := range rep.States {
			d := s.Datum
			if s.DatumError != "" {
				d = "undecodable: " + s.DatumError
			}
			rows = append(rows, []string{
				Short(s.TxHash) + "#" + strconv.FormatUint(uint64(s.OutputIndex), 10),
				s.Class,
				s.Lovelace,
				truncate(fieldsOrDatum(s, d), datumWidth),
				spent(s),
			})
		}
		classCol := func(row int) stategraph.Classification {
			return stategraph.Classification(rows[row][1])
		}
		b.WriteString(newTable([]string{"State", "Class", "Lovelace", "Datum", "Spent by"}, rows, func(row, col int) lipgloss.Style {
			if col == 1 && row >= 0 {
				return cellStyle.Foreground(ClassColor(classCol(row)))
			}
			return cellStyle
		}).String())
		b.WriteString("\n\n")
	}

	if len(rep.Transitions) > 0 {
		rows := make([][]string, 0, len(rep.Transitions))
		for _, t := range rep.Transitions {
			rows = append(rows, []string{shortRef(t.From), shortRef(t.To), Short(t.TxHash), t.Label})
		}
		b.WriteString(newTable([]string{"From", "To", "Transaction", "Transition"}, rows, nil).String())
		b.WriteString("\n\n")
	}

	p := rep.Pattern
	b.WriteString(titleStyle.Render("Pattern: " + p.Kind))
	b.WriteString(fmt.Sprintf("\n  components %d, max out-degree %d, max in-degree %d, branching %.2f, depth %d\n",
		p.Components, p.MaxOutDegree, p.MaxInDegree, p.BranchingFactor, p.MaxDepth))
	if len(p.CycleMembers) > 0 {
		b.WriteString("  cycle: " + strings.Join(p.CycleMembers, ", ") + "\n")
	}

	if len(rep.Warnings) > 0 {
		b.WriteString("\n")
		for _, warn := range rep.Warnings {
			b.WriteString(warningStyle.Render("warning: "+warn) + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func newTable(headers []string, rows [][]string, style table.StyleFunc) *table.Table {
	if style == nil {
		style = func(int, int) lipgloss.Style { return cellStyle }
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return style(row, col)
		})
}

func fieldsOrDatum(s StateView, fallback string) string {
	if len(s.Fields) == 0 {
		return fallback
	}
	parts := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		parts = append(parts, f.Name+"="+f.Value)
	}
	return strings.Join(parts, " ")
}

func spent(s StateView) string {
	if s.SpentBy == "" {
		return "-"
	}
	if s.SpentRedeemer == "" {
		return Short(s.SpentBy)
	}
	return Short(s.SpentBy) + " (" + s.SpentRedeemer + ")"
}

// Short abbreviates a hash for display.
func Short(hash string) string {
	if len(hash) <= hashWidth+3 {
		return hash
	}
	return hash[:hashWidth] + "..."
}

func shortRef(key string) string {
	hash, idx, ok := strings.Cut(key, "#")
	if !ok {
		return Short(key)
	}
	return Short(hash) + "#" + idx
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
