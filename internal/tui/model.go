// Package tui is the interactive terminal view of an analysis result.
//
// The model is driven by the bubbletea event loop and is not safe for use
// from other goroutines. Live results arrive as SnapshotMsg.
package tui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/goodnatureofminers/stateinsight7000/internal/analysis"
	"github.com/goodnatureofminers/stateinsight7000/internal/stategraph"
)

// View is one screen of the interface.
type View int

const (
	ViewOverview View = iota
	ViewState
	ViewTransactions
	ViewDatum
	ViewPattern
	ViewHelp
)

func (v View) String() string {
	switch v {
	case ViewOverview:
		return "Overview"
	case ViewState:
		return "State"
	case ViewTransactions:
		return "Transactions"
	case ViewDatum:
		return "Datum"
	case ViewPattern:
		return "Pattern"
	case ViewHelp:
		return "Help"
	default:
		return "?"
	}
}

// SnapshotMsg replaces the displayed result.
type SnapshotMsg struct {
	Result *analysis.Result
}

const (
	headerHeight = 2
	footerHeight = 2
)

// Model is the bubbletea model.
type Model struct {
	result    *analysis.Result
	snapshots <-chan *analysis.Result

	keys       []string
	selected   int
	txSelected int

	view  View
	stack []View
	hex   bool

	viewport viewport.Model
	width    int
	height   int
	ready    bool
	quitting bool
}

// New builds a model showing r. snapshots may be nil for a static view.
func New(r *analysis.Result, snapshots <-chan *analysis.Result) Model {
	m := Model{snapshots: snapshots, view: ViewOverview}
	m.setResult(r)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return waitForSnapshot(m.snapshots)
}

func waitForSnapshot(ch <-chan *analysis.Result) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return SnapshotMsg{Result: r}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h := max(m.height-headerHeight-footerHeight, 1)
		if !m.ready {
			m.viewport = viewport.New(m.width, h)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = h
		}
		m.refresh()
		return m, nil

	case SnapshotMsg:
		if msg.Result != nil {
			m.setResult(msg.Result)
			m.refresh()
		}
		return m, waitForSnapshot(m.snapshots)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "?", "h":
		m.push(ViewHelp)
	case "g":
		m.push(ViewOverview)
	case "t":
		m.push(ViewTransactions)
	case "p":
		m.push(ViewPattern)
	case "d", "i":
		m.push(ViewDatum)
	case "x":
		m.hex = !m.hex
	case "tab":
		m.push((m.view + 1) % (ViewHelp + 1))
	case "esc":
		m.pop()
	case "enter":
		m.open()
	case "j", "down":
		m.move(1)
	case "k", "up":
		m.move(-1)
	case "ctrl+d", "pgdown":
		m.viewport.HalfViewDown()
		return m, nil
	case "ctrl+u", "pgup":
		m.viewport.HalfViewUp()
		return m, nil
	}
	m.refresh()
	return m, nil
}

func (m *Model) push(v View) {
	if m.view == v {
		return
	}
	m.stack = append(m.stack, m.view)
	m.view = v
	m.viewport.GotoTop()
}

func (m *Model) pop() {
	if n := len(m.stack); n > 0 {
		m.view = m.stack[n-1]
		m.stack = m.stack[:n-1]
	} else {
		m.view = ViewOverview
	}
	m.viewport.GotoTop()
}

func (m *Model) open() {
	switch m.view {
	case ViewTransactions:
		if key, ok := m.firstStateOf(m.selectedTx()); ok {
			m.selectKey(key)
			m.push(ViewState)
		}
	case ViewState:
		m.push(ViewDatum)
	case ViewOverview, ViewPattern:
		if len(m.keys) > 0 {
			m.push(ViewState)
		}
	}
}

func (m *Model) move(delta int) {
	switch m.view {
	case ViewOverview, ViewPattern, ViewState, ViewDatum:
		m.selected = wrap(m.selected+delta, len(m.keys))
	case ViewTransactions:
		m.txSelected = wrap(m.txSelected+delta, len(m.result.Transactions))
	default:
		if delta > 0 {
			m.viewport.LineDown(delta)
		} else {
			m.viewport.LineUp(-delta)
		}
	}
}

func wrap(i, n int) int {
	if n == 0 {
		return 0
	}
	return ((i % n) + n) % n
}

// setResult swaps in r, keeping the selected state when it still exists.
func (m *Model) setResult(r *analysis.Result) {
	prev, hadPrev := m.SelectedKey()
	prevTx := ""
	if m.result != nil && m.txSelected < len(m.result.Transactions) {
		prevTx = m.result.Transactions[m.txSelected].Hash
	}

	m.result = r
	m.keys = orderedKeys(r.Graph)
	m.selected = 0
	m.txSelected = 0
	if hadPrev {
		m.selectKey(prev)
	}
	for i, tx := range r.Transactions {
		if tx.Hash == prevTx {
			m.txSelected = i
			break
		}
	}
}

func (m *Model) selectKey(key string) {
	for i, k := range m.keys {
		if k == key {
			m.selected = i
			return
		}
	}
}

// SelectedKey returns the key of the highlighted state.
func (m Model) SelectedKey() (string, bool) {
	if m.selected < 0 || m.selected >= len(m.keys) {
		return "", false
	}
	return m.keys[m.selected], true
}

func (m Model) selectedNode() (*stategraph.Node, int, bool) {
	key, ok := m.SelectedKey()
	if !ok {
		return nil, 0, false
	}
	i, ok := m.result.Graph.NodeIndex(key)
	if !ok {
		return nil, 0, false
	}
	return m.result.Graph.Nodes[i], i, true
}

func (m Model) selectedTx() string {
	if m.txSelected < len(m.result.Transactions) {
		return m.result.Transactions[m.txSelected].Hash
	}
	return ""
}

func (m Model) firstStateOf(hash string) (string, bool) {
	for _, key := range m.keys {
		if strings.HasPrefix(key, hash+"#") {
			return key, true
		}
	}
	return "", false
}

// orderedKeys lists state keys by block, then slot, then key.
func orderedKeys(g *stategraph.Graph) []string {
	nodes := append([]*stategraph.Node(nil), g.Nodes...)
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.BlockHeight != b.BlockHeight {
			return a.BlockHeight < b.BlockHeight
		}
		if a.Slot != b.Slot {
			return a.Slot < b.Slot
		}
		return a.Key.Less(b.Key)
	})
	keys := make([]string, len(nodes))
	for i, n := range nodes {
		keys[i] = n.Key.String()
	}
	return keys
}

// CurrentView returns the displayed screen.
func (m Model) CurrentView() View {
	return m.view
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if m.ready {
		b.WriteString(m.viewport.View())
	} else {
		b.WriteString(m.body())
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) refresh() {
	if m.ready {
		m.viewport.SetContent(m.body())
	}
}

func (m Model) body() string {
	switch m.view {
	case ViewState:
		return m.renderState()
	case ViewTransactions:
		return m.renderTransactions()
	case ViewDatum:
		return m.renderDatum()
	case ViewPattern:
		return m.renderPattern()
	case ViewHelp:
		return renderHelp()
	default:
		return m.renderOverview()
	}
}
