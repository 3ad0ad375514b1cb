// Package ui implements the interactive grid: a Bubble Tea model that wires
// input debouncing, the processing orchestrator, and viewport windowing into
// one terminal surface.
package ui

import (
	"context"
	"time"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/gridx/internal/config"
	"github.com/oakwood-commons/gridx/internal/dataset"
	"github.com/oakwood-commons/gridx/internal/debounce"
	"github.com/oakwood-commons/gridx/internal/engine"
	"github.com/oakwood-commons/gridx/internal/orchestrator"
	"github.com/oakwood-commons/gridx/pkg/logger"
)

// mode is the input routing state of the grid.
type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeExpr
)

// processedMsg carries a finished reprocessing cycle back onto the Bubble Tea
// loop. seq discards stale cycles that were superseded while in flight.
type processedMsg struct {
	seq    uint64
	result orchestrator.Result
	err    error
}

// Model is the grid's Bubble Tea model.
type Model struct {
	cfg   config.Config
	theme Theme
	log   *logr.Logger

	title   string
	records []dataset.Record
	columns []string

	orch      *orchestrator.Orchestrator
	debouncer *debounce.Coordinator
	results   chan processedMsg
	seq       uint64

	processed  []dataset.Record
	processing bool
	procSource orchestrator.Source
	procTime   time.Duration

	searchInput textinput.Model
	exprInput   textinput.Model
	expr        *engine.ExprFilter
	conditions  []engine.Condition

	sortColumn int // index into columns; -1 means unsorted
	sortDir    engine.Direction

	cursor       int
	scrollOffset int
	width        int
	height       int
	mode         mode
	spinner      spinner.Model
	errText      string
	quitting     bool
}

// NewModel builds the grid model. records and columns come from the dataset
// loader; the orchestrator and debouncer are owned by the model and disposed
// on quit.
func NewModel(title string, records []dataset.Record, columns []string, cfg config.Config) *Model {
	log := logger.GetGlobalLogger()

	fields := cfg.Search.Fields
	if len(fields) == 0 {
		fields = columns
	}
	cfg.Search.Fields = fields

	si := textinput.New()
	si.Placeholder = "search"
	si.CharLimit = 256

	ei := textinput.New()
	ei.Placeholder = `expression, e.g. rec.load > 1000 && rec.status == "ok"`
	ei.CharLimit = 512

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		cfg:         cfg,
		theme:       NewTheme(cfg.Theme),
		log:         log,
		title:       title,
		records:     records,
		columns:     columns,
		debouncer:   debounce.New(cfg.DebounceDelay()),
		results:     make(chan processedMsg, 4),
		searchInput: si,
		exprInput:   ei,
		spinner:     sp,
		sortColumn:  -1,
		sortDir:     engine.Asc,
		width:       80,
		height:      24,
	}
	m.orch = orchestrator.New(orchestrator.Options{
		WorkerDisabled: !cfg.WorkerEnabled(),
		WorkerTimeout:  cfg.WorkerTimeout(),
		Log:            log,
	})
	return m
}

// query captures the current search/sort state for one processing cycle.
func (m *Model) query() orchestrator.Query {
	q := orchestrator.Query{
		SearchTerm:   m.searchInput.Value(),
		SearchFields: m.cfg.Search.Fields,
		Conditions:   m.conditions,
		Expr:         m.expr,
	}
	if m.sortColumn >= 0 && m.sortColumn < len(m.columns) {
		q.Sort = engine.SortConfig{Field: m.columns[m.sortColumn], Direction: m.sortDir}
	}
	return q
}

// reprocess schedules a debounced cycle. The closure captures everything it
// needs so the timer goroutine never touches model state; the result comes
// back through the results channel as a processedMsg.
func (m *Model) reprocess() {
	m.seq++
	seq := m.seq
	m.processing = true
	records := m.records
	q := m.query()
	orch := m.orch
	results := m.results
	m.debouncer.Schedule(func() {
		res, err := orch.Process(context.Background(), records, q)
		results <- processedMsg{seq: seq, result: res, err: err}
	})
}

// reprocessNow runs a cycle immediately, bypassing the debouncer. Used for
// the initial load and sort-direction flips.
func (m *Model) reprocessNow() tea.Cmd {
	m.seq++
	seq := m.seq
	m.processing = true
	records := m.records
	q := m.query()
	orch := m.orch
	return func() tea.Msg {
		res, err := orch.Process(context.Background(), records, q)
		return processedMsg{seq: seq, result: res, err: err}
	}
}

// awaitResult turns the results channel into a Bubble Tea message source.
func (m *Model) awaitResult() tea.Cmd {
	results := m.results
	return func() tea.Msg {
		return <-results
	}
}

// Init starts the spinner, the channel listener, and the first cycle.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.awaitResult(), m.reprocessNow())
}

// Update routes messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampViewport()
		return m, nil

	case processedMsg:
		// Stale cycles lose: last-write-wins matches the debouncer contract.
		if msg.seq != m.seq {
			return m, m.awaitResult()
		}
		m.processing = false
		if msg.err != nil {
			m.errText = msg.err.Error()
			return m, m.awaitResult()
		}
		m.errText = ""
		m.processed = msg.result.Records
		m.procSource = msg.result.Source
		m.procTime = msg.result.Elapsed
		m.clampViewport()
		return m, m.awaitResult()

	case spinner.TickMsg:
		if !m.processing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m.quit()
	}

	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg, key)
	case modeExpr:
		return m.handleExprKey(msg, key)
	}
	return m.handleNormalKey(key)
}

func (m *Model) handleSearchKey(msg tea.KeyMsg, key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		m.mode = modeNormal
		m.searchInput.Blur()
		if m.searchInput.Value() != "" {
			m.searchInput.SetValue("")
			m.reprocess()
		}
		return m, nil
	case "enter":
		m.mode = modeNormal
		m.searchInput.Blur()
		return m, nil
	}
	prev := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if m.searchInput.Value() != prev {
		m.reprocess()
	}
	return m, cmd
}

func (m *Model) handleExprKey(msg tea.KeyMsg, key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		m.mode = modeNormal
		m.exprInput.Blur()
		if m.expr != nil {
			m.expr = nil
			m.reprocess()
		}
		return m, nil
	case "enter":
		source := m.exprInput.Value()
		if source == "" {
			m.expr = nil
			m.mode = modeNormal
			m.exprInput.Blur()
			m.reprocess()
			return m, nil
		}
		compiled, err := engine.CompileExpr(source)
		if err != nil {
			m.errText = err.Error()
			return m, nil
		}
		m.errText = ""
		m.expr = compiled
		m.mode = modeNormal
		m.exprInput.Blur()
		m.reprocess()
		return m, nil
	}
	var cmd tea.Cmd
	m.exprInput, cmd = m.exprInput.Update(msg)
	return m, cmd
}

func (m *Model) handleNormalKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "esc":
		return m.quit()
	case "/":
		m.mode = modeSearch
		return m, m.searchInput.Focus()
	case "e":
		m.mode = modeExpr
		return m, m.exprInput.Focus()
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "pgup":
		m.moveCursor(-m.bodyHeight())
	case "pgdown":
		m.moveCursor(m.bodyHeight())
	case "home", "g":
		m.cursor = 0
		m.clampViewport()
	case "end", "G":
		m.cursor = len(m.processed) - 1
		m.clampViewport()
	case "left", "h":
		if m.sortColumn > 0 {
			m.sortColumn--
		} else {
			m.sortColumn = 0
		}
	case "right", "l":
		if m.sortColumn < len(m.columns)-1 {
			m.sortColumn++
		}
	case "s":
		// Cycle asc -> desc -> unsorted on the active column.
		switch {
		case m.sortColumn < 0:
			if len(m.columns) > 0 {
				m.sortColumn = 0
				m.sortDir = engine.Asc
			}
		case m.sortDir == engine.Asc:
			m.sortDir = engine.Desc
		default:
			m.sortColumn = -1
			m.sortDir = engine.Asc
		}
		return m, m.reprocessNow()
	}
	return m, nil
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.debouncer.Dispose()
	m.orch.Close()
	return m, tea.Quit
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampViewport()
}

// bodyHeight is the number of terminal rows available for data rows.
func (m *Model) bodyHeight() int {
	// header, column header, search/status line, footer
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

// clampViewport keeps the cursor in range and scrolls the window so the
// cursor stays visible.
func (m *Model) clampViewport() {
	n := len(m.processed)
	if n == 0 {
		m.cursor = 0
		m.scrollOffset = 0
		return
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor > n-1 {
		m.cursor = n - 1
	}
	body := m.bodyHeight()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+body {
		m.scrollOffset = m.cursor - body + 1
	}
	maxOffset := n - body
	if maxOffset < 0 {
		maxOffset = 0
	}
	if m.scrollOffset > maxOffset {
		m.scrollOffset = maxOffset
	}
}

// Processed exposes the current published row list for tests.
func (m *Model) Processed() []dataset.Record {
	return m.processed
}
