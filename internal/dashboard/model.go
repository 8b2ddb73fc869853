package dashboard

import (
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wesleyorama2/ratestub/internal/metrics"
)

type tickMsg time.Time

// fault holds the first panic raised inside the model. It is shared by
// every copy of the model so the caller of Run can see it.
type fault struct {
	mu  sync.Mutex
	err error
}

func (f *fault) record(r interface{}) {
	if f == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err == nil {
		f.err = fmt.Errorf("dashboard panic: %v", r)
	}
}

func (f *fault) Err() error {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// model is the bubbletea model of the live dashboard. It only reads from
// the Store and the RecentLog.
type model struct {
	store    *metrics.Store
	recent   *metrics.RecentLog
	renderer *renderer
	refresh  time.Duration
	url      string
	delay    string
	maxLogs  int
	fault    *fault

	frame frame
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// load refreshes the frame from the shared state.
func (m model) load() model {
	var entries []metrics.LogEntry
	if m.recent != nil {
		entries = m.recent.Entries()
	}
	m.frame = frame{
		snap:    m.store.Load(),
		entries: entries,
		url:     m.url,
		delay:   m.delay,
		maxLogs: m.maxLogs,
	}
	return m
}

func (m model) Init() tea.Cmd {
	return m.tick()
}

// Update and View never let a panic reach the program: it is recorded in
// fault and the program is asked to quit on the next message.
func (m model) Update(msg tea.Msg) (next tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.fault.record(r)
			next, cmd = m, tea.Quit
		}
	}()
	if m.fault.Err() != nil {
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tickMsg:
		return m.load(), m.tick()
	}
	return m, nil
}

func (m model) View() (view string) {
	defer func() {
		if r := recover(); r != nil {
			m.fault.record(r)
			view = ""
		}
	}()
	if m.fault.Err() != nil {
		return ""
	}
	return m.renderer.render(m.frame)
}
