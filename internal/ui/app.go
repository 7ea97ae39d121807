package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/skim/internal/feed"
	"github.com/abelbrown/skim/internal/logging"
	"github.com/abelbrown/skim/internal/nav"
	"github.com/abelbrown/skim/internal/poll"
	"github.com/abelbrown/skim/internal/store"
)

// DefaultTick is how often the control loop drains the poll channel.
const DefaultTick = 100 * time.Millisecond

const (
	statusStarting = "Starting…"
	statusClosed   = "Feed stream closed"
)

// Config configures an App.
type Config struct {
	Title    string
	Messages <-chan poll.Message
	Tick     time.Duration
}

// App is the root Bubble Tea model. It owns the merged item store, the
// cursor and the status line, and reads fetch results from the poller on
// every tick.
type App struct {
	title string
	msgs  <-chan poll.Message
	tick  time.Duration

	store  *store.Store
	cursor nav.Cursor
	status string
	closed bool
	heard  bool

	spinner spinner.Model
	help    help.Model

	width  int
	height int
	ready  bool
}

// NewApp creates an App reading from cfg.Messages.
func NewApp(cfg Config) App {
	tick := cfg.Tick
	if tick <= 0 {
		tick = DefaultTick
	}
	title := cfg.Title
	if title == "" {
		title = "skim"
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	return App{
		title:   title,
		msgs:    cfg.Messages,
		tick:    tick,
		store:   store.New(),
		status:  statusStarting,
		spinner: s,
		help:    help.New(),
	}
}

// Init starts the tick loop and the loading spinner.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.tickCmd(), a.spinner.Tick)
}

func (a App) tickCmd() tea.Cmd {
	return tea.Tick(a.tick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		a.Drain()
		return a, a.tickCmd()

	case tea.KeyMsg:
		if a.cursor.Apply(commandFor(msg), a.store.Len()) {
			return a, tea.Quit
		}
		return a, nil

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.ready = true
		return a, nil

	case spinner.TickMsg:
		if a.heard {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

// Drain applies every message currently waiting on the channel without
// blocking. A closed channel sets the status once and is not read again.
func (a *App) Drain() {
	if a.msgs == nil || a.closed {
		return
	}
	for {
		select {
		case msg, ok := <-a.msgs:
			if !ok {
				a.closed = true
				a.status = statusClosed
				logging.Info("feed stream closed")
				return
			}
			a.apply(msg)
		default:
			return
		}
	}
}

func (a *App) apply(msg poll.Message) {
	switch m := msg.(type) {
	case poll.Batch:
		added := a.store.Merge(m.Items)
		a.status = fmt.Sprintf("Fetched %d items", len(m.Items))
		logging.Debug("merged batch", "source", m.Source, "received", len(m.Items), "added", added)
	case poll.FetchError:
		a.status = fmt.Sprintf("Error: %s: %s", m.Source, m.Message())
	default:
		return
	}
	a.heard = true
	a.cursor.Clamp(a.store.Len())
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	header := HeaderStyle.Render(a.title)
	contentHeight := max(a.height-2, 1)

	content := a.renderContent(contentHeight)
	if lines := strings.Count(content, "\n") + 1; lines < contentHeight {
		content += strings.Repeat("\n", contentHeight-lines)
	}

	statusBar := RenderStatusBar(a.status, a.store.Len(), a.help.View(keys), a.width)

	return header + "\n" + content + "\n" + statusBar
}

func (a App) renderContent(height int) string {
	if a.store.Len() == 0 {
		if !a.heard {
			return EmptyStyle.Render(a.spinner.View() + " Fetching feeds...")
		}
		return EmptyStyle.Render("No items yet.")
	}
	selected, ok := a.cursor.Selected()
	return RenderStream(a.store.Items(), selected, ok, a.width, height)
}

// Cursor returns the current cursor (for testing).
func (a App) Cursor() nav.Cursor {
	return a.cursor
}

// Items returns the merged items, newest first (for testing).
func (a App) Items() []feed.Item {
	return a.store.Items()
}

// Status returns the current status line.
func (a App) Status() string {
	return a.status
}
