package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/skim/internal/feed"
	"github.com/abelbrown/skim/internal/poll"
)

func at(year int) *time.Time {
	t := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	return &t
}

func ids(items []feed.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func sameIDs(got []feed.Item, want ...string) bool {
	g := ids(got)
	if len(g) != len(want) {
		return false
	}
	for i := range g {
		if g[i] != want[i] {
			return false
		}
	}
	return true
}

func tick(t *testing.T, app App) App {
	t.Helper()
	model, cmd := app.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("tick should re-arm the next tick")
	}
	return model.(App)
}

func press(app App, msg tea.KeyMsg) (App, tea.Cmd) {
	model, cmd := app.Update(msg)
	return model.(App), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loadedApp(t *testing.T, n int) App {
	t.Helper()
	ch := make(chan poll.Message, 1)
	items := make([]feed.Item, n)
	for i := range items {
		items[i] = feed.Item{ID: string(rune('a' + i)), Title: "Item", Published: at(2000 + n - i)}
	}
	ch <- poll.Batch{Source: "RSS", Items: items}
	return tick(t, NewApp(Config{Messages: ch}))
}

func TestAppInit(t *testing.T) {
	app := NewApp(Config{})
	if cmd := app.Init(); cmd == nil {
		t.Fatal("Init should return a command")
	}
	if app.Status() != statusStarting {
		t.Errorf("initial status = %q, want %q", app.Status(), statusStarting)
	}
	if _, ok := app.Cursor().Selected(); ok {
		t.Error("cursor should start unselected")
	}
}

func TestAppTickMergesBatch(t *testing.T) {
	ch := make(chan poll.Message, 4)
	app := NewApp(Config{Messages: ch})

	ch <- poll.Batch{Source: "RSS", Items: []feed.Item{
		{ID: "A", Title: "A", Published: at(2024)},
		{ID: "B", Title: "B", Published: at(2025)},
	}}
	app = tick(t, app)

	if !sameIDs(app.Items(), "B", "A") {
		t.Errorf("items = %v, want [B A]", ids(app.Items()))
	}
	if app.Status() != "Fetched 2 items" {
		t.Errorf("status = %q", app.Status())
	}
}

func TestAppTickDrainsAllPending(t *testing.T) {
	ch := make(chan poll.Message, 4)
	app := NewApp(Config{Messages: ch})

	ch <- poll.Batch{Source: "one", Items: []feed.Item{{ID: "A", Published: at(2024)}}}
	ch <- poll.Batch{Source: "two", Items: []feed.Item{{ID: "B", Published: at(2025)}, {ID: "C", Published: at(2023)}}}
	ch <- poll.FetchError{Source: "three", Err: errors.New("timeout")}
	app = tick(t, app)

	if !sameIDs(app.Items(), "B", "A", "C") {
		t.Errorf("items = %v, want [B A C]", ids(app.Items()))
	}
	// Status reflects the last message applied.
	if app.Status() != "Error: three: timeout" {
		t.Errorf("status = %q", app.Status())
	}
}

func TestAppTickWithNothingPending(t *testing.T) {
	ch := make(chan poll.Message)
	app := tick(t, NewApp(Config{Messages: ch}))

	if app.Status() != statusStarting {
		t.Errorf("status = %q, want unchanged", app.Status())
	}
	if len(app.Items()) != 0 {
		t.Errorf("expected no items, got %d", len(app.Items()))
	}
}

func TestAppFetchErrorKeepsItems(t *testing.T) {
	app := loadedApp(t, 3)
	before := ids(app.Items())

	ch := make(chan poll.Message, 1)
	app.msgs = ch
	ch <- poll.FetchError{Source: "RSS", Err: errors.New("connection refused")}
	app = tick(t, app)

	if !sameIDs(app.Items(), before...) {
		t.Errorf("items changed on error: %v -> %v", before, ids(app.Items()))
	}
	if app.Status() != "Error: RSS: connection refused" {
		t.Errorf("status = %q", app.Status())
	}
}

func TestAppStreamClosed(t *testing.T) {
	ch := make(chan poll.Message, 1)
	ch <- poll.Batch{Source: "RSS", Items: []feed.Item{{ID: "A"}}}
	close(ch)

	app := tick(t, NewApp(Config{Messages: ch}))
	if app.Status() != statusClosed {
		t.Errorf("status = %q, want %q", app.Status(), statusClosed)
	}
	if len(app.Items()) != 1 {
		t.Errorf("batch before close should be merged, got %d items", len(app.Items()))
	}

	// Further ticks keep the loop alive and the status stable.
	app = tick(t, app)
	if app.Status() != statusClosed {
		t.Errorf("status = %q after second tick", app.Status())
	}
}

func TestAppNavigation(t *testing.T) {
	app := loadedApp(t, 3)

	steps := []struct {
		name string
		key  tea.KeyMsg
		want int
	}{
		{"j selects first", runes("j"), 0},
		{"j moves down", runes("j"), 1},
		{"down moves down", tea.KeyMsg{Type: tea.KeyDown}, 2},
		{"down clamps at end", tea.KeyMsg{Type: tea.KeyDown}, 2},
		{"k moves up", runes("k"), 1},
		{"home jumps to first", tea.KeyMsg{Type: tea.KeyHome}, 0},
		{"up clamps at top", tea.KeyMsg{Type: tea.KeyUp}, 0},
		{"G jumps to last", runes("G"), 2},
		{"g jumps to first", runes("g"), 0},
		{"end jumps to last", tea.KeyMsg{Type: tea.KeyEnd}, 2},
	}

	for _, step := range steps {
		var cmd tea.Cmd
		app, cmd = press(app, step.key)
		if cmd != nil {
			t.Errorf("%s: navigation should not return a command", step.name)
		}
		got, ok := app.Cursor().Selected()
		if !ok || got != step.want {
			t.Errorf("%s: cursor = (%d, %v), want %d", step.name, got, ok, step.want)
		}
	}
}

func TestAppNavigationOnEmptyList(t *testing.T) {
	app := NewApp(Config{})

	for _, k := range []tea.KeyMsg{runes("j"), runes("k"), runes("g"), runes("G")} {
		app, _ = press(app, k)
	}
	if _, ok := app.Cursor().Selected(); ok {
		t.Error("cursor should stay unselected on an empty list")
	}
}

func TestAppUnboundKeyIgnored(t *testing.T) {
	app := loadedApp(t, 2)
	app, cmd := press(app, runes("x"))
	if cmd != nil {
		t.Error("unbound key should not return a command")
	}
	if _, ok := app.Cursor().Selected(); ok {
		t.Error("unbound key should not move the cursor")
	}
}

func TestAppQuit(t *testing.T) {
	for _, k := range []tea.KeyMsg{runes("q"), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		_, cmd := press(NewApp(Config{}), k)
		if cmd == nil {
			t.Fatalf("%s should return a command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s should return tea.Quit", k)
		}
	}
}

func TestAppCursorClampedAfterMerge(t *testing.T) {
	app := loadedApp(t, 2)
	app, _ = press(app, runes("G"))

	ch := make(chan poll.Message, 1)
	app.msgs = ch
	ch <- poll.Batch{Source: "RSS", Items: []feed.Item{{ID: "new", Published: at(2100)}}}
	app = tick(t, app)

	got, ok := app.Cursor().Selected()
	if !ok || got < 0 || got >= len(app.Items()) {
		t.Errorf("cursor (%d, %v) out of range for %d items", got, ok, len(app.Items()))
	}
}

func TestAppWindowSize(t *testing.T) {
	model, _ := NewApp(Config{}).Update(tea.WindowSizeMsg{Width: 100, Height: 50})
	updated := model.(App)

	if updated.width != 100 || updated.height != 50 {
		t.Errorf("size = %dx%d, want 100x50", updated.width, updated.height)
	}
	if !updated.ready {
		t.Error("app should be ready after WindowSizeMsg")
	}
}

func TestAppViewNotReady(t *testing.T) {
	if view := NewApp(Config{}).View(); view != "Loading..." {
		t.Errorf("view = %q, want Loading...", view)
	}
}

func TestAppView(t *testing.T) {
	app := loadedApp(t, 3)
	model, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 20})
	view := model.(App).View()

	for _, want := range []string{"skim", "Fetched 3 items", "3 items", "[RSS]", "quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

// gatedSource returns scripted cycles, one per release.
type gatedSource struct {
	label   string
	mu      sync.Mutex
	cycles  []func() ([]feed.Item, error)
	release chan struct{}
}

func (s *gatedSource) Label() string { return s.label }

func (s *gatedSource) Fetch(ctx context.Context) ([]feed.Item, error) {
	select {
	case <-s.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.cycles) == 0 {
		return nil, nil
	}
	next := s.cycles[0]
	s.cycles = s.cycles[1:]
	return next()
}

func tickUntil(t *testing.T, app App, done func(App) bool) App {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !done(app) {
		if time.Now().After(deadline) {
			t.Fatalf("timed out; items = %v, status = %q", ids(app.Items()), app.Status())
		}
		time.Sleep(5 * time.Millisecond)
		app = tick(t, app)
	}
	return app
}

func TestAppWithPoller(t *testing.T) {
	src := &gatedSource{
		label:   "RSS",
		release: make(chan struct{}),
		cycles: []func() ([]feed.Item, error){
			func() ([]feed.Item, error) {
				return []feed.Item{
					{ID: "A", Title: "A", Published: at(2024), SourceLabel: "RSS"},
					{ID: "B", Title: "B", Published: at(2025), SourceLabel: "RSS"},
				}, nil
			},
			func() ([]feed.Item, error) {
				return []feed.Item{
					{ID: "A", Title: "A changed", Published: at(2024), SourceLabel: "RSS"},
					{ID: "C", Title: "C", Published: at(2026), SourceLabel: "RSS"},
				}, nil
			},
			func() ([]feed.Item, error) {
				return nil, errors.New("503 Service Unavailable")
			},
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan poll.Message, poll.DefaultBuffer)
	done := make(chan error, 1)
	go func() {
		defer close(out)
		done <- poll.New([]feed.Source{src}, time.Millisecond).Run(ctx, out)
	}()

	app := NewApp(Config{Messages: out})

	src.release <- struct{}{}
	app = tickUntil(t, app, func(a App) bool { return len(a.Items()) == 2 })
	if !sameIDs(app.Items(), "B", "A") {
		t.Errorf("after cycle 1 items = %v, want [B A]", ids(app.Items()))
	}

	src.release <- struct{}{}
	app = tickUntil(t, app, func(a App) bool { return len(a.Items()) == 3 })
	if !sameIDs(app.Items(), "C", "B", "A") {
		t.Errorf("after cycle 2 items = %v, want [C B A]", ids(app.Items()))
	}
	if app.Items()[2].Title != "A" {
		t.Errorf("first-seen copy should win, got title %q", app.Items()[2].Title)
	}

	src.release <- struct{}{}
	app = tickUntil(t, app, func(a App) bool { return strings.HasPrefix(a.Status(), "Error:") })
	if app.Status() != "Error: RSS: 503 Service Unavailable" {
		t.Errorf("status = %q", app.Status())
	}
	if !sameIDs(app.Items(), "C", "B", "A") {
		t.Errorf("items changed on error: %v", ids(app.Items()))
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancel")
	}

	tickUntil(t, app, func(a App) bool { return a.Status() == statusClosed })
}
