package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/skim/internal/feed"
)

const (
	timestampLayout = "2006-01-02 15:04"
	noDate          = "no date"
	selectedMarker  = "▸ "
	plainMarker     = "  "
)

// RenderStream renders the visible window of items. selected is ignored
// unless hasSelection is true. A non-positive height renders every row.
func RenderStream(items []feed.Item, selected int, hasSelection bool, width, height int) string {
	if len(items) == 0 {
		return ""
	}

	cursor := -1
	if hasSelection {
		cursor = selected
	}

	start, end := 0, len(items)
	if height > 0 {
		start = calcScrollOffset(len(items), cursor, height)
		end = min(start+height, len(items))
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		if i > start {
			b.WriteByte('\n')
		}
		b.WriteString(renderRow(items[i], i == cursor, width))
	}
	return b.String()
}

// renderRow formats one item as "<date> <title> [<source>]".
func renderRow(it feed.Item, selected bool, width int) string {
	marker := plainMarker
	if selected {
		marker = selectedMarker
	}

	stamp := formatTimestamp(it)
	badge := "[" + it.SourceLabel + "]"
	title := it.Title

	if width > 0 {
		fixed := lipgloss.Width(marker) + len(timestampLayout) + 1 + 1 + lipgloss.Width(badge)
		title = truncate(title, width-fixed)
	}

	if selected {
		return SelectedItem.Render(fmt.Sprintf("%s%-16s %s %s", marker, stamp, title, badge))
	}
	return marker +
		TimestampStyle.Render(fmt.Sprintf("%-16s", stamp)) + " " +
		NormalItem.Render(title) + " " +
		SourceBadge.Render(badge)
}

func formatTimestamp(it feed.Item) string {
	if it.Published == nil {
		return noDate
	}
	return it.Published.UTC().Format(timestampLayout)
}

// truncate shortens s to at most limit display cells, marking the cut with "…".
func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= limit {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// calcScrollOffset returns the first visible row so that cursor stays on screen.
func calcScrollOffset(n, cursor, availableHeight int) int {
	if n == 0 || cursor < 0 || availableHeight <= 0 {
		return 0
	}
	if cursor >= n {
		cursor = n - 1
	}
	if cursor >= availableHeight {
		return cursor - availableHeight + 1
	}
	return 0
}

// RenderStatusBar renders the status line: status text, item count, and key hints.
func RenderStatusBar(status string, count int, hints string, width int) string {
	statusText := StatusBarText.Render(status)
	if strings.HasPrefix(status, "Error:") {
		statusText = ErrorStyle.Render(status)
	}

	left := statusText + StatusBarText.Render(fmt.Sprintf("  ·  %d items", count))
	if hints == "" {
		return StatusBar.Width(max(width, 0)).Render(left)
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(hints) - 2
	if gap < 2 {
		gap = 2
	}
	return StatusBar.Render(left + strings.Repeat(" ", gap) + hints)
}
