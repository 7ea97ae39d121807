// Package ui provides the Bubble Tea TUI for skim.
package ui

import "time"

// tickMsg drives the control loop. Each tick drains the poll channel.
type tickMsg time.Time
