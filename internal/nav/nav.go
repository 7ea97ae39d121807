// Package nav implements the cursor over the merged item list.
package nav

// Command is an abstract navigation request decoded from user input.
type Command int

const (
	None Command = iota
	Next
	Previous
	First
	Last
	Quit
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case Next:
		return "next"
	case Previous:
		return "previous"
	case First:
		return "first"
	case Last:
		return "last"
	case Quit:
		return "quit"
	default:
		return "none"
	}
}

// Cursor is either unselected or selecting an index into a list of length n,
// where n is passed to every transition.
//
// Invariant: when selected, 0 <= index < n; when n == 0, nothing is selected.
type Cursor struct {
	index    int
	selected bool
}

// Selected returns the selected index, or false when nothing is selected.
func (c Cursor) Selected() (int, bool) {
	return c.index, c.selected
}

// Next moves down one row, clamping at the last index. From unselected it
// selects the first row.
func (c *Cursor) Next(n int) {
	if n <= 0 {
		return
	}
	if !c.selected {
		c.selectIndex(0)
		return
	}
	c.selectIndex(min(c.index+1, n-1))
}

// Previous moves up one row, clamping at zero. From unselected it selects
// the first row.
func (c *Cursor) Previous(n int) {
	if n <= 0 {
		return
	}
	if !c.selected {
		c.selectIndex(0)
		return
	}
	c.selectIndex(max(c.index-1, 0))
}

// First selects the first row of a non-empty list.
func (c *Cursor) First(n int) {
	if n > 0 {
		c.selectIndex(0)
	}
}

// Last selects the final row of a non-empty list.
func (c *Cursor) Last(n int) {
	if n > 0 {
		c.selectIndex(n - 1)
	}
}

// Clamp re-establishes the invariant after the list length changed to n.
// The list only grows today, so this is a no-op unless items are removed.
func (c *Cursor) Clamp(n int) {
	switch {
	case n <= 0:
		*c = Cursor{}
	case c.selected && c.index >= n:
		c.index = n - 1
	}
}

// Apply runs cmd against a list of length n and reports whether cmd asks
// the program to quit. Quit leaves the selection untouched.
func (c *Cursor) Apply(cmd Command, n int) (quit bool) {
	switch cmd {
	case Next:
		c.Next(n)
	case Previous:
		c.Previous(n)
	case First:
		c.First(n)
	case Last:
		c.Last(n)
	case Quit:
		return true
	}
	return false
}

func (c *Cursor) selectIndex(i int) {
	c.index = i
	c.selected = true
}
