package state

// UIState tracks the terminal size and the table cursor.
// The cursor is an absolute row index; offset is the first visible row.
type UIState struct {
	width  int
	height int
	cursor int
	offset int
}

// NewUIState creates a new UIState instance with default values.
func NewUIState() *UIState {
	return &UIState{
		width:  defaultViewportWidth,
		height: defaultViewportHeight,
	}
}

// GetWidth returns the current width of the UI.
func (u *UIState) GetWidth() int {
	return u.width
}

// GetHeight returns the current height of the UI.
func (u *UIState) GetHeight() int {
	return u.height
}

// SetSize updates the terminal size. Non-positive values fall back to defaults.
func (u *UIState) SetSize(width, height int) {
	if width <= 0 {
		width = defaultViewportWidth
	}
	if height <= 0 {
		height = defaultViewportHeight
	}
	u.width = width
	u.height = height
}

// PageHeight is the number of table rows that fit on screen.
func (u *UIState) PageHeight() int {
	h := u.height - chromeLines
	if h < 1 {
		return 1
	}
	return h
}

// GetCursor returns the selected row.
func (u *UIState) GetCursor() int {
	return u.cursor
}

// GetOffset returns the first visible row.
func (u *UIState) GetOffset() int {
	return u.offset
}

// SetCursor moves the cursor to row, clamped to [0, total), and scrolls it into view.
func (u *UIState) SetCursor(row, total int) {
	if total <= 0 {
		u.cursor = 0
		u.offset = 0
		return
	}
	if row >= total {
		row = total - 1
	}
	if row < 0 {
		row = 0
	}
	u.cursor = row
	page := u.PageHeight()
	if u.cursor < u.offset {
		u.offset = u.cursor
	}
	if u.cursor >= u.offset+page {
		u.offset = u.cursor - page + 1
	}
	if maxOffset := total - page; u.offset > maxOffset {
		u.offset = max(maxOffset, 0)
	}
}

// MoveCursor moves the cursor by delta rows.
func (u *UIState) MoveCursor(delta, total int) {
	u.SetCursor(u.cursor+delta, total)
}

// ResetCursor returns to the top of the table.
func (u *UIState) ResetCursor() {
	u.cursor = 0
	u.offset = 0
}
