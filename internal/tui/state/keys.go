package state

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings of the table view.
type keyMap struct {
	Down        key.Binding
	Up          key.Binding
	HalfDown    key.Binding
	HalfUp      key.Binding
	Top         key.Binding
	Bottom      key.Binding
	NextModule  key.Binding
	PrevModule  key.Binding
	ToggleInput key.Binding
	Rename      key.Binding
	Columns     key.Binding
	Undo        key.Binding
	Redo        key.Binding
	Reload      key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/k", "rows")),
		Up:          key.NewBinding(key.WithKeys("k", "up")),
		HalfDown:    key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d/u", "half page")),
		HalfUp:      key.NewBinding(key.WithKeys("ctrl+u")),
		Top:         key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g/G", "top/bottom")),
		Bottom:      key.NewBinding(key.WithKeys("G", "end")),
		NextModule:  key.NewBinding(key.WithKeys("tab", "]"), key.WithHelp("tab/[]", "module")),
		PrevModule:  key.NewBinding(key.WithKeys("shift+tab", "[")),
		ToggleInput: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "input/output")),
		Rename:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		Columns:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "columns")),
		Undo:        key.NewBinding(key.WithKeys("u"), key.WithHelp("u/U", "undo/redo")),
		Redo:        key.NewBinding(key.WithKeys("U")),
		Reload:      key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.NextModule, k.ToggleInput, k.Columns, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Down, k.HalfDown, k.Top},
		{k.NextModule, k.ToggleInput, k.Columns},
		{k.Rename, k.Undo, k.Reload},
		{k.Help, k.Quit},
	}
}

// pickerKeyMap holds the bindings of the column selector.
type pickerKeyMap struct {
	Down   key.Binding
	Up     key.Binding
	Toggle key.Binding
	Close  key.Binding
}

func defaultPickerKeyMap() pickerKeyMap {
	return pickerKeyMap{
		Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/k", "move")),
		Up:     key.NewBinding(key.WithKeys("k", "up")),
		Toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		Close:  key.NewBinding(key.WithKeys("esc", "c", "q"), key.WithHelp("esc", "close")),
	}
}

func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Toggle, k.Close}
}

func (k pickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
