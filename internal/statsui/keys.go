package statsui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Prev     key.Binding
	Next     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Narrower key.Binding
	Wider    key.Binding
	EditKeys key.Binding
	Filter   key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	k := keyMap{
		Prev:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev tab")),
		Next:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next tab")),
		Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Narrower: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "window-")),
		Wider:    key.NewBinding(key.WithKeys("=", "+"), key.WithHelp("=", "window+")),
		EditKeys: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit keys")),
		Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filters")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
	// Only the Key Curves tab has a key list to edit.
	k.EditKeys.SetEnabled(false)
	return k
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.EditKeys, k.Narrower, k.Wider, k.Filter, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.Top, k.Bottom},
		{k.Narrower, k.Wider, k.EditKeys},
		{k.Filter, k.Reload, k.Help, k.Quit},
	}
}
