package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit   key.Binding
	Help   key.Binding
	Today  key.Binding
	Leader key.Binding
	Edit   key.Binding
	Delete key.Binding
	Escape key.Binding

	Left  key.Binding
	Down  key.Binding
	Up    key.Binding
	Right key.Binding

	PrevMonth key.Binding
	NextMonth key.Binding
	PrevYear  key.Binding
	NextYear  key.Binding

	Tab key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:   key.NewBinding(key.WithKeys("q", "Q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Today:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Leader: key.NewBinding(key.WithKeys(","), key.WithHelp(",", "leader")),
		Edit:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "edit/create")),
		Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("dd", "delete")),
		Escape: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),

		Left:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h", "left")),
		Down:  key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		Up:    key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Right: key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l", "right")),

		PrevMonth: key.NewBinding(key.WithKeys("ctrl+h"), key.WithHelp("ctrl+h", "prev month")),
		NextMonth: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "next month")),
		PrevYear:  key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "prev year")),
		NextYear:  key.NewBinding(key.WithKeys("ctrl+j"), key.WithHelp("ctrl+j", "next year")),

		Tab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "cycle/focus")),
	}
}

var helpLines = []string{
	"tcal shortcuts",
	"",
	"q            quit",
	"?            toggle this help",
	"t            jump to today",
	"i            edit/create task",
	"dd           delete selected task",
	"hjkl         navigate (agenda/month)",
	"ctrl+h/l     month: prev/next month",
	"ctrl+k/j     month: prev/next year",
	",a / ,m      switch agenda / month",
	",n           create new task",
	"tab          agenda: cycle buckets, month: grid <-> tasks",
	"esc          dismiss overlays",
}
