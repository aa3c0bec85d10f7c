package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the global bindings. View-local actions use single letters
// only on screens without free-text input.
type KeyMap struct {
	Quit      key.Binding
	Home      key.Binding
	Dashboard key.Binding
	Password  key.Binding
	Logout    key.Binding
	GoTo      key.Binding

	Next   key.Binding
	Prev   key.Binding
	Up     key.Binding
	Down   key.Binding
	Submit key.Binding
	Cancel key.Binding

	Refresh key.Binding
	Serve   key.Binding
	Add     key.Binding
	Delete  key.Binding
	Assign  key.Binding
	Filter  key.Binding
	Export  key.Binding
	Create  key.Binding
	Tab1    key.Binding
	Tab2    key.Binding
	Tab3    key.Binding

	Allow key.Binding
	Deny  key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	Home:      key.NewBinding(key.WithKeys("f1"), key.WithHelp("F1", "home")),
	Dashboard: key.NewBinding(key.WithKeys("f2"), key.WithHelp("F2", "login/dashboard")),
	Password:  key.NewBinding(key.WithKeys("f3"), key.WithHelp("F3", "password")),
	Logout:    key.NewBinding(key.WithKeys("f4"), key.WithHelp("F4", "logout")),
	GoTo:      key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "go to / scan")),

	Next:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous field")),
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
	Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),

	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Serve:   key.NewBinding(key.WithKeys("s", "m"), key.WithHelp("s", "serve")),
	Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add counter")),
	Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Assign:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "assign staff")),
	Filter:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
	Export:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export xlsx")),
	Create:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "create user")),
	Tab1:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "counters")),
	Tab2:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "queues")),
	Tab3:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "users")),

	Allow: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "allow")),
	Deny:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "deny")),
}
