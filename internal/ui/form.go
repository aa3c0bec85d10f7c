package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type choice struct {
	label string
	value string
}

// field is either a text input or a fixed list of choices cycled with the
// left and right arrows.
type field struct {
	label    string
	input    textinput.Model
	choices  []choice
	selected int
}

func textField(label, placeholder string) *field {
	input := textinput.New()
	input.Placeholder = placeholder
	input.Prompt = ""
	input.Width = 32
	return &field{label: label, input: input}
}

func passwordField(label, placeholder string) *field {
	f := textField(label, placeholder)
	f.input.EchoMode = textinput.EchoPassword
	f.input.EchoCharacter = '•'
	return f
}

func choiceField(label string, choices []choice) *field {
	return &field{label: label, choices: choices}
}

func (f *field) isChoice() bool {
	return f.choices != nil
}

func (f *field) value() string {
	if f.isChoice() {
		if len(f.choices) == 0 {
			return ""
		}
		return f.choices[f.selected].value
	}
	return strings.TrimSpace(f.input.Value())
}

func (f *field) setChoices(choices []choice) {
	current := f.value()
	f.choices = choices
	f.selected = 0
	for i, c := range choices {
		if c.value == current {
			f.selected = i
		}
	}
}

func (f *field) reset() {
	if f.isChoice() {
		f.selected = 0
		return
	}
	f.input.SetValue("")
}

type form struct {
	fields []*field
	focus  int
	keys   KeyMap
}

func newForm(fields ...*field) *form {
	return &form{fields: fields, keys: DefaultKeyMap}
}

func (f *form) Focus() tea.Cmd {
	return f.focusField(0)
}

func (f *form) Blur() {
	for _, fl := range f.fields {
		if !fl.isChoice() {
			fl.input.Blur()
		}
	}
}

func (f *form) focusField(i int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	if i < 0 {
		i = len(f.fields) - 1
	}
	f.focus = i % len(f.fields)
	var cmd tea.Cmd
	for idx, fl := range f.fields {
		if fl.isChoice() {
			continue
		}
		if idx == f.focus {
			cmd = fl.input.Focus()
		} else {
			fl.input.Blur()
		}
	}
	return cmd
}

func (f *form) Value(i int) string {
	return f.fields[i].value()
}

func (f *form) Set(i int, value string) {
	f.fields[i].input.SetValue(value)
}

func (f *form) Reset() tea.Cmd {
	for _, fl := range f.fields {
		fl.reset()
	}
	return f.focusField(0)
}

// Update reports submitted when enter is pressed on the last field.
func (f *form) Update(msg tea.Msg) (bool, tea.Cmd) {
	current := f.fields[f.focus]
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, f.keys.Submit):
			if f.focus == len(f.fields)-1 {
				return true, nil
			}
			return false, f.focusField(f.focus + 1)
		case key.Matches(keyMsg, f.keys.Next), keyMsg.Type == tea.KeyDown:
			return false, f.focusField(f.focus + 1)
		case key.Matches(keyMsg, f.keys.Prev), keyMsg.Type == tea.KeyUp:
			return false, f.focusField(f.focus - 1)
		}
		if current.isChoice() {
			switch keyMsg.Type {
			case tea.KeyLeft:
				if n := len(current.choices); n > 0 {
					current.selected = (current.selected - 1 + n) % n
				}
			case tea.KeyRight, tea.KeySpace:
				if n := len(current.choices); n > 0 {
					current.selected = (current.selected + 1) % n
				}
			}
			return false, nil
		}
	}
	if current.isChoice() {
		return false, nil
	}
	var cmd tea.Cmd
	current.input, cmd = current.input.Update(msg)
	return false, cmd
}

func (f *form) View() string {
	var b strings.Builder
	for i, fl := range f.fields {
		marker := "  "
		if i == f.focus {
			marker = style.navOn.Render("› ")
		}
		b.WriteString(marker)
		b.WriteString(style.label.Render(fl.label))
		if fl.isChoice() {
			label := "-"
			if len(fl.choices) > 0 {
				label = fl.choices[fl.selected].label
			}
			if i == f.focus {
				label = "‹ " + label + " ›"
			}
			b.WriteString(label)
		} else {
			b.WriteString(fl.input.View())
		}
		b.WriteString("\n")
	}
	return b.String()
}
