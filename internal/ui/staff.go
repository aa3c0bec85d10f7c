package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"qms/queue-client/internal/apiclient"
	"qms/queue-client/internal/models"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type assignedCounterMsg struct {
	counter *models.Counter
	err     error
}

type counterQueueMsg struct {
	entries []models.QueueEntry
}

type staffTickMsg struct{}

type servedMsg struct {
	id  int64
	err error
}

type staffView struct {
	ctx     context.Context
	deps    Deps
	counter *models.Counter
	entries []models.QueueEntry
	cursor  int
	loaded  bool
	loading bool
	err     string
}

func newStaffView(ctx context.Context, deps Deps) *staffView {
	return &staffView{ctx: ctx, deps: deps}
}

func (v *staffView) Mount() tea.Cmd {
	ctx, backend := v.ctx, v.deps.Backend
	return func() tea.Msg {
		counter, err := backend.AssignedCounter(ctx)
		return assignedCounterMsg{counter: counter, err: err}
	}
}

func (v *staffView) Unmount() {}

func (v *staffView) load() tea.Cmd {
	if v.counter == nil {
		return nil
	}
	v.loading = true
	ctx, backend, id := v.ctx, v.deps.Backend, v.counter.ID
	return func() tea.Msg {
		entries, err := backend.QueueByCounter(ctx, id)
		if err != nil {
			entries = nil
		}
		return counterQueueMsg{entries: entries}
	}
}

func (v *staffView) tick() tea.Cmd {
	return tea.Tick(v.deps.PollInterval, func(time.Time) tea.Msg { return staffTickMsg{} })
}

func (v *staffView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case assignedCounterMsg:
		v.loaded = true
		if msg.err != nil {
			if errorsIsUnauthorized(msg.err) {
				v.err = apiclient.MsgUnauthorized
			}
			v.counter = nil
			return nil
		}
		v.counter = msg.counter
		if v.counter == nil {
			return nil
		}
		return tea.Batch(v.load(), v.tick())
	case counterQueueMsg:
		v.loading = false
		v.entries = msg.entries
		if v.cursor >= len(v.entries) {
			v.cursor = max(len(v.entries)-1, 0)
		}
		return nil
	case staffTickMsg:
		return tea.Batch(v.load(), v.tick())
	case servedMsg:
		if msg.err != nil {
			v.err = apiclient.UserMessage(msg.err)
		} else {
			v.err = ""
		}
		return v.load()
	case tea.KeyMsg:
		keys := DefaultKeyMap
		switch {
		case key.Matches(msg, keys.Up):
			if v.cursor > 0 {
				v.cursor--
			}
		case key.Matches(msg, keys.Down):
			if v.cursor < len(v.entries)-1 {
				v.cursor++
			}
		case key.Matches(msg, keys.Refresh):
			return v.load()
		case key.Matches(msg, keys.Serve), key.Matches(msg, keys.Submit):
			if v.cursor >= len(v.entries) || v.entries[v.cursor].Served {
				return nil
			}
			id := v.entries[v.cursor].ID
			ctx, backend := v.ctx, v.deps.Backend
			return func() tea.Msg {
				return servedMsg{id: id, err: backend.MarkServed(ctx, id)}
			}
		}
	}
	return nil
}

func (v *staffView) View() string {
	out := style.title.Render("Staff Queue") + "\n"
	switch {
	case !v.loaded:
		return out + style.faint.Render("Loading assigned counter…")
	case v.counter == nil:
		out += style.faint.Render("No counter assigned to you yet.")
		if v.err != "" {
			out += "\n" + style.errText.Render(v.err)
		}
		return out
	}
	out += "Viewing queue for " + style.navOn.Render(v.counter.Name) + "\n\n"
	out += queueTable(v.entries, v.cursor, false)
	if v.err != "" {
		out += "\n" + style.errText.Render(v.err)
	}
	return out + style.help.Render("↑/↓: select · s/enter: serve now · r: refresh")
}

// queueTable renders entries with the selected row highlighted.
func queueTable(entries []models.QueueEntry, cursor int, withCounter bool) string {
	var b strings.Builder
	header := fmt.Sprintf("%-6s %-20s ", "ID", "Name")
	if withCounter {
		header += fmt.Sprintf("%-16s ", "Counter")
	}
	header += fmt.Sprintf("%-17s %s", "Joined", "Status")
	b.WriteString(style.faint.Render(header) + "\n")
	if len(entries) == 0 {
		b.WriteString(style.faint.Render("No tickets.") + "\n")
		return b.String()
	}
	for i, e := range entries {
		row := fmt.Sprintf("%-6d %-20s ", e.ID, truncate(orDash(e.UserName), 20))
		if withCounter {
			row += fmt.Sprintf("%-16s ", truncate(e.CounterName(), 16))
		}
		row += fmt.Sprintf("%-17s ", e.JoinedAt.Label())
		if i == cursor {
			row = style.selected.Render(row)
		}
		b.WriteString(row + statusBadge(e.Status()) + "\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
