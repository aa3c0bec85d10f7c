package ui

import (
	"context"
	"fmt"

	"qms/queue-client/internal/ticketwatch"

	tea "github.com/charmbracelet/bubbletea"
)

type ticketStateMsg struct {
	state ticketwatch.State
}

// statusView renders one ticket. States arrive through a single-slot
// mailbox so the watcher never blocks on the UI.
type statusView struct {
	ctx        context.Context
	deps       Deps
	id         string
	controller *ticketwatch.Controller
	mailbox    chan ticketwatch.State
	state      ticketwatch.State
}

func newStatusView(ctx context.Context, deps Deps, id string) *statusView {
	return &statusView{
		ctx:     ctx,
		deps:    deps,
		id:      id,
		mailbox: make(chan ticketwatch.State, 1),
	}
}

func (v *statusView) Mount() tea.Cmd {
	if v.deps.Watcher == nil {
		return nil
	}
	v.controller = ticketwatch.NewController(v.ctx, v.deps.Watcher)
	v.controller.Watch(v.id, v.deliver)
	return v.receive()
}

func (v *statusView) Unmount() {
	if v.controller != nil {
		v.controller.Stop()
	}
}

// deliver replaces any undelivered state with the newest one.
func (v *statusView) deliver(s ticketwatch.State) {
	for {
		select {
		case v.mailbox <- s:
			return
		default:
		}
		select {
		case <-v.mailbox:
		default:
		}
	}
}

func (v *statusView) receive() tea.Cmd {
	ctx, mailbox := v.ctx, v.mailbox
	return func() tea.Msg {
		select {
		case s := <-mailbox:
			return ticketStateMsg{state: s}
		case <-ctx.Done():
			return nil
		}
	}
}

func (v *statusView) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(ticketStateMsg); ok {
		v.state = msg.state
		return v.receive()
	}
	return nil
}

func (v *statusView) View() string {
	out := style.title.Render("Queue Status") + "\n"
	if v.state.Notify {
		out += style.banner.Render(ticketwatch.NotificationBody) + "\n\n"
	}
	ticket := v.state.Ticket
	if ticket == nil {
		if v.state.Err == "" {
			out += style.faint.Render("Loading ticket "+v.id+"…") + "\n"
		}
	} else {
		out += fmt.Sprintf("%s%d\n", style.label.Render("Ticket ID"), ticket.ID)
		out += style.label.Render("Name") + orDash(ticket.UserName) + "\n"
		out += style.label.Render("Counter") + ticket.CounterName() + "\n"
		out += style.label.Render("Joined") + ticket.JoinedAt.Label() + "\n"
		out += style.label.Render("Position") + ticket.PositionLabel() + "\n"
		out += style.label.Render("Status") + statusBadge(ticketwatch.StatusLabel(ticket)) + "\n"
	}
	if v.state.Err != "" {
		out += "\n" + style.errText.Render(v.state.Err)
	}
	return out
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
