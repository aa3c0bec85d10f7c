package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"qms/queue-client/internal/models"
	"qms/queue-client/internal/router"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	msgJoinDefault  = "Unable to join queue."
	msgJoinRequired = "Please enter your name and choose a counter."
)

type countersLoadedMsg struct {
	counters []models.Counter
}

type joinedMsg struct {
	entry models.QueueEntry
	err   error
}

type joinView struct {
	ctx      context.Context
	deps     Deps
	form     *form
	counters []models.Counter
	ticket   *models.QueueEntry
	qr       string
	err      string
	loading  bool
}

func newJoinView(ctx context.Context, deps Deps) *joinView {
	return &joinView{
		ctx:  ctx,
		deps: deps,
		form: newForm(
			textField("Your name", "Enter your name"),
			choiceField("Counter", []choice{{label: "-- Choose a counter --"}}),
		),
	}
}

func (v *joinView) Mount() tea.Cmd {
	ctx, backend := v.ctx, v.deps.Backend
	load := func() tea.Msg {
		counters, err := backend.PublicCounters(ctx)
		if err != nil {
			counters = nil
		}
		return countersLoadedMsg{counters: counters}
	}
	return tea.Batch(v.form.Focus(), load)
}

func (v *joinView) Unmount() {}

// StatusURL is the link encoded into the ticket's QR code.
func StatusURL(publicURL string, id int64) string {
	return strings.TrimRight(publicURL, "/") + router.StatusPath(strconv.FormatInt(id, 10))
}

func (v *joinView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case countersLoadedMsg:
		v.counters = msg.counters
		choices := []choice{{label: "-- Choose a counter --"}}
		for _, c := range msg.counters {
			label := c.Name
			if c.Location != "" {
				label += " - " + c.Location
			}
			choices = append(choices, choice{label: label, value: strconv.FormatInt(c.ID, 10)})
		}
		v.form.fields[1].setChoices(choices)
		return nil
	case joinedMsg:
		v.loading = false
		if msg.err != nil {
			v.err = messageOr(msg.err, msgJoinDefault)
			return nil
		}
		entry := msg.entry
		v.ticket = &entry
		url := StatusURL(v.deps.PublicURL, entry.ID)
		if code, err := qrcode.New(url, qrcode.Medium); err == nil {
			v.qr = code.ToSmallString(false)
		} else {
			v.qr = ""
		}
		v.form.Blur()
		return nil
	}

	if v.ticket != nil {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(keyMsg, DefaultKeyMap.Submit):
				return navigate(router.StatusPath(strconv.FormatInt(v.ticket.ID, 10)))
			case key.Matches(keyMsg, DefaultKeyMap.Cancel):
				v.ticket, v.qr = nil, ""
				return v.form.Reset()
			}
		}
		return nil
	}

	submitted, cmd := v.form.Update(msg)
	if !submitted || v.loading {
		return cmd
	}
	name := v.form.Value(0)
	counterID, _ := strconv.ParseInt(v.form.Value(1), 10, 64)
	if name == "" || counterID == 0 {
		v.err = msgJoinRequired
		return nil
	}
	v.err = ""
	v.loading = true
	ctx, backend := v.ctx, v.deps.Backend
	input := models.JoinQueueInput{UserName: name, CounterID: counterID}
	return func() tea.Msg {
		entry, err := backend.JoinQueue(ctx, input)
		return joinedMsg{entry: entry, err: err}
	}
}

func (v *joinView) View() string {
	out := style.title.Render("Join Queue") + "\n"
	if v.ticket == nil {
		out += v.form.View()
		if len(v.counters) == 0 {
			out += style.faint.Render("No counters available.") + "\n"
		}
		if v.loading {
			out += style.faint.Render("Getting ticket…") + "\n"
		}
		if v.err != "" {
			out += "\n" + style.errText.Render(v.err)
		}
		return out + style.help.Render("tab: next field · ←/→: choose counter · enter: get ticket")
	}

	out += style.okText.Render("Your Ticket") + "\n"
	out += fmt.Sprintf("Ticket ID: %d\n", v.ticket.ID)
	out += "Status:    " + StatusURL(v.deps.PublicURL, v.ticket.ID) + "\n\n"
	if v.qr != "" {
		out += v.qr + "\n"
	}
	return out + style.help.Render("enter: view live status · esc: new ticket")
}
