package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"qms/queue-client/internal/apiclient"
	"qms/queue-client/internal/models"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

const (
	ReportFileName = "queue_report.xlsx"

	msgLoadFailed      = "Error loading data."
	msgFilterFailed    = "Error applying filter."
	msgExportFailed    = "Failed to download Excel file."
	msgCreateFailed    = "Failed to create counter."
	msgDeleteFailed    = "Failed to delete counter."
	msgServeFailed     = "Failed to update ticket status."
	msgAssignFailed    = "Failed to assign staff."
	msgUserFailed      = "Error creating user."
	msgUserCreated     = "User created and credentials sent to email."
	msgCounterCreated  = "Counter created"
	msgCounterDeleted  = "Counter deleted"
	msgBadDailyLimit   = "Daily limit must be a positive number."
	msgBadDate         = "Dates must use the YYYY-MM-DD format."
	msgMissingUserInfo = "Username and email are required."
)

type adminTab int

const (
	tabCounters adminTab = iota
	tabQueues
	tabUsers
)

type adminMode int

const (
	modeBrowse adminMode = iota
	modeAddCounter
	modeCreateUser
	modeFilter
	modeAssign
)

type adminDataMsg struct {
	counters []models.Counter
	entries  []models.QueueEntry
	err      error
}

type usersMsg struct {
	users []models.User
	err   error
}

type staffListMsg struct {
	staff []models.Staff
}

type filteredMsg struct {
	entries []models.QueueEntry
	err     error
}

type adminActionMsg struct {
	ok     string
	failed string
	err    error
	reload bool
	users  bool
}

type adminView struct {
	ctx  context.Context
	deps Deps
	tab  adminTab
	mode adminMode

	counters []models.Counter
	entries  []models.QueueEntry
	users    []models.User
	staff    []models.Staff

	counterCursor int
	queueCursor   int
	userCursor    int
	staffCursor   int

	counterForm *form
	userForm    *form
	filterForm  *form
	filter      models.ReportFilter
	filtered    bool

	loading bool
	msg     string
	err     string
}

func newAdminView(ctx context.Context, deps Deps) *adminView {
	return &adminView{
		ctx:  ctx,
		deps: deps,
		counterForm: newForm(
			textField("Name", "Counter name"),
			textField("Daily limit", "e.g. 100"),
		),
		userForm: newForm(
			textField("Username", "Username"),
			textField("Email", "Email"),
			choiceField("Role", []choice{{label: "STAFF", value: "STAFF"}, {label: "ADMIN", value: "ADMIN"}}),
		),
		filterForm: newForm(
			textField("Start date", "YYYY-MM-DD"),
			textField("End date", "YYYY-MM-DD"),
			choiceField("Counter", []choice{{label: "All"}}),
			choiceField("Status", []choice{
				{label: "All"},
				{label: "Waiting", value: apiclient.FilterWaiting},
				{label: "Served", value: apiclient.FilterServed},
			}),
		),
	}
}

func (v *adminView) Mount() tea.Cmd {
	return tea.Batch(v.load(), v.loadUsers(), v.loadStaff())
}

func (v *adminView) Unmount() {}

func (v *adminView) load() tea.Cmd {
	v.loading = true
	ctx, backend := v.ctx, v.deps.Backend
	return func() tea.Msg {
		counters, err := backend.AdminCounters(ctx)
		if err != nil {
			return adminDataMsg{err: err}
		}
		entries, err := backend.AllQueues(ctx)
		if err != nil {
			return adminDataMsg{err: err}
		}
		return adminDataMsg{counters: counters, entries: entries}
	}
}

func (v *adminView) loadUsers() tea.Cmd {
	ctx, backend := v.ctx, v.deps.Backend
	return func() tea.Msg {
		users, err := backend.Users(ctx)
		return usersMsg{users: users, err: err}
	}
}

func (v *adminView) loadStaff() tea.Cmd {
	ctx, backend := v.ctx, v.deps.Backend
	return func() tea.Msg {
		staff, err := backend.AllStaff(ctx)
		if err != nil {
			staff = nil
		}
		return staffListMsg{staff: staff}
	}
}

// action runs fn and reports ok or failed; reload refreshes counters and
// queues afterwards.
func (v *adminView) action(ok, failed string, reload bool, fn func(context.Context, Backend) error) tea.Cmd {
	ctx, backend := v.ctx, v.deps.Backend
	return func() tea.Msg {
		err := fn(ctx, backend)
		return adminActionMsg{ok: ok, failed: failed, err: err, reload: reload}
	}
}

func (v *adminView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case adminDataMsg:
		v.loading = false
		if msg.err != nil {
			if errors.Is(msg.err, apiclient.ErrUnauthorized) {
				v.err = apiclient.MsgUnauthorized
			} else {
				v.err = msgLoadFailed
			}
			return nil
		}
		v.err = ""
		v.filtered = false
		v.counters = msg.counters
		v.entries = msg.entries
		v.clampCursors()
		choices := []choice{{label: "All"}}
		for _, c := range v.counters {
			choices = append(choices, choice{label: c.Name, value: strconv.FormatInt(c.ID, 10)})
		}
		v.filterForm.fields[2].setChoices(choices)
		return nil
	case usersMsg:
		if msg.err == nil {
			v.users = msg.users
			v.clampCursors()
		}
		return nil
	case staffListMsg:
		v.staff = msg.staff
		return nil
	case filteredMsg:
		v.loading = false
		if msg.err != nil {
			v.err = msgFilterFailed
			return nil
		}
		v.err = ""
		v.filtered = true
		v.entries = msg.entries
		v.clampCursors()
		return nil
	case adminActionMsg:
		if msg.err != nil {
			v.msg = ""
			v.err = msg.failed
			if msg.users {
				v.err = backendText(msg.err)
			}
			return nil
		}
		v.err = ""
		v.msg = msg.ok
		switch {
		case msg.users:
			return v.loadUsers()
		case msg.reload:
			return v.load()
		}
		return nil
	}

	switch v.mode {
	case modeAddCounter:
		return v.updateCounterForm(msg)
	case modeCreateUser:
		return v.updateUserForm(msg)
	case modeFilter:
		return v.updateFilterForm(msg)
	case modeAssign:
		return v.updateAssign(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	return v.browseKey(keyMsg)
}

func (v *adminView) browseKey(msg tea.KeyMsg) tea.Cmd {
	keys := DefaultKeyMap
	switch {
	case key.Matches(msg, keys.Tab1):
		v.tab = tabCounters
	case key.Matches(msg, keys.Tab2):
		v.tab = tabQueues
	case key.Matches(msg, keys.Tab3):
		v.tab = tabUsers
	case key.Matches(msg, keys.Next):
		v.tab = (v.tab + 1) % 3
	case key.Matches(msg, keys.Up):
		v.moveCursor(-1)
	case key.Matches(msg, keys.Down):
		v.moveCursor(1)
	case key.Matches(msg, keys.Refresh):
		v.msg = ""
		if v.tab == tabUsers {
			return v.loadUsers()
		}
		return v.load()
	}

	switch v.tab {
	case tabCounters:
		return v.counterKey(msg)
	case tabQueues:
		return v.queueKey(msg)
	case tabUsers:
		if key.Matches(msg, keys.Create) {
			v.mode = modeCreateUser
			return v.userForm.Reset()
		}
	}
	return nil
}

func (v *adminView) counterKey(msg tea.KeyMsg) tea.Cmd {
	keys := DefaultKeyMap
	switch {
	case key.Matches(msg, keys.Add):
		v.mode = modeAddCounter
		return v.counterForm.Reset()
	case key.Matches(msg, keys.Delete):
		if v.counterCursor >= len(v.counters) {
			return nil
		}
		id := v.counters[v.counterCursor].ID
		return v.action(msgCounterDeleted, msgDeleteFailed, true, func(ctx context.Context, b Backend) error {
			return b.DeleteCounter(ctx, id)
		})
	case key.Matches(msg, keys.Assign):
		if v.counterCursor >= len(v.counters) || len(v.staff) == 0 {
			return nil
		}
		v.mode = modeAssign
		v.staffCursor = 0
		if assigned := v.counters[v.counterCursor].AssignedStaff; assigned != nil {
			for i, s := range v.staff {
				if s.ID == assigned.ID {
					v.staffCursor = i
				}
			}
		}
	}
	return nil
}

func (v *adminView) queueKey(msg tea.KeyMsg) tea.Cmd {
	keys := DefaultKeyMap
	switch {
	case key.Matches(msg, keys.Serve), key.Matches(msg, keys.Submit):
		if v.queueCursor >= len(v.entries) || v.entries[v.queueCursor].Served {
			return nil
		}
		id := v.entries[v.queueCursor].ID
		return v.action(fmt.Sprintf("Ticket %d marked as served", id), msgServeFailed, true, func(ctx context.Context, b Backend) error {
			return b.MarkServed(ctx, id)
		})
	case key.Matches(msg, keys.Filter):
		v.mode = modeFilter
		return v.filterForm.Focus()
	case key.Matches(msg, keys.Export):
		return v.export()
	}
	return nil
}

func (v *adminView) updateCounterForm(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, DefaultKeyMap.Cancel) {
		v.mode = modeBrowse
		v.counterForm.Blur()
		return nil
	}
	submitted, cmd := v.counterForm.Update(msg)
	if !submitted {
		return cmd
	}
	limit, err := strconv.Atoi(v.counterForm.Value(1))
	name := v.counterForm.Value(0)
	if name == "" {
		v.err = msgFillAllFields
		return nil
	}
	if err != nil || limit < 1 {
		v.err = msgBadDailyLimit
		return nil
	}
	v.mode = modeBrowse
	v.counterForm.Blur()
	input := models.CreateCounterInput{Name: name, DailyLimit: limit}
	return v.action(msgCounterCreated, msgCreateFailed, true, func(ctx context.Context, b Backend) error {
		_, err := b.CreateCounter(ctx, input)
		return err
	})
}

func (v *adminView) updateUserForm(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, DefaultKeyMap.Cancel) {
		v.mode = modeBrowse
		v.userForm.Blur()
		return nil
	}
	submitted, cmd := v.userForm.Update(msg)
	if !submitted {
		return cmd
	}
	input := models.CreateUserInput{
		Username: v.userForm.Value(0),
		Email:    v.userForm.Value(1),
		Role:     v.userForm.Value(2),
	}
	if input.Username == "" || input.Email == "" {
		v.err = msgMissingUserInfo
		return nil
	}
	v.mode = modeBrowse
	v.userForm.Blur()
	ctx, backend := v.ctx, v.deps.Backend
	return func() tea.Msg {
		_, err := backend.CreateUser(ctx, input)
		return adminActionMsg{ok: msgUserCreated, failed: msgUserFailed, err: err, users: true}
	}
}

func validDate(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func (v *adminView) updateFilterForm(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, DefaultKeyMap.Cancel) {
		v.mode = modeBrowse
		v.filterForm.Blur()
		return nil
	}
	submitted, cmd := v.filterForm.Update(msg)
	if !submitted {
		return cmd
	}
	filter := models.ReportFilter{StartDate: v.filterForm.Value(0), EndDate: v.filterForm.Value(1)}
	if !validDate(filter.StartDate) || !validDate(filter.EndDate) {
		v.err = msgBadDate
		return nil
	}
	counterID, _ := strconv.ParseInt(v.filterForm.Value(2), 10, 64)
	status := v.filterForm.Value(3)

	v.mode = modeBrowse
	v.filterForm.Blur()
	v.filter = filter
	v.loading = true
	ctx, backend := v.ctx, v.deps.Backend
	return func() tea.Msg {
		entries, err := backend.FilterReport(ctx, filter)
		if err != nil {
			return filteredMsg{err: err}
		}
		return filteredMsg{entries: apiclient.FilterEntries(entries, counterID, status)}
	}
}

func (v *adminView) updateAssign(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	keys := DefaultKeyMap
	switch {
	case key.Matches(keyMsg, keys.Cancel):
		v.mode = modeBrowse
	case key.Matches(keyMsg, keys.Up):
		if v.staffCursor > 0 {
			v.staffCursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if v.staffCursor < len(v.staff)-1 {
			v.staffCursor++
		}
	case key.Matches(keyMsg, keys.Submit):
		v.mode = modeBrowse
		if v.counterCursor >= len(v.counters) || v.staffCursor >= len(v.staff) {
			return nil
		}
		counter := v.counters[v.counterCursor]
		staff := v.staff[v.staffCursor]
		note := fmt.Sprintf("Assigned %s to %s", staff.Username, counter.Name)
		return v.action(note, msgAssignFailed, true, func(ctx context.Context, b Backend) error {
			_, err := b.AssignStaff(ctx, counter.ID, staff.ID)
			return err
		})
	}
	return nil
}

// export saves the report for the current date filter under the report
// directory.
func (v *adminView) export() tea.Cmd {
	ctx, backend, filter := v.ctx, v.deps.Backend, v.filter
	path := filepath.Join(v.deps.ReportDir, ReportFileName)
	logger := v.deps.Logger
	return func() tea.Msg {
		data, err := backend.DownloadReport(ctx, filter)
		if err == nil {
			err = os.WriteFile(path, data, 0o644)
		}
		if err != nil {
			logger.Warn("report export failed", zap.String("path", path), zap.Error(err))
		}
		return adminActionMsg{ok: "Report saved to " + path, failed: msgExportFailed, err: err}
	}
}

func (v *adminView) moveCursor(delta int) {
	move := func(cursor *int, n int) {
		*cursor += delta
		if *cursor >= n {
			*cursor = n - 1
		}
		if *cursor < 0 {
			*cursor = 0
		}
	}
	switch v.tab {
	case tabCounters:
		move(&v.counterCursor, len(v.counters))
	case tabQueues:
		move(&v.queueCursor, len(v.entries))
	case tabUsers:
		move(&v.userCursor, len(v.users))
	}
}

func (v *adminView) clampCursors() {
	clamp := func(cursor *int, n int) {
		if *cursor >= n {
			*cursor = max(n-1, 0)
		}
	}
	clamp(&v.counterCursor, len(v.counters))
	clamp(&v.queueCursor, len(v.entries))
	clamp(&v.userCursor, len(v.users))
}

func (v *adminView) View() string {
	tabs := []string{"1 Counters", "2 All Queues", "3 Manage Roles"}
	for i := range tabs {
		if adminTab(i) == v.tab {
			tabs[i] = style.navOn.Render("[" + tabs[i] + "]")
		} else {
			tabs[i] = style.navLink.Render(" " + tabs[i] + " ")
		}
	}
	out := style.title.Render("Admin Dashboard") + "\n" + strings.Join(tabs, " ") + "\n\n"

	switch v.tab {
	case tabCounters:
		out += v.countersView()
	case tabQueues:
		out += v.queuesView()
	case tabUsers:
		out += v.usersView()
	}
	if v.loading {
		out += "\n" + style.faint.Render("Loading…")
	}
	if v.msg != "" {
		out += "\n" + style.okText.Render(v.msg)
	}
	if v.err != "" {
		out += "\n" + style.errText.Render(v.err)
	}
	return out
}

func (v *adminView) countersView() string {
	if v.mode == modeAddCounter {
		return "Add Counter\n" + v.counterForm.View() + style.help.Render("enter: add · esc: cancel")
	}
	if v.mode == modeAssign {
		var b strings.Builder
		b.WriteString("Assign staff to " + v.counters[v.counterCursor].Name + "\n")
		for i, s := range v.staff {
			row := "  " + s.Username
			if i == v.staffCursor {
				row = style.selected.Render("› " + s.Username)
			}
			b.WriteString(row + "\n")
		}
		return b.String() + style.help.Render("enter: assign · esc: cancel")
	}

	var b strings.Builder
	b.WriteString(style.faint.Render(fmt.Sprintf("%-6s %-20s %-8s %-16s %s", "ID", "Name", "Limit", "Staff", "Waiting")) + "\n")
	if len(v.counters) == 0 {
		b.WriteString(style.faint.Render("No counters yet.") + "\n")
	}
	for i, c := range v.counters {
		row := fmt.Sprintf("%-6d %-20s %-8d %-16s %d", c.ID, truncate(c.Name, 20), c.DailyLimit, truncate(c.StaffName(), 16), c.WaitingCount)
		if i == v.counterCursor {
			row = style.selected.Render(row)
		}
		b.WriteString(row + "\n")
	}
	return b.String() + style.help.Render("a: add · d: delete · p: assign staff · r: refresh · tab/1-3: switch")
}

func (v *adminView) queuesView() string {
	if v.mode == modeFilter {
		return "Filter\n" + v.filterForm.View() + style.help.Render("←/→: choose · enter: apply · esc: cancel")
	}
	out := ""
	if v.filtered {
		out += style.faint.Render(fmt.Sprintf("Filtered %s → %s", orDash(v.filter.StartDate), orDash(v.filter.EndDate))) + "\n"
	}
	out += queueTable(v.entries, v.queueCursor, true)
	return out + style.help.Render("s/enter: mark served · f: filter · x: export xlsx · r: refresh")
}

func (v *adminView) usersView() string {
	if v.mode == modeCreateUser {
		return "Create User\n" + v.userForm.View() + style.help.Render("←/→: role · enter: create · esc: cancel")
	}
	var b strings.Builder
	b.WriteString(style.faint.Render(fmt.Sprintf("%-20s %-28s %s", "Username", "Email", "Role")) + "\n")
	if len(v.users) == 0 {
		b.WriteString(style.faint.Render("No users.") + "\n")
	}
	for i, u := range v.users {
		row := fmt.Sprintf("%-20s %-28s %s", truncate(u.Username, 20), truncate(u.Email, 28), u.Role)
		if i == v.userCursor {
			row = style.selected.Render(row)
		}
		b.WriteString(row + "\n")
	}
	return b.String() + style.help.Render("c: create user · r: refresh")
}
