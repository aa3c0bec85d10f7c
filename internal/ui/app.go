package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"qms/queue-client/internal/notify"
	"qms/queue-client/internal/router"
	"qms/queue-client/internal/session"
	"qms/queue-client/internal/ticketwatch"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// View is one screen. Mount starts its loading; Unmount releases timers and
// subscriptions. Commands returned by a view are tied to the mount that
// produced them, so their results are dropped once the view is gone.
type View interface {
	Mount() tea.Cmd
	Unmount()
	Update(msg tea.Msg) tea.Cmd
	View() string
}

type Deps struct {
	Backend      Backend
	Session      *session.Store
	Watcher      *ticketwatch.Watcher
	Permissions  *PermissionBridge
	PublicURL    string
	ReportDir    string
	PollInterval time.Duration
	Logger       *zap.Logger
}

type navigateMsg struct {
	to string
}

func navigate(to string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{to: to} }
}

type scopedMsg struct {
	gen uint64
	msg tea.Msg
}

type sessionRestoredMsg struct{}

type sessionChangedMsg struct{}

type loggedOutMsg struct{}

// scope tags cmd's result with the mount generation that issued it.
func scope(gen uint64, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return func() tea.Msg {
		return scopedMsg{gen: gen, msg: cmd()}
	}
}

type App struct {
	deps Deps
	ctx  context.Context
	gate *router.Gate
	keys KeyMap

	path     string
	pending  string
	route    router.Route
	view     View
	cancel   context.CancelFunc
	gen      uint64
	notFound bool

	sessionChanged chan struct{}
	prompt         *permissionRequest
	goTo           *textinput.Model
	flash          string
	width          int
}

func NewApp(ctx context.Context, deps Deps, start string) *App {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.PollInterval <= 0 {
		deps.PollInterval = 4 * time.Second
	}
	if start == "" {
		start = router.PathHome
	}
	a := &App{
		deps:           deps,
		ctx:            ctx,
		gate:           router.NewGate(nil),
		keys:           DefaultKeyMap,
		pending:        start,
		sessionChanged: make(chan struct{}, 1),
	}
	deps.Session.OnChange(func(session.Session, bool) {
		select {
		case a.sessionChanged <- struct{}{}:
		default:
		}
	})
	return a
}

func (a *App) Init() tea.Cmd {
	restore := func() tea.Msg {
		a.deps.Session.RestoreOnLoad(a.ctx)
		return sessionRestoredMsg{}
	}
	cmds := []tea.Cmd{restore, a.listenSession()}
	if a.deps.Permissions != nil {
		cmds = append(cmds, a.deps.Permissions.listen(a.ctx))
	}
	// Public routes render before the session is restored.
	_, cmd := a.navigate(a.pending)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

func (a *App) listenSession() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-a.sessionChanged:
			return sessionChangedMsg{}
		case <-a.ctx.Done():
			return nil
		}
	}
}

func (a *App) Path() string {
	return a.path
}

func (a *App) current() *session.Session {
	if s, ok := a.deps.Session.Current(); ok {
		return &s
	}
	return nil
}

func (a *App) navigate(target string) (tea.Model, tea.Cmd) {
	decision := a.gate.Resolve(target, a.current(), a.deps.Session.Restored())
	switch decision.Outcome {
	case router.Pending:
		a.unmount()
		a.pending = target
		a.path = target
		return a, nil
	case router.Redirect:
		return a.navigate(decision.Location)
	case router.NotFound:
		a.unmount()
		a.pending = ""
		a.path = target
		a.notFound = true
		return a, nil
	}

	a.unmount()
	a.pending = ""
	a.notFound = false
	a.path = target
	a.route = decision.Route
	a.gen++

	ctx, cancel := context.WithCancel(a.ctx)
	a.cancel = cancel
	a.view = a.build(ctx, decision)
	a.deps.Logger.Debug("navigate", zap.String("path", target), zap.Uint64("generation", a.gen))
	return a, scope(a.gen, a.view.Mount())
}

func (a *App) build(ctx context.Context, d router.Decision) View {
	from := ""
	if values := d.Query["from"]; len(values) > 0 {
		from = values[0]
	}
	switch d.Route.Pattern {
	case router.PathQueueStatus:
		return newStatusView(ctx, a.deps, d.Params["id"])
	case router.PathLogin:
		return newLoginView(ctx, a.deps, from)
	case router.PathForgotPassword:
		return newForgotPasswordView(ctx, a.deps)
	case router.PathChangePassword:
		return newChangePasswordView(ctx, a.deps)
	case router.PathAdmin:
		return newAdminView(ctx, a.deps)
	case router.PathStaff:
		return newStaffView(ctx, a.deps)
	default:
		return newJoinView(ctx, a.deps)
	}
}

func (a *App) unmount() {
	if a.view == nil {
		return
	}
	a.view.Unmount()
	a.cancel()
	a.view = nil
	a.cancel = nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		return a, nil

	case sessionRestoredMsg:
		if a.pending != "" {
			return a.navigate(a.pending)
		}
		return a, nil

	case sessionChangedMsg:
		listen := a.listenSession()
		if a.view == nil || a.route.Public() {
			return a, listen
		}
		decision := a.gate.Resolve(a.path, a.current(), a.deps.Session.Restored())
		if decision.Outcome == router.Redirect {
			_, cmd := a.navigate(decision.Location)
			return a, tea.Batch(listen, cmd)
		}
		return a, listen

	case loggedOutMsg:
		a.flash = "Logged out."
		if a.view != nil && !a.route.Public() {
			return a.navigate(a.path)
		}
		return a, nil

	case permissionPromptMsg:
		a.prompt = msg.request
		return a, tea.Batch(a.deps.Permissions.listen(a.ctx), msg.request.expired(a.ctx))

	case permissionExpiredMsg:
		if a.prompt == msg.request {
			a.prompt = nil
		}
		return a, nil

	case navigateMsg:
		return a.navigate(msg.to)

	case scopedMsg:
		return a.handleScoped(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	if a.view != nil {
		return a, scope(a.gen, a.view.Update(msg))
	}
	return a, nil
}

func (a *App) handleScoped(msg scopedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != a.gen || a.view == nil {
		return a, nil
	}
	switch inner := msg.msg.(type) {
	case nil:
		return a, nil
	case tea.BatchMsg:
		cmds := make([]tea.Cmd, 0, len(inner))
		for _, cmd := range inner {
			cmds = append(cmds, scope(msg.gen, cmd))
		}
		return a, tea.Batch(cmds...)
	case navigateMsg:
		return a.navigate(inner.to)
	}
	return a, scope(a.gen, a.view.Update(msg.msg))
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Quit) {
		a.unmount()
		return a, tea.Quit
	}
	if a.prompt != nil && a.prompt.abandoned() {
		a.prompt = nil
	}
	if a.prompt != nil {
		switch {
		case key.Matches(msg, a.keys.Allow):
			a.prompt.answer(notify.PermissionGranted)
			a.prompt = nil
		case key.Matches(msg, a.keys.Deny):
			a.prompt.answer(notify.PermissionDenied)
			a.prompt = nil
		}
		return a, nil
	}
	if a.goTo != nil {
		return a.handleGoTo(msg)
	}

	a.flash = ""
	current := a.current()
	switch {
	case key.Matches(msg, a.keys.Home):
		return a.navigate(router.PathHome)
	case key.Matches(msg, a.keys.Dashboard):
		switch {
		case current != nil && current.Role == session.RoleAdmin:
			return a.navigate(router.PathAdmin)
		case current != nil && current.Role == session.RoleStaff:
			return a.navigate(router.PathStaff)
		case current == nil:
			return a.navigate(router.PathLogin)
		}
		return a, nil
	case key.Matches(msg, a.keys.Password):
		if current == nil {
			return a.navigate(router.PathForgotPassword)
		}
		return a.navigate(router.PathChangePassword)
	case key.Matches(msg, a.keys.Logout):
		if current == nil {
			return a, nil
		}
		return a, func() tea.Msg {
			a.deps.Session.Clear(a.ctx)
			return loggedOutMsg{}
		}
	case key.Matches(msg, a.keys.GoTo):
		input := textinput.New()
		input.Placeholder = "/queue-status/12, a ticket URL or id"
		input.Width = 48
		a.goTo = &input
		return a, a.goTo.Focus()
	}

	if a.view != nil {
		return a, scope(a.gen, a.view.Update(msg))
	}
	return a, nil
}

func (a *App) handleGoTo(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.goTo = nil
		return a, nil
	case key.Matches(msg, a.keys.Submit):
		raw := strings.TrimSpace(a.goTo.Value())
		a.goTo = nil
		if raw == "" {
			return a, nil
		}
		if strings.HasPrefix(raw, "/") && !strings.Contains(raw, "/status/") {
			return a.navigate(raw)
		}
		if target, ok := router.ParseTicketRef(raw); ok {
			return a.navigate(target)
		}
		a.flash = "Unrecognised ticket reference."
		return a, nil
	}
	var cmd tea.Cmd
	*a.goTo, cmd = a.goTo.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	var body string
	switch {
	case a.view != nil:
		body = a.view.View()
	case a.notFound:
		body = style.errText.Render("Page not found: " + a.path)
	case a.pending != "":
		body = style.faint.Render("Restoring session…")
	}

	sections := []string{a.navbar(), style.panel.Render(body)}
	if a.goTo != nil {
		sections = append(sections, style.panel.Render("Go to: "+a.goTo.View()))
	}
	if a.prompt != nil {
		sections = append(sections, style.panel.Render(style.banner.Render("Allow desktop notifications for this ticket? [y/n]")))
	}
	if a.flash != "" {
		sections = append(sections, style.panel.Render(style.faint.Render(a.flash)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) navbar() string {
	link := func(label, path string, hotkey key.Binding) string {
		text := fmt.Sprintf("[%s] %s", hotkey.Help().Key, label)
		if a.path == path || (path != router.PathHome && strings.HasPrefix(a.path, path)) {
			return style.navOn.Render(text)
		}
		return style.navLink.Render(text)
	}

	left := []string{style.navOn.Render("Smart Queue"), link("Home", router.PathHome, a.keys.Home)}
	var right []string
	if current := a.current(); current != nil {
		switch current.Role {
		case session.RoleAdmin:
			left = append(left, link("Admin", router.PathAdmin, a.keys.Dashboard))
		case session.RoleStaff:
			left = append(left, link("Staff", router.PathStaff, a.keys.Dashboard))
		}
		right = append(right,
			fmt.Sprintf("%s · %s", current.Username, current.Role),
			link("Change Password", router.PathChangePassword, a.keys.Password),
			style.navLink.Render(fmt.Sprintf("[%s] Logout", a.keys.Logout.Help().Key)),
		)
	} else {
		right = append(right,
			link("Login", router.PathLogin, a.keys.Dashboard),
			link("Forgot Password", router.PathForgotPassword, a.keys.Password),
		)
	}
	line := strings.Join(left, "  ") + "    " + strings.Join(right, "  ")
	return style.navbar.Render(line)
}
