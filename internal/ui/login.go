package ui

import (
	"context"
	"errors"
	"time"

	"qms/queue-client/internal/models"
	"qms/queue-client/internal/router"
	"qms/queue-client/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

const (
	msgLoginNoToken   = "Login failed: No token received."
	msgLoginInvalid   = "Login failed: Invalid token received."
	msgLoginExpired   = "Login failed: Token is expired."
	msgLoginNotStored = "Login failed: Unable to store credential."
	msgLoginDefault   = "Invalid credentials. Please try again."
	msgFillAllFields  = "Please fill in all fields."
)

type loginDoneMsg struct {
	target string
	err    string
}

type loginView struct {
	ctx     context.Context
	deps    Deps
	from    string
	form    *form
	err     string
	loading bool
}

func newLoginView(ctx context.Context, deps Deps, from string) *loginView {
	return &loginView{
		ctx:  ctx,
		deps: deps,
		from: from,
		form: newForm(
			textField("Username", "username"),
			passwordField("Password", "password"),
		),
	}
}

func (v *loginView) Mount() tea.Cmd {
	return v.form.Focus()
}

func (v *loginView) Unmount() {}

func (v *loginView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loginDoneMsg:
		v.loading = false
		if msg.err != "" {
			v.err = msg.err
			return nil
		}
		return navigate(msg.target)
	}

	submitted, cmd := v.form.Update(msg)
	if !submitted || v.loading {
		return cmd
	}
	input := models.LoginInput{Username: v.form.Value(0), Password: v.form.Value(1)}
	if input.Username == "" || input.Password == "" {
		v.err = msgFillAllFields
		return nil
	}
	v.err = ""
	v.loading = true
	return v.submit(input)
}

// submit checks the returned credential the same way a restored one is
// checked before handing it to the session store.
func (v *loginView) submit(input models.LoginInput) tea.Cmd {
	ctx, deps, from := v.ctx, v.deps, v.from
	return func() tea.Msg {
		result, err := deps.Backend.Login(ctx, input)
		if err != nil {
			deps.Logger.Info("login rejected", zap.String("username", input.Username), zap.Error(err))
			return loginDoneMsg{err: messageOr(err, msgLoginDefault)}
		}
		token := result.Credential()
		switch err := session.CheckCredential(token, time.Now()); {
		case errors.Is(err, session.ErrNoCredential):
			return loginDoneMsg{err: msgLoginNoToken}
		case errors.Is(err, session.ErrExpired):
			return loginDoneMsg{err: msgLoginExpired}
		case err != nil:
			return loginDoneMsg{err: msgLoginInvalid}
		}
		current, ok := deps.Session.SetFromCredential(ctx, token)
		if !ok {
			return loginDoneMsg{err: msgLoginNotStored}
		}
		role := current.Role
		if result.Role != "" {
			role = session.ParseRole(result.Role)
		}
		return loginDoneMsg{target: router.LoginTarget(role, from)}
	}
}

func (v *loginView) View() string {
	out := style.title.Render("Sign In") + "\n" + v.form.View()
	if v.loading {
		out += "\n" + style.faint.Render("Signing in…")
	}
	if v.err != "" {
		out += "\n" + style.errText.Render(v.err)
	}
	return out + style.help.Render("tab: next field · enter: login")
}
