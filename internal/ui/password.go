package ui

import (
	"context"

	"qms/queue-client/internal/models"
	"qms/queue-client/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

type passwordResultMsg struct {
	text string
	err  error
}

type forgotStep int

const (
	stepRequestCode forgotStep = iota + 1
	stepReset
	stepDone
)

// forgotPasswordView walks through email, then code and new password, then
// a confirmation.
type forgotPasswordView struct {
	ctx     context.Context
	deps    Deps
	step    forgotStep
	email   *form
	reset   *form
	message string
	failed  bool
	loading bool
}

func newForgotPasswordView(ctx context.Context, deps Deps) *forgotPasswordView {
	return &forgotPasswordView{
		ctx:   ctx,
		deps:  deps,
		step:  stepRequestCode,
		email: newForm(textField("Email", "Enter your registered email")),
		reset: newForm(
			textField("Reset code", "6-digit code"),
			passwordField("New password", "Enter new password"),
		),
	}
}

func (v *forgotPasswordView) Mount() tea.Cmd {
	return v.email.Focus()
}

func (v *forgotPasswordView) Unmount() {}

func (v *forgotPasswordView) Update(msg tea.Msg) tea.Cmd {
	if result, ok := msg.(passwordResultMsg); ok {
		v.loading = false
		if result.err != nil {
			v.message = backendText(result.err)
			v.failed = true
			return nil
		}
		v.message = result.text
		v.failed = false
		switch v.step {
		case stepRequestCode:
			v.step = stepReset
			v.email.Blur()
			return v.reset.Focus()
		case stepReset:
			v.step = stepDone
			v.reset.Blur()
		}
		return nil
	}

	switch v.step {
	case stepRequestCode:
		submitted, cmd := v.email.Update(msg)
		if !submitted || v.loading {
			return cmd
		}
		email := v.email.Value(0)
		if email == "" {
			v.message, v.failed = msgFillAllFields, true
			return nil
		}
		v.loading, v.message = true, ""
		ctx, backend := v.ctx, v.deps.Backend
		return func() tea.Msg {
			text, err := backend.ForgotPassword(ctx, email)
			return passwordResultMsg{text: text, err: err}
		}
	case stepReset:
		submitted, cmd := v.reset.Update(msg)
		if !submitted || v.loading {
			return cmd
		}
		input := models.ResetPasswordInput{
			Email:       v.email.Value(0),
			Code:        v.reset.Value(0),
			NewPassword: v.reset.Value(1),
		}
		if input.Code == "" || input.NewPassword == "" {
			v.message, v.failed = msgFillAllFields, true
			return nil
		}
		v.loading, v.message = true, ""
		ctx, backend := v.ctx, v.deps.Backend
		return func() tea.Msg {
			text, err := backend.ResetPassword(ctx, input)
			return passwordResultMsg{text: text, err: err}
		}
	}
	return nil
}

func (v *forgotPasswordView) View() string {
	out := style.title.Render("Forgot Password") + "\n"
	switch v.step {
	case stepRequestCode:
		out += v.email.View()
		if v.loading {
			out += style.faint.Render("Sending…") + "\n"
		}
	case stepReset:
		out += v.reset.View()
		if v.loading {
			out += style.faint.Render("Resetting…") + "\n"
		}
	case stepDone:
		out += style.okText.Render("✔ Password reset successful.") + "\n"
		out += "You may now log in (F2).\n"
	}
	if v.message != "" {
		out += "\n" + resultLine(v.message, v.failed)
	}
	return out
}

func resultLine(msg string, failed bool) string {
	if !failed || isSuccessText(msg) {
		return style.okText.Render(msg)
	}
	return style.errText.Render(msg)
}

type changePasswordView struct {
	ctx     context.Context
	deps    Deps
	form    *form
	message string
	failed  bool
	loading bool
}

func newChangePasswordView(ctx context.Context, deps Deps) *changePasswordView {
	return &changePasswordView{
		ctx:  ctx,
		deps: deps,
		form: newForm(
			passwordField("Old password", "Enter old password"),
			passwordField("New password", "Enter new password"),
		),
	}
}

func (v *changePasswordView) Mount() tea.Cmd {
	return v.form.Focus()
}

func (v *changePasswordView) Unmount() {}

func (v *changePasswordView) Update(msg tea.Msg) tea.Cmd {
	if result, ok := msg.(passwordResultMsg); ok {
		v.loading = false
		if result.err != nil {
			v.message, v.failed = backendText(result.err), true
			return nil
		}
		v.message, v.failed = result.text, false
		return v.form.Reset()
	}

	submitted, cmd := v.form.Update(msg)
	if !submitted || v.loading {
		return cmd
	}
	input := models.ChangePasswordInput{OldPassword: v.form.Value(0), NewPassword: v.form.Value(1)}
	if input.OldPassword == "" || input.NewPassword == "" {
		v.message, v.failed = msgFillAllFields, true
		return nil
	}
	role := session.RoleCustomer
	if current, ok := v.deps.Session.Current(); ok {
		role = current.Role
	}
	v.loading, v.message = true, ""
	ctx, backend := v.ctx, v.deps.Backend
	return func() tea.Msg {
		text, err := backend.ChangePassword(ctx, role, input)
		return passwordResultMsg{text: text, err: err}
	}
}

func (v *changePasswordView) View() string {
	out := style.title.Render("Change Password") + "\n" + v.form.View()
	if v.loading {
		out += style.faint.Render("Changing…") + "\n"
	}
	if v.message != "" {
		prefix := ""
		if isSuccessText(v.message) {
			prefix = "✔ "
		}
		out += "\n" + resultLine(prefix+v.message, v.failed)
	}
	return out
}
