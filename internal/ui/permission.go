package ui

import (
	"context"

	"qms/queue-client/internal/notify"

	tea "github.com/charmbracelet/bubbletea"
)

// PermissionBridge lets the notification gate ask the user through the
// running program instead of a separate terminal prompt.
type PermissionBridge struct {
	requests chan *permissionRequest
}

// permissionRequest is one pending question. done closes when the asker
// gives up, after which the prompt is withdrawn.
type permissionRequest struct {
	reply chan notify.Permission
	done  <-chan struct{}
}

func (r *permissionRequest) answer(p notify.Permission) {
	select {
	case r.reply <- p:
	default:
	}
}

func (r *permissionRequest) abandoned() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// expired reports when the asker gives up on r.
func (r *permissionRequest) expired(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-r.done:
			return permissionExpiredMsg{request: r}
		case <-ctx.Done():
			return nil
		}
	}
}

type permissionPromptMsg struct {
	request *permissionRequest
}

type permissionExpiredMsg struct {
	request *permissionRequest
}

func NewPermissionBridge() *PermissionBridge {
	return &PermissionBridge{requests: make(chan *permissionRequest)}
}

func (b *PermissionBridge) RequestPermission(ctx context.Context) (notify.Permission, error) {
	req := &permissionRequest{reply: make(chan notify.Permission, 1), done: ctx.Done()}
	select {
	case b.requests <- req:
	case <-ctx.Done():
		return notify.PermissionDefault, ctx.Err()
	}
	select {
	case p := <-req.reply:
		return p, nil
	case <-ctx.Done():
		return notify.PermissionDefault, ctx.Err()
	}
}

func (b *PermissionBridge) listen(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case req := <-b.requests:
			return permissionPromptMsg{request: req}
		case <-ctx.Done():
			return nil
		}
	}
}
