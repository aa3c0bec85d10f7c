package notify

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
)

type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

func ParsePermission(raw string) Permission {
	switch Permission(strings.ToLower(strings.TrimSpace(raw))) {
	case PermissionGranted:
		return PermissionGranted
	case PermissionDenied:
		return PermissionDenied
	default:
		return PermissionDefault
	}
}

type Prompter interface {
	RequestPermission(ctx context.Context) (Permission, error)
}

type PrompterFunc func(ctx context.Context) (Permission, error)

func (f PrompterFunc) RequestPermission(ctx context.Context) (Permission, error) {
	return f(ctx)
}

// Gate sends notifications through a provider only once the user has
// granted permission. An undetermined permission is asked for at most once;
// a grant delivers the notification that triggered the question.
type Gate struct {
	mu         sync.Mutex
	provider   Provider
	prompter   Prompter
	permission Permission
	asked      bool
	logger     *zap.Logger
}

func NewGate(provider Provider, permission Permission, prompter Prompter, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	if permission == "" {
		permission = PermissionDefault
	}
	return &Gate{provider: provider, prompter: prompter, permission: permission, logger: logger}
}

func (g *Gate) Permission() Permission {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.permission
}

func (g *Gate) Notify(ctx context.Context, title, body string) error {
	g.mu.Lock()
	switch g.permission {
	case PermissionGranted:
		g.mu.Unlock()
		return g.send(ctx, title, body)
	case PermissionDenied:
		g.mu.Unlock()
		return nil
	}
	if g.asked || g.prompter == nil {
		g.mu.Unlock()
		return nil
	}
	g.asked = true
	g.mu.Unlock()

	answer, err := g.prompter.RequestPermission(ctx)
	if err != nil {
		// An unanswered question does not count as asked.
		g.mu.Lock()
		g.asked = false
		g.mu.Unlock()
		g.logger.Warn("notification permission request failed", zap.Error(err))
		return nil
	}

	g.mu.Lock()
	g.permission = answer
	g.mu.Unlock()

	if answer != PermissionGranted {
		return nil
	}
	return g.send(ctx, title, body)
}

func (g *Gate) send(ctx context.Context, title, body string) error {
	if err := g.provider.Send(ctx, title, body); err != nil {
		g.logger.Warn("notification delivery failed", zap.String("title", title), zap.Error(err))
		return err
	}
	return nil
}

// TerminalPrompter asks a yes/no question on a line-oriented terminal. One
// goroutine reads In for the prompter's lifetime, so a line typed after a
// cancelled question answers the next one instead of being lost.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer

	once  sync.Once
	lines chan string
}

func (p *TerminalPrompter) readLines() {
	p.lines = make(chan string)
	go func() {
		defer close(p.lines)
		r := bufio.NewReader(p.In)
		for {
			line, err := r.ReadString('\n')
			if line != "" {
				p.lines <- line
			}
			if err != nil {
				return
			}
		}
	}()
}

func (p *TerminalPrompter) RequestPermission(ctx context.Context) (Permission, error) {
	p.once.Do(p.readLines)
	if _, err := fmt.Fprint(p.Out, "Allow desktop notifications for this ticket? [y/N] "); err != nil {
		return PermissionDefault, err
	}
	select {
	case <-ctx.Done():
		return PermissionDefault, ctx.Err()
	case line := <-p.lines:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return PermissionGranted, nil
		default:
			return PermissionDenied, nil
		}
	}
}
