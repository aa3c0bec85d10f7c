package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"qms/queue-client/internal/config"

	"go.uber.org/zap"
)

type Provider interface {
	Send(ctx context.Context, title, body string) error
}

func NewProvider(cfg config.Config, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	kind := cfg.NotifyProvider
	switch kind {
	case "", "stub", "log":
		return logProvider{logger: logger}
	case "noop":
		return noopProvider{}
	case "fail":
		return failProvider{}
	case "command", "desktop":
		if cfg.NotifyCommand == "" {
			return logProvider{logger: logger}
		}
		return commandProvider{command: cfg.NotifyCommand}
	case "webhook":
		if cfg.NotifyWebhookURL == "" {
			return logProvider{logger: logger}
		}
		return webhookProvider{url: cfg.NotifyWebhookURL, token: cfg.NotifyWebhookToken}
	default:
		if strings.HasPrefix(kind, "http://") || strings.HasPrefix(kind, "https://") {
			return webhookProvider{url: kind, token: cfg.NotifyWebhookToken}
		}
		return logProvider{logger: logger}
	}
}

type logProvider struct {
	logger *zap.Logger
}

func (p logProvider) Send(ctx context.Context, title, body string) error {
	p.logger.Info("notification", zap.String("title", title), zap.String("body", body))
	return nil
}

type noopProvider struct{}

func (noopProvider) Send(ctx context.Context, title, body string) error {
	return nil
}

type failProvider struct{}

func (failProvider) Send(ctx context.Context, title, body string) error {
	return errors.New("provider failure")
}

// commandProvider runs a desktop notifier such as notify-send with the title
// and body as its two arguments.
type commandProvider struct {
	command string
}

func (p commandProvider) Send(ctx context.Context, title, body string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, p.command, title, body).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", p.command, err, bytes.TrimSpace(out))
	}
	return nil
}

type webhookProvider struct {
	url    string
	token  string
	client *http.Client
}

func (p webhookProvider) Send(ctx context.Context, title, body string) error {
	payload := map[string]string{
		"title":   title,
		"message": body,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
	client := p.client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.New("provider rejected request")
	}
	return nil
}
