// Package credstore persists the single credential string the client keeps
// between runs. The slot is always named "jwt".
package credstore

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"qms/queue-client/internal/config"
)

const Key = "jwt"

var ErrEmpty = errors.New("credential slot empty")

type Slot interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Remove(ctx context.Context) error
}

func Open(cfg config.Config, logger *zap.Logger) (Slot, error) {
	switch cfg.CredentialBackend {
	case "", "file":
		return NewFile(cfg.CredentialPath), nil
	case "redis":
		return NewRedis(cfg.Redis, logger), nil
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown credential backend %q", cfg.CredentialBackend)
	}
}
