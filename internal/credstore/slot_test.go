package credstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"qms/queue-client/internal/config"
)

func exerciseSlot(t *testing.T, slot Slot) {
	t.Helper()
	ctx := context.Background()

	if err := slot.Remove(ctx); err != nil {
		t.Fatalf("remove on empty slot: %v", err)
	}
	if _, err := slot.Load(ctx); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if err := slot.Save(ctx, "token-1"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := slot.Save(ctx, "token-2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := slot.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != "token-2" {
		t.Fatalf("expected token-2, got %q", got)
	}
	if err := slot.Remove(ctx); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := slot.Remove(ctx); err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if _, err := slot.Load(ctx); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty after remove, got %v", err)
	}
}

func TestMemorySlot(t *testing.T) {
	exerciseSlot(t, NewMemory())
}

func TestFileSlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credential.json")
	exerciseSlot(t, NewFile(path))
}

func TestFileSlotLayoutAndMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential.json")
	slot := NewFile(path)
	if err := slot.Save(context.Background(), "abc"); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(raw) != `{"jwt":"abc"}` {
		t.Fatalf("unexpected file contents %s", raw)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("unexpected mode %v", info.Mode().Perm())
	}
}

func TestFileSlotCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential.json")
	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewFile(path).Load(context.Background()); err == nil || errors.Is(err, ErrEmpty) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestRedisSlot(t *testing.T) {
	addr := os.Getenv("QMS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("QMS_TEST_REDIS_ADDR not set")
	}
	slot := NewRedis(config.RedisConfig{Addr: addr, Prefix: "queue-client-test:"}, zap.NewNop())
	defer slot.Close()
	exerciseSlot(t, slot)
}

func TestOpen(t *testing.T) {
	cases := []struct {
		backend string
		wantErr bool
	}{
		{"", false},
		{"file", false},
		{"memory", false},
		{"cookie", true},
	}
	for _, tc := range cases {
		cfg := config.Config{CredentialBackend: tc.backend, CredentialPath: filepath.Join(t.TempDir(), "c.json")}
		_, err := Open(cfg, zap.NewNop())
		if (err != nil) != tc.wantErr {
			t.Fatalf("Open(%q) err=%v, wantErr %v", tc.backend, err, tc.wantErr)
		}
	}
}
