package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"qms/queue-client/internal/credstore"
)

// Store is the only writer of the persisted credential slot. Everything else
// reads the session or the credential through it.
type Store struct {
	slot   credstore.Slot
	now    func() time.Time
	logger *zap.Logger

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	current   Session
	active    bool
	restored  bool
	observers []func(Session, bool)
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(slot credstore.Slot, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{slot: slot, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetFromCredential adopts token as the session credential. An undecodable
// or expired token clears the slot instead.
func (s *Store) SetFromCredential(ctx context.Context, token string) (Session, bool) {
	claims, err := Decode(token)
	if err != nil {
		s.logger.Info("discarding undecodable credential", zap.Error(err))
		s.Clear(ctx)
		return Session{}, false
	}
	if claims.ExpiredAt(s.now()) {
		s.logger.Info("discarding expired credential", zap.Time("expires_at", claims.Expiry()))
		s.Clear(ctx)
		return Session{}, false
	}
	if err := s.slot.Save(ctx, token); err != nil {
		s.logger.Error("persist credential", zap.Error(err))
		s.Clear(ctx)
		return Session{}, false
	}

	sess := claims.Session()
	s.mu.Lock()
	s.token = token
	s.expiresAt = claims.Expiry()
	s.current = sess
	s.active = true
	s.restored = true
	observers := append([]func(Session, bool){}, s.observers...)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(sess, true)
	}
	return sess, true
}

func (s *Store) Clear(ctx context.Context) {
	if err := s.slot.Remove(ctx); err != nil {
		s.logger.Warn("remove credential", zap.Error(err))
	}

	s.mu.Lock()
	wasActive := s.active
	s.token = ""
	s.expiresAt = time.Time{}
	s.current = Session{}
	s.active = false
	s.restored = true
	observers := append([]func(Session, bool){}, s.observers...)
	s.mu.Unlock()

	if !wasActive {
		return
	}
	for _, fn := range observers {
		fn(Session{}, false)
	}
}

// RestoreOnLoad interprets whatever the slot holds through the same path as
// a login. Only the first call does any work.
func (s *Store) RestoreOnLoad(ctx context.Context) {
	s.mu.RLock()
	restored := s.restored
	s.mu.RUnlock()
	if restored {
		return
	}

	token, err := s.slot.Load(ctx)
	if err != nil {
		if !errors.Is(err, credstore.ErrEmpty) {
			s.logger.Warn("load credential", zap.Error(err))
		}
		s.Clear(ctx)
		return
	}
	if sess, ok := s.SetFromCredential(ctx, token); ok {
		s.logger.Info("session restored", zap.String("username", sess.Username), zap.String("role", string(sess.Role)))
	}
}

func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.active
}

func (s *Store) Restored() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.restored
}

// Credential returns the credential to attach to a request. One that expired
// while the client was running is discarded instead of sent.
func (s *Store) Credential(ctx context.Context) string {
	s.mu.RLock()
	token, exp := s.token, s.expiresAt
	s.mu.RUnlock()
	if token == "" {
		return ""
	}
	if !exp.IsZero() && !s.now().Before(exp) {
		s.logger.Info("credential expired, logging out", zap.Time("expires_at", exp))
		s.Clear(ctx)
		return ""
	}
	return token
}

// OnChange registers fn to run after every session change.
func (s *Store) OnChange(fn func(Session, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}
