package ticketwatch

import (
	"context"
	"sync"
	"time"

	"qms/queue-client/internal/models"
	"qms/queue-client/internal/realtime"

	"go.uber.org/zap"
)

type Fetcher interface {
	QueueEntry(ctx context.Context, id string) (models.QueueEntry, error)
}

type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

type Watcher struct {
	fetcher    Fetcher
	subscriber realtime.Subscriber
	notifier   Notifier
	interval   time.Duration
	logger     *zap.Logger
	newTicker  func(time.Duration) (<-chan time.Time, func())
}

type Option func(*Watcher)

func WithTicker(fn func(time.Duration) (<-chan time.Time, func())) Option {
	return func(w *Watcher) {
		w.newTicker = fn
	}
}

func NewWatcher(fetcher Fetcher, subscriber realtime.Subscriber, notifier Notifier, interval time.Duration, logger *zap.Logger, opts ...Option) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 4 * time.Second
	}
	w := &Watcher{
		fetcher:    fetcher,
		subscriber: subscriber,
		notifier:   notifier,
		interval:   interval,
		logger:     logger,
		newTicker:  systemTicker,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func systemTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Run fetches the ticket immediately and then on every tick, while a push
// subscription on the ticket topic runs alongside. Both feed a single
// reducer; emit receives each new state. Run returns after ctx is done, the
// ticker is stopped and the subscription is closed. emit is never called
// once ctx is done.
func (w *Watcher) Run(ctx context.Context, id string, emit func(State)) {
	events := make(chan Event, 8)
	send := func(ev Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	var sub realtime.Subscription
	if w.subscriber != nil {
		s, err := w.subscriber.Subscribe(ctx, realtime.TopicForTicket(id), func(msg realtime.Message) {
			send(PushReceived{Message: msg})
		})
		if err != nil {
			w.logger.Warn("ticket push subscription unavailable", zap.String("ticket_id", id), zap.Error(err))
		} else {
			sub = s
		}
	}

	tick, stopTick := w.newTicker(w.interval)
	var wg sync.WaitGroup
	defer func() {
		stopTick()
		if sub != nil {
			_ = sub.Close()
		}
		wg.Wait()
	}()

	poll := func() {
		entry, err := w.fetcher.QueueEntry(ctx, id)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			w.logger.Debug("ticket poll failed", zap.String("ticket_id", id), zap.Error(err))
		}
		send(PollResult{Entry: entry, Err: err})
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		poll()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick:
				poll()
			}
		}
	}()

	var state State
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			state = Reduce(state, ev)
			if _, ok := ev.(PushReceived); ok && w.notifier != nil {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_ = w.notifier.Notify(ctx, NotificationTitle, NotificationBody)
				}()
			}
			if ctx.Err() != nil {
				return
			}
			emit(state)
		}
	}
}
