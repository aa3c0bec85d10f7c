package ticketwatch

import (
	"context"
	"sync"
)

// Controller owns at most one running watch. Switching ids tears the previous
// watch down completely before the next one subscribes.
type Controller struct {
	mu      sync.Mutex
	parent  context.Context
	watcher *Watcher
	id      string
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewController(parent context.Context, watcher *Watcher) *Controller {
	return &Controller{parent: parent, watcher: watcher}
}

func (c *Controller) Watch(id string, emit func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil && c.id == id {
		return
	}
	c.stopLocked()

	ctx, cancel := context.WithCancel(c.parent)
	done := make(chan struct{})
	c.id = id
	c.cancel = cancel
	c.done = done
	go func() {
		defer close(done)
		c.watcher.Run(ctx, id, emit)
	}()
}

func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Controller) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

func (c *Controller) stopLocked() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
	c.cancel = nil
	c.done = nil
	c.id = ""
}
