package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-stomp/stomp/v3"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Credentials supplies the bearer token attached to the STOMP CONNECT frame.
type Credentials interface {
	Credential(ctx context.Context) string
}

type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler func(Message)) (Subscription, error)
}

type Subscription interface {
	Close() error
}

type Options struct {
	BaseURL        string
	Path           string
	Credentials    Credentials
	ReconnectDelay time.Duration
	IdleTimeout    time.Duration
	Dialer         *websocket.Dialer
	Logger         *zap.Logger
	Registry       *Registry
}

type Client struct {
	baseURL        string
	path           string
	creds          Credentials
	reconnectDelay time.Duration
	idleTimeout    time.Duration
	dialer         *websocket.Dialer
	logger         *zap.Logger
	registry       *Registry
}

func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		}
	}
	registry := opts.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	delay := opts.ReconnectDelay
	if delay <= 0 {
		delay = 5 * time.Second
	}
	idle := opts.IdleTimeout
	if idle == 0 {
		idle = 60 * time.Second
	}
	path := opts.Path
	if path == "" {
		path = "/ws-queue"
	}
	return &Client{
		baseURL:        opts.BaseURL,
		path:           path,
		creds:          opts.Credentials,
		reconnectDelay: delay,
		idleTimeout:    idle,
		dialer:         dialer,
		logger:         logger,
		registry:       registry,
	}
}

func (c *Client) Registry() *Registry {
	return c.registry
}

// Subscribe opens a dedicated connection for topic and invokes handler for
// every non-empty message until the returned handle is closed or ctx ends.
// Dropped connections are retried after the reconnect delay. Only structural
// problems, such as an unusable base URL, are returned as errors.
func (c *Client) Subscribe(ctx context.Context, topic string, handler func(Message)) (Subscription, error) {
	if _, err := sockjsEndpoint(c.baseURL, c.path); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{topic: topic, cancel: cancel, done: make(chan struct{})}
	if err := c.registry.Register(h); err != nil {
		cancel()
		return nil, err
	}

	go func() {
		defer close(h.done)
		defer c.registry.Unregister(h)
		c.run(ctx, topic, handler)
	}()
	return h, nil
}

func (c *Client) run(ctx context.Context, topic string, handler func(Message)) {
	for {
		err := c.session(ctx, topic, handler)
		if ctx.Err() != nil {
			return
		}
		c.logger.Warn("realtime connection lost",
			zap.String("topic", topic),
			zap.Duration("retry_in", c.reconnectDelay),
			zap.Error(err),
		)
		timer := time.NewTimer(c.reconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// session runs one connect-subscribe-receive cycle.
func (c *Client) session(ctx context.Context, topic string, handler func(Message)) error {
	endpoint, err := sockjsEndpoint(c.baseURL, c.path)
	if err != nil {
		return err
	}
	transport, err := dialSockJS(ctx, c.dialer, endpoint, nil, c.idleTimeout)
	if err != nil {
		return err
	}

	opts := []func(*stomp.Conn) error{
		stomp.ConnOpt.HeartBeat(0, 0),
		stomp.ConnOpt.Host(hostOf(c.baseURL)),
	}
	if c.creds != nil {
		if token := c.creds.Credential(ctx); token != "" {
			opts = append(opts, stomp.ConnOpt.Header("Authorization", "Bearer "+token))
		}
	}

	// Closing the transport unblocks the STOMP handshake when ctx ends first.
	stop := context.AfterFunc(ctx, func() { _ = transport.Close() })
	defer stop()

	conn, err := stomp.Connect(transport, opts...)
	if err != nil {
		_ = transport.Close()
		return err
	}
	defer func() { _ = conn.MustDisconnect() }()

	sub, err := conn.Subscribe(topic, stomp.AckAuto)
	if err != nil {
		return err
	}
	c.logger.Info("realtime subscribed", zap.String("topic", topic))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-sub.C:
			if !ok {
				return errors.New("subscription closed")
			}
			if msg.Err != nil {
				return msg.Err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if len(msg.Body) == 0 {
				continue
			}
			handler(decodeMessage(topic, msg.Body))
		}
	}
}

func hostOf(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return "localhost"
	}
	return u.Hostname()
}

// Handle is a live subscription. Close stops delivery and returns once the
// connection goroutine has exited, so the handler is never invoked afterwards.
type Handle struct {
	topic  string
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (h *Handle) Topic() string {
	return h.topic
}

func (h *Handle) Close() error {
	h.once.Do(h.cancel)
	<-h.done
	return nil
}
