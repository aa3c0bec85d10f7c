package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var ErrClosedByServer = errors.New("sockjs session closed by server")

// sockjsEndpoint turns the HTTP base URL and SockJS prefix into the raw
// websocket transport URL: <prefix>/<server>/<session>/websocket.
func sockjsEndpoint(baseURL, prefix string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in %q", baseURL)
	}
	server := fmt.Sprintf("%03d", rand.Intn(1000))
	session := strings.ReplaceAll(uuid.NewString(), "-", "")
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Trim(prefix, "/") + "/" + server + "/" + session + "/websocket"
	u.RawQuery = ""
	return u.String(), nil
}

// sockjsConn presents a SockJS websocket session as a byte stream. Outgoing
// writes become single-message array frames; incoming a[...] frames are
// flattened; heartbeats are swallowed; a close frame ends the stream.
type sockjsConn struct {
	ws          *websocket.Conn
	idleTimeout time.Duration

	writeMu sync.Mutex
	pending []byte
	queue   [][]byte
}

func dialSockJS(ctx context.Context, dialer *websocket.Dialer, endpoint string, header http.Header, idleTimeout time.Duration) (*sockjsConn, error) {
	ws, resp, err := dialer.DialContext(ctx, endpoint, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	conn := &sockjsConn{ws: ws, idleTimeout: idleTimeout}

	// The open frame may never come; ctx must still be able to abort the wait.
	stop := context.AfterFunc(ctx, func() { _ = ws.Close() })
	frame, err := conn.readFrame()
	if !stop() {
		_ = ws.Close()
		return nil, ctx.Err()
	}
	if err != nil {
		_ = ws.Close()
		return nil, err
	}
	if len(frame) == 0 || frame[0] != 'o' {
		_ = ws.Close()
		return nil, fmt.Errorf("sockjs: expected open frame, got %q", frame)
	}
	return conn, nil
}

func (c *sockjsConn) readFrame() ([]byte, error) {
	if c.idleTimeout > 0 {
		_ = c.ws.SetReadDeadline(time.Now().Add(c.idleTimeout))
	}
	_, data, err := c.ws.ReadMessage()
	return data, err
}

func (c *sockjsConn) Read(p []byte) (int, error) {
	for len(c.pending) == 0 {
		if len(c.queue) > 0 {
			c.pending, c.queue = c.queue[0], c.queue[1:]
			continue
		}
		frame, err := c.readFrame()
		if err != nil {
			return 0, err
		}
		if len(frame) == 0 {
			continue
		}
		switch frame[0] {
		case 'o', 'h':
		case 'a':
			var messages []string
			if err := json.Unmarshal(frame[1:], &messages); err != nil {
				return 0, fmt.Errorf("sockjs: bad array frame: %w", err)
			}
			for _, msg := range messages {
				if msg != "" {
					c.queue = append(c.queue, []byte(msg))
				}
			}
		case 'm':
			var msg string
			if err := json.Unmarshal(frame[1:], &msg); err != nil {
				return 0, fmt.Errorf("sockjs: bad message frame: %w", err)
			}
			if msg != "" {
				c.queue = append(c.queue, []byte(msg))
			}
		case 'c':
			return 0, fmt.Errorf("%w: %s: %w", ErrClosedByServer, frame[1:], io.EOF)
		default:
			return 0, fmt.Errorf("sockjs: unknown frame %q", frame)
		}
	}
	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

func (c *sockjsConn) Write(p []byte) (int, error) {
	frame, err := json.Marshal([]string{string(p)})
	if err != nil {
		return 0, err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *sockjsConn) Close() error {
	return c.ws.Close()
}
