package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/igm/sockjs-go/sockjs"
)

type stompFrame struct {
	command string
	headers map[string]string
	body    string
}

// parseFrames splits NUL-terminated STOMP frames out of buf and returns the
// remainder for the next read.
func parseFrames(buf string) ([]stompFrame, string) {
	var frames []stompFrame
	for {
		buf = strings.TrimLeft(buf, "\r\n")
		end := strings.IndexByte(buf, 0)
		if end < 0 {
			return frames, buf
		}
		raw := buf[:end]
		buf = buf[end+1:]

		head, body, _ := strings.Cut(raw, "\n\n")
		lines := strings.Split(head, "\n")
		frame := stompFrame{command: strings.TrimSpace(lines[0]), headers: map[string]string{}, body: body}
		for _, line := range lines[1:] {
			key, value, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			if _, seen := frame.headers[key]; !seen {
				frame.headers[key] = value
			}
		}
		frames = append(frames, frame)
	}
}

type subscribed struct {
	session     sockjs.Session
	id          string
	destination string
	auth        string
}

type broker struct {
	mu         sync.Mutex
	subs       chan subscribed
	messageSeq int
}

func newBroker(t *testing.T) (*broker, *httptest.Server) {
	t.Helper()
	b := &broker{subs: make(chan subscribed, 8)}
	handler := sockjs.NewHandler("/ws-queue", sockjs.DefaultOptions, func(session sockjs.Session) {
		var pending, auth string
		for {
			msg, err := session.Recv()
			if err != nil {
				return
			}
			var frames []stompFrame
			frames, pending = parseFrames(pending + msg)
			for _, frame := range frames {
				switch frame.command {
				case "CONNECT", "STOMP":
					auth = frame.headers["Authorization"]
					_ = session.Send("CONNECTED\nversion:1.2\nheart-beat:0,0\n\n\x00")
				case "SUBSCRIBE":
					b.subs <- subscribed{
						session:     session,
						id:          frame.headers["id"],
						destination: frame.headers["destination"],
						auth:        auth,
					}
				}
			}
		}
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *broker) push(sub subscribed, contentType, body string) error {
	b.mu.Lock()
	b.messageSeq++
	seq := b.messageSeq
	b.mu.Unlock()
	frame := fmt.Sprintf("MESSAGE\ndestination:%s\nsubscription:%s\nmessage-id:%d\ncontent-type:%s\n\n%s\x00",
		sub.destination, sub.id, seq, contentType, body)
	return sub.session.Send(frame)
}

func (b *broker) waitSubscribe(t *testing.T) subscribed {
	t.Helper()
	select {
	case sub := <-b.subs:
		return sub
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for SUBSCRIBE")
		return subscribed{}
	}
}

type staticCredentials string

func (s staticCredentials) Credential(context.Context) string { return string(s) }

func TestSubscribeDeliversJSONAndText(t *testing.T) {
	b, srv := newBroker(t)
	client := New(Options{BaseURL: srv.URL, Path: "/ws-queue", Credentials: staticCredentials("tok-1")})

	received := make(chan Message, 4)
	sub, err := client.Subscribe(context.Background(), TopicForEntry(42), func(msg Message) {
		received <- msg
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	s := b.waitSubscribe(t)
	if s.destination != "/topic/user/42" {
		t.Fatalf("unexpected destination %q", s.destination)
	}
	if s.auth != "Bearer tok-1" {
		t.Fatalf("expected bearer on CONNECT, got %q", s.auth)
	}

	if err := b.push(s, "application/json", `{"message":"almost there","position":1}`); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := b.push(s, "text/plain", "hello"); err != nil {
		t.Fatalf("push: %v", err)
	}

	first := waitMessage(t, received)
	obj, ok := first.JSON.(map[string]any)
	if !ok || obj["message"] != "almost there" {
		t.Fatalf("expected decoded json, got %#v", first.JSON)
	}
	second := waitMessage(t, received)
	if second.JSON != nil || second.Text() != "hello" {
		t.Fatalf("expected text fallback, got %#v %q", second.JSON, second.Text())
	}
}

func TestSubscribeReconnectsAfterDrop(t *testing.T) {
	b, srv := newBroker(t)
	client := New(Options{BaseURL: srv.URL, ReconnectDelay: 20 * time.Millisecond})

	received := make(chan Message, 1)
	sub, err := client.Subscribe(context.Background(), "/topic/user/7", func(msg Message) {
		received <- msg
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	first := b.waitSubscribe(t)
	_ = first.session.Close(3000, "go away")

	second := b.waitSubscribe(t)
	if err := b.push(second, "application/json", `"Served"`); err != nil {
		t.Fatalf("push: %v", err)
	}
	msg := waitMessage(t, received)
	if msg.JSON != "Served" {
		t.Fatalf("unexpected payload %#v", msg.JSON)
	}
}

func TestCloseStopsDeliveryAndReleasesTopic(t *testing.T) {
	b, srv := newBroker(t)
	client := New(Options{BaseURL: srv.URL})

	var mu sync.Mutex
	calls := 0
	sub, err := client.Subscribe(context.Background(), "/topic/user/9", func(Message) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	s := b.waitSubscribe(t)

	if _, err := client.Subscribe(context.Background(), "/topic/user/9", func(Message) {}); !errors.Is(err, ErrAlreadyActive) {
		t.Fatalf("expected ErrAlreadyActive, got %v", err)
	}
	if client.Registry().Active() != 1 {
		t.Fatalf("expected one active handle, got %d", client.Registry().Active())
	}

	if err := sub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if client.Registry().Active() != 0 {
		t.Fatalf("expected registry to be empty after close")
	}
	_ = b.push(s, "text/plain", "late")
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Fatalf("handler ran %d times after close", calls)
	}
}

func TestCloseDuringSilentHandshake(t *testing.T) {
	upgraded := make(chan struct{}, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		upgraded <- struct{}{}
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	client := New(Options{BaseURL: srv.URL, IdleTimeout: 30 * time.Second})
	sub, err := client.Subscribe(context.Background(), "/topic/user/3", func(Message) {})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	select {
	case <-upgraded:
	case <-time.After(5 * time.Second):
		t.Fatalf("server never saw the websocket")
	}

	closed := make(chan struct{})
	go func() {
		_ = sub.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatalf("Close blocked while waiting for the open frame")
	}
	if client.Registry().Active() != 0 {
		t.Fatalf("expected registry to be empty after close")
	}
}

func TestSubscribeRejectsUnusableBaseURL(t *testing.T) {
	client := New(Options{BaseURL: "ftp://example.com"})
	if _, err := client.Subscribe(context.Background(), "/topic/user/1", func(Message) {}); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
	if client.Registry().Active() != 0 {
		t.Fatalf("failed subscribe must not register a handle")
	}
}

func TestSockJSEndpoint(t *testing.T) {
	got, err := sockjsEndpoint("https://queue.example.com/api", "/ws-queue")
	if err != nil {
		t.Fatalf("endpoint: %v", err)
	}
	if !strings.HasPrefix(got, "wss://queue.example.com/api/ws-queue/") || !strings.HasSuffix(got, "/websocket") {
		t.Fatalf("unexpected endpoint %q", got)
	}
	parts := strings.Split(strings.TrimPrefix(got, "wss://queue.example.com/api/ws-queue/"), "/")
	if len(parts) != 3 || len(parts[0]) != 3 || len(parts[1]) != 32 {
		t.Fatalf("unexpected server/session segments %v", parts)
	}
}

func waitMessage(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for message")
		return Message{}
	}
}
