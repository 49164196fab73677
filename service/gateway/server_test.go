package gateway

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func newTestGateway(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gw := NewServer(Options{NodeID: "test-node", SendQueue: 16})
	r := gin.New()
	r.GET("/ws", gw.HandleWS)
	ts := httptest.NewServer(r)
	t.Cleanup(func() {
		ts.Close()
		gw.Close()
	})
	return gw, ts
}

func dialWS(t *testing.T, ts *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	if userID != "" {
		url += "?userId=" + userID
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type wireFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// nextFrame reads frames until one matching event arrives. Presence pushes
// interleave freely with everything else, so tests filter rather than assume
// strict order.
func nextFrame(t *testing.T, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %q: read failed: %v", event, err)
		}
		var f wireFrame
		if err := json.Unmarshal(raw, &f); err != nil {
			t.Fatalf("bad frame %q: %v", raw, err)
		}
		if f.Event == event {
			return f.Data
		}
	}
	t.Fatalf("no %q frame within deadline", event)
	return nil
}

// awaitPresence reads presence frames until one carries exactly the wanted
// user set. Consecutive lifecycle changes each fire a full-set broadcast, so
// intermediate sets are skipped, not failed on.
func awaitPresence(t *testing.T, conn *websocket.Conn, want []string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	var last []string
	for time.Now().Before(deadline) {
		data := nextFrame(t, conn, EventOnlineUsers)
		var users []string
		if err := json.Unmarshal(data, &users); err != nil {
			t.Fatalf("bad presence payload %q: %v", data, err)
		}
		if sameUserSet(users, want) {
			return
		}
		last = users
	}
	t.Fatalf("presence never converged to %v, last seen %v", want, last)
}

func sendFrame(t *testing.T, conn *websocket.Conn, event string, data map[string]any) {
	t.Helper()
	raw, err := json.Marshal(Frame{Event: event, Data: data})
	if err != nil {
		t.Fatalf("marshal %s frame: %v", event, err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		t.Fatalf("write %s frame: %v", event, err)
	}
}

func closeWS(conn *websocket.Conn) {
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()
}

func TestGatewayLifecycleAndDelivery(t *testing.T) {
	gw, ts := newTestGateway(t)

	// Two identified connections: both converge on the same online set.
	connA := dialWS(t, ts, "alice")
	awaitPresence(t, connA, []string{"alice"})
	connB := dialWS(t, ts, "bob")
	awaitPresence(t, connA, []string{"alice", "bob"})
	awaitPresence(t, connB, []string{"alice", "bob"})

	// Bob leaves; alice sees the shrunken set. The presence frame doubles as
	// the barrier telling us teardown has completed server-side.
	closeWS(connB)
	awaitPresence(t, connA, []string{"alice"})

	// A message routed at bob while he is gone is dropped without a trace.
	gw.Router().Route(NewMessage{
		SenderID:   "alice",
		ReceiverID: "bob",
		Message:    map[string]any{"text": "missed"},
	})

	// Bob reconnects on a fresh transport and both sides converge again.
	connB2 := dialWS(t, ts, "bob")
	awaitPresence(t, connA, []string{"alice", "bob"})
	awaitPresence(t, connB2, []string{"alice", "bob"})

	// Now the same route lands exactly once, on the new session, and the
	// message dropped during the gap never resurfaces.
	gw.Router().Route(NewMessage{
		SenderID:   "alice",
		ReceiverID: "bob",
		Message:    map[string]any{"text": "hello again"},
	})
	data := nextFrame(t, connB2, EventNewMessage)
	var msg map[string]any
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("bad message payload %q: %v", data, err)
	}
	if msg["text"] != "hello again" {
		t.Fatalf("delivered payload = %v, want the post-reconnect message", msg)
	}
}

func TestGatewayRelaysTyping(t *testing.T) {
	_, ts := newTestGateway(t)

	connA := dialWS(t, ts, "alice")
	connB := dialWS(t, ts, "bob")
	awaitPresence(t, connA, []string{"alice", "bob"})
	awaitPresence(t, connB, []string{"alice", "bob"})

	sendFrame(t, connB, EventTyping, map[string]any{"receiverId": "alice", "isTyping": true})

	data := nextFrame(t, connA, EventTyping)
	var p struct {
		SenderID string `json:"senderId"`
		IsTyping bool   `json:"isTyping"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("bad typing payload %q: %v", data, err)
	}
	if p.SenderID != "bob" || !p.IsTyping {
		t.Fatalf("typing payload = %+v, want sender bob typing", p)
	}
}

func TestGatewayRelaysVoiceChunks(t *testing.T) {
	_, ts := newTestGateway(t)

	connA := dialWS(t, ts, "alice")
	connB := dialWS(t, ts, "bob")
	awaitPresence(t, connA, []string{"alice", "bob"})
	awaitPresence(t, connB, []string{"alice", "bob"})

	sendFrame(t, connA, EventStreamVoice, map[string]any{
		"receiverId": "bob",
		"audioChunk": "QUJD",
		"messageId":  "m-1",
		"finished":   false,
	})
	sendFrame(t, connA, EventStreamVoice, map[string]any{
		"receiverId": "bob",
		"audioChunk": "REVG",
		"messageId":  "m-1",
		"finished":   true,
	})

	var p struct {
		SenderID  string `json:"senderId"`
		Chunk     string `json:"audioChunk"`
		MessageID string `json:"messageId"`
		Finished  bool   `json:"finished"`
	}
	data := nextFrame(t, connB, EventVoiceStream)
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("bad voice payload %q: %v", data, err)
	}
	if p.SenderID != "alice" || p.Chunk != "QUJD" || p.MessageID != "m-1" || p.Finished {
		t.Fatalf("first chunk = %+v", p)
	}
	data = nextFrame(t, connB, EventVoiceStream)
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("bad voice payload %q: %v", data, err)
	}
	if p.Chunk != "REVG" || !p.Finished {
		t.Fatalf("final chunk = %+v", p)
	}
}

func TestGatewayAnswersPing(t *testing.T) {
	_, ts := newTestGateway(t)

	conn := dialWS(t, ts, "alice")
	awaitPresence(t, conn, []string{"alice"})

	sendFrame(t, conn, EventPing, nil)
	nextFrame(t, conn, EventPong)
}

func TestGatewayIgnoresMalformedFrames(t *testing.T) {
	_, ts := newTestGateway(t)

	conn := dialWS(t, ts, "alice")
	awaitPresence(t, conn, []string{"alice"})

	// Garbage and event-less frames are logged and skipped; the connection
	// stays up and keeps serving.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"data":{}}`)); err != nil {
		t.Fatalf("write event-less frame: %v", err)
	}

	sendFrame(t, conn, EventPing, nil)
	nextFrame(t, conn, EventPong)
}

func TestGatewayAnonymousConnection(t *testing.T) {
	_, ts := newTestGateway(t)

	connA := dialWS(t, ts, "alice")
	awaitPresence(t, connA, []string{"alice"})

	// No userId on the handshake: still receives presence, never appears in
	// it, and cannot originate relays.
	anon := dialWS(t, ts, "")
	awaitPresence(t, anon, []string{"alice"})

	sendFrame(t, anon, EventTyping, map[string]any{"receiverId": "alice", "isTyping": true})

	// Presence broadcasts keep flowing to alice; only a relayed typing frame
	// would mean the anonymous sender got through.
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		_ = connA.SetReadDeadline(deadline)
		_, raw, err := connA.ReadMessage()
		if err != nil {
			break
		}
		var f wireFrame
		if err := json.Unmarshal(raw, &f); err != nil {
			t.Fatalf("bad frame %q: %v", raw, err)
		}
		if f.Event == EventTyping {
			t.Fatalf("alice received typing from an anonymous sender: %s", raw)
		}
	}
}
