package gateway

import (
	"context"
	"net"
	"net/http"
	"time"

	"VoChat/logger"
	"VoChat/service/storage"
	"VoChat/tools/ids"
	"VoChat/tools/safe"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Options configures one gateway instance. Everything is injected at
// construction; the server keeps no ambient state, so tests can run
// isolated instances side by side.
type Options struct {
	NodeID         string
	SendQueue      int
	PresenceTTL    time.Duration
	AllowedOrigins []string // empty allows any origin
}

// Server owns the connection lifecycle: it drives the registry and the
// presence broadcaster, and hands inbound frames to the dispatcher. The
// registry is constructed here, once, and shared by reference with the
// router and broadcaster.
type Server struct {
	opts     Options
	reg      *Registry
	disp     *Dispatcher
	router   *Router
	presence *Broadcaster
	fanout   *Fanout
	upgrader websocket.Upgrader
}

func NewServer(opts Options) *Server {
	if opts.PresenceTTL <= 0 {
		opts.PresenceTTL = 60 * time.Second
	}
	reg := NewRegistry()
	fanout := NewFanout(4, 64)
	s := &Server{
		opts:     opts,
		reg:      reg,
		disp:     NewDispatcher(),
		router:   NewRouter(reg),
		presence: NewBroadcaster(reg, fanout),
		fanout:   fanout,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(opts.AllowedOrigins),
	}
	s.disp.Register(typingHandler{})
	s.disp.Register(voiceHandler{})
	s.disp.Register(pingHandler{})
	return s
}

func (s *Server) Registry() *Registry { return s.reg }

// Router is the broadcast hook the HTTP layer calls after persisting a
// message.
func (s *Server) Router() *Router { return s.router }

func (s *Server) Presence() *Broadcaster { return s.presence }

func (s *Server) Close() {
	s.fanout.Close()
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// HandleWS runs the per-connection state machine: upgrade, register,
// presence broadcast, read until the transport dies, then tear down exactly
// once. The user id comes from the handshake query and may be absent; an
// anonymous connection still gets presence pushes but can never be a
// delivery target.
func (s *Server) HandleWS(c *gin.Context) {
	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[gateway] upgrade failed: %v", err)
		return
	}

	userID := c.Query("userId")
	client := NewClient(ids.GenerateString(), userID, ws, s.opts.SendQueue)

	s.reg.Register(client)
	if userID != "" {
		octx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := storage.PresenceOnline(octx, userID, s.opts.NodeID, s.opts.PresenceTTL); err != nil {
			logger.Warnf("[gateway] presence mirror online user=%s: %v", userID, err)
		}
		cancel()
	}
	s.presence.Broadcast()
	logger.Infof("[gateway] connected user=%q conn=%s remote=%s", userID, client.ConnID, ws.RemoteAddr())

	safe.Go("ws-writer", client.writePump)
	s.readLoop(client)
	s.teardown(client)
}

func (s *Server) readLoop(client *Client) {
	ws := client.WS
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, data, err := ws.ReadMessage()
		if err != nil {
			// Deliberate close, timeout and network error all mean the same
			// thing here: the connection is gone.
			switch {
			case websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived):
				logger.Infof("[gateway] peer closed conn=%s: %v", client.ConnID, err)
			default:
				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					logger.Infof("[gateway] read timeout conn=%s: %v", client.ConnID, err)
				} else {
					logger.Infof("[gateway] read error conn=%s: %v", client.ConnID, err)
				}
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		frame, perr := ParseFrame(data)
		if perr != nil {
			sample := data
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Warnf("[gateway] bad frame conn=%s: %v sample=%q", client.ConnID, perr, sample)
			continue
		}

		if err := s.disp.Dispatch(&Context{S: s}, client, frame); err != nil {
			logger.Warnf("[gateway] %s handler conn=%s: %v", frame.Event, client.ConnID, err)
		}
	}
}

// teardown runs at most once per connection, no matter how many close
// signals race in: unregister (guarded), drop the presence mirror entry if
// this really was the user's last session, broadcast the new set.
func (s *Server) teardown(client *Client) {
	client.downOnce.Do(func() {
		close(client.done)
		s.reg.Unregister(client)
		if client.UserID != "" {
			if _, still := s.reg.Lookup(client.UserID); !still {
				octx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				if err := storage.PresenceOffline(octx, client.UserID); err != nil {
					logger.Warnf("[gateway] presence mirror offline user=%s: %v", client.UserID, err)
				}
				cancel()
			}
		}
		s.presence.Broadcast()
		logger.Infof("[gateway] disconnected user=%q conn=%s", client.UserID, client.ConnID)
	})
}
