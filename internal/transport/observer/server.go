package observer

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"stonehollow.dev/internal/observerproto"
	"stonehollow.dev/internal/sim/world"
)

// Server fans chunk lifecycle events out to local observer connections.
// It owns the world's event sink, so construct it before the world runs.
type Server struct {
	world *world.World
	log   *log.Logger

	upgrader websocket.Upgrader

	events chan world.Event

	mu      sync.Mutex
	clients map[string]chan []byte
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	s := &Server{
		world: w,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		events:  make(chan world.Event, 1024),
		clients: map[string]chan []byte{},
	}
	w.SetEventSink(s.events)
	return s
}

// Run consumes world events and broadcasts them until the context ends.
func (s *Server) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.events:
			b, err := json.Marshal(observerproto.ChunkEventMsg{
				Type:            "CHUNK_EVENT",
				ProtocolVersion: observerproto.Version,
				Event:           string(ev.Type),
				CX:              ev.Key.CX,
				CY:              ev.Key.CY,
				CZ:              ev.Key.CZ,
				Tick:            ev.Tick,
			})
			if err != nil {
				continue
			}
			s.broadcast(b)
		}
	}
}

func (s *Server) broadcast(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, out := range s.clients {
		select {
		case out <- b:
		default:
			// Lagging observer; drop rather than stall the feed.
		}
	}
}

func (s *Server) addClient(id string, out chan []byte) {
	s.mu.Lock()
	s.clients[id] = out
	s.mu.Unlock()
}

func (s *Server) removeClient(id string) {
	s.mu.Lock()
	delete(s.clients, id)
	s.mu.Unlock()
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		cfg := s.world.Config()
		resp := observerproto.BootstrapResponse{
			ProtocolVersion: observerproto.Version,
			WorldID:         cfg.ID,
			Tick:            s.world.CurrentTick(),
			WorldParams: observerproto.WorldParams{
				TickRateHz:  cfg.TickRateHz,
				ChunkSize:   [3]int{world.Size, world.Size, world.Size},
				WorldHeight: cfg.WorldHeight,
				SeaLevel:    cfg.SeaLevel,
				Seed:        cfg.Seed,
				LoadRadius:  cfg.LoadRadius,
			},
			BlockPalette: s.world.Palette(),
			Stats:        s.currentStats(),
		}

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

// currentStats asks the world loop for a snapshot. Returns zeros when the
// loop is not running or does not answer in time.
func (s *Server) currentStats() observerproto.Stats {
	reply := make(chan world.StatsView, 1)
	select {
	case s.world.StatsRequests() <- reply:
	default:
		return observerproto.Stats{}
	}
	select {
	case v := <-reply:
		return observerproto.Stats{
			Generated:    v.Generated,
			CacheHits:    v.CacheHits,
			CacheStored:  v.CacheStored,
			Discarded:    v.Discarded,
			MeshBuilt:    v.MeshBuilt,
			LoadedChunks: v.LoadedChunks,
			Generating:   v.Generating,
			LoadBacklog:  v.LoadBacklog,
			MeshBacklog:  v.MeshBacklog,
			CachedChunks: v.CachedChunks,
		}
	case <-time.After(time.Second):
		return observerproto.Stats{}
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sub observerproto.SubscribeMsg
		if err := json.Unmarshal(msg, &sub); err != nil {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad subscribe"), time.Now().Add(time.Second))
			return
		}
		if sub.Type != "SUBSCRIBE" || sub.ProtocolVersion != observerproto.Version {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"), time.Now().Add(time.Second))
			return
		}

		sid := uuid.NewString()
		out := make(chan []byte, 256)
		s.addClient(sid, out)
		defer s.removeClient(sid)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Reader loop: keepalive only, any further messages are ignored.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		// Best-effort wait for the writer so it doesn't outlive conn.
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
