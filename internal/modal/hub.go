package modal

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout   = 5 * time.Second
	clientQueueLen = 16
)

// Frame is the JSON message exchanged with modal clients.
//
// Server to client: {"type":"show",...} and {"type":"hide"}.
// Client to server: {"type":"activate","button":<index>}; a non-zero Seq
// must match the dialog being shown or the activation is ignored.
type Frame struct {
	Type    string   `json:"type"`
	Seq     uint64   `json:"seq,omitempty"`
	Icon    Icon     `json:"icon,omitempty"`
	Message string   `json:"message,omitempty"`
	Buttons []string `json:"buttons,omitempty"`
	Button  int      `json:"button,omitempty"`
}

const (
	FrameShow     = "show"
	FrameHide     = "hide"
	FrameActivate = "activate"
)

type hubClient struct {
	conn *websocket.Conn
	out  chan []byte
}

// Hub is a Surface mirrored to every connected websocket client. Any client
// may activate a button of the current dialog.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	seq     uint64
	current *Dialog
	clients map[*hubClient]struct{}
	closed  bool
}

// NewHub creates a Hub with no clients.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*hubClient]struct{}, 4),
	}
}

// Show implements Surface.
func (h *Hub) Show(d Dialog) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	h.current = &d
	h.broadcastLocked(h.showFrameLocked())
}

// Hide implements Surface.
func (h *Hub) Hide() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	h.current = nil
	h.broadcastLocked(Frame{Type: FrameHide, Seq: h.seq})
}

// Current returns the dialog being shown and its sequence number.
func (h *Hub) Current() (Dialog, uint64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current == nil {
		return Dialog{}, h.seq, false
	}
	return *h.current, h.seq, true
}

// Activate presses button idx of the current dialog. seq 0 skips the
// staleness check. Returns false when nothing was activated.
func (h *Hub) Activate(idx int, seq uint64) bool {
	h.mu.Lock()
	if h.current == nil || (seq != 0 && seq != h.seq) || idx < 0 || idx >= len(h.current.Buttons) {
		h.mu.Unlock()
		return false
	}
	fn := h.current.Buttons[idx].OnActivate
	h.mu.Unlock()

	if fn != nil {
		fn()
	}
	return true
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		close(c.out)
		delete(h.clients, c)
	}
}

// Handler upgrades the request and serves one modal client.
func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			slog.Debug("modal upgrade failed", "remote", r.RemoteAddr, "err", err)
			return
		}
		defer conn.Close()

		c := &hubClient{conn: conn, out: make(chan []byte, clientQueueLen)}
		if !h.register(c) {
			return
		}
		defer h.unregister(c)

		slog.Debug("modal client connected", "remote", r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		go h.writeLoop(ctx, c)

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				slog.Debug("modal client disconnected", "remote", r.RemoteAddr, "err", err)
				return
			}

			var f Frame
			if err := json.Unmarshal(msg, &f); err != nil || f.Type != FrameActivate {
				slog.Debug("ignoring modal client message", "remote", r.RemoteAddr, "msg", string(msg))
				continue
			}
			if !h.Activate(f.Button, f.Seq) {
				slog.Debug("stale modal activation", "button", f.Button, "seq", f.Seq)
			}
		}
	}
}

func (h *Hub) writeLoop(ctx context.Context, c *hubClient) {
	for {
		select {
		case <-ctx.Done():
			return
		case b, ok := <-c.out:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(time.Second))
				_ = c.conn.Close()
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}
	}
}

func (h *Hub) register(c *hubClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}

	// Новый клиент сразу видит текущий диалог.
	if h.current != nil {
		if b, err := json.Marshal(h.showFrameLocked()); err == nil {
			c.out <- b
		}
	}
	return true
}

func (h *Hub) unregister(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		close(c.out)
		delete(h.clients, c)
	}
}

func (h *Hub) showFrameLocked() Frame {
	return Frame{
		Type:    FrameShow,
		Seq:     h.seq,
		Icon:    h.current.Icon,
		Message: h.current.Message,
		Buttons: h.current.Labels(),
	}
}

func (h *Hub) broadcastLocked(f Frame) {
	b, err := json.Marshal(f)
	if err != nil {
		slog.Error("encoding modal frame", "err", err)
		return
	}
	for c := range h.clients {
		select {
		case c.out <- b:
		default:
			// Медленный клиент: отключаем.
			slog.Warn("modal client too slow, dropping")
			close(c.out)
			delete(h.clients, c)
		}
	}
}
