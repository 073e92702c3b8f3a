package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"stocktracker/internal/metrics"
	"stocktracker/internal/model"
	"stocktracker/internal/stock"
)

const defaultPollInterval = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	EnableCompression: true,
}

// QuoteFunc fetches the current quote for a symbol.
type QuoteFunc func(ctx context.Context, symbol string) (*model.Quote, error)

// Hub fans live price updates out to WebSocket clients. One poller
// goroutine runs per subscribed symbol; it starts with the first client
// and stops with the last.
type Hub struct {
	quote    QuoteFunc
	mets     *metrics.Metrics
	interval time.Duration

	ctx context.Context

	mu      sync.Mutex
	pollers map[string]*symbolPoller
}

type symbolPoller struct {
	symbol  string
	clients map[*Client]bool
	cancel  context.CancelFunc
}

// NewHub creates the hub. ctx bounds all poller goroutines.
func NewHub(ctx context.Context, quote QuoteFunc, mets *metrics.Metrics) *Hub {
	return &Hub{
		quote:    quote,
		mets:     mets,
		interval: defaultPollInterval,
		ctx:      ctx,
		pollers:  make(map[string]*symbolPoller),
	}
}

// handleWS upgrades the connection and attaches it to the symbol's poller.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sym, err := stock.NormalizeSymbol(chi.URLParam(r, "symbol"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[gateway] ws upgrade error: %v", err)
		return
	}
	s.hub.Add(conn, sym)
}

// Add registers a new client connection for symbol and starts its pumps.
func (h *Hub) Add(conn *websocket.Conn, symbol string) {
	c := &Client{
		conn:   conn,
		send:   make(chan []byte, 16),
		hub:    h,
		symbol: symbol,
	}

	h.mu.Lock()
	p, ok := h.pollers[symbol]
	if !ok {
		pctx, cancel := context.WithCancel(h.ctx)
		p = &symbolPoller{
			symbol:  symbol,
			clients: make(map[*Client]bool),
			cancel:  cancel,
		}
		h.pollers[symbol] = p
		go h.poll(pctx, p)
	}
	p.clients[c] = true
	h.mu.Unlock()

	h.mets.WSConnects.Inc()
	h.mets.WSClients.Inc()
	log.Printf("[gateway] ws client connected: symbol=%s", symbol)

	go c.writePump()
	go c.readPump()
}

// remove detaches a client; the poller dies with its last client.
func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	p, ok := h.pollers[c.symbol]
	if ok && p.clients[c] {
		delete(p.clients, c)
		close(c.send)
		h.mets.WSClients.Dec()
		if len(p.clients) == 0 {
			p.cancel()
			delete(h.pollers, c.symbol)
		}
	}
	h.mu.Unlock()
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, p := range h.pollers {
		n += len(p.clients)
	}
	return n
}

// poll fetches the symbol's quote on a fixed interval and broadcasts it.
// The first update goes out immediately so a fresh client is not left
// staring at nothing for a full interval.
func (h *Hub) poll(ctx context.Context, p *symbolPoller) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.pollOnce(ctx, p)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.pollOnce(ctx, p)
		}
	}
}

func (h *Hub) pollOnce(ctx context.Context, p *symbolPoller) {
	fetchCtx, cancel := context.WithTimeout(ctx, h.interval)
	q, err := h.quote(fetchCtx, p.symbol)
	cancel()

	var msg []byte
	if err != nil {
		log.Printf("[gateway] ws poll %s: %v", p.symbol, err)
		msg, _ = json.Marshal(map[string]any{
			"type":   "error",
			"symbol": p.symbol,
			"error":  "quote unavailable",
			"ts":     time.Now().UTC().Format(time.RFC3339),
		})
	} else {
		msg, _ = json.Marshal(map[string]any{
			"type": "price_update",
			"data": q,
			"ts":   time.Now().UTC().Format(time.RFC3339),
		})
	}

	h.mu.Lock()
	for c := range p.clients {
		select {
		case c.send <- msg:
			h.mets.WSMessages.Inc()
		default:
			// Slow consumer: drop the update, never block the poller.
		}
	}
	h.mu.Unlock()
}
