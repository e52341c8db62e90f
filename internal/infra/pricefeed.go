package infra

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"hyperexec/pkg/quant"
)

// MarkBook holds the latest mark price per symbol.
// Read by the engine at submission time (arrival price) and by the
// paper venue for market fills.
type MarkBook struct {
	mu    sync.RWMutex
	marks map[string]quant.PriceMicros
}

// NewMarkBook creates an empty mark-price book.
func NewMarkBook() *MarkBook {
	return &MarkBook{marks: make(map[string]quant.PriceMicros)}
}

// Set stores the latest mark price for a symbol.
func (b *MarkBook) Set(symbol string, price quant.PriceMicros) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.marks[symbol] = price
}

// Get returns the latest mark price for a symbol.
func (b *MarkBook) Get(symbol string) (quant.PriceMicros, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.marks[symbol]
	return p, ok
}

// PriceFeed subscribes to the venue's allMids stream and keeps a
// MarkBook current. The engine runs fine without it; slippage metrics
// are simply not computable then.
type PriceFeed struct {
	worker *StreamWorker
	url    string
	book   *MarkBook
}

// NewPriceFeed creates a feed publishing into the given book.
func NewPriceFeed(url string, book *MarkBook) *PriceFeed {
	f := &PriceFeed{url: url, book: book}
	f.worker = NewStreamWorker(f)
	return f
}

// Start begins the connection loop.
func (f *PriceFeed) Start(ctx context.Context) {
	f.worker.Start(ctx)
}

// Stop terminates the feed.
func (f *PriceFeed) Stop() {
	f.worker.Stop()
}

func (f *PriceFeed) Name() string { return "price-feed" }
func (f *PriceFeed) URL() string  { return f.url }

type midsSubscribeRequest struct {
	Method       string `json:"method"`
	Subscription struct {
		Type string `json:"type"`
	} `json:"subscription"`
}

// OnConnect subscribes to the allMids channel.
func (f *PriceFeed) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	var req midsSubscribeRequest
	req.Method = "subscribe"
	req.Subscription.Type = "allMids"

	msg, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, msg)
}

type midsMessage struct {
	Channel string `json:"channel"`
	Data    struct {
		Mids map[string]string `json:"mids"`
	} `json:"data"`
}

// OnMessage folds an allMids update into the book.
// Prices arrive as decimal strings and are parsed fixed-point.
func (f *PriceFeed) OnMessage(ctx context.Context, raw []byte) {
	var msg midsMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		slog.Warn("PRICE_FEED_BAD_MESSAGE", slog.Any("error", err))
		return
	}
	if msg.Channel != "allMids" {
		return
	}

	for symbol, mid := range msg.Data.Mids {
		if p := quant.ToPriceMicrosStr(mid); p > 0 {
			f.book.Set(symbol, p)
		}
	}
}

// OnPing keeps the connection alive.
func (f *PriceFeed) OnPing(ctx context.Context, conn *websocket.Conn) error {
	return f.worker.Write(websocket.TextMessage, []byte(`{"method":"ping"}`))
}
