package stream

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/blackmichael/solana-twitter/internal/domain"
	"github.com/gorilla/websocket"
)

const defaultReconnectDelay = 5 * time.Second

// HandlerFunc receives each tweet read from the stream.
type HandlerFunc func(ctx context.Context, tweet domain.TweetCreated) error

// Watcher connects to a stream endpoint and hands every tweet event to its
// handler.
type Watcher struct {
	url            string
	handler        HandlerFunc
	logger         *slog.Logger
	reconnectDelay time.Duration
}

// NewWatcher creates a watcher for the websocket endpoint at url.
func NewWatcher(url string, handler HandlerFunc, logger *slog.Logger) *Watcher {
	return &Watcher{
		url:            url,
		handler:        handler,
		logger:         logger,
		reconnectDelay: defaultReconnectDelay,
	}
}

// SetReconnectDelay overrides the pause between reconnect attempts.
func (w *Watcher) SetReconnectDelay(d time.Duration) {
	w.reconnectDelay = d
}

// Start connects to the stream and processes events until the context is
// cancelled. It automatically reconnects on transient errors.
func (w *Watcher) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := w.subscribe(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("stream connection error, reconnecting", "error", err)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(w.reconnectDelay):
					// backoff before reconnecting
				}
			}
		}
	}
}

func (w *Watcher) subscribe(ctx context.Context) error {
	w.logger.Info("connecting to stream", "url", w.url)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return fmt.Errorf("dial stream: %w", err)
	}
	defer conn.Close()

	// unblock ReadMessage when the context ends
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	w.logger.Info("connected to stream")

	var lastSeq uint64
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		e, err := parseEvent(message)
		if err != nil {
			w.logger.Error("failed to parse event", "error", err)
			continue
		}

		if lastSeq != 0 && e.Seq > lastSeq+1 {
			w.logger.Warn("stream events skipped", "from", lastSeq+1, "to", e.Seq-1)
		}
		lastSeq = e.Seq

		if e.Kind != KindTweet {
			continue
		}
		if err := w.handler(ctx, *e.Tweet); err != nil {
			w.logger.Error("failed to handle tweet", "address", e.Tweet.Address, "error", err)
		}
	}
}
