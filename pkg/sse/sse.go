// Package sse streams Server-Sent Events. A Broker fans every published
// event out to all connected streams; it is the no-websocket fallback for
// the live pricing feed.
//
//	b := sse.NewBroker("price")
//	r.Handle("/api/service/events", "service.events", b)
//	b.BroadcastJSON(frame)
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shashiranjanraj/laundry/pkg/metrics"
)

// Heartbeat is how often an idle stream gets a keepalive comment.
var Heartbeat = 25 * time.Second

// Stream is one client connection.
type Stream struct {
	w  http.ResponseWriter
	r  *http.Request
	rc *http.ResponseController
}

// New sets the event-stream headers and flushes them. It returns nil, after
// writing a 500, when no writer in the chain can flush.
func New(w http.ResponseWriter, r *http.Request) *Stream {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		h.Del("Cache-Control")
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return nil
	}
	return &Stream{w: w, r: r, rc: rc}
}

// Send writes a named event with a JSON payload.
func (s *Stream) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal: %w", err)
	}
	return s.raw(event, payload)
}

func (s *Stream) raw(event string, payload []byte) error {
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	return s.rc.Flush()
}

// Comment writes a keepalive comment.
func (s *Stream) Comment(msg string) {
	fmt.Fprintf(s.w, ": %s\n\n", msg)
	_ = s.rc.Flush()
}

// Done is closed when the client goes away.
func (s *Stream) Done() <-chan struct{} { return s.r.Context().Done() }

// ─── Broker ──────────────────────────────────────────────────────────────────

// Broker publishes events of one name to every subscribed stream. Slow
// subscribers miss events rather than block publishers.
type Broker struct {
	event string
	gauge prometheus.Gauge

	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

func NewBroker(event string) *Broker {
	return &Broker{
		event: event,
		gauge: metrics.FeedSubscribers.WithLabelValues("sse"),
		subs:  make(map[chan []byte]struct{}),
	}
}

func (b *Broker) subscribe() chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	b.gauge.Inc()
	return ch
}

func (b *Broker) unsubscribe(ch chan []byte) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	b.gauge.Dec()
}

// Subscribers is the number of connected streams.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// BroadcastJSON encodes v once and queues it for every subscriber.
func (b *Broker) BroadcastJSON(v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("sse: marshal: %w", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

// ServeHTTP holds the connection open and streams events until the client
// disconnects.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s := New(w, r)
	if s == nil {
		return
	}
	// streams outlive the server's write timeout
	_ = s.rc.SetWriteDeadline(time.Time{})

	ch := b.subscribe()
	defer b.unsubscribe(ch)

	s.Comment("connected")
	ticker := time.NewTicker(Heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-s.Done():
			return
		case payload := <-ch:
			if err := s.raw(b.event, payload); err != nil {
				return
			}
		case <-ticker.C:
			s.Comment("ping")
		}
	}
}
