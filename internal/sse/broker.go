// Package sse implements a Server-Sent Events broker for per-user
// notification delivery.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
)

// Event represents an SSE event to deliver.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type subReq struct {
	userID int64
	ch     chan []byte
}

type pubReq struct {
	userID int64 // 0 broadcasts to everyone
	event  Event
}

// Broker manages SSE client connections and routes events to the users they
// belong to.
//
// Concurrency model: a single internal event loop (goroutine) owns mutable
// state (the client map). Public methods communicate with this loop through
// channels, so no mutexes are required.
type Broker struct {
	subscribeCh   chan subReq
	unsubscribeCh chan chan []byte
	publishCh     chan pubReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker and starts its event loop.
func NewBroker() *Broker {
	b := &Broker{
		subscribeCh:   make(chan subReq),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan pubReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	// Channel to owning user. One user may hold several connections.
	clients := make(map[chan []byte]int64)

	deliver := func(req pubReq) {
		payload, err := json.Marshal(req.event.Data)
		if err != nil {
			return
		}
		raw := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", req.event.Type, payload))

		for ch, uid := range clients {
			if req.userID != 0 && uid != req.userID {
				continue
			}
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case req := <-b.subscribeCh:
			clients[req.ch] = req.userID

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case req := <-b.publishCh:
			deliver(req)

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops the broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client owned by the given user and returns its channel.
func (b *Broker) Subscribe(userID int64) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- subReq{userID: userID, ch: ch}:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// PublishTo sends an event to every connection held by the given user.
func (b *Broker) PublishTo(userID int64, event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- pubReq{userID: userID, event: event}:
	case <-b.stopped:
	}
}

// Broadcast sends an event to all connected clients.
func (b *Broker) Broadcast(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- pubReq{event: event}:
	case <-b.stopped:
	}
}

// Stream serves the SSE endpoint for an authenticated user's connection.
func (b *Broker) Stream(userID int64, w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe(userID)
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
