// ===== internal/hub/hub.go =====

// Package hub fans forwarded frame lines out to live subscribers.
//
// Every registered subscriber owns a bounded queue drained by its own writer
// goroutine, so Broadcast never waits on a network write. A subscriber whose
// queue is full or whose Send fails is unregistered and closed; nothing is
// reported back to the broadcaster.
//
// # Thread Safety
//
// All methods are safe for concurrent use. Register and Unregister may run
// while Broadcast is iterating; Broadcast holds the read lock for the whole
// enqueue pass, so it always sees a complete subscriber set.
package hub

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"wifigaze/pkg/models"
)

var (
	// ErrHubClosed is returned by Register after Close.
	ErrHubClosed = errors.New("hub is closed")

	// ErrSubscriberExists is returned when an id is registered twice.
	ErrSubscriberExists = errors.New("subscriber id already exists")

	// ErrSubscriberDelivery wraps a failed Send.
	ErrSubscriberDelivery = errors.New("subscriber delivery failed")

	// ErrSlowSubscriber is recorded when a subscriber's queue overflows.
	ErrSlowSubscriber = errors.New("subscriber queue full")
)

// DefaultQueueSize is used when New is given a non-positive size.
const DefaultQueueSize = 256

// Subscriber is one consumer connection.
type Subscriber interface {
	// ID identifies the subscriber for the lifetime of its registration.
	ID() string
	// Send delivers one message; it is only called from the subscriber's writer goroutine.
	Send(msg string) error
	// Close releases the underlying connection. It may be called concurrently with Send.
	Close() error
}

type client struct {
	sub   Subscriber
	queue chan string
	done  chan struct{}
	once  sync.Once

	sent    atomic.Uint64
	dropped atomic.Uint64
}

// Hub is the broadcast hub.
type Hub struct {
	mu        sync.RWMutex
	clients   map[string]*client
	closed    bool
	queueSize int
	logger    *zap.Logger
	wg        sync.WaitGroup

	totalPublished atomic.Uint64
}

// New creates a hub whose subscribers buffer up to queueSize messages.
func New(logger *zap.Logger, queueSize int) *Hub {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Hub{
		clients:   make(map[string]*client),
		queueSize: queueSize,
		logger:    logger,
	}
}

// Register adds sub and starts its writer.
func (h *Hub) Register(sub Subscriber) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}
	if _, exists := h.clients[sub.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrSubscriberExists, sub.ID())
	}

	c := &client{
		sub:   sub,
		queue: make(chan string, h.queueSize),
		done:  make(chan struct{}),
	}
	h.clients[sub.ID()] = c

	h.wg.Add(1)
	go h.writeLoop(c)

	h.logger.Info("subscriber connected", zap.String("subscriber", sub.ID()), zap.Int("subscribers", len(h.clients)))
	return nil
}

// Unregister removes sub and closes it. Unknown subscribers are ignored.
func (h *Hub) Unregister(sub Subscriber) {
	h.mu.Lock()
	c, exists := h.clients[sub.ID()]
	if exists {
		delete(h.clients, sub.ID())
	}
	h.mu.Unlock()

	if exists {
		h.stop(c, nil)
	}
}

// Broadcast queues msg for every registered subscriber.
func (h *Hub) Broadcast(msg string) {
	h.totalPublished.Add(1)

	var slow []*client

	h.mu.RLock()
	for _, c := range h.clients {
		select {
		case c.queue <- msg:
		default:
			c.dropped.Add(1)
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.remove(c, ErrSlowSubscriber)
	}
}

// Len returns the number of registered subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns a snapshot of delivery counters.
func (h *Hub) Stats() models.HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := models.HubStats{
		TotalPublished: h.totalPublished.Load(),
		Subscribers:    make(map[string]models.SubscriberCounters, len(h.clients)),
	}
	for id, c := range h.clients {
		counters := models.SubscriberCounters{Sent: c.sent.Load(), Dropped: c.dropped.Load()}
		stats.TotalSent += counters.Sent
		stats.TotalDropped += counters.Dropped
		stats.Subscribers[id] = counters
	}
	return stats
}

// Close unregisters and closes every subscriber and waits for their writers.
// Close is idempotent.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := h.clients
	h.clients = make(map[string]*client)
	h.mu.Unlock()

	for _, c := range clients {
		h.stop(c, nil)
	}
	h.wg.Wait()
}

func (h *Hub) writeLoop(c *client) {
	defer h.wg.Done()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.queue:
			if err := c.sub.Send(msg); err != nil {
				h.remove(c, fmt.Errorf("%w: %w", ErrSubscriberDelivery, err))
				return
			}
			c.sent.Add(1)
		}
	}
}

// remove drops c if it is still the registered client for its id.
func (h *Hub) remove(c *client, reason error) {
	id := c.sub.ID()

	h.mu.Lock()
	current, exists := h.clients[id]
	if exists && current == c {
		delete(h.clients, id)
	}
	h.mu.Unlock()

	h.stop(c, reason)
}

func (h *Hub) stop(c *client, reason error) {
	c.once.Do(func() {
		close(c.done)
		if err := c.sub.Close(); err != nil {
			h.logger.Debug("subscriber close", zap.String("subscriber", c.sub.ID()), zap.Error(err))
		}
		if reason != nil {
			h.logger.Warn("subscriber removed", zap.String("subscriber", c.sub.ID()), zap.Error(reason))
		} else {
			h.logger.Info("subscriber disconnected", zap.String("subscriber", c.sub.ID()))
		}
	})
}
