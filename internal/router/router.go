package router

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jmorel/presence-relay/internal/history"
	"github.com/jmorel/presence-relay/internal/model"
	"github.com/jmorel/presence-relay/internal/protocol"
	"github.com/jmorel/presence-relay/internal/session"
)

// Router consumes connection events and produces deliveries.
type Router interface {
	// Start begins consuming events. Returns immediately.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the routing loop.
	Stop(ctx context.Context) error

	// Stats returns current routing statistics.
	Stats() Stats
}

// router is the internal implementation.
type router struct {
	registry session.Registry
	sink     Sink
	store    history.Store
	logger   *slog.Logger

	// Input from the transport layer; the single serialization point.
	input <-chan Event

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.RWMutex
	stats Stats

	// Overridable for tests.
	now func() time.Time
}

// New creates a Message Router consuming events from input, normally
// the connection Hub's event channel.
func New(input <-chan Event, registry session.Registry, sink Sink, store history.Store, logger *slog.Logger) Router {
	if logger == nil {
		logger = slog.Default()
	}
	if store == nil {
		store = history.Discard{}
	}

	return &router{
		registry: registry,
		sink:     sink,
		store:    store,
		logger:   logger,
		input:    input,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start begins the routing loop.
func (r *router) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go r.routeLoop()

	r.logger.Info("message router started")
	return nil
}

// Stop gracefully shuts down the router.
func (r *router) Stop(ctx context.Context) error {
	r.logger.Info("stopping message router")

	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		r.logger.Warn("message router stop timed out")
	}

	// Apply whatever was queued before the loop exited, notably the
	// disconnect burst from the hub tearing down its connections.
	r.drainInput()

	r.logger.Info("message router stopped")
	return nil
}

// drainInput applies buffered events after the routing loop has exited.
func (r *router) drainInput() {
	for {
		select {
		case ev := <-r.input:
			r.dispatch(r.apply(ev))
		default:
			return
		}
	}
}

// Stats returns current statistics.
func (r *router) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats
}

// routeLoop is the single goroutine through which every registry
// mutation flows.
func (r *router) routeLoop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case ev, ok := <-r.input:
			if !ok {
				return
			}
			r.dispatch(r.apply(ev))
		}
	}
}

// dispatch hands deliveries to the sink.
func (r *router) dispatch(deliveries []Delivery) {
	for _, d := range deliveries {
		if d.Broadcast {
			r.sink.Broadcast(d.Data)
		} else {
			r.sink.Deliver(d.Conn, d.Data)
		}
	}
}

// apply routes one event against current registry state and returns the
// resulting deliveries. All error cases are silent no-ops.
func (r *router) apply(ev Event) []Delivery {
	r.mu.Lock()
	r.stats.EventsProcessed++
	r.mu.Unlock()

	switch ev.Type {
	case EventLogin:
		return r.applyLogin(ev)
	case EventSend:
		return r.applySend(ev)
	case EventDisconnect:
		return r.applyDisconnect(ev)
	default:
		r.logger.Warn("unknown event type", "type", ev.Type)
		return nil
	}
}

func (r *router) applyLogin(ev Event) []Delivery {
	if ev.Identity == "" {
		r.logger.Debug("ignoring login with empty identity", "conn", ev.Conn)
		return nil
	}

	r.registry.Register(ev.Conn, ev.Identity)
	r.logger.Info("user logged in", "identity", ev.Identity, "conn", ev.Conn)

	return []Delivery{r.rosterBroadcast()}
}

func (r *router) applyDisconnect(ev Event) []Delivery {
	if !r.registry.Unregister(ev.Conn) {
		// Never logged in; nothing to announce.
		return nil
	}

	r.logger.Info("user disconnected", "conn", ev.Conn)
	return []Delivery{r.rosterBroadcast()}
}

func (r *router) applySend(ev Event) []Delivery {
	from, ok := r.registry.IdentityOf(ev.Conn)
	if !ok {
		r.mu.Lock()
		r.stats.SendsIgnored++
		r.mu.Unlock()
		r.logger.Debug("dropping send from unidentified conn", "conn", ev.Conn)
		return nil
	}

	record := model.Message{
		From:   from,
		To:     ev.To,
		Body:   ev.Body,
		SentAt: r.now(),
	}
	r.store.Append(record)

	data, err := protocol.Encode(protocol.TypeReceiveMessage, record)
	if err != nil {
		r.logger.Error("failed to encode message record", "error", err)
		return nil
	}

	var deliveries []Delivery

	// At most one recipient connection, picked arbitrarily when the
	// identity is claimed by several.
	if conns := r.registry.ConnectionsOf(ev.To); len(conns) > 0 {
		deliveries = append(deliveries, Delivery{Conn: conns[0], Data: data})
		r.mu.Lock()
		r.stats.MessagesRouted++
		r.mu.Unlock()
	} else {
		r.mu.Lock()
		r.stats.MessagesDropped++
		r.mu.Unlock()
		r.logger.Debug("recipient offline, delivering echo only", "to", ev.To)
	}

	// Confirmation echo, regardless of recipient state.
	deliveries = append(deliveries, Delivery{Conn: ev.Conn, Data: data})
	r.mu.Lock()
	r.stats.MessagesEchoed++
	r.mu.Unlock()

	return deliveries
}

// rosterBroadcast builds a full-snapshot users frame for all clients.
func (r *router) rosterBroadcast() Delivery {
	data, err := protocol.Encode(protocol.TypeUsers, protocol.UsersMsg{
		Users: r.registry.Snapshot(),
	})
	if err != nil {
		// UsersMsg cannot fail to marshal; keep the contract anyway.
		r.logger.Error("failed to encode roster", "error", err)
		return Delivery{Broadcast: true, Data: nil}
	}

	r.mu.Lock()
	r.stats.RosterBroadcasts++
	r.mu.Unlock()

	return Delivery{Broadcast: true, Data: data}
}
