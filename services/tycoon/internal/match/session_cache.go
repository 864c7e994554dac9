package match

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"

	"github.com/appetiteclub/takoyaki/services/tycoon/internal/order"
	"github.com/appetiteclub/takoyaki/services/tycoon/internal/session"
)

var ErrSessionNotFound = errors.New("session not found")

// EventSink receives the events a session queued during one operation.
type EventSink interface {
	Notify(ctx context.Context, id uuid.UUID, events []session.Event)
}

type guardedSession struct {
	mu      sync.Mutex
	session *session.Session

	// notifyMu is taken before mu is released so events leave in mutation order.
	notifyMu sync.Mutex
}

// SessionCache keeps live matches in memory. Operations on one session are
// serialized; different sessions proceed in parallel.
type SessionCache struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*guardedSession

	rules        session.Rules
	newGenerator func() *order.Generator
	sink         EventSink
	logger       apt.Logger
}

func NewSessionCache(rules session.Rules, sink EventSink, logger apt.Logger) *SessionCache {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &SessionCache{
		sessions:     make(map[uuid.UUID]*guardedSession),
		rules:        rules,
		newGenerator: func() *order.Generator { return order.NewGenerator(nil) },
		sink:         sink,
		logger:       logger,
	}
}

// SetEventSink sets where drained session events go (called after initialization).
func (c *SessionCache) SetEventSink(sink EventSink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sink = sink
}

// SetGeneratorFactory replaces how new sessions draw their orders.
func (c *SessionCache) SetGeneratorFactory(fn func() *order.Generator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.newGenerator = fn
}

func (c *SessionCache) Create() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := session.New(c.rules, c.newGenerator())
	c.sessions[s.ID] = &guardedSession{session: s}
	c.logger.Debug("session created", "session_id", s.ID.String())
	return s.ID
}

// Update runs fn with exclusive access to the session and forwards any
// events it produced once the session is unlocked.
func (c *SessionCache) Update(ctx context.Context, id uuid.UUID, fn func(*session.Session)) error {
	g, sink := c.lookup(id)
	if g == nil {
		return ErrSessionNotFound
	}

	g.mu.Lock()
	fn(g.session)
	events := g.session.DrainEvents()
	notify := len(events) > 0 && sink != nil
	if notify {
		g.notifyMu.Lock()
	}
	g.mu.Unlock()

	if notify {
		defer g.notifyMu.Unlock()
		sink.Notify(ctx, id, events)
	}
	return nil
}

// View runs fn with exclusive access but is meant for reads.
func (c *SessionCache) View(id uuid.UUID, fn func(*session.Session)) error {
	g, _ := c.lookup(id)
	if g == nil {
		return ErrSessionNotFound
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.session)
	return nil
}

func (c *SessionCache) Delete(id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(c.sessions, id)
	c.logger.Debug("session deleted", "session_id", id.String())
	return nil
}

// IDs lists every live session in a stable order.
func (c *SessionCache) IDs() []uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(c.sessions))
	for id := range c.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func (c *SessionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

func (c *SessionCache) lookup(id uuid.UUID) (*guardedSession, EventSink) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessions[id], c.sink
}
