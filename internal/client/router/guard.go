package router

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/deliveryio/internal/client/session"
	"github.com/dmitrijs2005/deliveryio/internal/logging"
)

// SessionView is the read side of session.Store.
type SessionView interface {
	Snapshot() session.State
	Subscribe(fn func(session.State)) (unsubscribe func())
}

// BusyView reports whether an auth request is in flight.
type BusyView interface {
	Loading() bool
	SubscribeLoading(fn func(loading bool)) (unsubscribe func())
}

// Guard redirects between the unauthenticated area and the rest of the app.
//
// Rule, applied on every session, location or loading change:
//   - store not initialized, or an auth request loading: nothing;
//   - no token outside the unauthenticated area: Replace(/login);
//   - token inside the unauthenticated area: Replace(/);
//   - otherwise nothing.
type Guard struct {
	sessions SessionView
	busy     BusyView
	router   *Router
	log      logging.Logger

	mu    sync.Mutex
	unsub []func()
}

func NewGuard(sessions SessionView, busy BusyView, r *Router, log logging.Logger) *Guard {
	return &Guard{sessions: sessions, busy: busy, router: r, log: log.With("component", "guard")}
}

// Start subscribes to all three sources and evaluates once. Calling Start
// on a running guard does nothing.
func (g *Guard) Start() {
	g.mu.Lock()
	if g.unsub != nil {
		g.mu.Unlock()
		return
	}
	g.unsub = []func(){
		g.sessions.Subscribe(func(st session.State) { g.evaluate(st) }),
		g.router.Subscribe(func(Location) { g.Evaluate() }),
		g.busy.SubscribeLoading(func(bool) { g.Evaluate() }),
	}
	g.mu.Unlock()

	g.Evaluate()
}

func (g *Guard) Stop() {
	g.mu.Lock()
	unsub := g.unsub
	g.unsub = nil
	g.mu.Unlock()

	for _, fn := range unsub {
		fn()
	}
}

// Evaluate applies the rule to the current session and location.
func (g *Guard) Evaluate() {
	g.evaluate(g.sessions.Snapshot())
}

func (g *Guard) evaluate(st session.State) {
	if !st.Initialized || g.busy.Loading() {
		return
	}

	loc := g.router.Location()
	signedIn := st.Token() != ""

	switch {
	case !signedIn && !loc.IsUnauthenticated():
		g.log.Debug(context.Background(), "redirecting to login", "from", string(loc))
		g.router.Replace(LocationLogin)
	case signedIn && loc.IsUnauthenticated():
		g.log.Debug(context.Background(), "redirecting to home", "from", string(loc))
		g.router.Replace(LocationHome)
	}
}
