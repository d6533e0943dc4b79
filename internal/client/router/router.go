package router

import "sync"

// Location is a screen of the client, addressed by path.
type Location string

const (
	LocationLogin    Location = "/login"
	LocationRegister Location = "/register"
	LocationHome     Location = "/"
	LocationPost     Location = "/post"
)

// IsUnauthenticated reports whether l belongs to the area shown to users
// without a session.
func (l Location) IsUnauthenticated() bool {
	return l == LocationLogin || l == LocationRegister
}

type Router struct {
	mu    sync.Mutex
	stack []Location

	subsMu sync.Mutex
	subs   map[int]func(Location)
	nextID int
}

// New returns a router positioned at start with an empty history.
func New(start Location) *Router {
	return &Router{stack: []Location{start}, subs: map[int]func(Location){}}
}

func (r *Router) Location() Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stack[len(r.stack)-1]
}

// Depth is the number of locations on the stack, the current one included.
func (r *Router) Depth() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stack)
}

// Push opens l on top of the current location. Pushing the current
// location again is a no-op.
func (r *Router) Push(l Location) {
	r.mu.Lock()
	if r.stack[len(r.stack)-1] == l {
		r.mu.Unlock()
		return
	}
	r.stack = append(r.stack, l)
	r.mu.Unlock()

	r.notify(l)
}

// Replace swaps the current location for l without growing the stack.
func (r *Router) Replace(l Location) {
	r.mu.Lock()
	if r.stack[len(r.stack)-1] == l {
		r.mu.Unlock()
		return
	}
	r.stack[len(r.stack)-1] = l
	r.mu.Unlock()

	r.notify(l)
}

// Back pops the current location. It reports false when there is nowhere
// to go back to.
func (r *Router) Back() bool {
	r.mu.Lock()
	if len(r.stack) == 1 {
		r.mu.Unlock()
		return false
	}
	r.stack = r.stack[:len(r.stack)-1]
	l := r.stack[len(r.stack)-1]
	r.mu.Unlock()

	r.notify(l)
	return true
}

// Subscribe registers fn to run after every location change, on the
// goroutine that made it.
func (r *Router) Subscribe(fn func(Location)) (unsubscribe func()) {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()

	r.nextID++
	id := r.nextID
	r.subs[id] = fn

	return func() {
		r.subsMu.Lock()
		defer r.subsMu.Unlock()
		delete(r.subs, id)
	}
}

func (r *Router) notify(l Location) {
	r.subsMu.Lock()
	fns := make([]func(Location), 0, len(r.subs))
	for id := 1; id <= r.nextID; id++ {
		if fn, ok := r.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	r.subsMu.Unlock()

	for _, fn := range fns {
		fn(l)
	}
}
