package service

import "sync"

// busyGuard tracks which keys have a submission in flight.
type busyGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func newBusyGuard() *busyGuard {
	return &busyGuard{inFlight: make(map[string]struct{})}
}

// acquire marks key busy. It reports false if key already was; otherwise the
// caller must invoke the returned release exactly once.
func (g *busyGuard) acquire(key string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inFlight[key]; busy {
		return nil, false
	}
	g.inFlight[key] = struct{}{}

	return func() {
		g.mu.Lock()
		delete(g.inFlight, key)
		g.mu.Unlock()
	}, true
}
