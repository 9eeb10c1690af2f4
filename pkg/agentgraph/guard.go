package agentgraph

import "sync"

// guard enforces the engine's admission limits: at most one run per
// thread, a per-user cap, and a global cap. All checks fail fast; there
// is no queueing.
type guard struct {
	mu         sync.Mutex
	maxTotal   int // 0 means unlimited
	maxPerUser int // 0 means unlimited

	total   int
	perUser map[string]int
	threads map[string]struct{}
}

func newGuard(maxTotal, maxPerUser int) *guard {
	return &guard{
		maxTotal:   maxTotal,
		maxPerUser: maxPerUser,
		perUser:    make(map[string]int),
		threads:    make(map[string]struct{}),
	}
}

// acquire admits a run or returns the reason it cannot start. Checks
// are ordered: thread exclusivity, then global cap, then user cap.
func (g *guard) acquire(threadID, userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.threads[threadID]; busy {
		return ErrThreadBusy
	}
	if g.maxTotal > 0 && g.total >= g.maxTotal {
		return ErrCapacity
	}
	if g.maxPerUser > 0 && g.perUser[userID] >= g.maxPerUser {
		return ErrUserCapacity
	}

	g.threads[threadID] = struct{}{}
	g.perUser[userID]++
	g.total++
	return nil
}

// release returns a run's admission. Must be called exactly once per
// successful acquire.
func (g *guard) release(threadID, userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.threads, threadID)
	if g.perUser[userID] > 1 {
		g.perUser[userID]--
	} else {
		delete(g.perUser, userID)
	}
	if g.total > 0 {
		g.total--
	}
}

// inFlight returns the number of active runs.
func (g *guard) inFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.total
}
