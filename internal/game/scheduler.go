package game

import (
	"sort"
	"time"
)

type deferredKind int

const (
	deferredLineClear deferredKind = iota
	deferredPulseEnd
)

// deferred is a one-shot action owned by a single game generation. token
// identifies which instance of the flag it belongs to, so an older action
// never clears a newer one.
type deferred struct {
	due   time.Time
	gen   uint64
	token uint64
	kind  deferredKind
}

type scheduler struct {
	queue []deferred
}

func (s *scheduler) schedule(d deferred) {
	i := sort.Search(len(s.queue), func(i int) bool { return s.queue[i].due.After(d.due) })
	s.queue = append(s.queue, deferred{})
	copy(s.queue[i+1:], s.queue[i:])
	s.queue[i] = d
}

// popDue removes and returns every action due at or before now, earliest first.
func (s *scheduler) popDue(now time.Time) []deferred {
	n := 0
	for n < len(s.queue) && !s.queue[n].due.After(now) {
		n++
	}
	if n == 0 {
		return nil
	}
	due := make([]deferred, n)
	copy(due, s.queue[:n])
	s.queue = append(s.queue[:0], s.queue[n:]...)
	return due
}

func (s *scheduler) reset() {
	s.queue = s.queue[:0]
}

func (s *scheduler) pending() int {
	return len(s.queue)
}
