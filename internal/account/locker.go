package account

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Locker serializes mutations per user aggregate. Operations touching two
// users lock both; ids are always acquired in ascending order.
type Locker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func NewLocker() *Locker {
	return &Locker{locks: make(map[uuid.UUID]*userLock)}
}

// Lock acquires the locks of every distinct id and returns the release func.
func (l *Locker) Lock(ids ...uuid.UUID) (unlock func()) {
	ordered := distinctSorted(ids)

	held := make([]*userLock, 0, len(ordered))
	for _, id := range ordered {
		ul := l.acquire(id)
		ul.mu.Lock()
		held = append(held, ul)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			l.release(ordered[i])
		}
	}
}

func (l *Locker) acquire(id uuid.UUID) *userLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	ul, ok := l.locks[id]
	if !ok {
		ul = &userLock{}
		l.locks[id] = ul
	}
	ul.refs++
	return ul
}

func (l *Locker) release(id uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ul := l.locks[id]
	ul.refs--
	if ul.refs == 0 {
		delete(l.locks, id)
	}
}

func (l *Locker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func distinctSorted(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
