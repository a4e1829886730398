package castore

import "sync"

// digestLocker serializes mutations per digest. Locks are created on
// demand and dropped once nobody holds or waits on them.
type digestLocker struct {
	mu    sync.Mutex
	locks map[Digest]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

func newDigestLocker() *digestLocker {
	return &digestLocker{locks: make(map[Digest]*refLock)}
}

// Lock acquires the lock for d and returns its release function.
func (l *digestLocker) Lock(d Digest) (unlock func()) {
	l.mu.Lock()
	rl, ok := l.locks[d]
	if !ok {
		rl = &refLock{}
		l.locks[d] = rl
	}
	rl.refs++
	l.mu.Unlock()

	rl.Lock()
	return func() {
		rl.Unlock()
		l.mu.Lock()
		rl.refs--
		if rl.refs == 0 {
			delete(l.locks, d)
		}
		l.mu.Unlock()
	}
}

func (l *digestLocker) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
