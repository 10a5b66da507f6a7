package tasksync

import "sync"

// ListLocker serializes sync cycles per local list id.
// The zero value is ready to use.
type ListLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *ListLocker) get(listID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[listID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[listID] = m
	}
	return m
}

// Lock blocks until no other cycle holds listID and returns the unlock func.
func (l *ListLocker) Lock(listID string) (unlock func()) {
	m := l.get(listID)
	m.Lock()
	return m.Unlock
}

// TryLock acquires listID without blocking. ok is false if it is held.
func (l *ListLocker) TryLock(listID string) (unlock func(), ok bool) {
	m := l.get(listID)
	if !m.TryLock() {
		return nil, false
	}
	return m.Unlock, true
}
