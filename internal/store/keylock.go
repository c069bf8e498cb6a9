package store

import "sync"

type keyEntry struct {
	m    sync.Mutex
	refs int
}

// KeyLock provides mutual exclusion per key, entries are dropped once unused
type KeyLock struct {
	m     sync.Mutex
	locks map[string]*keyEntry
}

// NewKeyLock returns empty KeyLock
func NewKeyLock() *KeyLock {
	return &KeyLock{
		locks: make(map[string]*keyEntry),
	}
}

// Lock acquires lock for key and returns function releasing it
func (l *KeyLock) Lock(key string) (unlock func()) {
	l.m.Lock()

	e, ok := l.locks[key]
	if !ok {
		e = &keyEntry{}
		l.locks[key] = e
	}

	e.refs++

	l.m.Unlock()

	e.m.Lock()

	return func() {
		e.m.Unlock()

		l.m.Lock()

		e.refs--
		if e.refs == 0 {
			delete(l.locks, key)
		}

		l.m.Unlock()
	}
}

func (l *KeyLock) size() int {
	l.m.Lock()
	defer l.m.Unlock()

	return len(l.locks)
}
