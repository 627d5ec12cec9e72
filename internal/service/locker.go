package service

import "sync"

// ResourceLocker serializes writes per resource key within this process. The database
// exclusion constraints cover writers in other processes.
type ResourceLocker struct {
	mu    sync.Mutex
	locks map[string]*resourceLock
}

type resourceLock struct {
	mu   sync.Mutex
	refs int
}

func NewResourceLocker() *ResourceLocker {
	return &ResourceLocker{locks: make(map[string]*resourceLock)}
}

// Lock blocks until key is free and returns the matching unlock func.
func (l *ResourceLocker) Lock(key string) func() {
	l.mu.Lock()
	lk, ok := l.locks[key]
	if !ok {
		lk = &resourceLock{}
		l.locks[key] = lk
	}
	lk.refs++
	l.mu.Unlock()

	lk.mu.Lock()
	return func() {
		lk.mu.Unlock()
		l.mu.Lock()
		lk.refs--
		if lk.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func propertyKey(id string) string { return "property:" + id }

func forkliftKey(id string) string { return "forklift:" + id }
