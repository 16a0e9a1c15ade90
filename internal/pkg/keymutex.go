package pkg

import "sync"

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// KeyMutex serializes work per key. Locks for unused keys are dropped, so the
// number of retained locks is bounded by the number of concurrent holders.
type KeyMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

func NewKeyMutex() *KeyMutex {
	return &KeyMutex{
		locks: make(map[string]*keyLock),
	}
}

// Lock blocks until key is free and returns the matching unlock function.
func (that *KeyMutex) Lock(key string) func() {
	that.mu.Lock()
	lock, ok := that.locks[key]
	if !ok {
		lock = &keyLock{}
		that.locks[key] = lock
	}
	lock.refs++
	that.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		that.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(that.locks, key)
		}
		that.mu.Unlock()
	}
}

func (that *KeyMutex) size() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.locks)
}
