// Package cache 提供单槽位缓存：只保留最近一次的 key/value。
package cache

import "sync"

// Slot holds at most one entry. Put replaces the key and value together.
type Slot[K comparable, V any] struct {
	mu    sync.RWMutex
	key   K
	value V
	set   bool
}

// Get returns the cached value when k matches the stored key.
func (s *Slot[K, V]) Get(k K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set || s.key != k {
		var zero V
		return zero, false
	}
	return s.value, true
}

// Peek returns the stored pair regardless of key.
func (s *Slot[K, V]) Peek() (K, V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key, s.value, s.set
}

func (s *Slot[K, V]) Put(k K, v V) {
	s.mu.Lock()
	s.key, s.value, s.set = k, v, true
	s.mu.Unlock()
}

func (s *Slot[K, V]) Reset() {
	s.mu.Lock()
	var (
		zk K
		zv V
	)
	s.key, s.value, s.set = zk, zv, false
	s.mu.Unlock()
}
