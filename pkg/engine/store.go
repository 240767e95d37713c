package engine

import (
	"reflect"
	"sync"
)

// Store holds one value of type T, notifying subscribers when it changes.
// Multiple Set calls inside one Batch collapse into a single notification
// per subscriber, via the package's batchDepth/pendingStores mechanism —
// this module's stand-in for "next microtask" (orig §4.3, §5).
//
// Grounded on pkg/vango/signal.go's subscribe/notifySubscribers dedup-by-
// listener-id, generalized from the prior automatic tracking signal to
// an explicit Store the hook runtime subscribes to via UseStore.
type Store[T any] struct {
	mu    sync.RWMutex
	value T

	pending        T
	hasPending     bool
	updatePending  bool // true once this store is queued on pendingStores
	nextSubID      uint64
	subscribers    map[uint64]func(T)
	accessLog      map[accessKey]struct{}
	accessLogMu    sync.Mutex
}

// accessKey records which component instance/type touched a store, the
// "hook access log" orig §4.3 calls for — no prior version has an equivalent,
// this bookkeeping is new, modeled on the map-of-sets style pkg/vango uses
// elsewhere for subscriber bookkeeping.
type accessKey struct {
	componentID   uint64
	componentType string
}

// NewStore creates a Store holding the given initial value.
func NewStore[T any](initial T) *Store[T] {
	return &Store[T]{value: initial}
}

// Get returns the current value. It records no access; UseStore records the
// access for the rendering frame.
func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// recordAccess logs that componentID (of componentType) read this store,
// used to validate StoreSub hook slot bookkeeping.
func (s *Store[T]) recordAccess(componentID uint64, componentType string) {
	if componentID == 0 {
		return
	}
	s.accessLogMu.Lock()
	defer s.accessLogMu.Unlock()
	if s.accessLog == nil {
		s.accessLog = make(map[accessKey]struct{})
	}
	s.accessLog[accessKey{componentID, componentType}] = struct{}{}
}

// Set replaces the store's value. If unchanged by deep equality, no
// notification is scheduled. Inside a Batch, the notification is deferred
// and coalesced with any other Set calls in the same batch.
func (s *Store[T]) Set(v T) {
	s.mu.Lock()
	if reflect.DeepEqual(s.value, v) {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.mu.Lock()
	s.pending = v
	s.hasPending = true
	s.mu.Unlock()

	if inBatch() {
		if !s.updatePending {
			s.updatePending = true
			enqueuePendingStore(s)
		}
		return
	}
	s.notifyIfDirty()
}

// Update replaces the value with fn(currentValue); sugar for Set(fn(Get())).
func (s *Store[T]) Update(fn func(T) T) {
	s.Set(fn(s.Get()))
}

// Subscribe registers fn to be called whenever Set produces a new value.
// The returned function removes the subscription.
func (s *Store[T]) Subscribe(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscribers == nil {
		s.subscribers = make(map[uint64]func(T))
	}
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// notifyIfDirty applies the pending value and fires subscribers once. It
// implements dirtyStore so batch.go's drain loop can dedup stores touched
// more than once in the same batch.
func (s *Store[T]) notifyIfDirty() {
	s.mu.Lock()
	if !s.hasPending {
		s.mu.Unlock()
		return
	}
	v := s.pending
	s.value = v
	s.hasPending = false
	s.updatePending = false
	subs := make([]func(T), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}
