package loomtest

import (
	"sync"

	"github.com/loomkit/loom/pkg/bridge"
)

// FakeBridge is an in-memory commit.Sender: it records every batch it's
// given instead of writing frames to a websocket connection. Grounded on
// the prior server.NewMockSession, which stands in for a real
// connection the same way in component-render tests.
type FakeBridge struct {
	mu sync.Mutex

	// BeginErr/CommitErr, if set, are returned from every BeginBatch or
	// CommitBatch call, instead of succeeding, until cleared; for testing a
	// component's reaction to a rejected commit.
	BeginErr  error
	CommitErr error

	batches [][]bridge.Op
}

// NewFakeBridge creates an empty FakeBridge.
func NewFakeBridge() *FakeBridge {
	return &FakeBridge{}
}

// BeginBatch implements commit.Sender.
func (f *FakeBridge) BeginBatch() error {
	return f.BeginErr
}

// CommitBatch implements commit.Sender: it records ops and reports success
// unless CommitErr is set.
func (f *FakeBridge) CommitBatch(ops []bridge.Op) (bool, error) {
	if f.CommitErr != nil {
		return false, f.CommitErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, append([]bridge.Op(nil), ops...))
	return true, nil
}

// Batches returns every batch committed so far, in order.
func (f *FakeBridge) Batches() [][]bridge.Op {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]bridge.Op(nil), f.batches...)
}

// LastBatch returns the most recently committed batch, or nil if none has
// been committed yet.
func (f *FakeBridge) LastBatch() []bridge.Op {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.batches) == 0 {
		return nil
	}
	return f.batches[len(f.batches)-1]
}

// AllOps flattens every batch committed so far into one slice, in commit
// order.
func (f *FakeBridge) AllOps() []bridge.Op {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []bridge.Op
	for _, b := range f.batches {
		all = append(all, b...)
	}
	return all
}

// Reset discards every recorded batch.
func (f *FakeBridge) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = nil
}
