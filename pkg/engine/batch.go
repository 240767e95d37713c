package engine

import (
	"sync"
	"sync/atomic"
)

// batchDepth and pendingStores implement the "collapse N Set calls within
// one drain-loop iteration into one notification" rule (orig §4.3), adapted
// unchanged from the prior pkg/vango/batch.go batch-depth counter. The
// render thread's drain loop iteration stands in for the prior browser
// microtask.
var batchDepth atomic.Int32

type dirtyStore interface {
	notifyIfDirty()
}

var (
	pendingMu     sync.Mutex
	pendingStores []dirtyStore
)

// Batch groups multiple Store.Set calls into a single notification pass.
// Batches nest; notifications fire only once the outermost Batch returns.
func Batch(fn func()) {
	batchDepth.Add(1)
	defer func() {
		if batchDepth.Add(-1) == 0 {
			drainPendingStores()
		}
	}()
	fn()
}

func enqueuePendingStore(s dirtyStore) {
	pendingMu.Lock()
	pendingStores = append(pendingStores, s)
	pendingMu.Unlock()
}

// drainPendingStores deduplicates queued stores and notifies each once,
// mirroring the prior processPendingUpdates listener dedup.
func drainPendingStores() {
	pendingMu.Lock()
	pending := pendingStores
	pendingStores = nil
	pendingMu.Unlock()

	seen := make(map[dirtyStore]bool, len(pending))
	for _, s := range pending {
		if seen[s] {
			continue
		}
		seen[s] = true
		s.notifyIfDirty()
	}
}

func inBatch() bool {
	return batchDepth.Load() > 0
}
