package session

import (
	"sync"

	"github.com/loomkit/loom/pkg/bridge"
)

// BatchHistory is a ring buffer of recently sent batches, used to answer a
// ControlResyncRequest with a ControlResyncBatches reply instead of forcing
// a full remount after a transport reconnect. Adapted from the prior
// PatchHistory in pkg/server/patch_history.go: same ring-buffer-with-
// sequence-range-lookup design, storing decoded bridge.Batch values instead
// of pre-encoded frame bytes, since a resync reply re-encodes the batches
// itself (§6) rather than replaying raw frames.
type BatchHistory struct {
	mu       sync.RWMutex
	entries  []bridge.Batch
	head     int
	count    int
	capacity int
	minSeq   uint64
	maxSeq   uint64
}

// NewBatchHistory creates a ring buffer holding up to capacity batches.
func NewBatchHistory(capacity int) *BatchHistory {
	if capacity <= 0 {
		capacity = 100
	}
	return &BatchHistory{
		entries:  make([]bridge.Batch, capacity),
		capacity: capacity,
	}
}

// Add stores a batch, to be called only after it has been successfully
// written to the connection.
func (h *BatchHistory) Add(b bridge.Batch) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries[h.head] = b
	h.head = (h.head + 1) % h.capacity

	if h.count < h.capacity {
		h.count++
	}

	h.maxSeq = b.Seq
	if h.count == 1 {
		h.minSeq = b.Seq
	} else if h.count == h.capacity {
		h.minSeq = h.entries[h.head].Seq
	}
}

// Since returns the batches with sequence > afterSeq, in order. Returns nil
// if any sequence in that range has already fallen out of the window, or an
// empty, non-nil slice if the peer is already caught up.
func (h *BatchHistory) Since(afterSeq uint64) []bridge.Batch {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.count == 0 {
		return nil
	}
	if afterSeq >= h.maxSeq {
		return []bridge.Batch{}
	}
	if afterSeq+1 < h.minSeq {
		return nil
	}

	bySeq := make(map[uint64]bridge.Batch, h.count)
	for i := 0; i < h.count; i++ {
		idx := (h.head - h.count + i + h.capacity) % h.capacity
		b := h.entries[idx]
		bySeq[b.Seq] = b
	}

	out := make([]bridge.Batch, 0, h.maxSeq-afterSeq)
	for seq := afterSeq + 1; seq <= h.maxSeq; seq++ {
		b, ok := bySeq[seq]
		if !ok {
			return nil
		}
		out = append(out, b)
	}
	return out
}

// GarbageCollect records that the peer has acknowledged ackSeq. The ring
// buffer reclaims space by natural overwrite, so this is advisory only,
// matching the prior PatchHistory.GarbageCollect.
func (h *BatchHistory) GarbageCollect(ackSeq uint64) {
	_ = ackSeq
}

// Count returns the number of batches currently retained.
func (h *BatchHistory) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}
