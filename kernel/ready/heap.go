package ready

import (
	"container/heap"

	"github.com/intuitionamiga/feauxkernel/kernel/process"
)

// keyFunc extracts a heap's ordering key from a PCB. Smaller keys pop
// first.
type keyFunc func(*process.PCB) int64

// pcbHeap is the container/heap.Interface adaptor shared by SJF, SRT,
// RT_EDF and RT_LST — they differ only in their key function.
type pcbHeap struct {
	items []*process.PCB
	key   keyFunc
}

func (h *pcbHeap) Len() int { return len(h.items) }
func (h *pcbHeap) Less(i, j int) bool {
	return h.key(h.items[i]) < h.key(h.items[j])
}
func (h *pcbHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *pcbHeap) Push(x any)    { h.items = append(h.items, x.(*process.PCB)) }
func (h *pcbHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

// KeyedHeap is a min-heap of PCBs ordered by a per-strategy key,
// implementing Structure.
type KeyedHeap struct {
	h *pcbHeap
}

func newKeyedHeap(key keyFunc) *KeyedHeap {
	return &KeyedHeap{h: &pcbHeap{key: key}}
}

func (k *KeyedHeap) Push(p *process.PCB) {
	heap.Push(k.h, p)
}

func (k *KeyedHeap) Pop() *process.PCB {
	if k.h.Len() == 0 {
		return nil
	}
	return heap.Pop(k.h).(*process.PCB)
}

func (k *KeyedHeap) Peek() *process.PCB {
	if k.h.Len() == 0 {
		return nil
	}
	return k.h.items[0]
}

func (k *KeyedHeap) Len() int { return k.h.Len() }

// Snapshot returns every queued PCB in pop order, leaving the live
// heap's contents exactly as found — it pops a copy of the heap, not
// the original, per the no-observable-mutation requirement on
// read-only exports.
func (k *KeyedHeap) Snapshot() []*process.PCB {
	cp := &pcbHeap{items: append([]*process.PCB(nil), k.h.items...), key: k.h.key}
	heap.Init(cp)
	out := make([]*process.PCB, 0, cp.Len())
	for cp.Len() > 0 {
		out = append(out, heap.Pop(cp).(*process.PCB))
	}
	return out
}
