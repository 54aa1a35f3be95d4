package ready

import "github.com/intuitionamiga/feauxkernel/kernel/process"

// FIFOQueue is an insertion-order queue, used by the FIFO and RT_FIFO
// strategies.
type FIFOQueue struct {
	items []*process.PCB
}

// NewFIFO returns an empty insertion-order queue.
func NewFIFO() *FIFOQueue {
	return &FIFOQueue{}
}

func (q *FIFOQueue) Push(p *process.PCB) {
	q.items = append(q.items, p)
}

func (q *FIFOQueue) Pop() *process.PCB {
	if len(q.items) == 0 {
		return nil
	}
	p := q.items[0]
	q.items = q.items[1:]
	return p
}

func (q *FIFOQueue) Peek() *process.PCB {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

func (q *FIFOQueue) Len() int { return len(q.items) }

func (q *FIFOQueue) Snapshot() []*process.PCB {
	out := make([]*process.PCB, len(q.items))
	copy(out, q.items)
	return out
}
