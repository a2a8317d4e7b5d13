package sim

import "container/heap"

// EventHeap is a priority queue of ScheduledEvent entries with deterministic
// ordering: timestamp first, insertion sequence second. Canceled entries stay
// in the heap and are skipped on pop (lazy deletion).
type EventHeap struct {
	events []*ScheduledEvent
}

// NewEventHeap creates an empty event heap.
func NewEventHeap() *EventHeap {
	h := &EventHeap{
		events: make([]*ScheduledEvent, 0),
	}
	heap.Init(h)
	return h
}

// Len implements heap.Interface.
func (h *EventHeap) Len() int {
	return len(h.events)
}

// Less implements heap.Interface.
// Order by: timestamp (lower first), then sequence (lower first).
func (h *EventHeap) Less(i, j int) bool {
	ei, ej := h.events[i], h.events[j]
	if ei.at != ej.at {
		return ei.at < ej.at
	}
	return ei.seq < ej.seq
}

// Swap implements heap.Interface.
func (h *EventHeap) Swap(i, j int) {
	h.events[i], h.events[j] = h.events[j], h.events[i]
}

// Push implements heap.Interface.
func (h *EventHeap) Push(x interface{}) {
	h.events = append(h.events, x.(*ScheduledEvent))
}

// Pop implements heap.Interface.
func (h *EventHeap) Pop() interface{} {
	old := h.events
	n := len(old)
	item := old[n-1]
	h.events = old[0 : n-1]
	return item
}

// Schedule adds an entry to the heap.
func (h *EventHeap) Schedule(s *ScheduledEvent) {
	heap.Push(h, s)
}

// PopNext removes and returns the earliest entry, or nil if the heap is
// empty. Canceled entries are returned too; the caller skips them.
func (h *EventHeap) PopNext() *ScheduledEvent {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(*ScheduledEvent)
}

// Peek returns the earliest entry without removing it, or nil if the heap is
// empty.
func (h *EventHeap) Peek() *ScheduledEvent {
	if h.Len() == 0 {
		return nil
	}
	return h.events[0]
}
