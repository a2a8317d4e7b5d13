// Implements the TicketQueue, the ordered wait list of a ResourcePool.
// Tickets are enqueued on request and leave by grant, renege, or jockey.

package sim

import (
	"fmt"
	"strings"
)

// TicketQueue is the wait list of a resource pool. Ordering is FIFO within
// priority class: a priority ticket is inserted ahead of every non-priority
// waiter but behind already-waiting priority tickets. In-service tickets are
// never represented here, so insertion is always non-preemptive.
type TicketQueue struct {
	queue []*Ticket
}

// Insert places a ticket according to the priority rule.
func (tq *TicketQueue) Insert(t *Ticket) {
	if t == nil {
		panic("Insert: ticket must not be nil")
	}
	if !t.Priority {
		tq.queue = append(tq.queue, t)
		return
	}
	pos := len(tq.queue)
	for i, waiting := range tq.queue {
		if !waiting.Priority {
			pos = i
			break
		}
	}
	tq.queue = append(tq.queue, nil)
	copy(tq.queue[pos+1:], tq.queue[pos:])
	tq.queue[pos] = t
}

// Len returns the number of waiting tickets.
func (tq *TicketQueue) Len() int {
	return len(tq.queue)
}

// Peek returns the ticket at the head of the queue without removing it.
// Returns nil if the queue is empty.
func (tq *TicketQueue) Peek() *Ticket {
	if len(tq.queue) == 0 {
		return nil
	}
	return tq.queue[0]
}

// PopFront removes and returns the head ticket, or nil if empty.
func (tq *TicketQueue) PopFront() *Ticket {
	if len(tq.queue) == 0 {
		return nil
	}
	t := tq.queue[0]
	tq.queue = tq.queue[1:]
	return t
}

// PopBack removes and returns the tail ticket, or nil if empty.
// Jockeying migrates the tail of the longest sibling queue.
func (tq *TicketQueue) PopBack() *Ticket {
	if len(tq.queue) == 0 {
		return nil
	}
	t := tq.queue[len(tq.queue)-1]
	tq.queue = tq.queue[:len(tq.queue)-1]
	return t
}

// Remove deletes a ticket from anywhere in the queue, preserving the order
// of the rest. Reports whether the ticket was present.
func (tq *TicketQueue) Remove(t *Ticket) bool {
	for i, waiting := range tq.queue {
		if waiting == t {
			tq.queue = append(tq.queue[:i], tq.queue[i+1:]...)
			return true
		}
	}
	return false
}

// Items returns the queue contents for iteration.
// The returned slice is the queue's internal storage -- callers within the
// sim package may iterate over it but MUST NOT append to or reslice it.
func (tq *TicketQueue) Items() []*Ticket {
	return tq.queue
}

func (tq *TicketQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, t := range tq.queue {
		sb.WriteString(fmt.Sprint(t))
		if i < len(tq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
