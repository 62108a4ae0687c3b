package gateway

import "log"

// outMsg is one queued outbound publish.
type outMsg struct {
	topic   string
	payload string
}

// ringQueue is a fixed-capacity FIFO holding outbound messages while
// the broker is unreachable. Not safe for concurrent use — the gateway
// synchronizes.
type ringQueue struct {
	buf      []outMsg
	capacity int
	head     int // next write position
	count    int
	overflow bool // true if any message was dropped since last drain
}

func newRingQueue(capacity int) *ringQueue {
	return &ringQueue{
		buf:      make([]outMsg, capacity),
		capacity: capacity,
	}
}

func (r *ringQueue) push(m outMsg) {
	if r.count == r.capacity {
		if !r.overflow {
			log.Printf("gateway: queue full (%d messages), dropping oldest", r.capacity)
			r.overflow = true
		}
		// Overwrite oldest: head is already pointing at it
		r.buf[r.head] = m
		r.head = (r.head + 1) % r.capacity
		// count stays at capacity
		return
	}
	r.buf[r.head] = m
	r.head = (r.head + 1) % r.capacity
	r.count++
}

func (r *ringQueue) drainAll() []outMsg {
	if r.count == 0 {
		return nil
	}

	result := make([]outMsg, r.count)
	// Oldest item is at (head - count) mod capacity
	start := (r.head - r.count + r.capacity) % r.capacity
	for i := 0; i < r.count; i++ {
		result[i] = r.buf[(start+i)%r.capacity]
	}

	r.count = 0
	r.head = 0
	r.overflow = false
	return result
}

func (r *ringQueue) len() int {
	return r.count
}
