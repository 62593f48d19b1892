package peripheral

import (
	"sync"

	"github.com/corc-project/corcd/internal/ble"
	"github.com/corc-project/corcd/internal/protocol"
)

// DefaultQueueCapacity bounds the inbound queue when the config does not.
const DefaultQueueCapacity = 32

// InboundFrame is one queued write: the link it arrived on and the raw
// attribute bytes.
type InboundFrame struct {
	Conn ble.Handle
	Data []byte
}

// BusyNote marks a request that was refused at enqueue because the queue
// was full. Only the header survives; the payload is never retained.
type BusyNote struct {
	Conn ble.Handle
	ID   uint8
	Op   protocol.Opcode
}

// Inbox is the bounded FIFO between the radio callback (producer) and the
// command pipeline (single consumer). The queue is global across links.
// Every exported method is one short critical section; none blocks.
//
// The wake channel is a single-slot signal: enqueues before the consumer
// wakes collapse into one wake. The consumer must drain fully before
// re-waiting, which Drain guarantees by swapping the whole backlog out.
type Inbox struct {
	mu       sync.Mutex
	frames   []InboundFrame
	busy     map[ble.Handle]BusyNote // coalesced, one note per link
	capacity int
	wake     chan struct{}
}

func NewInbox(capacity int) *Inbox {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Inbox{
		busy:     make(map[ble.Handle]BusyNote),
		capacity: capacity,
		wake:     make(chan struct{}, 1),
	}
}

// Push appends one frame. It reports false when the queue is at capacity;
// the frame is not retained in that case.
func (q *Inbox) Push(conn ble.Handle, data []byte) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.frames) >= q.capacity {
		return false
	}
	q.frames = append(q.frames, InboundFrame{Conn: conn, Data: data})
	return true
}

// NoteBusy records that a request from conn was refused. Repeated refusals
// for the same link coalesce into the most recent note, keeping overflow
// state bounded by the number of live links.
func (q *Inbox) NoteBusy(conn ble.Handle, id uint8, op protocol.Opcode) {
	q.mu.Lock()
	q.busy[conn] = BusyNote{Conn: conn, ID: id, Op: op}
	q.mu.Unlock()
}

// Signal wakes the consumer. Never blocks; a pending wake absorbs the signal.
func (q *Inbox) Signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Wake is the consumer's wait channel.
func (q *Inbox) Wake() <-chan struct{} {
	return q.wake
}

// Drain removes and returns the entire backlog: queued frames in arrival
// order, plus any busy notes recorded since the last drain.
func (q *Inbox) Drain() ([]InboundFrame, []BusyNote) {
	q.mu.Lock()
	frames := q.frames
	q.frames = nil

	var notes []BusyNote
	if len(q.busy) > 0 {
		notes = make([]BusyNote, 0, len(q.busy))
		for _, n := range q.busy {
			notes = append(notes, n)
		}
		clear(q.busy)
	}
	q.mu.Unlock()
	return frames, notes
}

// Purge drops everything queued for one link, preserving the relative order
// of all other links' frames. It returns the number of frames dropped.
func (q *Inbox) Purge(conn ble.Handle) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.frames[:0]
	dropped := 0
	for _, f := range q.frames {
		if f.Conn == conn {
			dropped++
			continue
		}
		kept = append(kept, f)
	}
	q.frames = kept
	delete(q.busy, conn)
	return dropped
}

// Len reports the number of queued frames.
func (q *Inbox) Len() int {
	q.mu.Lock()
	n := len(q.frames)
	q.mu.Unlock()
	return n
}
