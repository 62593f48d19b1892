package peripheral

import (
	"bytes"
	"testing"

	"github.com/corc-project/corcd/internal/ble"
	"github.com/corc-project/corcd/internal/protocol"
)

func TestInboxFIFO(t *testing.T) {
	q := NewInbox(8)
	q.Push(1, []byte{0x01})
	q.Push(2, []byte{0x02})
	q.Push(1, []byte{0x03})

	frames, notes := q.Drain()
	if len(notes) != 0 {
		t.Fatalf("unexpected busy notes: %+v", notes)
	}
	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	for i, want := range []byte{0x01, 0x02, 0x03} {
		if frames[i].Data[0] != want {
			t.Fatalf("order broken at %d: got 0x%02X", i, frames[i].Data[0])
		}
	}
	if q.Len() != 0 {
		t.Fatalf("drain left %d frames behind", q.Len())
	}
}

func TestInboxPurgeKeepsOtherLinksInOrder(t *testing.T) {
	// Two live links: #1 has three queued frames, #2 has one. Dropping #1
	// must leave exactly #2's frame, order intact.
	q := NewInbox(8)
	q.Push(1, []byte{0x11})
	q.Push(2, []byte{0x22})
	q.Push(1, []byte{0x12})
	q.Push(1, []byte{0x13})

	if dropped := q.Purge(1); dropped != 3 {
		t.Fatalf("expected 3 dropped, got %d", dropped)
	}

	frames, _ := q.Drain()
	if len(frames) != 1 {
		t.Fatalf("expected 1 surviving frame, got %d", len(frames))
	}
	if frames[0].Conn != 2 || !bytes.Equal(frames[0].Data, []byte{0x22}) {
		t.Fatalf("wrong survivor: %+v", frames[0])
	}
}

func TestInboxPurgeInterleavedOrder(t *testing.T) {
	q := NewInbox(16)
	q.Push(3, []byte{0x31})
	q.Push(1, []byte{0x11})
	q.Push(2, []byte{0x21})
	q.Push(3, []byte{0x32})
	q.Push(2, []byte{0x22})

	q.Purge(2)
	frames, _ := q.Drain()
	want := []byte{0x31, 0x11, 0x32}
	if len(frames) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(frames))
	}
	for i := range want {
		if frames[i].Data[0] != want[i] {
			t.Fatalf("relative order broken at %d: got 0x%02X", i, frames[i].Data[0])
		}
	}
}

func TestInboxCapacity(t *testing.T) {
	q := NewInbox(2)
	if !q.Push(1, []byte{0x01}) || !q.Push(1, []byte{0x02}) {
		t.Fatalf("pushes under capacity must succeed")
	}
	if q.Push(1, []byte{0x03}) {
		t.Fatalf("push over capacity must be refused")
	}

	frames, _ := q.Drain()
	if len(frames) != 2 {
		t.Fatalf("refused frame was retained: %d", len(frames))
	}

	// Capacity frees up after a drain.
	if !q.Push(1, []byte{0x04}) {
		t.Fatalf("push after drain must succeed")
	}
}

func TestInboxBusyNotesCoalesce(t *testing.T) {
	q := NewInbox(1)
	q.NoteBusy(5, 0x0A, protocol.OpPing)
	q.NoteBusy(5, 0x0B, protocol.OpVersion)
	q.NoteBusy(6, 0x0C, protocol.OpPing)

	_, notes := q.Drain()
	if len(notes) != 2 {
		t.Fatalf("expected one note per link, got %d", len(notes))
	}
	byConn := map[ble.Handle]BusyNote{}
	for _, n := range notes {
		byConn[n.Conn] = n
	}
	if byConn[5].ID != 0x0B || byConn[5].Op != protocol.OpVersion {
		t.Fatalf("note for link 5 not the most recent: %+v", byConn[5])
	}
}

func TestInboxPurgeDropsBusyNote(t *testing.T) {
	q := NewInbox(1)
	q.NoteBusy(5, 0x0A, protocol.OpPing)
	q.Purge(5)
	if _, notes := q.Drain(); len(notes) != 0 {
		t.Fatalf("busy note survived purge: %+v", notes)
	}
}

func TestInboxWakeCollapses(t *testing.T) {
	q := NewInbox(8)
	q.Signal()
	q.Signal()
	q.Signal()

	select {
	case <-q.Wake():
	default:
		t.Fatalf("expected a pending wake")
	}
	select {
	case <-q.Wake():
		t.Fatalf("signals must collapse into one wake")
	default:
	}
}
