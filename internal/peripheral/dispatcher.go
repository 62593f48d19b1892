package peripheral

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/corc-project/corcd/internal/ble"
	"github.com/corc-project/corcd/internal/protocol"
)

// handleEvent is the radio stack callback. It runs in the stack's delivery
// context: every branch is a fixed number of single-call registry/queue
// operations, nothing blocks, and no failure escapes. The one radio call it
// makes, ReadValue, is a synchronous attribute read, not a reentrant
// link operation.
func (p *Peripheral) handleEvent(ev ble.Event) {
	switch ev.Kind {
	case ble.EventCentralConnect:
		p.registry.Add(ev.Conn, ev.AddrType, ev.Addr)

	case ble.EventCentralDisconnect:
		p.registry.Remove(ev.Conn)
		if n := p.inbox.Purge(ev.Conn); n > 0 {
			log.Debug().
				Uint16("conn", uint16(ev.Conn)).
				Int("frames", n).
				Msg("dispatcher: purged queued frames for dead link")
		}
		// Restart is requested here and performed by the orchestrator loop;
		// the stack forbids reentrant calls from event delivery.
		p.advPending.Store(true)

	case ble.EventGattsWrite:
		p.onWrite(ev)

	case ble.EventMtuExchanged:
		p.registry.UpdateMTU(ev.Conn, ev.MTU)
		log.Info().
			Uint16("conn", uint16(ev.Conn)).
			Uint16("mtu", ev.MTU).
			Msg("dispatcher: mtu exchanged")

	case ble.EventConnUpdate:
		p.registry.UpdateParams(ev.Conn, ev.Interval, ev.Latency, ev.Timeout, ev.Status)
		log.Debug().
			Uint16("conn", uint16(ev.Conn)).
			Uint16("interval", ev.Interval).
			Uint16("latency", ev.Latency).
			Uint16("timeout", ev.Timeout).
			Msg("dispatcher: connection params updated")

	case ble.EventEncryptionUpdate:
		p.registry.UpdateSecurity(ev.Conn, ev.Encrypted, ev.Authenticated, ev.Bonded, ev.KeySize)
		log.Info().
			Uint16("conn", uint16(ev.Conn)).
			Bool("encrypted", ev.Encrypted).
			Bool("bonded", ev.Bonded).
			Msg("dispatcher: encryption updated")

	default:
		log.Debug().
			Stringer("kind", ev.Kind).
			Uint16("conn", uint16(ev.Conn)).
			Msg("dispatcher: ignoring unknown event")
	}
}

// onWrite reads the written value and hands it to the pipeline. Writes to
// attributes other than the inbound characteristic are not ours.
func (p *Peripheral) onWrite(ev ble.Event) {
	if ev.Attr != p.rxAttr {
		return
	}

	data, err := p.radio.ReadValue(ev.Attr)
	if err != nil {
		log.Warn().Err(err).
			Uint16("conn", uint16(ev.Conn)).
			Msg("dispatcher: read of written value failed")
		return
	}

	if !p.inbox.Push(ev.Conn, data) {
		// Queue at capacity. Drop the payload and keep only the header so
		// the pipeline can answer Busy; an unparseable header means there
		// is no request id to answer and the write is dropped outright.
		req, derr := protocol.DecodeRequest(data)
		if derr == nil || errors.Is(derr, protocol.ErrTruncated) {
			p.inbox.NoteBusy(ev.Conn, req.ID, req.Op)
		}
		log.Warn().
			Uint16("conn", uint16(ev.Conn)).
			Int("len", len(data)).
			Msg("dispatcher: inbound queue full, frame refused")
	}
	p.inbox.Signal()
}
