package peripheral

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/corc-project/corcd/internal/ble"
	"github.com/corc-project/corcd/internal/protocol"
)

// Firmware version reported by OpVersion: major, minor, patch.
var firmwareVersion = [3]byte{1, 0, 0}

// fallbackDataMaxLen is the single-frame payload cap before any MTU
// exchange (minimum ATT MTU 23 minus the 3-byte notification overhead).
const fallbackDataMaxLen = 20

type handlerFunc func(conn ble.Handle, req protocol.Request) (protocol.Result, []byte)

// builtinHandlers builds the opcode dispatch table once at startup.
// Unknown opcodes fall to the pipeline's default path.
func builtinHandlers(p *Peripheral) map[protocol.Opcode]handlerFunc {
	return map[protocol.Opcode]handlerFunc{
		protocol.OpPing:          p.handlePing,
		protocol.OpVersion:       p.handleVersion,
		protocol.OpGetDataMaxLen: p.handleGetDataMaxLen,
	}
}

// runPipeline is the single consumer of the inbox. It waits for a wake,
// drains the whole backlog, and goes back to waiting. No failure inside an
// iteration stops the loop.
func (p *Peripheral) runPipeline(ctx context.Context) {
	log.Info().Msg("pipeline: started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("pipeline: stopped")
			return
		case <-p.inbox.Wake():
		}
		p.drainInbox()
	}
}

func (p *Peripheral) drainInbox() {
	frames, notes := p.inbox.Drain()
	for _, f := range frames {
		p.processFrame(f)
	}
	for _, n := range notes {
		p.respond(n.Conn, n.ID, n.Op, protocol.ResultBusy, nil)
	}
}

func (p *Peripheral) processFrame(f InboundFrame) {
	req, err := protocol.DecodeRequest(f.Data)
	switch {
	case errors.Is(err, protocol.ErrTooShort), errors.Is(err, protocol.ErrBadMagic):
		// No usable request id; nothing to answer.
		log.Debug().Err(err).
			Uint16("conn", uint16(f.Conn)).
			Int("len", len(f.Data)).
			Msg("pipeline: dropping undecodable frame")
		return
	case errors.Is(err, protocol.ErrTruncated):
		p.respond(f.Conn, req.ID, req.Op, protocol.ResultInvalidAttributeLength, nil)
		return
	}

	h, ok := p.handlers[req.Op]
	if !ok {
		log.Debug().
			Uint16("conn", uint16(f.Conn)).
			Stringer("op", req.Op).
			Msg("pipeline: unsupported opcode")
		p.respond(f.Conn, req.ID, req.Op, protocol.ResultRequestNotSupported, nil)
		return
	}

	res, payload := h(f.Conn, req)
	p.respond(f.Conn, req.ID, req.Op, res, payload)
}

// respond encodes and notifies exactly one response frame. A send failure
// (link already dropped, stack busy) is logged and abandoned, never retried.
func (p *Peripheral) respond(conn ble.Handle, id uint8, op protocol.Opcode, res protocol.Result, payload []byte) {
	frame, err := protocol.EncodeResponse(id, op, res, payload)
	if err != nil {
		log.Error().Err(err).
			Stringer("op", op).
			Msg("pipeline: response encode failed")
		frame, _ = protocol.EncodeResponse(id, op, protocol.ResultFailure, nil)
	}

	if err := p.radio.Notify(conn, p.txAttr, frame); err != nil {
		log.Warn().Err(err).
			Uint16("conn", uint16(conn)).
			Stringer("op", op).
			Msg("pipeline: notify failed")
	}
}

func (p *Peripheral) handlePing(_ ble.Handle, _ protocol.Request) (protocol.Result, []byte) {
	return protocol.ResultOK, nil
}

func (p *Peripheral) handleVersion(_ ble.Handle, _ protocol.Request) (protocol.Result, []byte) {
	return protocol.ResultOK, firmwareVersion[:]
}

// handleGetDataMaxLen answers the largest single-frame payload the peer can
// receive in one notification on this link: negotiated MTU minus the fixed
// 3-byte attribute-protocol overhead, saturated to the one-byte answer.
func (p *Peripheral) handleGetDataMaxLen(conn ble.Handle, _ protocol.Request) (protocol.Result, []byte) {
	return protocol.ResultOK, []byte{p.dataMaxLen(conn)}
}

func (p *Peripheral) dataMaxLen(conn ble.Handle) uint8 {
	rec, ok := p.registry.Get(conn)
	if !ok {
		return fallbackDataMaxLen
	}
	n := int(rec.MTU) - 3
	if n < fallbackDataMaxLen {
		return fallbackDataMaxLen
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}
