package protocol

import "fmt"

// Magic is the first two wire bytes of every frame, read little-endian
// (bytes 0x7C 0xC0 on the wire).
const Magic uint16 = 0xC07C

const (
	// RequestHeaderLen covers magic(2) + request id(1) + opcode(1) + len(1).
	RequestHeaderLen = 5

	// ResponseHeaderLen covers magic(2) + id(1) + opcode(1) + result(1) + len(1).
	ResponseHeaderLen = 6

	// MaxPayload is the single-byte length field ceiling. No multi-frame
	// continuation exists.
	MaxPayload = 255
)

// Opcode selects a command handler.
type Opcode uint8

const (
	OpPing          Opcode = 0x01
	OpVersion       Opcode = 0x02
	OpGetDataMaxLen Opcode = 0x03
)

func (o Opcode) String() string {
	switch o {
	case OpPing:
		return "ping"
	case OpVersion:
		return "version"
	case OpGetDataMaxLen:
		return "get_data_max_len"
	default:
		return fmt.Sprintf("opcode(0x%02X)", uint8(o))
	}
}

// Result is the response status byte.
type Result uint8

const (
	ResultOK                     Result = 0x00
	ResultRequestNotSupported    Result = 0x06
	ResultInvalidAttributeLength Result = 0x0D
	ResultUnsupported            Result = 0x11
	ResultBadParam               Result = 0x12
	ResultInvalidState           Result = 0x13
	ResultBusy                   Result = 0x14
	ResultFailure                Result = 0xFF
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultRequestNotSupported:
		return "request_not_supported"
	case ResultInvalidAttributeLength:
		return "invalid_attribute_length"
	case ResultUnsupported:
		return "unsupported"
	case ResultBadParam:
		return "bad_param"
	case ResultInvalidState:
		return "invalid_state"
	case ResultBusy:
		return "busy"
	case ResultFailure:
		return "failure"
	default:
		return fmt.Sprintf("result(0x%02X)", uint8(r))
	}
}

// Request is one decoded command frame.
type Request struct {
	ID      uint8
	Op      Opcode
	Payload []byte
}
