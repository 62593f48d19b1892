package protocol

import "encoding/binary"

// DecodeRequest parses one request frame.
//
// On ErrTruncated the returned Request still carries the parsed id and
// opcode, so the caller can answer the peer with a result code correlated
// to the request. On ErrTooShort and ErrBadMagic the Request is zero.
// Trailing bytes beyond the declared payload length are ignored.
func DecodeRequest(b []byte) (Request, error) {
	if len(b) < RequestHeaderLen {
		return Request{}, ErrTooShort
	}
	if binary.LittleEndian.Uint16(b[0:2]) != Magic {
		return Request{}, ErrBadMagic
	}

	req := Request{
		ID: b[2],
		Op: Opcode(b[3]),
	}
	declared := int(b[4])
	if len(b)-RequestHeaderLen < declared {
		return req, ErrTruncated
	}
	req.Payload = b[RequestHeaderLen : RequestHeaderLen+declared]
	return req, nil
}
