package protocol

import "encoding/binary"

// EncodeResponse builds one response frame. The id and opcode echo the
// request being answered.
func EncodeResponse(id uint8, op Opcode, res Result, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, ErrPayloadTooLarge
	}

	buf := make([]byte, ResponseHeaderLen+len(payload))
	binary.LittleEndian.PutUint16(buf[0:2], Magic)
	buf[2] = id
	buf[3] = byte(op)
	buf[4] = byte(res)
	buf[5] = byte(len(payload))
	copy(buf[ResponseHeaderLen:], payload)
	return buf, nil
}
