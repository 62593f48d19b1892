package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecodeRequestTooShort(t *testing.T) {
	inputs := [][]byte{
		nil,
		{},
		{0x7C},
		{0x7C, 0xC0},
		{0x7C, 0xC0, 0x05},
		{0x7C, 0xC0, 0x05, 0x01},
	}
	for _, in := range inputs {
		req, err := DecodeRequest(in)
		if !errors.Is(err, ErrTooShort) {
			t.Fatalf("len=%d: expected ErrTooShort, got %v", len(in), err)
		}
		if req.ID != 0 || req.Op != 0 || req.Payload != nil {
			t.Fatalf("len=%d: expected zero request, got %+v", len(in), req)
		}
	}
}

func TestDecodeRequestBadMagic(t *testing.T) {
	inputs := [][]byte{
		{0x00, 0x00, 0x05, 0x01, 0x00},
		{0xC0, 0x7C, 0x05, 0x01, 0x00}, // byte-swapped magic
		{0x7C, 0xC1, 0x05, 0x01, 0x00},
		{0x7D, 0xC0, 0x05, 0x01, 0x00},
	}
	for _, in := range inputs {
		if _, err := DecodeRequest(in); !errors.Is(err, ErrBadMagic) {
			t.Fatalf("input=% X: expected ErrBadMagic, got %v", in, err)
		}
	}
}

func TestDecodeRequestTruncatedKeepsHeader(t *testing.T) {
	// Scenario: header claims 10 payload bytes, none follow.
	req, err := DecodeRequest([]byte{0x7C, 0xC0, 0x01, 0x03, 0x0A})
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	if req.ID != 0x01 {
		t.Fatalf("id not preserved: got 0x%02X", req.ID)
	}
	if req.Op != OpGetDataMaxLen {
		t.Fatalf("opcode not preserved: got %v", req.Op)
	}
}

func TestDecodeRequestPartialPayloadTruncated(t *testing.T) {
	in := []byte{0x7C, 0xC0, 0x11, 0x01, 0x03, 0xAA, 0xBB}
	if _, err := DecodeRequest(in); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestDecodeRequestExact(t *testing.T) {
	req, err := DecodeRequest([]byte{0x7C, 0xC0, 0x05, 0x01, 0x00})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.ID != 0x05 || req.Op != OpPing || len(req.Payload) != 0 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestDecodeRequestIgnoresTrailingBytes(t *testing.T) {
	in := []byte{0x7C, 0xC0, 0x02, 0x01, 0x02, 0xAA, 0xBB, 0xCC, 0xDD}
	req, err := DecodeRequest(in)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(req.Payload, []byte{0xAA, 0xBB}) {
		t.Fatalf("payload mismatch: % X", req.Payload)
	}
}

func TestEncodeResponseWire(t *testing.T) {
	got, err := EncodeResponse(0x05, OpPing, ResultOK, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{0x7C, 0xC0, 0x05, 0x01, 0x00, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("wire mismatch: got % X want % X", got, want)
	}
}

func TestEncodeResponseWithPayload(t *testing.T) {
	got, err := EncodeResponse(0x09, OpVersion, ResultOK, []byte{1, 0, 0})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{0x7C, 0xC0, 0x09, 0x02, 0x00, 0x03, 0x01, 0x00, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("wire mismatch: got % X want % X", got, want)
	}
}

func TestEncodeResponsePayloadCap(t *testing.T) {
	if _, err := EncodeResponse(1, OpPing, ResultOK, make([]byte, 255)); err != nil {
		t.Fatalf("255-byte payload should encode: %v", err)
	}
	if _, err := EncodeResponse(1, OpPing, ResultOK, make([]byte, 256)); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestEncodeDecodePreservesIDAndOpcode(t *testing.T) {
	cases := []struct {
		id      uint8
		op      Opcode
		payload []byte
	}{
		{0x00, OpPing, nil},
		{0x7F, OpVersion, []byte{9, 9, 9}},
		{0xFF, Opcode(0xEE), bytes.Repeat([]byte{0x5A}, 255)},
	}
	for _, c := range cases {
		wire, err := EncodeResponse(c.id, c.op, ResultOK, c.payload)
		if err != nil {
			t.Fatalf("encode id=0x%02X: %v", c.id, err)
		}
		// A response is one result byte wider than a request; decoding the
		// request-shaped prefix must still see the same correlation header.
		if wire[2] != c.id || Opcode(wire[3]) != c.op {
			t.Fatalf("id/opcode not preserved: % X", wire[:4])
		}
	}
}

func TestRequestRoundTrip(t *testing.T) {
	payload := []byte{0x10, 0x20, 0x30}
	wire := append([]byte{0x7C, 0xC0, 0x42, byte(OpVersion), byte(len(payload))}, payload...)
	req, err := DecodeRequest(wire)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.ID != 0x42 || req.Op != OpVersion || !bytes.Equal(req.Payload, payload) {
		t.Fatalf("round trip mismatch: %+v", req)
	}
}
