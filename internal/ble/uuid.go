package ble

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidUUID = errors.New("ble: invalid uuid")

// UUID is a 128-bit Bluetooth UUID in canonical (big-endian) byte order.
type UUID [16]byte

// ParseUUID parses the canonical 8-4-4-4-12 string form.
func ParseUUID(s string) (UUID, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 5 {
		return UUID{}, fmt.Errorf("%w: %q", ErrInvalidUUID, s)
	}
	hexStr := strings.Join(parts, "")
	if len(hexStr) != 32 {
		return UUID{}, fmt.Errorf("%w: %q", ErrInvalidUUID, s)
	}
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return UUID{}, fmt.Errorf("%w: %q", ErrInvalidUUID, s)
	}
	var u UUID
	copy(u[:], raw)
	return u, nil
}

// MustUUID is ParseUUID for package-level constants.
func MustUUID(s string) UUID {
	u, err := ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return u
}

func (u UUID) String() string {
	h := hex.EncodeToString(u[:])
	return strings.ToUpper(
		h[0:8] + "-" + h[8:12] + "-" + h[12:16] + "-" + h[16:20] + "-" + h[20:32])
}

// LittleEndianBytes returns the UUID in the reversed byte order used inside
// advertising data structures and ATT attribute values.
func (u UUID) LittleEndianBytes() [16]byte {
	var out [16]byte
	for i := range u {
		out[i] = u[15-i]
	}
	return out
}
