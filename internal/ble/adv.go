package ble

// Advertising data structure types.
const (
	adTypeFlags      = 0x01
	adTypeUUID128All = 0x07
	adTypeLocalName  = 0x09

	// General discoverable, BR/EDR not supported.
	advFlags = 0x06

	// MaxAdvPayload is the legacy advertising PDU data cap.
	MaxAdvPayload = 31
)

// BuildAdvPayload builds the advertisement data: GAP flags followed by the
// complete local name. The name is truncated so the payload never exceeds
// MaxAdvPayload bytes.
func BuildAdvPayload(name string) []byte {
	payload := make([]byte, 0, MaxAdvPayload)
	payload = append(payload, 2, adTypeFlags, advFlags)

	if name != "" {
		nameBytes := []byte(name)
		maxName := MaxAdvPayload - len(payload) - 2
		if maxName < 0 {
			maxName = 0
		}
		if len(nameBytes) > maxName {
			nameBytes = nameBytes[:maxName]
		}
		payload = append(payload, byte(len(nameBytes)+1), adTypeLocalName)
		payload = append(payload, nameBytes...)
	}

	return payload
}

// BuildScanResponse builds the scan response payload: the complete list of
// 128-bit service UUIDs. Only as many UUIDs as fit in MaxAdvPayload bytes
// are included.
func BuildScanResponse(services ...UUID) []byte {
	payload := make([]byte, 0, MaxAdvPayload)
	for _, u := range services {
		raw := u.LittleEndianBytes()
		if len(payload)+2+len(raw) > MaxAdvPayload {
			break
		}
		payload = append(payload, byte(len(raw)+1), adTypeUUID128All)
		payload = append(payload, raw[:]...)
	}
	return payload
}
