package ble

import "fmt"

// Handle identifies one active link, assigned by the radio stack.
type Handle uint16

// EventKind values mirror the host stack's IRQ event codes.
type EventKind uint8

const (
	EventCentralConnect    EventKind = 1
	EventCentralDisconnect EventKind = 2
	EventGattsWrite        EventKind = 3
	EventMtuExchanged      EventKind = 21
	EventConnUpdate        EventKind = 27
	EventEncryptionUpdate  EventKind = 28
)

func (k EventKind) String() string {
	switch k {
	case EventCentralConnect:
		return "central_connect"
	case EventCentralDisconnect:
		return "central_disconnect"
	case EventGattsWrite:
		return "gatts_write"
	case EventMtuExchanged:
		return "mtu_exchanged"
	case EventConnUpdate:
		return "conn_update"
	case EventEncryptionUpdate:
		return "encryption_update"
	default:
		return fmt.Sprintf("event(%d)", uint8(k))
	}
}

// Event is one link or GATT event delivered by the stack. Fields beyond
// Kind and Conn are populated per kind; unused fields stay zero.
type Event struct {
	Kind EventKind
	Conn Handle

	// EventCentralConnect / EventCentralDisconnect
	AddrType uint8
	Addr     [6]byte

	// EventGattsWrite
	Attr uint16

	// EventMtuExchanged
	MTU uint16

	// EventConnUpdate
	Interval uint16
	Latency  uint16
	Timeout  uint16
	Status   uint8

	// EventEncryptionUpdate
	Encrypted     bool
	Authenticated bool
	Bonded        bool
	KeySize       uint8
}

// CharFlag is a GATT characteristic property bitmask.
type CharFlag uint16

const (
	FlagWriteNoResponse CharFlag = 0x0004
	FlagWrite           CharFlag = 0x0008
	FlagNotify          CharFlag = 0x0010
)

type Characteristic struct {
	UUID  UUID
	Flags CharFlag
}

type Service struct {
	UUID            UUID
	Characteristics []Characteristic
}

// Radio is the GATT-server capability exposed by the host stack.
type Radio interface {
	// RegisterService registers one service and returns the value handle of
	// each characteristic, in declaration order.
	RegisterService(svc Service) ([]uint16, error)

	// SetPreferredMTU configures the MTU offered on exchange.
	SetPreferredMTU(mtu uint16) error

	// ReadValue returns the bytes most recently written to an attribute.
	ReadValue(attr uint16) ([]byte, error)

	// Notify pushes a value to one link over a notify characteristic.
	Notify(conn Handle, attr uint16, value []byte) error

	// SetEventHandler registers the link/GATT event callback. The handler
	// runs in the stack's delivery context: it must return quickly and must
	// not call back into the Radio.
	SetEventHandler(fn func(Event))
}

// Advertiser is the GAP broadcast capability.
type Advertiser interface {
	// Advertise starts broadcasting with the given payloads. intervalUS is
	// the advertising interval in microseconds.
	Advertise(intervalUS uint32, advData, scanResp []byte) error

	StopAdvertising() error
}
