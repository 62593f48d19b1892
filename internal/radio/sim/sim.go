// Package sim is an in-memory stand-in for the BLE host stack. It implements
// the ble.Radio and ble.Advertiser capabilities and lets callers play the
// central: inject link events, write attributes, capture notifications.
// Used by the bench binary and by package tests; it performs no real I/O.
package sim

import (
	"errors"
	"sync"

	"github.com/corc-project/corcd/internal/ble"
)

var (
	ErrNoSuchAttr     = errors.New("sim: no such attribute")
	ErrNotAdvertising = errors.New("sim: not advertising")
)

// Notification is one captured Notify call.
type Notification struct {
	Conn  ble.Handle
	Attr  uint16
	Value []byte
}

// Radio is the simulated stack. The zero value is not usable; call New.
//
// Event injectors (Connect, Write, ...) invoke the registered handler
// synchronously on the caller's goroutine, which therefore plays the role
// of the stack's delivery context.
type Radio struct {
	mu           sync.Mutex
	handler      func(ble.Event)
	attrs        map[uint16][]byte
	nextAttr     uint16
	preferredMTU uint16

	notifications []Notification
	notifyErr     error

	advertising bool
	advData     []byte
	scanResp    []byte
	advStarts   int
	advErr      error
}

func New() *Radio {
	return &Radio{
		attrs:    make(map[uint16][]byte),
		nextAttr: 16,
	}
}

// --- ble.Radio ---

func (r *Radio) RegisterService(svc ble.Service) ([]uint16, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	handles := make([]uint16, 0, len(svc.Characteristics))
	for range svc.Characteristics {
		r.nextAttr++
		r.attrs[r.nextAttr] = nil
		handles = append(handles, r.nextAttr)
	}
	return handles, nil
}

func (r *Radio) SetPreferredMTU(mtu uint16) error {
	r.mu.Lock()
	r.preferredMTU = mtu
	r.mu.Unlock()
	return nil
}

func (r *Radio) ReadValue(attr uint16) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.attrs[attr]
	if !ok {
		return nil, ErrNoSuchAttr
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (r *Radio) Notify(conn ble.Handle, attr uint16, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.notifyErr != nil {
		return r.notifyErr
	}
	v := make([]byte, len(value))
	copy(v, value)
	r.notifications = append(r.notifications, Notification{Conn: conn, Attr: attr, Value: v})
	return nil
}

func (r *Radio) SetEventHandler(fn func(ble.Event)) {
	r.mu.Lock()
	r.handler = fn
	r.mu.Unlock()
}

// --- ble.Advertiser ---

func (r *Radio) Advertise(intervalUS uint32, advData, scanResp []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.advErr != nil {
		return r.advErr
	}
	r.advertising = true
	r.advData = advData
	r.scanResp = scanResp
	r.advStarts++
	return nil
}

func (r *Radio) StopAdvertising() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.advertising {
		return ErrNotAdvertising
	}
	r.advertising = false
	return nil
}

// --- central-side injectors ---

func (r *Radio) deliver(ev ble.Event) {
	r.mu.Lock()
	fn := r.handler
	r.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

func (r *Radio) Connect(conn ble.Handle, addrType uint8, addr [6]byte) {
	r.deliver(ble.Event{Kind: ble.EventCentralConnect, Conn: conn, AddrType: addrType, Addr: addr})
}

func (r *Radio) Disconnect(conn ble.Handle) {
	r.deliver(ble.Event{Kind: ble.EventCentralDisconnect, Conn: conn})
}

// Write stores value into the attribute and delivers the write event, the
// order the real stack follows.
func (r *Radio) Write(conn ble.Handle, attr uint16, value []byte) {
	r.mu.Lock()
	v := make([]byte, len(value))
	copy(v, value)
	r.attrs[attr] = v
	r.mu.Unlock()

	r.deliver(ble.Event{Kind: ble.EventGattsWrite, Conn: conn, Attr: attr})
}

func (r *Radio) ExchangeMTU(conn ble.Handle, mtu uint16) {
	r.deliver(ble.Event{Kind: ble.EventMtuExchanged, Conn: conn, MTU: mtu})
}

func (r *Radio) UpdateConnParams(conn ble.Handle, interval, latency, timeout uint16, status uint8) {
	r.deliver(ble.Event{
		Kind: ble.EventConnUpdate, Conn: conn,
		Interval: interval, Latency: latency, Timeout: timeout, Status: status,
	})
}

func (r *Radio) UpdateEncryption(conn ble.Handle, encrypted, authenticated, bonded bool, keySize uint8) {
	r.deliver(ble.Event{
		Kind: ble.EventEncryptionUpdate, Conn: conn,
		Encrypted: encrypted, Authenticated: authenticated, Bonded: bonded, KeySize: keySize,
	})
}

// InjectEvent delivers an arbitrary event, for exercising unknown kinds.
func (r *Radio) InjectEvent(ev ble.Event) {
	r.deliver(ev)
}

// --- inspection and fault injection ---

func (r *Radio) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.notifications))
	copy(out, r.notifications)
	return out
}

func (r *Radio) ClearNotifications() {
	r.mu.Lock()
	r.notifications = nil
	r.mu.Unlock()
}

func (r *Radio) FailNotify(err error) {
	r.mu.Lock()
	r.notifyErr = err
	r.mu.Unlock()
}

func (r *Radio) FailAdvertise(err error) {
	r.mu.Lock()
	r.advErr = err
	r.mu.Unlock()
}

func (r *Radio) Advertising() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.advertising
}

func (r *Radio) AdvStarts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.advStarts
}

func (r *Radio) AdvPayloads() (advData, scanResp []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.advData...), append([]byte(nil), r.scanResp...)
}

func (r *Radio) PreferredMTU() uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.preferredMTU
}
