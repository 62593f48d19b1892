package peripheral

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/corc-project/corcd/internal/ble"
)

// DefaultMTU is the ATT MTU every link starts at before exchange.
const DefaultMTU = 23

// LinkRecord is the tracked state of one active BLE link.
type LinkRecord struct {
	Handle   ble.Handle
	AddrType uint8
	Addr     [6]byte
	MTU      uint16

	// Connection parameters, unset until the first update event.
	Interval    uint16
	Latency     uint16
	Timeout     uint16
	Status      uint8
	ParamsKnown bool

	// Security state, recorded from encryption updates, never negotiated.
	Encrypted     bool
	Authenticated bool
	Bonded        bool
	KeySize       uint8
}

// ShortAddr renders the peer address as AA:BB:CC:DD:EE:FF.
func (r LinkRecord) ShortAddr() string {
	a := r.Addr
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X",
		a[0], a[1], a[2], a[3], a[4], a[5])
}

// Registry owns all LinkRecords, keyed by connection handle. At most one
// record exists per handle. Every exported method is one short critical
// section and is safe from the radio callback context.
type Registry struct {
	mu    sync.Mutex
	links map[ble.Handle]LinkRecord
}

func NewRegistry() *Registry {
	return &Registry{
		links: make(map[ble.Handle]LinkRecord),
	}
}

// Add inserts a fresh record with the default MTU. A stale record under the
// same handle is evicted first; duplicate handles never coexist.
func (g *Registry) Add(conn ble.Handle, addrType uint8, addr [6]byte) {
	rec := LinkRecord{
		Handle:   conn,
		AddrType: addrType,
		Addr:     addr,
		MTU:      DefaultMTU,
	}

	g.mu.Lock()
	stale, evicted := g.links[conn]
	g.links[conn] = rec
	g.mu.Unlock()

	if evicted {
		log.Warn().
			Uint16("conn", uint16(conn)).
			Str("peer", stale.ShortAddr()).
			Msg("registry: evicting stale link record")
	}
	log.Info().
		Uint16("conn", uint16(conn)).
		Str("peer", rec.ShortAddr()).
		Msg("registry: link added")
}

// Remove deletes and returns the record for a handle, if present.
func (g *Registry) Remove(conn ble.Handle) (LinkRecord, bool) {
	g.mu.Lock()
	rec, ok := g.links[conn]
	if ok {
		delete(g.links, conn)
	}
	g.mu.Unlock()

	if ok {
		log.Info().
			Uint16("conn", uint16(conn)).
			Str("peer", rec.ShortAddr()).
			Msg("registry: link removed")
	}
	return rec, ok
}

// Get returns a copy of the record for a handle, if present.
func (g *Registry) Get(conn ble.Handle) (LinkRecord, bool) {
	g.mu.Lock()
	rec, ok := g.links[conn]
	g.mu.Unlock()
	return rec, ok
}

// Len reports the number of active links.
func (g *Registry) Len() int {
	g.mu.Lock()
	n := len(g.links)
	g.mu.Unlock()
	return n
}

// UpdateMTU records the negotiated MTU. No-op on an unknown handle.
func (g *Registry) UpdateMTU(conn ble.Handle, mtu uint16) {
	g.mu.Lock()
	rec, ok := g.links[conn]
	if ok {
		rec.MTU = mtu
		g.links[conn] = rec
	}
	g.mu.Unlock()
}

// UpdateParams records connection parameters. No-op on an unknown handle.
func (g *Registry) UpdateParams(conn ble.Handle, interval, latency, timeout uint16, status uint8) {
	g.mu.Lock()
	rec, ok := g.links[conn]
	if ok {
		rec.Interval = interval
		rec.Latency = latency
		rec.Timeout = timeout
		rec.Status = status
		rec.ParamsKnown = true
		g.links[conn] = rec
	}
	g.mu.Unlock()
}

// UpdateSecurity records the link security tuple. No-op on an unknown handle.
func (g *Registry) UpdateSecurity(conn ble.Handle, encrypted, authenticated, bonded bool, keySize uint8) {
	g.mu.Lock()
	rec, ok := g.links[conn]
	if ok {
		rec.Encrypted = encrypted
		rec.Authenticated = authenticated
		rec.Bonded = bonded
		rec.KeySize = keySize
		g.links[conn] = rec
	}
	g.mu.Unlock()
}
