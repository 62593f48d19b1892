package peripheral

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/corc-project/corcd/internal/ble"
	"github.com/corc-project/corcd/internal/protocol"
)

// Stable GATT identifiers. The deployed mobile client resolves the command
// channel by these exact values; never change them.
var (
	ServiceUUID = ble.MustUUID("B13A1000-9F2A-4F3B-9C8E-A7D4E3C8B125")
	RxCharUUID  = ble.MustUUID("B13A1001-9F2A-4F3B-9C8E-A7D4E3C8B125")
	TxCharUUID  = ble.MustUUID("B13A1002-9F2A-4F3B-9C8E-A7D4E3C8B125")
)

const (
	DefaultName         = "CORC"
	DefaultPreferredMTU = 247
	DefaultAdvInterval  = 500 * time.Millisecond
	DefaultRetryTick    = time.Second
)

// Config carries the startup parameters of the peripheral runtime.
type Config struct {
	Name          string
	PreferredMTU  uint16
	AdvInterval   time.Duration
	RetryTick     time.Duration
	QueueCapacity int
}

func DefaultConfig() Config {
	return Config{
		Name:          DefaultName,
		PreferredMTU:  DefaultPreferredMTU,
		AdvInterval:   DefaultAdvInterval,
		RetryTick:     DefaultRetryTick,
		QueueCapacity: DefaultQueueCapacity,
	}
}

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.PreferredMTU == 0 {
		c.PreferredMTU = DefaultPreferredMTU
	}
	if c.AdvInterval <= 0 {
		c.AdvInterval = DefaultAdvInterval
	}
	if c.RetryTick <= 0 {
		c.RetryTick = DefaultRetryTick
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = DefaultQueueCapacity
	}
}

// Peripheral wires the registry, the inbound queue, the event dispatcher and
// the command pipeline to one Radio/Advertiser pair.
type Peripheral struct {
	cfg   Config
	radio ble.Radio
	adv   ble.Advertiser

	registry *Registry
	inbox    *Inbox

	rxAttr uint16
	txAttr uint16

	advData  []byte
	scanResp []byte

	// Set from the event dispatcher, consumed by the orchestrator loop. The
	// radio stack forbids reentrant calls from event delivery, so a restart
	// is only ever requested here, never performed.
	advPending atomic.Bool

	handlers map[protocol.Opcode]handlerFunc
}

// New registers the CORC GATT service and prepares the runtime. The radio
// starts delivering events to the dispatcher as soon as New returns.
func New(cfg Config, radio ble.Radio, adv ble.Advertiser) (*Peripheral, error) {
	cfg.applyDefaults()

	p := &Peripheral{
		cfg:      cfg,
		radio:    radio,
		adv:      adv,
		registry: NewRegistry(),
		inbox:    NewInbox(cfg.QueueCapacity),
		advData:  ble.BuildAdvPayload(cfg.Name),
		scanResp: ble.BuildScanResponse(ServiceUUID),
	}
	p.handlers = builtinHandlers(p)

	svc := ble.Service{
		UUID: ServiceUUID,
		Characteristics: []ble.Characteristic{
			{UUID: RxCharUUID, Flags: ble.FlagWrite | ble.FlagWriteNoResponse},
			{UUID: TxCharUUID, Flags: ble.FlagNotify},
		},
	}
	attrs, err := radio.RegisterService(svc)
	if err != nil {
		return nil, fmt.Errorf("peripheral: register service: %w", err)
	}
	if len(attrs) != 2 {
		return nil, fmt.Errorf("peripheral: expected 2 value handles, got %d", len(attrs))
	}
	p.rxAttr = attrs[0]
	p.txAttr = attrs[1]

	if err := radio.SetPreferredMTU(cfg.PreferredMTU); err != nil {
		return nil, fmt.Errorf("peripheral: set preferred mtu: %w", err)
	}

	radio.SetEventHandler(p.handleEvent)

	log.Info().
		Str("name", cfg.Name).
		Uint16("preferred_mtu", cfg.PreferredMTU).
		Uint16("rx_attr", p.rxAttr).
		Uint16("tx_attr", p.txAttr).
		Msg("peripheral: service registered")
	return p, nil
}

// Registry exposes the live link registry for inspection.
func (p *Peripheral) Registry() *Registry {
	return p.registry
}

// RxAttr is the value handle of the inbound (write) characteristic.
func (p *Peripheral) RxAttr() uint16 {
	return p.rxAttr
}

// TxAttr is the value handle of the outbound (notify) characteristic.
func (p *Peripheral) TxAttr() uint16 {
	return p.txAttr
}

// Run starts the command pipeline and drives the advertising retry loop
// until ctx is cancelled. The first advertise attempt happens immediately.
func (p *Peripheral) Run(ctx context.Context) error {
	go p.runPipeline(ctx)

	if !p.startAdvertising() {
		p.advPending.Store(true)
	}

	ticker := time.NewTicker(p.cfg.RetryTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := p.adv.StopAdvertising(); err != nil {
				log.Warn().Err(err).Msg("peripheral: stop advertising")
			}
			return ctx.Err()
		case <-ticker.C:
			p.retryAdvertise()
		}
	}
}

// retryAdvertise performs one tick of the deferred-restart policy: if a
// restart is pending, attempt it; on failure the flag stays set for the
// next tick.
func (p *Peripheral) retryAdvertise() {
	if !p.advPending.Load() {
		return
	}
	if p.startAdvertising() {
		p.advPending.Store(false)
	}
}

func (p *Peripheral) startAdvertising() bool {
	intervalUS := uint32(p.cfg.AdvInterval / time.Microsecond)
	if err := p.adv.Advertise(intervalUS, p.advData, p.scanResp); err != nil {
		log.Warn().Err(err).Msg("peripheral: advertise failed, will retry")
		return false
	}
	log.Info().Str("name", p.cfg.Name).Msg("peripheral: advertising")
	return true
}
