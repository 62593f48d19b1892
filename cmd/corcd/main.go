// corcd runs the CORC peripheral core against the simulated radio. Real
// deployments link a host-stack implementation of ble.Radio/ble.Advertiser
// in place of the simulator; this binary is the bench harness.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/corc-project/corcd/internal/config"
	"github.com/corc-project/corcd/internal/logging"
	"github.com/corc-project/corcd/internal/peripheral"
	"github.com/corc-project/corcd/internal/radio/sim"
)

func main() {
	cfgPath := flag.String("config", "", "path to corcd.toml (defaults apply when empty)")
	demo := flag.Bool("demo", false, "drive a scripted central against the simulated radio, then exit")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "corcd: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logCfg := logging.DefaultConfig(logging.ProfileRuntime)
	if lvl, ok := logging.ParseLevel(cfg.LogLevel); ok {
		logCfg.Level = lvl
	}
	logCfg.File = cfg.LogFile
	logging.Configure(logCfg)

	radio := sim.New()
	p, err := peripheral.New(cfg.Peripheral(), radio, radio)
	if err != nil {
		fmt.Fprintf(os.Stderr, "corcd: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *demo {
		go runDemo(radio, p, stop)
	}

	if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "corcd: %v\n", err)
		os.Exit(1)
	}
}

// runDemo plays one central session: connect, exchange MTU, issue each
// command, disconnect. Responses land in the simulator's notification log.
func runDemo(radio *sim.Radio, p *peripheral.Peripheral, stop func()) {
	defer stop()

	const conn = 1
	time.Sleep(200 * time.Millisecond)

	radio.Connect(conn, 0, [6]byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x01})
	radio.ExchangeMTU(conn, 185)

	requests := [][]byte{
		{0x7C, 0xC0, 0x01, 0x01, 0x00}, // ping
		{0x7C, 0xC0, 0x02, 0x02, 0x00}, // version
		{0x7C, 0xC0, 0x03, 0x03, 0x00}, // get_data_max_len
	}
	for _, req := range requests {
		radio.Write(conn, p.RxAttr(), req)
		time.Sleep(50 * time.Millisecond)
	}

	for _, n := range radio.Notifications() {
		log.Info().
			Uint16("conn", uint16(n.Conn)).
			Hex("frame", n.Value).
			Msg("demo: response")
	}

	radio.Disconnect(conn)
	time.Sleep(50 * time.Millisecond)
	log.Info().Msg("demo: complete")
}
