// Package config loads the corcd TOML configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/corc-project/corcd/internal/ble"
	"github.com/corc-project/corcd/internal/peripheral"
)

type Config struct {
	Name           string `toml:"name"`
	PreferredMTU   int    `toml:"preferred_mtu"`
	AdvIntervalMS  int    `toml:"adv_interval_ms"`
	AdvRetryTickMS int    `toml:"adv_retry_tick_ms"`
	QueueCapacity  int    `toml:"queue_capacity"`
	LogLevel       string `toml:"log_level"`
	LogFile        string `toml:"log_file"`
}

func Default() Config {
	return Config{
		Name:           peripheral.DefaultName,
		PreferredMTU:   peripheral.DefaultPreferredMTU,
		AdvIntervalMS:  int(peripheral.DefaultAdvInterval / time.Millisecond),
		AdvRetryTickMS: int(peripheral.DefaultRetryTick / time.Millisecond),
		QueueCapacity:  peripheral.DefaultQueueCapacity,
		LogLevel:       "info",
	}
}

// Load reads a TOML file over the defaults. Keys absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("config: name must not be empty")
	}
	// Full name + flags must fit one legacy advertising PDU.
	if len(cfg.Name) > ble.MaxAdvPayload-5 {
		return fmt.Errorf("config: name %q longer than %d bytes, would always truncate",
			cfg.Name, ble.MaxAdvPayload-5)
	}
	if cfg.PreferredMTU < peripheral.DefaultMTU || cfg.PreferredMTU > 517 {
		return fmt.Errorf("config: preferred_mtu %d outside [%d, 517]",
			cfg.PreferredMTU, peripheral.DefaultMTU)
	}
	if cfg.AdvIntervalMS <= 0 {
		return fmt.Errorf("config: adv_interval_ms must be positive")
	}
	if cfg.AdvRetryTickMS <= 0 {
		return fmt.Errorf("config: adv_retry_tick_ms must be positive")
	}
	if cfg.QueueCapacity <= 0 {
		return fmt.Errorf("config: queue_capacity must be positive")
	}
	return nil
}

// Peripheral converts the file form into the runtime config.
func (c Config) Peripheral() peripheral.Config {
	return peripheral.Config{
		Name:          c.Name,
		PreferredMTU:  uint16(c.PreferredMTU),
		AdvInterval:   time.Duration(c.AdvIntervalMS) * time.Millisecond,
		RetryTick:     time.Duration(c.AdvRetryTickMS) * time.Millisecond,
		QueueCapacity: c.QueueCapacity,
	}
}
