// Package watch loads the watchlist: the exchange wallets whose flows are
// tracked, and the token contracts to scan. The watchlist lives in its own
// YAML file so operations can rotate exchange wallets without touching the
// service configuration.
package watch

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Exchange is a watched wallet with a human-readable label. The label is
// persisted for external tooling; the pipeline itself only uses the address.
type Exchange struct {
	Address string `yaml:"address" validate:"required,eth_addr"`
	Label   string `yaml:"label" default:"exchange"`
}

// Watchlist is the full set of watched exchange wallets and tracked tokens.
type Watchlist struct {
	Exchanges []Exchange `yaml:"exchanges" validate:"required,min=1,dive"`
	Tokens    []string   `yaml:"tokens" validate:"required,min=1,dive,eth_addr"`
}

// Addresses returns the watched wallet addresses.
func (w *Watchlist) Addresses() []string {
	addrs := make([]string, len(w.Exchanges))
	for i, e := range w.Exchanges {
		addrs[i] = e.Address
	}
	return addrs
}

// Load reads and validates a watchlist file.
func Load(path string) (*Watchlist, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read watchlist file: %w", err)
	}

	var wl Watchlist
	if err := yaml.Unmarshal(raw, &wl); err != nil {
		return nil, fmt.Errorf("failed to parse watchlist file: %w", err)
	}

	for i := range wl.Exchanges {
		if err := defaults.Set(&wl.Exchanges[i]); err != nil {
			return nil, fmt.Errorf("failed to apply watchlist defaults: %w", err)
		}
	}

	if err := validator.New().Struct(&wl); err != nil {
		return nil, fmt.Errorf("watchlist validation failed: %w", err)
	}
	return &wl, nil
}
