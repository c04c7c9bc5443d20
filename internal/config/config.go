// Package config loads the optional tunable timings that govern retransmit
// and gossip cadence and the correlator's round-trip timeouts: read a YAML
// file if one is given, default any field the file omits, and never fail
// just because the file is absent.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Tunables are the only knobs an operator can adjust; every field has a
// built-in default.
type Tunables struct {
	RetransmitInterval time.Duration `yaml:"-"`
	GossipInterval     time.Duration `yaml:"-"`
	ReadTimeout        time.Duration `yaml:"-"`
	CasTimeout         time.Duration `yaml:"-"`

	RetransmitIntervalMS int `yaml:"retransmit_interval_ms"`
	GossipIntervalMS     int `yaml:"gossip_interval_ms"`
	ReadTimeoutMS        int `yaml:"read_timeout_ms"`
	CasTimeoutMS         int `yaml:"cas_timeout_ms"`
}

// Defaults returns the built-in tunables.
func Defaults() Tunables {
	return durations(Tunables{
		RetransmitIntervalMS: 2000,
		GossipIntervalMS:     5000,
		ReadTimeoutMS:        5000,
		CasTimeoutMS:         5000,
	})
}

// Load reads path as YAML and overlays any fields it sets onto the
// defaults. An empty path, or a path that does not exist, yields the
// defaults unchanged.
func Load(path string) (Tunables, error) {
	t := Defaults()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return Tunables{}, fmt.Errorf("read config %s: %w", path, err)
	}

	overlay := Defaults()
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Tunables{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return durations(overlay), nil
}

func durations(t Tunables) Tunables {
	t.RetransmitInterval = time.Duration(t.RetransmitIntervalMS) * time.Millisecond
	t.GossipInterval = time.Duration(t.GossipIntervalMS) * time.Millisecond
	t.ReadTimeout = time.Duration(t.ReadTimeoutMS) * time.Millisecond
	t.CasTimeout = time.Duration(t.CasTimeoutMS) * time.Millisecond
	return t
}
