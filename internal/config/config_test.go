package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.RetransmitInterval != 2*time.Second {
		t.Fatalf("retransmit default = %v", d.RetransmitInterval)
	}
	if d.GossipInterval != 5*time.Second {
		t.Fatalf("gossip default = %v", d.GossipInterval)
	}
	if d.ReadTimeout != 5*time.Second || d.CasTimeout != 5*time.Second {
		t.Fatalf("cas/read defaults = %v/%v", d.ReadTimeout, d.CasTimeout)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	tu, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tu != Defaults() {
		t.Fatalf("expected defaults, got %+v", tu)
	}
}

func TestLoadPartialOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tunables.yaml")
	if err := os.WriteFile(path, []byte("gossip_interval_ms: 100\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	tu, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tu.GossipInterval != 100*time.Millisecond {
		t.Fatalf("gossip_interval overridden incorrectly: %v", tu.GossipInterval)
	}
	if tu.RetransmitInterval != 2*time.Second {
		t.Fatalf("retransmit_interval should remain default, got %v", tu.RetransmitInterval)
	}
}
