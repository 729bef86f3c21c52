package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FEED_REFRESH_TIMEOUT", "")
	t.Setenv("FEED_BATCH_SIZE", "")
	t.Setenv("STORAGE_BACKEND", "")

	cfg := Load()
	if cfg.FeedRefreshTimeout != 15*time.Second {
		t.Errorf("FeedRefreshTimeout = %v, want 15s", cfg.FeedRefreshTimeout)
	}
	if cfg.BatchSize != 40 {
		t.Errorf("BatchSize = %d, want 40", cfg.BatchSize)
	}
	if cfg.StorageBackend != StorageMemory {
		t.Errorf("StorageBackend = %q, want memory", cfg.StorageBackend)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FEED_REFRESH_INTERVAL", "2m")
	t.Setenv("FEED_BATCH_SIZE", "10")
	t.Setenv("LIVE_REBIND_DELAY", "not-a-duration")
	t.Setenv("RATE_LIMIT_MAX", "-4")

	cfg := Load()
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"interval", cfg.FeedRefreshInterval, 2 * time.Minute},
		{"batch size", cfg.BatchSize, 10},
		{"invalid duration falls back", cfg.LiveRebindDelay, 5 * time.Second},
		{"negative int falls back", cfg.RateLimitMax, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoadYAMLConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadYAMLConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadYAMLConfig() error = %v", err)
	}
	celo := cfg.GetNetwork("CELO")
	if celo == nil || celo.ChainID != "0xA4EC" {
		t.Fatalf("celo network = %+v", celo)
	}
	if len(cfg.SeedLinks) != 9 {
		t.Errorf("seed links = %d, want 9", len(cfg.SeedLinks))
	}
}

func TestLoadYAMLConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "networks.yaml")
	data := `
networks:
  - name: devnet
    chain_id: "0x539"
    rpc_url: http://localhost:8545
    explorer: http://localhost:4000/
    start_block: 12
seed_links: []
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadYAMLConfig(path)
	if err != nil {
		t.Fatalf("LoadYAMLConfig() error = %v", err)
	}
	dev := cfg.GetNetwork("devnet")
	if dev == nil {
		t.Fatal("devnet not loaded")
	}
	if dev.LinkContract != DefaultLinkContract || dev.StartBlock != 12 {
		t.Errorf("devnet = %+v", dev)
	}
	if cfg.GetNetwork("celo") != nil {
		t.Error("file networks should replace the defaults")
	}
	if len(cfg.SeedLinks) != 0 {
		t.Errorf("explicit empty seed list replaced: %v", cfg.SeedLinks)
	}
}

func TestLoadYAMLConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "networks.yaml")
	if err := os.WriteFile(path, []byte("networks: [oops"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadYAMLConfig(path); err == nil {
		t.Error("LoadYAMLConfig() error = nil, want parse error")
	}
}

func TestResolve(t *testing.T) {
	yc := DefaultYAMLConfig()

	n, err := yc.Resolve(&Config{Network: "alfajores", RPCURL: "http://rpc.local"})
	if err != nil {
		t.Fatal(err)
	}
	if n.RPCURL != "http://rpc.local" || n.ChainID != "0xAEF3" {
		t.Errorf("Resolve() = %+v", n)
	}
	if yc.GetNetwork("alfajores").RPCURL == "http://rpc.local" {
		t.Error("Resolve() mutated the loaded network")
	}

	if _, err := yc.Resolve(&Config{Network: "mars"}); err == nil {
		t.Error("Resolve(mars) error = nil")
	}
}

func TestTxURL(t *testing.T) {
	n := NetworkConfig{Explorer: "https://celoscan.io/"}
	if got := n.TxURL("0xabc"); got != "https://celoscan.io/tx/0xabc" {
		t.Errorf("TxURL() = %q", got)
	}
	if got := n.TxURL(""); got != "" {
		t.Errorf("TxURL(\"\") = %q, want empty", got)
	}
}
