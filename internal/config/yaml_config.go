package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLinkContract is the deployed link contract on Celo mainnet.
const DefaultLinkContract = "0x5a3ddc1c12338bbbadd24469b3b01b236fc5761a"

// YAMLConfig represents the structure of the networks file.
// Network definitions are easier to manage in YAML than env vars.
type YAMLConfig struct {
	Networks  []NetworkConfig `yaml:"networks"`
	SeedLinks []string        `yaml:"seed_links"`
}

// NetworkConfig describes one chain the link contract is deployed on.
type NetworkConfig struct {
	Name         string `yaml:"name"`
	ChainID      string `yaml:"chain_id"` // hex, as wallets report it
	RPCURL       string `yaml:"rpc_url"`
	WSURL        string `yaml:"ws_url,omitempty"`
	Explorer     string `yaml:"explorer"`
	LinkContract string `yaml:"link_contract"`
	StartBlock   uint64 `yaml:"start_block,omitempty"`
}

// DefaultYAMLConfig returns the built-in Celo networks and seed links.
func DefaultYAMLConfig() *YAMLConfig {
	return &YAMLConfig{
		Networks: []NetworkConfig{
			{
				Name:         "celo",
				ChainID:      "0xA4EC",
				RPCURL:       "https://forno.celo.org",
				WSURL:        "wss://forno.celo.org/ws",
				Explorer:     "https://celoscan.io/",
				LinkContract: DefaultLinkContract,
			},
			{
				Name:         "alfajores",
				ChainID:      "0xAEF3",
				RPCURL:       "https://alfajores-forno.celo-testnet.org",
				WSURL:        "wss://alfajores-forno.celo-testnet.org/ws",
				Explorer:     "https://alfajores.celoscan.io/",
				LinkContract: DefaultLinkContract,
			},
		},
		SeedLinks: []string{
			"https://farcaster.xyz/teberen/0x391c5713",
			"https://farcaster.xyz/ertu",
			"https://farcaster.xyz/ratmubaba",
			"https://x.com/erturulsezar13",
			"https://x.com/egldmvx",
			"https://tebberen.github.io/celo-engage-hub/",
			"https://x.com/meelioodas",
			"https://x.com/luckyfromnecef/status/1972371920290259437",
			"https://github.com/tebberen",
		},
	}
}

// LoadYAMLConfig loads the networks file at path. A missing file yields the
// built-in defaults. Sections left out of the file keep their defaults.
func LoadYAMLConfig(path string) (*YAMLConfig, error) {
	defaults := DefaultYAMLConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults, nil
		}
		return nil, err
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if len(cfg.Networks) == 0 {
		cfg.Networks = defaults.Networks
	}
	if cfg.SeedLinks == nil {
		cfg.SeedLinks = defaults.SeedLinks
	}
	for i := range cfg.Networks {
		if cfg.Networks[i].LinkContract == "" {
			cfg.Networks[i].LinkContract = DefaultLinkContract
		}
	}

	return &cfg, nil
}

// GetNetwork finds a network by name, case-insensitively.
func (c *YAMLConfig) GetNetwork(name string) *NetworkConfig {
	if c == nil {
		return nil
	}
	for i := range c.Networks {
		if strings.EqualFold(c.Networks[i].Name, name) {
			return &c.Networks[i]
		}
	}
	return nil
}

// Resolve returns the named network with the env overrides from cfg applied.
func (c *YAMLConfig) Resolve(cfg *Config) (NetworkConfig, error) {
	n := c.GetNetwork(cfg.Network)
	if n == nil {
		return NetworkConfig{}, fmt.Errorf("unknown network %q", cfg.Network)
	}
	out := *n
	if cfg.RPCURL != "" {
		out.RPCURL = cfg.RPCURL
	}
	if cfg.WSURL != "" {
		out.WSURL = cfg.WSURL
	}
	if cfg.ContractAddr != "" {
		out.LinkContract = cfg.ContractAddr
	}
	return out, nil
}

// TxURL returns the explorer page for a transaction hash, or "" when either
// is unknown.
func (n NetworkConfig) TxURL(hash string) string {
	if n.Explorer == "" || hash == "" {
		return ""
	}
	return strings.TrimRight(n.Explorer, "/") + "/tx/" + hash
}
