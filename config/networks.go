package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Network is one chain endpoint profile.
type Network struct {
	Name          string `yaml:"name"`
	RPCURL        string `yaml:"rpc_url"`
	ChainID       int64  `yaml:"chain_id"`
	BlockExplorer string `yaml:"block_explorer,omitempty"`
}

type networksFile struct {
	Networks map[string]Network `yaml:"networks"`
}

var defaultNetworks = map[string]Network{
	"localhost": {Name: "Localhost", RPCURL: "http://localhost:8545", ChainID: 31337},
}

// LoadNetworks reads network profiles from a YAML file. A missing file
// yields the built-in localhost profile.
func LoadNetworks(path string) (map[string]Network, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return defaultNetworks, nil
	}
	if err != nil {
		return nil, err
	}

	var file networksFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(file.Networks) == 0 {
		return nil, fmt.Errorf("%s defines no networks", path)
	}
	for key, n := range file.Networks {
		if n.RPCURL == "" {
			return nil, fmt.Errorf("network %q has no rpc_url", key)
		}
	}
	return file.Networks, nil
}

// ResolveNetwork picks the configured network profile. CHAIN_RPC_URL, when
// set, overrides the profile endpoint.
func ResolveNetwork(cfg Config) (Network, error) {
	networks, err := LoadNetworks(cfg.ChainNetworksFile)
	if err != nil {
		return Network{}, err
	}
	n, ok := networks[cfg.ChainNetwork]
	if !ok {
		return Network{}, fmt.Errorf("unknown chain network %q", cfg.ChainNetwork)
	}
	if cfg.ChainRPCURL != "" {
		n.RPCURL = cfg.ChainRPCURL
	}
	return n, nil
}
