package headerstore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds the two scalar inputs spec §6 requires at init: a network
// selector and an optional override of the headers file path. Adapted from
// node.Config, dropping the peer/bind-address fields that exist only to
// serve the P2P transport -- an explicit out-of-scope collaborator here.
type Config struct {
	Network    string `json:"network"`
	DataDir    string `json:"data_dir"`
	HeaderFile string `json:"header_file,omitempty"`
}

func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".chainhead"
	}
	return filepath.Join(home, ".chainhead")
}

func DefaultConfig() Config {
	return Config{
		Network: NetworkMain,
		DataDir: DefaultDataDir(),
	}
}

// ValidateConfig checks the two required scalars and that the network
// selector names a known checkpoint table.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Network) == "" {
		return errors.New("network is required")
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return errors.New("data_dir is required")
	}
	if _, ok := CheckpointsForNetwork(cfg.Network); !ok {
		return errors.New("unknown network: " + cfg.Network)
	}
	return nil
}

// headerFilePath resolves the effective headers.dat path: the configured
// override if set, else <data-dir>/headerstore/headers.dat (mirrors
// node.BlockStorePath's dataDir/blockstore layout convention).
func headerFilePath(cfg Config) string {
	if strings.TrimSpace(cfg.HeaderFile) != "" {
		return cfg.HeaderFile
	}
	return filepath.Join(cfg.DataDir, "headerstore", "headers.dat")
}
