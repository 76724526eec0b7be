package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"chainhead.dev/node/crypto"
	"chainhead.dev/node/node/headerstore"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(stderr, "usage: headerd <info|add-header|zap> [flags]")
		return 2
	}

	defaults := headerstore.DefaultConfig()
	cfg := defaults
	fs := flag.NewFlagSet("headerd "+args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.Network, "network", defaults.Network, "network name (main/test)")
	fs.StringVar(&cfg.DataDir, "datadir", defaults.DataDir, "header store data directory")
	fs.StringVar(&cfg.HeaderFile, "header-file", "", "override path to headers.dat")

	var headerHex, hashHex string
	if args[0] == "add-header" {
		fs.StringVar(&headerHex, "header", "", "hex-encoded 80-byte header")
		fs.StringVar(&hashHex, "hash", "", "hex-encoded claimed hash")
	}
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	if err := headerstore.ValidateConfig(cfg); err != nil {
		_, _ = fmt.Fprintf(stderr, "invalid config: %v\n", err)
		return 2
	}

	switch args[0] {
	case "zap":
		return runZap(cfg, stdout, stderr)
	case "info":
		return runInfo(cfg, stdout, stderr)
	case "add-header":
		return runAddHeader(cfg, headerHex, hashHex, stdout, stderr)
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		return 2
	}
}

func openStore(cfg headerstore.Config, stderr io.Writer) (*headerstore.BlockStore, int) {
	checkpoints, _ := headerstore.CheckpointsForNetwork(cfg.Network)
	digester := headerstore.NewDigester(crypto.DevStdCryptoProvider{})
	s, err := headerstore.Init(cfg, checkpoints, digester, nil)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "init failed: %v\n", err)
		return nil, 1
	}
	return s, 0
}

func runZap(cfg headerstore.Config, stdout, stderr io.Writer) int {
	if err := headerstore.Zap(cfg); err != nil {
		_, _ = fmt.Fprintf(stderr, "zap failed: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(stdout, "ok")
	return 0
}

func runInfo(cfg headerstore.Config, stdout, stderr io.Writer) int {
	s, code := openStore(cfg, stderr)
	if code != 0 {
		return code
	}
	defer func() { _ = s.Shutdown() }()

	_, _ = fmt.Fprintf(stdout, "network: %s\n", cfg.Network)
	_, _ = fmt.Fprintf(stdout, "height: %d\n", s.Height())
	_, _ = fmt.Fprintf(stdout, "best_hash: %s\n", s.BestHash())
	_, _ = fmt.Fprintf(stdout, "timestamp: %d\n", s.Timestamp())
	return 0
}

func runAddHeader(cfg headerstore.Config, headerHex, hashHex string, stdout, stderr io.Writer) int {
	headerHex = strings.TrimSpace(headerHex)
	hashHex = strings.TrimSpace(hashHex)
	if headerHex == "" || hashHex == "" {
		_, _ = fmt.Fprintln(stderr, "add-header requires -header and -hash")
		return 2
	}

	raw, err := hex.DecodeString(headerHex)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "invalid -header hex: %v\n", err)
		return 2
	}
	header, err := headerstore.ParseHeaderBytes(raw)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "invalid header: %v\n", err)
		return 2
	}
	claimedHash, err := headerstore.HashFromHex(hashHex)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "invalid -hash hex: %v\n", err)
		return 2
	}

	s, code := openStore(cfg, stderr)
	if code != 0 {
		return code
	}
	defer func() { _ = s.Shutdown() }()

	added, orphan, err := s.AddHeader(header, claimedHash)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "add-header rejected: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(stdout, "added: %v\norphan: %v\nheight: %d\nbest_hash: %s\n", added, orphan, s.Height(), s.BestHash())
	return 0
}
