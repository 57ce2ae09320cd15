// Command dhtserver runs a single DHT node. Usage mirrors the reference
// server binary: dhtserver HOST PORT. Configuration beyond the listening
// address (table timings, gossip peers, rate limits, management API) comes
// from an optional YAML file and DHTNODE_-prefixed environment variables;
// see internal/config.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"

	"github.com/jroosing/dhtnode/internal/config"
	"github.com/jroosing/dhtnode/internal/logging"
	"github.com/jroosing/dhtnode/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) != 3 {
		return fmt.Errorf("usage: %s HOST PORT", os.Args[0])
	}
	host := os.Args[1]
	port, err := config.ParsePort(os.Args[2])
	if err != nil {
		return err
	}

	configPath := os.Getenv("DHTNODE_CONFIG")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg.Server.Host = host
	cfg.Server.Port = port

	logger := logging.Configure(logging.Config{
		Level:            cfg.Logging.Level,
		Structured:       cfg.Logging.Structured,
		StructuredFormat: cfg.Logging.StructuredFormat,
		IncludePID:       cfg.Logging.IncludePID,
		ExtraFields:      cfg.Logging.ExtraFields,
	})

	// DEBUG_RESEAU is read raw, without the DHTNODE_ prefix, per §6: it is
	// a protocol-level knob shared with the original client/server, not an
	// internal config value.
	if n, err := strconv.Atoi(os.Getenv("DEBUG_RESEAU")); err == nil {
		logger = logging.Configure(logging.Config{
			Level:            logging.LevelFromDebugReseau(n).String(),
			Structured:       cfg.Logging.Structured,
			StructuredFormat: cfg.Logging.StructuredFormat,
			IncludePID:       cfg.Logging.IncludePID,
			ExtraFields:      cfg.Logging.ExtraFields,
		})
	}

	nodeID := uuid.New().String()[:8]
	logger.Info("dhtnode starting", "node_id", nodeID, "host", cfg.Server.Host, "port", cfg.Server.Port)

	runner := server.NewRunner(logger, nodeID)
	if err := runner.Run(cfg); err != nil {
		return fmt.Errorf("server exited with error: %w", err)
	}
	return nil
}
