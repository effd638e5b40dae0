package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"dhcpdleases/internal/config"
	"dhcpdleases/internal/history"
	"dhcpdleases/internal/mac"
	"dhcpdleases/internal/monitor"
	"dhcpdleases/internal/web"
)

func newServeCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Watch the lease file and serve it over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*cfgFile)
		},
	}
}

func runServe(cfgFile string) error {
	log.Printf("%s: Build %s, Time %s", repoName, sha1ver, buildTime)

	// Load configuration
	cfg, err := config.New(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize MAC database
	var vendors web.Vendors
	if cfg.MACDBFile != "" {
		macDB, err := mac.NewDatabase(cfg.MACDBFile, cfg.MACDBPreload)
		if err != nil {
			log.Printf("Warning: vendor lookups disabled: %v", err)
		} else {
			defer macDB.Close()
			vendors = macDB
		}
	}

	// Initialize client history
	var tracker monitor.Tracker
	if cfg.HistoryDB != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.HistoryDB), 0o755); err != nil {
			return fmt.Errorf("failed to create history directory: %w", err)
		}
		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer store.Close()
		tracker = store
	}

	// Initialize monitor
	mon := monitor.New(cfg, tracker)
	if err := mon.Start(); err != nil {
		return fmt.Errorf("failed to start monitor: %w", err)
	}
	defer mon.Stop()

	// Initialize web server
	webServer := web.NewServer(cfg, mon, vendors)
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on %s", cfg.HTTPListen)
		errCh <- webServer.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	log.Println("Shutting down...")
	return nil
}
