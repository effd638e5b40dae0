// ===== internal/config/config.go =====
package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/ini.v1"
)

// Config holds all application configuration
type Config struct {
	// File paths
	LeasesFile string
	MACDBFile  string
	HistoryDB  string

	// Network settings
	HTTPListen string

	// Feature flags
	MACDBPreload bool
	Warnings     bool
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		LeasesFile:   "/var/lib/dhcp/dhcpd.leases",
		MACDBFile:    "/usr/share/dhcpleases/macaddress.io-db.json",
		HistoryDB:    "/var/lib/dhcpleases/history.db",
		HTTPListen:   "127.0.0.1:8067",
		MACDBPreload: false,
		Warnings:     true,
	}
}

// LoadFromFile loads configuration from INI file
func (c *Config) LoadFromFile(filename string) error {
	cfg, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, filename)
	if err != nil {
		log.Printf("Skipping config file %s: %s", filename, err)
		return err
	}

	section := cfg.Section("")
	c.LeasesFile = section.Key("leasesfile").MustString(c.LeasesFile)
	c.MACDBFile = section.Key("macdbfile").MustString(c.MACDBFile)
	c.HistoryDB = section.Key("historydb").MustString(c.HistoryDB)
	c.HTTPListen = section.Key("httplisten").MustString(c.HTTPListen)
	c.MACDBPreload = section.Key("macdbpreload").MustBool(c.MACDBPreload)
	c.Warnings = section.Key("warnings").MustBool(c.Warnings)

	// an explicitly empty key disables the feature
	if section.HasKey("historydb") && section.Key("historydb").String() == "" {
		c.HistoryDB = ""
	}
	if section.HasKey("macdbfile") && section.Key("macdbfile").String() == "" {
		c.MACDBFile = ""
	}

	return nil
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("LEASESFILE"); v != "" {
		c.LeasesFile = v
	}
	if v := os.Getenv("MACDBFILE"); v != "" {
		c.MACDBFile = v
	}
	if v, ok := os.LookupEnv("HISTORYDB"); ok {
		c.HistoryDB = v
	}
	if v := os.Getenv("HTTPLISTEN"); v != "" {
		c.HTTPListen = v
	}
	if v := os.Getenv("MACDBPRELOAD"); v != "" {
		c.MACDBPreload, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("WARNINGS"); v != "" {
		c.Warnings, _ = strconv.ParseBool(v)
	}
}

// New creates a new configuration instance. A missing or unreadable file
// is not an error; defaults and the environment still apply.
func New(configFile string) (*Config, error) {
	cfg := DefaultConfig()

	if configFile != "" {
		cfg.LoadFromFile(configFile)
	}

	cfg.LoadFromEnv()

	return cfg, nil
}
