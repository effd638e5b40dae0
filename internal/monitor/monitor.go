// ===== internal/monitor/monitor.go =====
package monitor

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"dhcpdleases/internal/config"
	"dhcpdleases/internal/leases"
	"dhcpdleases/pkg/models"
	"dhcpdleases/pkg/utils"
)

// Tracker remembers clients across rewrites of the lease file
type Tracker interface {
	TrackAll(all leases.Leases) error
	All() ([]models.ClientEntry, error)
}

// Status describes the last attempt to load the lease file
type Status struct {
	File     string    `json:"file"`
	Leases   int       `json:"leases"`
	LoadedAt time.Time `json:"loadedAt"`
	Error    string    `json:"error,omitempty"`
}

// Monitor keeps a parsed snapshot of the lease file up to date
type Monitor struct {
	cfg     *config.Config
	tracker Tracker

	leases   leases.Leases
	loadedAt time.Time
	lastErr  error

	watcher  *fsnotify.Watcher
	mu       sync.RWMutex
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates a new monitor instance. tracker may be nil.
func New(cfg *config.Config, tracker Tracker) *Monitor {
	if !cfg.Warnings {
		leases.DisableWarnings()
	}
	return &Monitor{
		cfg:     cfg,
		tracker: tracker,
		stopCh:  make(chan struct{}),
	}
}

// Start loads the lease file and begins watching it
func (m *Monitor) Start() error {
	var err error
	m.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := m.Reload(); err != nil {
		log.Printf("Warning: failed to load DHCP leases: %v", err)
	}

	go m.watchFiles()

	// dhcpd replaces the file by rename, so watch the directory
	dir := filepath.Dir(m.cfg.LeasesFile)
	if err := m.watcher.Add(dir); err != nil {
		log.Printf("Warning: failed to watch %s: %v", dir, err)
	}

	return nil
}

func (m *Monitor) watchFiles() {
	target, _ := filepath.Abs(m.cfg.LeasesFile)

	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if path, _ := filepath.Abs(event.Name); path != target {
				continue
			}

			log.Printf("File modified: %s", event.Name)
			if err := m.Reload(); err != nil {
				log.Printf("Error reloading DHCP leases: %v", err)
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)

		case <-m.stopCh:
			return
		}
	}
}

// Stop stops monitoring
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		if m.watcher != nil {
			m.watcher.Close()
		}
	})
}

// Reload reparses the lease file. On failure the previous snapshot is
// kept and the error is remembered for Status.
func (m *Monitor) Reload() error {
	all, err := m.load()

	m.mu.Lock()
	m.loadedAt = time.Now()
	m.lastErr = err
	if err == nil {
		m.leases = all
	}
	m.mu.Unlock()

	if err != nil {
		return err
	}

	log.Printf("Loaded %d DHCP leases", all.Len())
	if m.tracker != nil {
		if err := m.tracker.TrackAll(all); err != nil {
			log.Printf("Warning: failed to update client history: %v", err)
		}
	}
	return nil
}

func (m *Monitor) load() (leases.Leases, error) {
	content, err := os.ReadFile(m.cfg.LeasesFile)
	if err != nil {
		return leases.Leases{}, utils.WrapError(err, "failed to read leases file")
	}

	result, err := leases.Parse(string(content))
	if err != nil {
		return leases.Leases{}, fmt.Errorf("failed to parse %s: %w", m.cfg.LeasesFile, err)
	}
	return result.Leases, nil
}

// Leases returns a copy of the current snapshot
func (m *Monitor) Leases() leases.Leases {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.leases.Clone()
}

// LastError returns the error of the last reload, if it failed
func (m *Monitor) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// Status reports the state of the last reload
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := Status{
		File:     m.cfg.LeasesFile,
		Leases:   m.leases.Len(),
		LoadedAt: m.loadedAt,
	}
	if m.lastErr != nil {
		status.Error = m.lastErr.Error()
	}
	return status
}

// Clients lists every known client, latest lease first. Without a tracker
// only the clients of the current snapshot are known.
func (m *Monitor) Clients() ([]models.ClientEntry, error) {
	if m.tracker != nil {
		return m.tracker.All()
	}
	return clientsOf(m.Leases()), nil
}

func clientsOf(all leases.Leases) []models.ClientEntry {
	byMAC := make(map[string]models.ClientEntry)
	for _, l := range all.All() {
		mac := l.Client()
		if mac == "" {
			continue
		}
		if prev, ok := byMAC[mac]; ok && l.EndTime().Before(prev.LastEnds) {
			continue
		}
		byMAC[mac] = models.ClientEntry{
			MAC:            mac,
			IP:             l.IP,
			Hostname:       l.Hostname,
			ClientHostname: l.ClientHostname,
			LastEnds:       l.EndTime(),
			Linux:          l.IsLinux(),
		}
	}

	clients := make([]models.ClientEntry, 0, len(byMAC))
	for _, c := range byMAC {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool {
		if !clients[i].LastEnds.Equal(clients[j].LastEnds) {
			return clients[i].LastEnds.After(clients[j].LastEnds)
		}
		return clients[i].MAC < clients[j].MAC
	})
	return clients
}
