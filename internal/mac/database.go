// ===== internal/mac/database.go =====
package mac

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"dhcpdleases/pkg/models"
	"dhcpdleases/pkg/utils"
)

var (
	unknownVendor = &models.OUIEntry{
		OUI:     "00:00:00",
		Company: "UNKNOWN",
		Address: "UNKNOWN",
	}
	privateVendor = &models.OUIEntry{
		OUI:     "PRIVATE",
		Private: true,
		Company: "Private (locally administered)",
		Address: "PRIVATE",
	}
)

// Database resolves the vendor of a lease's hardware address from a
// macaddress.io style JSON-lines file. Entries are cached as they are
// found; with preload the whole file is cached up front.
type Database struct {
	cache     map[string]*models.OUIEntry
	src       io.ReadSeeker
	closer    io.Closer
	mu        sync.RWMutex
	fileMu    sync.Mutex
	preloaded bool
}

// NewDatabase opens the vendor database at filename
func NewDatabase(filename string, preload bool) (*Database, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open MAC database: %w", err)
	}

	db := NewDatabaseFromReader(file, preload)
	db.closer = file
	return db, nil
}

// NewDatabaseFromReader builds a database over an already opened source
func NewDatabaseFromReader(src io.ReadSeeker, preload bool) *Database {
	db := &Database{
		cache: make(map[string]*models.OUIEntry),
		src:   src,
	}

	if preload {
		if err := db.preloadDatabase(); err != nil {
			log.Printf("Warning: failed to preload MAC database: %v", err)
		}
	}

	return db
}

// preloadDatabase loads all MAC entries into memory
func (db *Database) preloadDatabase() error {
	db.fileMu.Lock()
	defer db.fileMu.Unlock()

	count := 0
	err := db.scan(func(entry *models.OUIEntry) bool {
		db.mu.Lock()
		db.cache[utils.NormalizeMAC(entry.OUI)] = entry
		db.mu.Unlock()
		count++
		return true
	})

	db.mu.Lock()
	db.preloaded = true
	db.mu.Unlock()
	log.Printf("Preloaded %d MAC entries", count)
	return err
}

// Lookup finds the vendor of a client hardware address. It never returns
// nil: unknown addresses map to an UNKNOWN entry and locally administered
// ones to a private entry.
func (db *Database) Lookup(addr string) *models.OUIEntry {
	mac := utils.NormalizeMAC(addr)

	db.mu.RLock()
	for i := len(mac); i > 0; i-- {
		if entry, ok := db.cache[mac[:i]]; ok {
			db.mu.RUnlock()
			return entry
		}
	}
	preloaded := db.preloaded
	db.mu.RUnlock()

	if utils.IsPrivateMAC(mac) {
		return privateVendor
	}
	if preloaded {
		return unknownVendor
	}

	if entry := db.searchFile(mac); entry != nil {
		return entry
	}
	return unknownVendor
}

// searchFile searches the database file for a MAC prefix
func (db *Database) searchFile(mac string) *models.OUIEntry {
	db.fileMu.Lock()
	defer db.fileMu.Unlock()

	var found *models.OUIEntry
	err := db.scan(func(entry *models.OUIEntry) bool {
		prefix := utils.NormalizeMAC(entry.OUI)
		if prefix == "" || !strings.HasPrefix(mac, prefix) {
			return true
		}
		db.mu.Lock()
		db.cache[prefix] = entry
		db.mu.Unlock()
		found = entry
		return false
	})
	utils.CheckWarn(err, "searching MAC database")
	return found
}

// scan feeds every decodable line to fn until fn returns false. Callers
// hold fileMu.
func (db *Database) scan(fn func(*models.OUIEntry) bool) error {
	if _, err := db.src.Seek(0, io.SeekStart); err != nil {
		return err
	}
	scanner := bufio.NewScanner(db.src)
	for scanner.Scan() {
		var entry models.OUIEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		if !fn(&entry) {
			return nil
		}
	}
	return scanner.Err()
}

// Close closes the database file
func (db *Database) Close() error {
	if db.closer != nil {
		return db.closer.Close()
	}
	return nil
}
