/*
Package history remembers every client seen in a lease file.

Q: Why keep a history when the lease file already has one?
A: dhcpd rewrites its lease file periodically and drops expired leases when
it does, so a client that stops renewing eventually disappears from it. The
store keeps one row per hardware address, updated each time the monitor
reparses the file, so past clients can still be listed.
*/
package history

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	// registers the "sqlite3" driver with database/sql
	_ "github.com/mattn/go-sqlite3"

	"dhcpdleases/internal/leases"
	"dhcpdleases/pkg/models"
)

const upsertQuery = `
INSERT INTO clients (mac_addr, ip, hostname, client_hostname, last_ends, linux, last_seen)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(mac_addr) DO UPDATE SET
	ip=excluded.ip,
	hostname=excluded.hostname,
	client_hostname=excluded.client_hostname,
	last_ends=excluded.last_ends,
	linux=excluded.linux,
	last_seen=excluded.last_seen
WHERE excluded.last_ends >= clients.last_ends;
`

const selectColumns = `SELECT mac_addr, ip, hostname, client_hostname, last_ends, linux, last_seen FROM clients`

// Store manages the history database
type Store struct {
	DB  *sql.DB
	now func() time.Time
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// Open opens, creating if needed, the history database at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// :memory: databases are per connection
	db.SetMaxOpenConns(1)

	createTableQuery := `
	CREATE TABLE IF NOT EXISTS clients (
		mac_addr TEXT PRIMARY KEY,
		ip TEXT,
		hostname TEXT,
		client_hostname TEXT,
		last_ends TEXT,
		linux INTEGER,
		last_seen TEXT
	);
	`
	if _, err = db.Exec(createTableQuery); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}

	return &Store{DB: db, now: time.Now}, nil
}

// NewTestStore returns an in-memory store for tests
func NewTestStore() *Store {
	s, err := Open(":memory:")
	if err != nil {
		log.Fatal("Failed to initialize test database")
	}
	return s
}

// Track records the client of lease. Leases without a hardware address
// are ignored. A lease whose ends date is older than the stored one does
// not overwrite it, so replaying an old file cannot rewind history.
func (s *Store) Track(lease leases.Lease) error {
	return s.track(s.DB, lease)
}

// TrackAll records every lease in file order, in a single transaction
func (s *Store) TrackAll(all leases.Leases) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}

	for _, lease := range all.All() {
		if err := s.track(tx, lease); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to track %s: %w", lease.IP, err)
		}
	}
	return tx.Commit()
}

func (s *Store) track(db execer, lease leases.Lease) error {
	mac := lease.Client()
	if mac == "" {
		return nil
	}

	_, err := db.Exec(upsertQuery,
		mac, lease.IP, lease.Hostname, lease.ClientHostname,
		lease.EndTime().UTC().Format(time.RFC3339), lease.IsLinux(),
		s.now().UTC().Format(time.RFC3339))
	return err
}

// Get returns the remembered client with hardware address mac
func (s *Store) Get(mac string) (*models.ClientEntry, error) {
	row := s.DB.QueryRow(selectColumns+` WHERE mac_addr = ?`, mac)

	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return entry, nil
}

// All returns every remembered client, most recently ending lease first
func (s *Store) All() ([]models.ClientEntry, error) {
	rows, err := s.DB.Query(selectColumns + ` ORDER BY last_ends DESC, mac_addr`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []models.ClientEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *entry)
	}
	return clients, rows.Err()
}

// Close closes the database
func (s *Store) Close() error {
	return s.DB.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (*models.ClientEntry, error) {
	var entry models.ClientEntry
	var lastEnds, lastSeen string
	if err := row.Scan(&entry.MAC, &entry.IP, &entry.Hostname, &entry.ClientHostname,
		&lastEnds, &entry.Linux, &lastSeen); err != nil {
		return nil, err
	}

	var err error
	if entry.LastEnds, err = time.Parse(time.RFC3339, lastEnds); err != nil {
		return nil, fmt.Errorf("bad last_ends for %s: %w", entry.MAC, err)
	}
	if entry.LastSeen, err = time.Parse(time.RFC3339, lastSeen); err != nil {
		return nil, fmt.Errorf("bad last_seen for %s: %w", entry.MAC, err)
	}
	return &entry, nil
}
