// ===== internal/web/server.go =====
package web

import (
	"log"
	"net/http"
	"time"

	"dhcpdleases/internal/config"
	"dhcpdleases/internal/leases"
	"dhcpdleases/internal/monitor"
	"dhcpdleases/pkg/models"
)

// Source provides the data served by the API. *monitor.Monitor is one.
type Source interface {
	Leases() leases.Leases
	Clients() ([]models.ClientEntry, error)
	Status() monitor.Status
	LastError() error
}

// Vendors resolves the vendor of a hardware address. *mac.Database is one.
type Vendors interface {
	Lookup(addr string) *models.OUIEntry
}

// Server represents the HTTP server
type Server struct {
	cfg     *config.Config
	source  Source
	vendors Vendors
	mux     *http.ServeMux
	now     func() time.Time
}

// NewServer creates a new web server. vendors may be nil.
func NewServer(cfg *config.Config, source Source, vendors Vendors) *Server {
	server := &Server{
		cfg:     cfg,
		source:  source,
		vendors: vendors,
		mux:     http.NewServeMux(),
		now:     time.Now,
	}

	server.setupRoutes()

	return server
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return http.ListenAndServe(s.cfg.HTTPListen, s.mux)
}

// Handler returns the server's request router
func (s *Server) Handler() http.Handler {
	return s.mux
}

// setupRoutes configures HTTP routes
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/leases", s.logged(s.handleLeasesAPI))
	s.mux.HandleFunc("/api/hostnames", s.logged(s.handleHostnamesAPI))
	s.mux.HandleFunc("/api/clients", s.logged(s.handleClientsAPI))
	s.mux.HandleFunc("/api/status", s.logged(s.handleStatusAPI))
}

func (s *Server) logged(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("Request from %s: %s", r.RemoteAddr, r.URL.String())
		if r.Method != http.MethodGet {
			s.writeJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}
