// ===== internal/web/handlers.go =====
package web

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dhcpdleases/internal/leases"
	"dhcpdleases/pkg/models"
	"dhcpdleases/pkg/utils"
)

// parseKinds are the failure classes reported by the status endpoint
var parseKinds = []error{
	leases.ErrMalformedDate,
	leases.ErrUnexpectedToken,
	leases.ErrUnexpectedOption,
	leases.ErrMissingField,
	leases.ErrExpectedTerminator,
	leases.ErrUnterminatedBlock,
	leases.ErrMalformedInput,
}

// StatusJSON is the body of the status endpoint
type StatusJSON struct {
	File      string    `json:"file"`
	Leases    int       `json:"leases"`
	LoadedAt  time.Time `json:"loadedAt"`
	Error     string    `json:"error,omitempty"`
	ErrorKind string    `json:"errorKind,omitempty"`
}

// HostnamesJSON is the body of the hostnames endpoint
type HostnamesJSON struct {
	Hostnames       []string `json:"hostnames"`
	ClientHostnames []string `json:"clientHostnames"`
}

// handleLeasesAPI serves the leases matching the query. Filters apply in
// the order ip, mac, active, after, latest.
func (s *Server) handleLeasesAPI(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := leases.NewFilter(s.source.Leases())

	if ip := query.Get("ip"); ip != "" {
		filter.OnIP(ip)
	}
	if mac := query.Get("mac"); mac != "" {
		filter.OnMAC(strings.ToLower(mac))
	}
	if flag(query.Get("active")) {
		filter.OnActive()
	}
	if after := query.Get("after"); after != "" {
		var at time.Time
		if after != "now" {
			var err error
			if at, err = time.Parse(time.RFC3339, after); err != nil {
				s.writeJSONError(w, "Invalid after parameter: "+err.Error(), http.StatusBadRequest)
				return
			}
		}
		filter.OnActiveNow(at)
	}
	if flag(query.Get("latest")) {
		filter.Latest()
	}

	matched := filter.Collect()
	now := s.now()
	views := make([]models.LeaseView, 0, matched.Len())
	for _, lease := range matched.All() {
		views = append(views, s.leaseView(lease, now))
	}
	log.Printf("Found %d DHCP leases", len(views))

	s.writeJSON(w, views)
}

// handleHostnamesAPI serves the distinct hostnames of the current leases
func (s *Server) handleHostnamesAPI(w http.ResponseWriter, r *http.Request) {
	all := s.source.Leases()
	s.writeJSON(w, HostnamesJSON{
		Hostnames:       nonNil(all.Hostnames()),
		ClientHostnames: nonNil(all.ClientHostnames()),
	})
}

// handleClientsAPI serves every remembered client
func (s *Server) handleClientsAPI(w http.ResponseWriter, r *http.Request) {
	clients, err := s.source.Clients()
	if err != nil {
		log.Printf("Failed to list clients: %v", err)
		s.writeJSONError(w, "Failed to list clients: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if clients == nil {
		clients = []models.ClientEntry{}
	}
	s.writeJSON(w, clients)
}

// handleStatusAPI reports the state of the last load of the lease file
func (s *Server) handleStatusAPI(w http.ResponseWriter, r *http.Request) {
	status := s.source.Status()
	body := StatusJSON{
		File:     status.File,
		Leases:   status.Leases,
		LoadedAt: status.LoadedAt,
		Error:    status.Error,
	}
	if kind := utils.FirstKind(s.source.LastError(), parseKinds...); kind != nil {
		body.ErrorKind = kind.Error()
	}
	s.writeJSON(w, body)
}

func (s *Server) leaseView(lease leases.Lease, now time.Time) models.LeaseView {
	active, warning := lease.Activity(now)
	view := models.LeaseView{
		IP:                 lease.IP,
		IPSort:             utils.IPToInt(lease.IP),
		UID:                lease.UID,
		Hostname:           lease.Hostname,
		ClientHostname:     lease.ClientHostname,
		Active:             active,
		Abandoned:          lease.Abandoned,
		Linux:              lease.IsLinux(),
		BindingState:       lease.BindingState,
		NextBindingState:   lease.NextBindingState,
		RewindBindingState: lease.RewindBindingState,
		Warning:            warning,
		Remain:             "Infinite",
	}

	if lease.Hardware != nil {
		view.MAC = utils.NormalizeMAC(lease.Hardware.MAC)
		view.HardwareType = lease.Hardware.Type
		if s.vendors != nil {
			view.Info = s.vendors.Lookup(lease.Hardware.MAC)
		}
	}
	if lease.Dates.Starts != nil {
		t := lease.Dates.Starts.Time()
		view.Starts = &t
	}
	if lease.Dates.Ends != nil {
		t := lease.Dates.Ends.Time()
		view.Ends = &t
		if remain := t.Sub(now); remain > 0 {
			view.Remain = remain.Truncate(time.Second).String()
		} else {
			view.Remain = "Expired"
		}
	}
	return view
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	response := map[string]interface{}{"data": data}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

// writeJSONError writes a JSON error response
func (s *Server) writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func flag(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
