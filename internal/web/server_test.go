package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dhcpdleases/internal/config"
	"dhcpdleases/internal/leases"
	"dhcpdleases/internal/monitor"
	"dhcpdleases/pkg/models"
)

const leaseFile = `lease 192.168.4.106 {
	starts 2 2022/01/11 00:00:00;
	ends 2 2022/01/11 00:05:00;
	hardware ethernet 00:ea:d4:39:0d:04;
	client-hostname "tablet";
}
lease 192.168.4.107 {
	starts 2 2022/01/11 00:00:00;
	ends 2 2022/01/11 00:30:00;
	hardware ethernet 00:aa:bb:cc:dd:01;
	binding state active;
	hostname "desk.lan";
}
lease 192.168.4.106 {
	starts 2 2022/01/11 00:10:00;
	ends 2 2022/01/11 00:40:00;
	hardware ethernet 00:ea:d4:39:0d:04;
	client-hostname "tablet";
}
lease 192.168.4.110 {
	starts 2 2022/01/11 00:10:00;
	ends 2 2022/01/11 00:50:00;
	hardware ethernet 00:aa:bb:cc:dd:02;
	abandoned;
}
`

type fakeSource struct {
	leases  leases.Leases
	clients []models.ClientEntry
	err     error
	lastErr error
}

func (f *fakeSource) Leases() leases.Leases                    { return f.leases.Clone() }
func (f *fakeSource) Clients() ([]models.ClientEntry, error) { return f.clients, f.err }
func (f *fakeSource) LastError() error                         { return f.lastErr }
func (f *fakeSource) Status() monitor.Status {
	status := monitor.Status{File: "dhcpd.leases", Leases: f.leases.Len()}
	if f.lastErr != nil {
		status.Error = f.lastErr.Error()
	}
	return status
}

type fakeVendors struct{}

func (fakeVendors) Lookup(addr string) *models.OUIEntry {
	return &models.OUIEntry{OUI: addr[:8], Company: "Vendor " + addr[:8]}
}

func newTestServer(t *testing.T, source *fakeSource) *Server {
	t.Helper()
	leases.DisableWarnings()
	s := NewServer(config.DefaultConfig(), source, fakeVendors{})
	// 00:20 on the day of the fixture
	s.now = func() time.Time { return time.Date(2022, 1, 11, 0, 20, 0, 0, time.UTC) }
	return s
}

func parsed(t *testing.T) *fakeSource {
	t.Helper()
	result, err := leases.Parse(leaseFile)
	require.NoError(t, err)
	return &fakeSource{leases: result.Leases}
}

func get(t *testing.T, s *Server, url string, data interface{}) int {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

	if rec.Code == http.StatusOK && data != nil {
		var body struct {
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.NoError(t, json.Unmarshal(body.Data, data))
	}
	return rec.Code
}

func TestLeasesAPI(t *testing.T) {
	t.Run("should list every lease", func(t *testing.T) {
		s := newTestServer(t, parsed(t))
		var views []models.LeaseView

		require.Equal(t, http.StatusOK, get(t, s, "/api/leases", &views))

		require.Len(t, views, 4)
		first := views[0]
		assert.Equal(t, "192.168.4.106", first.IP)
		assert.Equal(t, uint32(192<<24|168<<16|4<<8|106), first.IPSort)
		assert.Equal(t, "00:EA:D4:39:0D:04", first.MAC)
		assert.Equal(t, "ethernet", first.HardwareType)
		require.NotNil(t, first.Info)
		assert.Equal(t, "Vendor 00:ea:d4", first.Info.Company)
		assert.Equal(t, "Expired", first.Remain)
		assert.False(t, first.Active)
		assert.True(t, views[1].Linux)
		assert.Equal(t, "10m0s", views[1].Remain)
		assert.True(t, views[3].Abandoned)
	})

	t.Run("should filter by address and keep the latest", func(t *testing.T) {
		s := newTestServer(t, parsed(t))
		var views []models.LeaseView

		require.Equal(t, http.StatusOK, get(t, s, "/api/leases?ip=192.168.4.106&latest=1", &views))

		require.Len(t, views, 1)
		require.NotNil(t, views[0].Ends)
		assert.Equal(t, time.Date(2022, 1, 11, 0, 40, 0, 0, time.UTC), views[0].Ends.UTC())
	})

	t.Run("should filter by MAC case-insensitively", func(t *testing.T) {
		s := newTestServer(t, parsed(t))
		var views []models.LeaseView

		require.Equal(t, http.StatusOK, get(t, s, "/api/leases?mac=00:AA:BB", &views))

		assert.Len(t, views, 2)
	})

	t.Run("should filter on leases ending after a time", func(t *testing.T) {
		s := newTestServer(t, parsed(t))
		var views []models.LeaseView

		require.Equal(t, http.StatusOK, get(t, s, "/api/leases?after=2022-01-11T00:35:00Z", &views))

		require.Len(t, views, 2)
		assert.Equal(t, "192.168.4.106", views[0].IP)
		assert.Equal(t, "192.168.4.110", views[1].IP)
	})

	t.Run("should reject a malformed after", func(t *testing.T) {
		s := newTestServer(t, parsed(t))

		assert.Equal(t, http.StatusBadRequest, get(t, s, "/api/leases?after=yesterday", nil))
	})

	t.Run("should reject other methods", func(t *testing.T) {
		s := newTestServer(t, parsed(t))
		rec := httptest.NewRecorder()

		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/leases", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("should return an empty list when nothing matches", func(t *testing.T) {
		s := newTestServer(t, parsed(t))
		var views []models.LeaseView

		require.Equal(t, http.StatusOK, get(t, s, "/api/leases?ip=10.&latest=true", &views))

		assert.NotNil(t, views)
		assert.Empty(t, views)
	})
}

func TestHostnamesAPI(t *testing.T) {
	t.Run("should list distinct hostnames", func(t *testing.T) {
		s := newTestServer(t, parsed(t))
		var body HostnamesJSON

		require.Equal(t, http.StatusOK, get(t, s, "/api/hostnames", &body))

		assert.Equal(t, []string{"desk.lan"}, body.Hostnames)
		assert.Equal(t, []string{"tablet"}, body.ClientHostnames)
	})
}

func TestClientsAPI(t *testing.T) {
	t.Run("should list clients", func(t *testing.T) {
		source := parsed(t)
		source.clients = []models.ClientEntry{{MAC: "00:ea:d4:39:0d:04", IP: "192.168.4.106"}}
		s := newTestServer(t, source)
		var clients []models.ClientEntry

		require.Equal(t, http.StatusOK, get(t, s, "/api/clients", &clients))

		require.Len(t, clients, 1)
		assert.Equal(t, "00:ea:d4:39:0d:04", clients[0].MAC)
	})

	t.Run("should report a failing store", func(t *testing.T) {
		source := parsed(t)
		source.err = errors.New("database is locked")
		s := newTestServer(t, source)

		assert.Equal(t, http.StatusInternalServerError, get(t, s, "/api/clients", nil))
	})
}

func TestStatusAPI(t *testing.T) {
	t.Run("should classify the last parse failure", func(t *testing.T) {
		_, parseErr := leases.Parse("lease 10.0.0.1 {")
		require.Error(t, parseErr)
		source := parsed(t)
		source.lastErr = fmt.Errorf("failed to parse dhcpd.leases: %w", parseErr)
		s := newTestServer(t, source)
		var body StatusJSON

		require.Equal(t, http.StatusOK, get(t, s, "/api/status", &body))

		assert.Equal(t, 4, body.Leases)
		assert.Equal(t, leases.ErrUnterminatedBlock.Error(), body.ErrorKind)
		assert.NotEmpty(t, body.Error)
	})

	t.Run("should omit the kind when healthy", func(t *testing.T) {
		s := newTestServer(t, parsed(t))
		var body StatusJSON

		require.Equal(t, http.StatusOK, get(t, s, "/api/status", &body))

		assert.Empty(t, body.ErrorKind)
		assert.Empty(t, body.Error)
	})
}
