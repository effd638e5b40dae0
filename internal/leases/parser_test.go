package leases

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) Leases {
	t.Helper()
	content, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	res, err := Parse(string(content))
	require.NoError(t, err)
	return res.Leases
}

func datePtr(weekday, date, clock string) *Date {
	d := MustParseDate(weekday, date, clock)
	return &d
}

const allOptions = `
lease 192.168.0.2 {
	starts 2 2019/01/01 22:00:00 UTC;
	ends 2 2019/01/01 23:00:00 UTC;
	hardware type 11:11:11:11:11:11;
	uid Client1;
	client-hostname "CLIENTHOSTNAME";
	hostname "TESTHOSTNAME";
	abandoned;
}

lease 192.168.0.3 {
	starts 1 1985/01/01 00:00:00 UTC;
	hardware type 22:22:22:22:22:22;
	uid Client2;
	hostname "TESTHOSTNAME";
}
`

func TestParse(t *testing.T) {
	t.Run("should parse an empty block", func(t *testing.T) {
		res, err := Parse("\n  lease 192.0.0.2 {\n\n  }")

		require.NoError(t, err)
		require.Equal(t, 1, res.Leases.Len())
		assert.Equal(t, "192.0.0.2", res.Leases.At(0).IP)
	})

	t.Run("should parse an empty input", func(t *testing.T) {
		res, err := Parse("# nothing here\n")

		require.NoError(t, err)
		assert.Equal(t, 0, res.Leases.Len())
	})

	t.Run("should parse every BSD option", func(t *testing.T) {
		res, err := Parse(allOptions)
		require.NoError(t, err)
		require.Equal(t, 2, res.Leases.Len())

		want := Lease{
			IP: "192.168.0.2",
			Dates: LeaseDates{
				Starts: datePtr("2", "2019/01/01", "22:00:00"),
				Ends:   datePtr("2", "2019/01/01", "23:00:00"),
			},
			Hardware:       &Hardware{Type: "type", MAC: "11:11:11:11:11:11"},
			UID:            "Client1",
			ClientHostname: "CLIENTHOSTNAME",
			Hostname:       "TESTHOSTNAME",
			Abandoned:      true,
		}
		if diff := cmp.Diff(want, res.Leases.At(0)); diff != "" {
			t.Errorf("lease mismatch (-want +got):\n%s", diff)
		}

		second := res.Leases.At(1)
		assert.Equal(t, "TESTHOSTNAME", second.Hostname)
		assert.Equal(t, "Tuesday 1985/01/01 00:00:00", second.Dates.Starts.String())
		assert.Nil(t, second.Dates.Ends)
		assert.False(t, second.Abandoned)
		assert.False(t, second.IsLinux())
	})

	t.Run("should parse Linux statements", func(t *testing.T) {
		res, err := Parse(`
	lease 192.168.4.105 {
	  starts 3 2022/01/05 16:51:33;
	  ends 3 2022/01/05 18:51:33;
	  tstp 3 2022/01/05 18:51:33;
	  tsfp 3 2022/01/05 18:51:34;
	  atsfp 3 2022/01/05 18:51:35;
	  cltt 3 2022/01/05 16:51:33;
	  binding state free;
	  hardware ethernet 00:ea:d4:39:0d:04;
	  uid "\001\000\352\3249\015\004";
	  reserved a b c d;
	}

	lease 192.168.4.108 {
	  starts 6 2022/01/08 17:46:16;
	  ends 6 2022/01/08 17:56:16;
	  cltt 6 2022/01/08 17:46:16;
	  binding state active;
	  next binding state free;
	  rewind binding state abandoned;
	  hardware ethernet 00:ea:d4:39:0d:04;
	  client-hostname "clsomimx6";
	}`)
		require.NoError(t, err)
		require.Equal(t, 2, res.Leases.Len())

		first := res.Leases.At(0)
		assert.True(t, first.IsLinux())
		assert.Equal(t, "free", first.BindingState)
		assert.Equal(t, `"\001\000\352\3249\015\004"`, first.UID)
		assert.True(t, first.Dates.Tstp.Equal(*datePtr("3", "2022/01/05", "18:51:33")))
		assert.True(t, first.Dates.Tsfp.Equal(*datePtr("3", "2022/01/05", "18:51:34")))
		assert.True(t, first.Dates.Atsfp.Equal(*datePtr("3", "2022/01/05", "18:51:35")))
		assert.True(t, first.Dates.Cltt.Equal(*datePtr("3", "2022/01/05", "16:51:33")))

		second := res.Leases.At(1)
		assert.Equal(t, "active", second.BindingState)
		assert.Equal(t, "free", second.NextBindingState)
		assert.Equal(t, "abandoned", second.RewindBindingState)
		assert.Equal(t, "clsomimx6", second.ClientHostname)
		assert.Nil(t, second.Dates.Tstp)
	})

	t.Run("should strip surrounding quotes exactly once", func(t *testing.T) {
		values := []string{"plain", "with space", `inner "quoted" part`, `""`, ""}
		for _, v := range values {
			res, err := Parse("lease 10.0.0.1 {\n hostname \"" + strings.ReplaceAll(v, `"`, `\"`) + "\";\n}")
			require.NoError(t, err, v)

			want := strings.ReplaceAll(v, `"`, `\"`)
			assert.Equal(t, want, res.Leases.At(0).Hostname)
		}
	})

	t.Run("should stamp the byte order on following leases", func(t *testing.T) {
		res, err := Parse(`
lease 10.0.0.1 { }
authoring-byte-order little-endian;
lease 10.0.0.2 { }
authoring-byte-order big-endian;
lease 10.0.0.3 { }`)

		require.NoError(t, err)
		require.Equal(t, 3, res.Leases.Len())
		assert.Equal(t, "", res.Leases.At(0).ByteOrder)
		assert.Equal(t, "little-endian", res.Leases.At(1).ByteOrder)
		assert.Equal(t, "big-endian", res.Leases.At(2).ByteOrder)
	})

	t.Run("should skip ignorable statements at top level and in blocks", func(t *testing.T) {
		res, err := Parse(`
server-duid "\000\001\000\001";
failover peer "dhcp" state {
  my state normal at 1 2022/01/05 16:51:33;
  partner state normal at 1 2022/01/05 16:51:33;
}
lease 10.0.0.1 {
  option agent.remote-id 0:1:2;
  set vendor-class-identifier = "MSFT 5.0";
  on expiry { set x = "y"; on release { set z = 1; } }
  bootp;
  ends never;
  hardware ethernet 00:01:02:03:04:05;
}`)

		require.NoError(t, err)
		require.Equal(t, 1, res.Leases.Len())
		assert.Equal(t, "00:01:02:03:04:05", res.Leases.At(0).Client())
		assert.Nil(t, res.Leases.At(0).Dates.Ends)
	})

	errorCases := []struct {
		name  string
		input string
		want  error
	}{
		{"missing closing brace", "lease 192.0.0.2 {\n\n", ErrUnterminatedBlock},
		{"dashed date", "lease 192.0.0.2 {\n starts 2 2019-01-02 00:00:00;\n}", ErrMalformedDate},
		{"unknown option", "lease 192.0.0.2 {\n frobnicate yes;\n}", ErrUnexpectedOption},
		{"word where option expected", "lease 192.0.0.2 {\n 2019/01/01;\n}", ErrUnexpectedOption},
		{"byte order inside block", "lease 192.0.0.2 {\n authoring-byte-order little-endian;\n}", ErrUnexpectedOption},
		{"stray word at top level", "hello;", ErrUnexpectedToken},
		{"stray brace at top level", "}", ErrUnexpectedToken},
		{"option at top level", "hostname \"x\";", ErrUnexpectedToken},
		{"nested lease", "lease 10.0.0.1 {\n lease 10.0.0.2 { }\n}", ErrUnexpectedOption},
		{"missing terminator", "lease 10.0.0.1 {\n uid abc\n}", ErrExpectedTerminator},
		{"foreign timezone", "lease 10.0.0.1 {\n starts 2 2019/01/01 22:00:00 PST;\n}", ErrExpectedTerminator},
		{"truncated date", "lease 10.0.0.1 {\n starts 2 2019/01/01", ErrMissingField},
		{"date value missing", "lease 10.0.0.1 {\n ends 2;\n}", ErrMissingField},
		{"hardware missing address", "lease 10.0.0.1 {\n hardware ethernet;\n}", ErrMissingField},
		{"binding without state", "lease 10.0.0.1 {\n binding active;\n}", ErrUnexpectedToken},
		{"binding state without value", "lease 10.0.0.1 {\n binding state;\n}", ErrMissingField},
		{"next without binding", "lease 10.0.0.1 {\n next state free;\n}", ErrUnexpectedToken},
		{"truncated after lease", "lease", ErrMissingField},
		{"keyword instead of address", "lease starts {", ErrUnexpectedToken},
		{"word instead of open brace", "lease 10.0.0.1 hello", ErrMalformedInput},
		{"end of input before open brace", "lease 10.0.0.1", ErrUnterminatedBlock},
		{"ignored statement without terminator", "lease 10.0.0.1 {\n reserved a b\n}", ErrExpectedTerminator},
		{"unbalanced ignored group", "lease 10.0.0.1 {\n on commit { set a = b;\n", ErrUnterminatedBlock},
		{"byte order without value", "authoring-byte-order ;", ErrMissingField},
	}
	for _, tc := range errorCases {
		tc := tc
		t.Run("should fail on "+tc.name, func(t *testing.T) {
			res, err := Parse(tc.input)

			assert.Nil(t, res)
			assert.ErrorIs(t, err, tc.want)
			var pe *ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}

	t.Run("should report the line of the failure", func(t *testing.T) {
		_, err := Parse("lease 10.0.0.1 {\n starts 2 2019/01/01 22:00:00;\n ends 2 2019-01-01 23:00:00;\n}")

		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, 3, pe.Line)
		assert.Contains(t, err.Error(), "line 3")
		assert.Contains(t, err.Error(), "ends")
	})
}

func TestParseFixtures(t *testing.T) {
	t.Run("should parse the BSD file", func(t *testing.T) {
		leases := loadFixture(t, "dhcpd-bsd.leases")

		assert.Equal(t, 3, leases.Len())
		assert.Equal(t, "", leases.At(0).ByteOrder)
		assert.True(t, leases.At(2).Abandoned)
		assert.Equal(t, "printer.lan", leases.At(1).Hostname)
		for _, l := range leases.All() {
			assert.False(t, l.IsLinux())
		}
	})

	t.Run("should parse the Linux file", func(t *testing.T) {
		leases := loadFixture(t, "dhcpd-linux.leases")

		assert.Equal(t, 6, leases.Len())
		assert.Equal(t, "little-endian", leases.At(0).ByteOrder)
		assert.Equal(t, "Living Room TV", leases.At(2).ClientHostname)
		assert.Nil(t, leases.At(4).Dates.Ends)
		for _, l := range leases.All() {
			assert.True(t, l.IsLinux())
		}
	})

	t.Run("should parse the multiple leases file", func(t *testing.T) {
		leases := loadFixture(t, "dhcpd-multiple.leases")

		assert.Equal(t, 16, leases.Len())
		assert.Equal(t, "little-endian", leases.At(0).ByteOrder)
	})
}
