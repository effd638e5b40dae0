package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNetwork(t *testing.T) {
	t.Run("should sort IPv4 addresses numerically", func(t *testing.T) {
		assert.Less(t, IPToInt("192.168.4.9"), IPToInt("192.168.4.10"))
		assert.Equal(t, uint32(0xc0a80401), IPToInt("192.168.4.1"))
		assert.Equal(t, uint32(0), IPToInt("fe80::1"))
		assert.Equal(t, uint32(0), IPToInt("garbage"))
	})

	t.Run("should detect locally administered MACs", func(t *testing.T) {
		assert.True(t, IsPrivateMAC("da:a1:19:00:00:01"))
		assert.False(t, IsPrivateMAC("00:ea:d4:39:0d:04"))
		assert.False(t, IsPrivateMAC("not-a-mac"))
	})

	t.Run("should normalise MACs", func(t *testing.T) {
		assert.Equal(t, "00:EA:D4:39:0D:04", NormalizeMAC("00-ea-d4-39-0d-04"))
		assert.Equal(t, "00:EA:D4", NormalizeMAC("00:ea:d4"))
	})
}
