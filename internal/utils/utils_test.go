package utils

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var referencePattern = regexp.MustCompile(`^BK-[0-9A-Z]{9}$`)

func TestGenerateBookingReference(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		ref, err := GenerateBookingReference()
		require.NoError(t, err)
		assert.Regexp(t, referencePattern, ref)
		seen[ref] = struct{}{}
	}
	// 36^9 possible values; a collision in 1000 draws would point at a broken generator
	assert.Len(t, seen, 1000)
}

func TestGenerateJWTSecret(t *testing.T) {
	a, err := GenerateJWTSecret()
	require.NoError(t, err)
	b, err := GenerateJWTSecret()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestGetRealIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{"public X-Real-IP", map[string]string{"X-Real-IP": "41.186.10.20"}, "10.0.0.1:1234", "41.186.10.20"},
		{"private X-Real-IP falls through", map[string]string{"X-Real-IP": "10.1.1.1", "X-Forwarded-For": "41.186.10.21"}, "10.0.0.1:1234", "41.186.10.21"},
		{"first public forwarded hop", map[string]string{"X-Forwarded-For": "192.168.1.5, 105.178.3.4, 10.0.0.2"}, "10.0.0.1:1234", "105.178.3.4"},
		{"all private forwarded hops", map[string]string{"X-Forwarded-For": "192.168.1.5, 10.0.0.2"}, "10.0.0.1:1234", "192.168.1.5"},
		{"remote address fallback", nil, "197.243.1.1:5555", "197.243.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, GetRealIP(c))
		})
	}
}

func TestParseUserAgent(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		info := ParseUserAgent("")
		assert.Equal(t, "unknown", info.DeviceType)
		assert.Equal(t, "unknown", info.Platform)
	})

	t.Run("android phone", func(t *testing.T) {
		info := ParseUserAgent("Mozilla/5.0 (Linux; Android 12; Pixel 6) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/112.0.0.0 Mobile Safari/537.36")
		assert.Equal(t, "mobile", info.DeviceType)
		assert.Equal(t, "android", info.Platform)
		assert.Equal(t, "Chrome", info.Browser)
		assert.False(t, info.IsBot)
	})

	t.Run("ipad is a tablet", func(t *testing.T) {
		info := ParseUserAgent("Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1")
		assert.Equal(t, "tablet", info.DeviceType)
	})

	t.Run("bot", func(t *testing.T) {
		info := ParseUserAgent("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
		assert.True(t, info.IsBot)
	})

	t.Run("json", func(t *testing.T) {
		raw := ParseUserAgent("curl/8.0").JSON()
		assert.Contains(t, string(raw), `"device_type"`)
	})
}
