package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "127.0.0.1:9090", "-i", "10", "-l", "/tmp/x.db", "-t", "tok", "-n", "5"},
			expected: &Config{
				ServerEndpointAddr:   "127.0.0.1:9090",
				OnlineCheckInterval:  10 * time.Second,
				LocalDBPath:          "/tmp/x.db",
				AccessToken:          "tok",
				NotificationInterval: 5 * time.Minute,
			},
		},
		{
			name:     "foreign flags ignored",
			args:     []string{"-c", "cfg.json", "-x", "1", "-a", "h:1"},
			expected: &Config{ServerEndpointAddr: "h:1"},
		},
		{name: "incorrect check interval", args: []string{"-a", "127.0.0.1:9090", "-i", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config, tt.args) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config, tt.args) })
			}
		})
	}
}
