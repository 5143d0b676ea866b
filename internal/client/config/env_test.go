package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestParseEnv(t *testing.T) {
	var cfg Config
	cfg.LoadDefaults()
	want := cfg
	want.ServerEndpointAddr = "backend:9000"
	want.AccessToken = "tok"
	want.OnlineCheckInterval = 10 * time.Second
	want.NotificationInterval = 15 * time.Minute

	parseEnv(&cfg, lookupFrom(map[string]string{
		"STATUSBOARD_SERVER_ADDR":           "backend:9000",
		"STATUSBOARD_ACCESS_TOKEN":          "tok",
		"STATUSBOARD_ONLINE_CHECK_INTERVAL": "10s",
		"STATUSBOARD_NOTIFICATION_INTERVAL": "15m",
		"UNRELATED":                         "x",
	}))

	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestParseEnv_InvalidDurationPanics(t *testing.T) {
	var cfg Config
	require.Panics(t, func() {
		parseEnv(&cfg, lookupFrom(map[string]string{"STATUSBOARD_ONLINE_CHECK_INTERVAL": "soon"}))
	})
}

func TestParseEnv_EmptyValueOverrides(t *testing.T) {
	cfg := Config{AccessToken: "from-json"}
	parseEnv(&cfg, lookupFrom(map[string]string{"STATUSBOARD_ACCESS_TOKEN": ""}))
	assert.Empty(t, cfg.AccessToken)
}
