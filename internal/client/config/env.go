package config

import (
	"fmt"
	"time"
)

const envPrefix = "STATUSBOARD_"

// parseEnv overlays cfg with STATUSBOARD_* variables. lookup is os.LookupEnv
// outside of tests. Malformed durations panic, like malformed flags.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) {
		v, ok := lookup(envPrefix + name)
		if !ok {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(fmt.Errorf("%s%s has invalid duration %q: %w", envPrefix, name, v, err))
		}
		*dst = d
	}

	str("SERVER_ADDR", &cfg.ServerEndpointAddr)
	dur("ONLINE_CHECK_INTERVAL", &cfg.OnlineCheckInterval)
	str("DB_PATH", &cfg.LocalDBPath)
	str("ACCESS_TOKEN", &cfg.AccessToken)
	str("SECRET", &cfg.Secret)
	str("USER_AGENT", &cfg.UserAgent)
	dur("NOTIFICATION_INTERVAL", &cfg.NotificationInterval)
	str("EXPORT_DIR", &cfg.ExportDir)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FILE", &cfg.LogFile)
}
