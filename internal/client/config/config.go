package config

import (
	"fmt"
	"os"
	"runtime"
	"time"
)

// Config holds runtime settings of the StatusBoard terminal client.
//
// AccessToken is optional: without it the client never contacts the backend
// and works on the local encrypted store only. Secret and UserAgent feed the
// storage key derivation, so changing either makes older local data
// unreadable.
type Config struct {
	ServerEndpointAddr   string
	OnlineCheckInterval  time.Duration
	LocalDBPath          string
	AccessToken          string
	Secret               string
	UserAgent            string
	NotificationInterval time.Duration
	ExportDir            string
	LogLevel             string
	LogFile              string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.LocalDBPath = "statusboard.db"
	c.UserAgent = fmt.Sprintf("statusboard-cli/%s/%s", runtime.GOOS, runtime.GOARCH)
	c.NotificationInterval = time.Hour
	c.ExportDir = "exports"
	c.LogLevel = "info"
	c.LogFile = "statusboard.log"
}

// LoadConfig builds a Config from defaults, then the JSON file named by
// -c/-config, then STATUSBOARD_* environment variables, then flags. Later
// sources win.
func LoadConfig() *Config {
	args := os.Args[1:]

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseEnv(cfg, os.LookupEnv)
	parseFlags(cfg, args)
	return cfg
}
