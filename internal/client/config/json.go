package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/statusboard/internal/flagx"
	"github.com/dmitrijs2005/statusboard/internal/timex"
)

// JsonConfig mirrors Config for the JSON file. Intervals use timex.Duration,
// so "3s" and integer nanoseconds are both accepted. Absent keys keep the
// current value.
type JsonConfig struct {
	ServerEndpointAddr   *string         `json:"server_endpoint_addr"`
	OnlineCheckInterval  *timex.Duration `json:"online_check_interval"`
	LocalDBPath          *string         `json:"local_db_path"`
	AccessToken          *string         `json:"access_token"`
	Secret               *string         `json:"secret"`
	UserAgent            *string         `json:"user_agent"`
	NotificationInterval *timex.Duration `json:"notification_interval"`
	ExportDir            *string         `json:"export_dir"`
	LogLevel             *string         `json:"log_level"`
	LogFile              *string         `json:"log_file"`
}

// parseJson overlays cfg with the file given by -c/-config in args. Read
// and decode errors panic.
func parseJson(cfg *Config, args []string) {
	jsonConfigFile := flagx.ConfigPath(args)
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	set(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setDuration(&cfg.OnlineCheckInterval, jc.OnlineCheckInterval)
	set(&cfg.LocalDBPath, jc.LocalDBPath)
	set(&cfg.AccessToken, jc.AccessToken)
	set(&cfg.Secret, jc.Secret)
	set(&cfg.UserAgent, jc.UserAgent)
	setDuration(&cfg.NotificationInterval, jc.NotificationInterval)
	set(&cfg.ExportDir, jc.ExportDir)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.LogFile, jc.LogFile)
}

func set(dst, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *timex.Duration) {
	if src != nil {
		*dst = src.Duration
	}
}
