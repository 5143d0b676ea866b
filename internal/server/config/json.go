package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/statusboard/internal/flagx"
	"github.com/dmitrijs2005/statusboard/internal/timex"
)

// JsonConfig is the DTO for the JSON configuration file. Durations accept
// "15m" as well as integer nanoseconds; absent keys leave Config untouched.
type JsonConfig struct {
	EndpointAddrGRPC            *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	S3RootUser                  *string         `json:"s3_root_user"`
	S3RootPassword              *string         `json:"s3_root_password"`
	S3Bucket                    *string         `json:"s3_bucket"`
	S3Region                    *string         `json:"s3_region"`
	S3BaseEndpoint              *string         `json:"s3_base_endpoint"`
	PresignValidityDuration     *timex.Duration `json:"presign_validity_duration"`
	LogLevel                    *string         `json:"log_level"`
	LogFormat                   *string         `json:"log_format"`
}

// parseJson loads the file given by -c/-config, if any, into config. A
// missing or malformed file panics.
func parseJson(config *Config, args []string) {
	jsonConfigFile := flagx.ConfigPath(args)
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	set(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	set(&config.S3RootUser, c.S3RootUser)
	set(&config.S3RootPassword, c.S3RootPassword)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setDuration(&config.PresignValidityDuration, c.PresignValidityDuration)
	set(&config.LogLevel, c.LogLevel)
	set(&config.LogFormat, c.LogFormat)
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
