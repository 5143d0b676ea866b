package config

import (
	"fmt"
	"time"
)

const envPrefix = "STATUSBOARD_"

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

	str("GRPC_ADDR", &cfg.EndpointAddrGRPC)
	str("DATABASE_DSN", &cfg.DatabaseDSN)
	str("SECRET_KEY", &cfg.SecretKey)
	dur("ACCESS_TOKEN_TTL", &cfg.AccessTokenValidityDuration)
	str("S3_USER", &cfg.S3RootUser)
	str("S3_PASSWORD", &cfg.S3RootPassword)
	str("S3_BUCKET", &cfg.S3Bucket)
	str("S3_REGION", &cfg.S3Region)
	str("S3_ENDPOINT", &cfg.S3BaseEndpoint)
	dur("PRESIGN_TTL", &cfg.PresignValidityDuration)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
}
