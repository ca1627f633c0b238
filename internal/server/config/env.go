package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const EnvPrefix = "GOPHJOURNAL_"

// dotenvFile is loaded when present; variables already set in the
// environment win over it.
var dotenvFile = ".env"

// parseEnv overlays GOPHJOURNAL_* variables. Lifetimes are in minutes, like
// the -t and -r flags.
func parseEnv(config *Config) {
	if _, err := os.Stat(dotenvFile); err == nil {
		if err := godotenv.Load(dotenvFile); err != nil {
			panic(err)
		}
	}

	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}
	minutes := func(name string, dst *time.Duration) {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		*dst = time.Duration(n) * time.Minute
	}

	str("ADDRESS", &config.EndpointAddrGRPC)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("SECRET_KEY", &config.SecretKey)
	minutes("ACCESS_TOKEN_MINUTES", &config.AccessTokenValidityDuration)
	minutes("REFRESH_TOKEN_MINUTES", &config.RefreshTokenValidityDuration)
	str("S3_USER", &config.S3RootUser)
	str("S3_PASSWORD", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_ENDPOINT", &config.S3BaseEndpoint)
	str("PUBLIC_BASE_URL", &config.PublicBaseURL)
}
