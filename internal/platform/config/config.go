package config

import (
	"os"
	"strings"
	"time"
)

// Config captures process-level configuration so main stays lean.
type Config struct {
	Addr string

	OAuth OAuthConfig
	Redis RedisConfig

	// PostgresDSN selects the postgres durable store when set. Redis wins
	// when both are configured.
	PostgresDSN string

	// KafkaBrokers enables the Kafka audit publisher when non-empty.
	KafkaBrokers []string
	AuditTopic   string
}

// OAuthConfig mirrors the immutable client settings registered with the
// authorization server.
type OAuthConfig struct {
	ClientID     string
	AuthorityURL string
	RedirectURI  string
	Scopes       []string
}

// RedisConfig captures Redis connection tuning.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	addr := os.Getenv("WALLETGATE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	authority := os.Getenv("OAUTH_AUTHORITY_URL")
	if authority == "" {
		authority = "https://login.microsoftonline.com/common"
	}

	redirect := os.Getenv("OAUTH_REDIRECT_URI")
	if redirect == "" {
		redirect = "http://localhost:8080/auth/callback"
	}

	scopes := splitList(os.Getenv("OAUTH_SCOPES"))
	if len(scopes) == 0 {
		scopes = []string{"openid", "profile", "email"}
	}

	topic := os.Getenv("AUDIT_TOPIC")
	if topic == "" {
		topic = "walletgate.audit"
	}

	return Config{
		Addr: addr,
		OAuth: OAuthConfig{
			ClientID:     os.Getenv("OAUTH_CLIENT_ID"),
			AuthorityURL: strings.TrimRight(authority, "/"),
			RedirectURI:  redirect,
			Scopes:       scopes,
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		AuditTopic:   topic,
	}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
