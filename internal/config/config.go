package config

import (
	"errors"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

// Config contains runtime configuration required by the service.
//
// DBURL, GHLAPIKey, StripeSecretKey and AMQPURL are all optional: leaving one
// unset selects the corresponding disabled (or in-memory) implementation at
// bootstrap instead of a partially configured client.
type Config struct {
	Port    string `validate:"required"`
	DBURL   string
	APIKeys map[string]string // apiKey -> callerID

	GHLAPIKey   string
	GHLBaseURL  string `validate:"omitempty,url"`
	GHLAgencyID string

	StripeSecretKey string

	AMQPURL      string
	AMQPExchange string
}

// Load reads configuration from the environment, preferring an optional .env
// file for local development. API_KEYS format: "caller1:key1,caller2:key2".
func Load() (Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		Port:            env("PORT", "8080"),
		DBURL:           env("DB_URL", ""),
		GHLAPIKey:       env("GHL_API_KEY", ""),
		GHLBaseURL:      env("GHL_BASE_URL", "https://services.leadconnectorhq.com"),
		GHLAgencyID:     env("GHL_AGENCY_ID", ""),
		StripeSecretKey: env("STRIPE_SECRET_KEY", ""),
		AMQPURL:         env("AMQP_URL", ""),
		AMQPExchange:    env("AMQP_EXCHANGE", "crm.notifications"),
	}

	keys, err := parseAPIKeys(env("API_KEYS", ""))
	if err != nil {
		return Config{}, err
	}
	cfg.APIKeys = keys

	if err := validate.Struct(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func env(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

func parseAPIKeys(raw string) (map[string]string, error) {
	keys := map[string]string{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parts := strings.SplitN(p, ":", 2)
		if len(parts) != 2 {
			return nil, errors.New(`API_KEYS must be "caller:key,caller:key"`)
		}
		caller := strings.TrimSpace(parts[0])
		key := strings.TrimSpace(parts[1])
		if caller == "" || key == "" {
			return nil, errors.New(`API_KEYS must be "caller:key,caller:key"`)
		}
		keys[key] = caller
	}

	// Local dev fallback so the service runs out-of-the-box.
	if len(keys) == 0 {
		keys["dev-key-123"] = "dev"
	}
	return keys, nil
}
