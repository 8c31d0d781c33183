// internal/app/auth.go
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/VladimirMonin/students-api-411/internal/models"
	"github.com/VladimirMonin/students-api-411/internal/store"
)

const (
	timeFormat      = "2006-01-02 15:04:05"
	keyStatsTpl     = "api_key_stats:%s" // api_key_stats:${key}
	apiKeyPrefix    = "sk-st411-"
	apiKeyRandBytes = 12
)

var (
	ErrAPIKeyMissing = errors.New("api key missing")
	ErrAPIKeyInvalid = errors.New("api key invalid")
)

type Auth struct {
	enabled bool
	header  string
	store   store.RecordStore
	redis   *redis.Client
}

func NewAuth(config *Config, recordStore store.RecordStore) (*Auth, error) {
	if !config.Server.EnableAuth {
		return &Auth{enabled: false}, nil
	}

	a := &Auth{
		enabled: true,
		header:  config.Auth.APIKeyHeader,
		store:   recordStore,
	}

	if config.Auth.RedisURL != "" {
		opt, err := redis.ParseURL(config.Auth.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}

		client := redis.NewClient(opt)
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.redis = client
	}

	return a, nil
}

func (a *Auth) Enabled() bool {
	return a.enabled
}

func (a *Auth) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

// Authenticate resolves the API key header against the credential store.
// Returns (nil, nil) when the gate is disabled. Missing and unknown keys
// come back as ErrAPIKeyMissing / ErrAPIKeyInvalid, everything else is a
// store failure.
func (a *Auth) Authenticate(r *http.Request) (*models.APIKey, error) {
	if !a.enabled {
		return nil, nil
	}

	key := r.Header.Get(a.header)
	if key == "" {
		return nil, ErrAPIKeyMissing
	}

	record, err := a.store.GetAPIKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to check api key: %w", err)
	}
	if record == nil || !record.Active {
		return nil, ErrAPIKeyInvalid
	}

	a.trackUsage(r.Context(), record)

	return record, nil
}

// trackUsage is best effort accounting, a redis hiccup never fails a request.
func (a *Auth) trackUsage(ctx context.Context, key *models.APIKey) {
	if a.redis == nil {
		return
	}

	statsKey := fmt.Sprintf(keyStatsTpl, key.Key)
	now := time.Now().UTC().Format(timeFormat)

	pipe := a.redis.Pipeline()
	pipe.HIncrBy(ctx, statsKey, "request_count", 1)
	pipe.HSet(ctx, statsKey, "last_request_dttm_utc", now)

	if _, err := pipe.Exec(ctx); err != nil {
		logger.Debug.Printf("Failed to track usage for key of %s: %v", key.Username, err)
	}
}

// GenerateAPIKey produces a fresh credential string for the keygen utility.
func GenerateAPIKey() (string, error) {
	randomBytes := make([]byte, apiKeyRandBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return apiKeyPrefix + hex.EncodeToString(randomBytes), nil
}

type principalKey struct{}

// WithPrincipal stores the authenticated key record in the request context.
func WithPrincipal(ctx context.Context, key *models.APIKey) context.Context {
	return context.WithValue(ctx, principalKey{}, key)
}

// PrincipalFromContext returns the authenticated key record, if any.
func PrincipalFromContext(ctx context.Context) (*models.APIKey, bool) {
	key, ok := ctx.Value(principalKey{}).(*models.APIKey)
	return key, ok
}
