package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"citypulse/internal/config"
)

// ValkeyClient caches rendered view responses. Keys carry the snapshot
// and criteria versions, so a stale entry can never be served after
// either input changes; entries expire instead of being invalidated.
type ValkeyClient struct {
	client  *redis.Client
	viewTTL time.Duration
}

func NewValkeyClient(cfg config.ValkeyConfig) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &ValkeyClient{
		client:  rdb,
		viewTTL: cfg.ViewTTL,
	}, nil
}

func viewKey(view string, snapshotVersion, criteriaVersion uint64) string {
	return fmt.Sprintf("views:%s:s%d:c%d", view, snapshotVersion, criteriaVersion)
}

// GetViewRaw returns the cached JSON for a view at the given versions.
// Raw bytes avoid an unmarshal/marshal round trip on the hot path.
func (v *ValkeyClient) GetViewRaw(ctx context.Context, view string, snapshotVersion, criteriaVersion uint64) ([]byte, error) {
	data, err := v.client.Get(ctx, viewKey(view, snapshotVersion, criteriaVersion)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("view not in cache")
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}
	return data, nil
}

// SetView stores a view response under the current versions.
func (v *ValkeyClient) SetView(ctx context.Context, view string, snapshotVersion, criteriaVersion uint64, response interface{}) {
	data, err := json.Marshal(response)
	if err != nil {
		return
	}
	v.client.Set(ctx, viewKey(view, snapshotVersion, criteriaVersion), data, v.viewTTL)
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
