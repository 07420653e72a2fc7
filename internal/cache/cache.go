package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/maltedev/shop-scraper/internal/models"
)

const (
	DefaultKeyPrefix = "shop-scraper"
	DefaultTTL       = 24 * time.Hour
	eventStreamMax   = 10000
)

// RedisClient is the subset of go-redis the store needs.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RecentStore remembers successfully scraped URLs across runs and publishes
// one stream event per finished URL.
type RecentStore struct {
	client RedisClient
	prefix string
	ttl    time.Duration
}

func NewRecentStore(client RedisClient, prefix string, ttl time.Duration) *RecentStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RecentStore{client: client, prefix: prefix, ttl: ttl}
}

// Connect dials redis and verifies the connection.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (s *RecentStore) scrapedKey(url string) string {
	return fmt.Sprintf("%s:scraped:%s", s.prefix, url)
}

// StreamKey is where per-URL events go.
func (s *RecentStore) StreamKey() string {
	return s.prefix + ":events"
}

func (s *RecentStore) MarkScraped(ctx context.Context, url string) error {
	if err := s.client.Set(ctx, s.scrapedKey(url), "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failure: %w", err)
	}
	return nil
}

func (s *RecentStore) WasRecentlyScraped(ctx context.Context, url string) (bool, error) {
	n, err := s.client.Exists(ctx, s.scrapedKey(url)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists failure: %w", err)
	}
	return n == 1, nil
}

// URLEvent summarizes one finished URL for downstream consumers.
type URLEvent struct {
	RunID     string         `json:"run_id"`
	URL       string         `json:"url"`
	Region    string         `json:"region"`
	Attempts  int            `json:"attempts"`
	Outcome   models.Outcome `json:"outcome"`
	Timestamp time.Time      `json:"timestamp"`
}

func (s *RecentStore) Publish(ctx context.Context, event URLEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: s.StreamKey(),
		MaxLen: eventStreamMax,
		Approx: true,
		Values: []interface{}{
			"event_type", "url_finished",
			"run_id", event.RunID,
			"outcome", string(event.Outcome),
			"data", string(data),
		},
	}
	if _, err := s.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}
	return nil
}

func (s *RecentStore) Close() error {
	return s.client.Close()
}
