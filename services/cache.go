package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hargun03/accidents-analysis/config"

	"github.com/redis/go-redis/v9"
)

const redisPingAttempts = 5

// CacheService caches rendered responses in Redis. Without a client every
// call is a miss and writes are dropped.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(cfg config.RedisConfig, ttl time.Duration) (*CacheService, error) {
	if !cfg.Enabled() {
		return &CacheService{ttl: ttl}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	var lastErr error
	for i := 0; i < redisPingAttempts; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		lastErr = client.Ping(ctx).Err()
		cancel()
		if lastErr == nil {
			return NewCacheServiceWithClient(client, ttl), nil
		}
		log.Printf("redis ping attempt %d/%d failed: %v", i+1, redisPingAttempts, lastErr)
		time.Sleep(time.Second)
	}

	_ = client.Close()
	return &CacheService{ttl: ttl}, fmt.Errorf("redis ping failed after %d attempts: %w", redisPingAttempts, lastErr)
}

// NewCacheServiceWithClient wraps an already connected client.
func NewCacheServiceWithClient(client *redis.Client, ttl time.Duration) *CacheService {
	return &CacheService{client: client, ttl: ttl}
}

func (s *CacheService) Available() bool {
	return s.client != nil
}

// Get decodes the cached value for key into dest and reports whether
// there was one.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if s.client == nil {
		return false, nil
	}
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	responseCacheHits.Inc()
	return true, nil
}

func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	if s.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, s.ttl).Err()
}

func (s *CacheService) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
