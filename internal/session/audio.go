package session

import (
	"context"
	"fmt"
	"time"

	"github.com/misty-step/bibliomnomnom-sub004/internal/shared"
	"github.com/redis/go-redis/v9"
)

// AudioStore stages uploaded clips in redis between the uploading and
// transcribing stages. Clips expire on their own if processing never
// happens.
type AudioStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewAudioStore(redisClient *redis.Client, ttl time.Duration) *AudioStore {
	if ttl == 0 {
		ttl = 30 * time.Minute
	}
	return &AudioStore{
		redis: redisClient,
		ttl:   ttl,
	}
}

func audioKey(sessionID string) string {
	return fmt.Sprintf("session:%s:audio", sessionID)
}

func mimeKey(sessionID string) string {
	return fmt.Sprintf("session:%s:audio:mime", sessionID)
}

func (s *AudioStore) Put(ctx context.Context, sessionID string, data []byte, mimeType string) error {
	pipe := s.redis.Pipeline()
	pipe.Set(ctx, audioKey(sessionID), data, s.ttl)
	pipe.Set(ctx, mimeKey(sessionID), mimeType, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *AudioStore) Get(ctx context.Context, sessionID string) ([]byte, string, error) {
	data, err := s.redis.Get(ctx, audioKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, "", shared.ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}

	mimeType, err := s.redis.Get(ctx, mimeKey(sessionID)).Result()
	if err != nil && err != redis.Nil {
		return nil, "", err
	}

	return data, mimeType, nil
}

func (s *AudioStore) Delete(ctx context.Context, sessionID string) error {
	return s.redis.Del(ctx, audioKey(sessionID), mimeKey(sessionID)).Err()
}
