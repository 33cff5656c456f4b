package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const transcriptKeyPrefix = "chat_transcript:"

// RedisArchive keeps a bounded, expiring copy of each transcript in a Redis list.
type RedisArchive struct {
	redis       *redis.Client
	tracer      trace.Tracer
	ttl         time.Duration
	maxMessages int64
}

// NewRedisArchive returns nil when redisClient is nil so callers can pass the
// result straight into Options.
func NewRedisArchive(redisClient *redis.Client, ttl time.Duration, maxMessages int64) *RedisArchive {
	if redisClient == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisArchive{
		redis:       redisClient,
		tracer:      otel.Tracer("mindfulu.internal.chat.archive"),
		ttl:         ttl,
		maxMessages: maxMessages,
	}
}

// Append pushes msg onto the session's list, refreshing its expiry.
func (a *RedisArchive) Append(ctx context.Context, sessionID string, msg Message) error {
	if a == nil || a.redis == nil {
		return nil
	}
	if sessionID == "" {
		return errors.New("chat: archive session id required")
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("chat: marshal archived message: %w", err)
	}

	ctx, span := a.tracer.Start(ctx, "chat.archive.append")
	defer span.End()

	key := transcriptKey(sessionID)
	pipe := a.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, a.ttl)
	if a.maxMessages > 0 {
		pipe.LTrim(ctx, key, -a.maxMessages, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: append archived message: %w", err)
	}
	return nil
}

// List returns up to limit of the most recent archived messages, oldest first.
// A limit of zero returns everything retained.
func (a *RedisArchive) List(ctx context.Context, sessionID string, limit int64) ([]Message, error) {
	if a == nil || a.redis == nil {
		return nil, nil
	}
	if sessionID == "" {
		return nil, errors.New("chat: archive session id required")
	}

	ctx, span := a.tracer.Start(ctx, "chat.archive.list")
	defer span.End()

	start := int64(0)
	if limit > 0 {
		start = -limit
	}
	raw, err := a.redis.LRange(ctx, transcriptKey(sessionID), start, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []Message{}, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("chat: list archived messages: %w", err)
	}

	out := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			span.RecordError(err)
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

// Delete drops a session's archived transcript.
func (a *RedisArchive) Delete(ctx context.Context, sessionID string) error {
	if a == nil || a.redis == nil {
		return nil
	}
	if err := a.redis.Del(ctx, transcriptKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("chat: delete archived transcript: %w", err)
	}
	return nil
}

func transcriptKey(sessionID string) string {
	return transcriptKeyPrefix + sessionID
}
