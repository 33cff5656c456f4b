package community

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	moodsKey            = "community:moods"
	confessionIndexKey  = "community:confessions"
	confessionSupport   = "community:confession_support"
	confessionKeyPrefix = "community:confession:"
)

// RedisStore shares the board across API instances. Support counts live in a
// hash so increments stay atomic.
type RedisStore struct {
	redis    *redis.Client
	tracer   trace.Tracer
	maxMoods int64
}

// NewRedisStore keeps at most maxMoods mood posts (500 when zero).
func NewRedisStore(client *redis.Client, maxMoods int64) *RedisStore {
	if client == nil {
		panic("community: redis client required")
	}
	if maxMoods <= 0 {
		maxMoods = 500
	}
	return &RedisStore{redis: client, tracer: otel.Tracer("mindfulu.internal.community"), maxMoods: maxMoods}
}

func (s *RedisStore) AddMood(ctx context.Context, post MoodPost) error {
	data, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("community: marshal mood: %w", err)
	}
	ctx, span := s.tracer.Start(ctx, "community.redis.add_mood")
	defer span.End()

	pipe := s.redis.TxPipeline()
	pipe.LPush(ctx, moodsKey, data)
	pipe.LTrim(ctx, moodsKey, 0, s.maxMoods-1)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("community: add mood: %w", err)
	}
	return nil
}

func (s *RedisStore) ListMoods(ctx context.Context, limit int) ([]MoodPost, error) {
	ctx, span := s.tracer.Start(ctx, "community.redis.list_moods")
	defer span.End()

	raw, err := s.redis.LRange(ctx, moodsKey, 0, stop(limit)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		span.RecordError(err)
		return nil, fmt.Errorf("community: list moods: %w", err)
	}
	out := make([]MoodPost, 0, len(raw))
	for _, item := range raw {
		var post MoodPost
		if err := json.Unmarshal([]byte(item), &post); err != nil {
			span.RecordError(err)
			continue
		}
		out = append(out, post)
	}
	return out, nil
}

func (s *RedisStore) AddConfession(ctx context.Context, c Confession) error {
	support := c.SupportCount
	c.SupportCount = 0
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("community: marshal confession: %w", err)
	}
	ctx, span := s.tracer.Start(ctx, "community.redis.add_confession")
	defer span.End()

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, confessionKey(c.ID), data, 0)
	pipe.ZAdd(ctx, confessionIndexKey, redis.Z{Score: float64(c.CreatedAt.UnixNano()), Member: c.ID})
	pipe.HSet(ctx, confessionSupport, c.ID, support)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("community: add confession: %w", err)
	}
	return nil
}

func (s *RedisStore) ListConfessions(ctx context.Context, limit int) ([]Confession, error) {
	ctx, span := s.tracer.Start(ctx, "community.redis.list_confessions")
	defer span.End()

	ids, err := s.redis.ZRevRange(ctx, confessionIndexKey, 0, stop(limit)).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("community: list confessions: %w", err)
	}
	if len(ids) == 0 {
		return []Confession{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = confessionKey(id)
	}
	docs, err := s.redis.MGet(ctx, keys...).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("community: load confessions: %w", err)
	}
	counts, err := s.redis.HMGet(ctx, confessionSupport, ids...).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("community: load support counts: %w", err)
	}

	out := make([]Confession, 0, len(ids))
	for i, doc := range docs {
		str, ok := doc.(string)
		if !ok {
			continue
		}
		var c Confession
		if err := json.Unmarshal([]byte(str), &c); err != nil {
			span.RecordError(err)
			continue
		}
		c.SupportCount = parseCount(counts[i])
		out = append(out, c)
	}
	return out, nil
}

func (s *RedisStore) IncrementSupport(ctx context.Context, id string) (Confession, error) {
	c, err := s.get(ctx, id)
	if err != nil {
		return Confession{}, err
	}
	n, err := s.redis.HIncrBy(ctx, confessionSupport, id, 1).Result()
	if err != nil {
		return Confession{}, fmt.Errorf("community: increment support: %w", err)
	}
	c.SupportCount = int(n)
	return c, nil
}

func (s *RedisStore) SetMentorReply(ctx context.Context, id, reply string) (Confession, error) {
	key := confessionKey(id)
	var updated Confession
	err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(raw), &updated); err != nil {
			return err
		}
		updated.MentorReply = reply
		data, err := json.Marshal(updated)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, ErrNotFound) {
		return Confession{}, ErrNotFound
	}
	if err != nil {
		return Confession{}, fmt.Errorf("community: set mentor reply: %w", err)
	}
	count, err := s.redis.HGet(ctx, confessionSupport, id).Result()
	if err == nil {
		updated.SupportCount = parseCount(count)
	}
	return updated, nil
}

func (s *RedisStore) get(ctx context.Context, id string) (Confession, error) {
	raw, err := s.redis.Get(ctx, confessionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return Confession{}, ErrNotFound
	}
	if err != nil {
		return Confession{}, fmt.Errorf("community: load confession: %w", err)
	}
	var c Confession
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Confession{}, fmt.Errorf("community: decode confession: %w", err)
	}
	return c, nil
}

func confessionKey(id string) string {
	return confessionKeyPrefix + id
}

func stop(limit int) int64 {
	if limit <= 0 {
		return -1
	}
	return int64(limit - 1)
}

func parseCount(v any) int {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}
