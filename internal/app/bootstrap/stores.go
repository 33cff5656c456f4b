package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/mindfulu-platform/internal/bookings"
	"github.com/wolfman30/mindfulu-platform/internal/chat"
	"github.com/wolfman30/mindfulu-platform/internal/community"
	appconfig "github.com/wolfman30/mindfulu-platform/internal/config"
	"github.com/wolfman30/mindfulu-platform/internal/dashboard"
	"github.com/wolfman30/mindfulu-platform/pkg/logging"
)

const communityMoodLimit = 500

// BuildBookingStore prefers Postgres and falls back to memory.
func BuildBookingStore(pool *pgxpool.Pool, logger *logging.Logger) bookings.Store {
	if pool == nil {
		if logger != nil {
			logger.Warn("DATABASE_URL not set; confirmed bookings are kept in memory")
		}
		return bookings.NewMemoryRepository()
	}
	return bookings.NewRepository(pool)
}

// BuildStatsRepository returns nil when Postgres is unavailable.
func BuildStatsRepository(pool *pgxpool.Pool) *dashboard.StatsRepository {
	if pool == nil {
		return nil
	}
	return dashboard.NewStatsRepository(pool)
}

// BuildCommunityStore prefers Redis so posts survive restarts.
func BuildCommunityStore(redisClient *redis.Client) community.Store {
	if redisClient == nil {
		return community.NewMemoryStore()
	}
	return community.NewRedisStore(redisClient, communityMoodLimit)
}

// BuildChatArchive returns nil when Redis is unavailable; sessions then keep
// their transcript only in memory.
func BuildChatArchive(redisClient *redis.Client, cfg *appconfig.Config) chat.Archive {
	if redisClient == nil {
		return nil
	}
	var limit int64
	if cfg != nil {
		limit = cfg.ChatTranscriptLimit
	}
	return chat.NewRedisArchive(redisClient, 0, limit)
}
