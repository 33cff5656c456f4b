package community

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func newBoard(store Store) *Board {
	b := NewBoard(store)
	b.now = func() time.Time { return now }
	return b
}

func storeCases(t *testing.T) map[string]Store {
	mr := miniredis.RunT(t)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 0),
	}
}

func TestTimeAgo(t *testing.T) {
	tests := []struct {
		age  time.Duration
		want string
	}{
		{0, "0m ago"},
		{-time.Minute, "0m ago"},
		{59 * time.Minute, "59m ago"},
		{60 * time.Minute, "1h ago"},
		{23*time.Hour + 59*time.Minute, "23h ago"},
		{24 * time.Hour, "1d ago"},
		{72 * time.Hour, "3d ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeAgo(now, now.Add(-tt.age)), tt.age.String())
	}
}

func TestPostMood(t *testing.T) {
	for name, store := range storeCases(t) {
		t.Run(name, func(t *testing.T) {
			b := newBoard(store)
			ctx := context.Background()

			post, err := b.PostMood(ctx, " Grateful ")
			require.NoError(t, err)
			assert.Equal(t, "grateful", post.Mood)
			assert.Equal(t, "🙏", post.Emoji)

			_, err = b.PostMood(ctx, "hopeful")
			require.ErrorIs(t, err, ErrUnknownMood)

			_, err = b.PostMood(ctx, "sad")
			require.NoError(t, err)

			moods, err := b.Moods(ctx, 0)
			require.NoError(t, err)
			require.Len(t, moods, 2)
			assert.Equal(t, "sad", moods[0].Mood)

			counts, err := b.MoodCounts(ctx, 10)
			require.NoError(t, err)
			assert.Equal(t, map[string]int{"grateful": 1, "sad": 1}, counts)
		})
	}
}

func TestConfessionLifecycle(t *testing.T) {
	for name, store := range storeCases(t) {
		t.Run(name, func(t *testing.T) {
			b := newBoard(store)
			ctx := context.Background()

			_, err := b.PostConfession(ctx, "  \n ")
			require.ErrorIs(t, err, ErrEmptyConfession)
			_, err = b.PostConfession(ctx, strings.Repeat("a", MaxConfessionLength+1))
			require.ErrorIs(t, err, ErrTooLong)

			c, err := b.PostConfession(ctx, "  exams are scary  ")
			require.NoError(t, err)
			assert.Equal(t, "exams are scary", c.Content)

			supported, err := b.Support(ctx, c.ID)
			require.NoError(t, err)
			assert.Equal(t, 1, supported.SupportCount)
			supported, err = b.Support(ctx, c.ID)
			require.NoError(t, err)
			assert.Equal(t, 2, supported.SupportCount)

			replied, err := b.Reply(ctx, c.ID, "You are not alone.")
			require.NoError(t, err)
			assert.Equal(t, "You are not alone.", replied.MentorReply)
			assert.Equal(t, 2, replied.SupportCount)

			_, err = b.Reply(ctx, c.ID, " ")
			require.ErrorIs(t, err, ErrEmptyReply)
			_, err = b.Support(ctx, "missing")
			require.ErrorIs(t, err, ErrNotFound)
			_, err = b.Reply(ctx, "missing", "hi")
			require.ErrorIs(t, err, ErrNotFound)

			list, err := b.Confessions(ctx, 10)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, 2, list[0].SupportCount)
			assert.Equal(t, "You are not alone.", list[0].MentorReply)
		})
	}
}

func TestSeedOrdersNewestFirst(t *testing.T) {
	for name, store := range storeCases(t) {
		t.Run(name, func(t *testing.T) {
			b := newBoard(store)
			ctx := context.Background()
			require.NoError(t, b.Seed(ctx))

			moods, err := b.Moods(ctx, 0)
			require.NoError(t, err)
			require.Len(t, moods, 6)
			assert.Equal(t, "hopeful", moods[0].Mood)
			assert.Equal(t, "30m ago", TimeAgo(now, moods[0].CreatedAt))

			confessions, err := b.Confessions(ctx, 2)
			require.NoError(t, err)
			require.Len(t, confessions, 2)
			assert.Equal(t, "seed-confession-1", confessions[0].ID)
			assert.Equal(t, 8, confessions[0].SupportCount)
			assert.Equal(t, "5h ago", TimeAgo(now, confessions[1].CreatedAt))
		})
	}
}
