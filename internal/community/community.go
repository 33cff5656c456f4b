// Package community runs the anonymous mood board and confession wall.
package community

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrUnknownMood     = errors.New("community: unknown mood")
	ErrEmptyConfession = errors.New("community: confession is empty")
	ErrTooLong         = errors.New("community: text too long")
	ErrEmptyReply      = errors.New("community: reply is empty")
	ErrNotFound        = errors.New("community: post not found")
)

// MaxConfessionLength bounds confession and mentor reply text, in runes.
const MaxConfessionLength = 1000

// MoodOption is one selectable mood.
type MoodOption struct {
	Mood  string `json:"mood"`
	Emoji string `json:"emoji"`
	Color string `json:"color"`
}

var moodOptions = []MoodOption{
	{Mood: "happy", Emoji: "😊", Color: "yellow"},
	{Mood: "sad", Emoji: "😢", Color: "blue"},
	{Mood: "anxious", Emoji: "😰", Color: "orange"},
	{Mood: "grateful", Emoji: "🙏", Color: "pink"},
	{Mood: "overwhelmed", Emoji: "😵", Color: "red"},
	{Mood: "peaceful", Emoji: "😌", Color: "green"},
	{Mood: "excited", Emoji: "✨", Color: "purple"},
	{Mood: "frustrated", Emoji: "😤", Color: "gray"},
}

// MoodOptions returns the moods a student can post.
func MoodOptions() []MoodOption {
	return append([]MoodOption(nil), moodOptions...)
}

func lookupMood(mood string) (MoodOption, bool) {
	mood = strings.ToLower(strings.TrimSpace(mood))
	for _, o := range moodOptions {
		if o.Mood == mood {
			return o, true
		}
	}
	return MoodOption{}, false
}

// MoodPost is an anonymous mood check-in.
type MoodPost struct {
	ID        string    `json:"id"`
	Mood      string    `json:"mood"`
	Emoji     string    `json:"emoji"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// Confession is an anonymous post, optionally answered by a mentor.
type Confession struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	MentorReply  string    `json:"mentor_reply,omitempty"`
	Likes        int       `json:"likes"`
	SupportCount int       `json:"support_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store persists board posts. List methods return newest first.
type Store interface {
	AddMood(ctx context.Context, post MoodPost) error
	ListMoods(ctx context.Context, limit int) ([]MoodPost, error)
	AddConfession(ctx context.Context, c Confession) error
	ListConfessions(ctx context.Context, limit int) ([]Confession, error)
	IncrementSupport(ctx context.Context, id string) (Confession, error)
	SetMentorReply(ctx context.Context, id, reply string) (Confession, error)
}

// Board validates posts before they reach the store.
type Board struct {
	store Store
	now   func() time.Time
}

// NewBoard wraps store.
func NewBoard(store Store) *Board {
	if store == nil {
		panic("community: store required")
	}
	return &Board{store: store, now: time.Now}
}

// PostMood records a mood check-in. Only MoodOptions are accepted.
func (b *Board) PostMood(ctx context.Context, mood string) (MoodPost, error) {
	opt, ok := lookupMood(mood)
	if !ok {
		return MoodPost{}, fmt.Errorf("%w: %q", ErrUnknownMood, mood)
	}
	post := MoodPost{
		ID:        uuid.NewString(),
		Mood:      opt.Mood,
		Emoji:     opt.Emoji,
		Color:     opt.Color,
		CreatedAt: b.now().UTC(),
	}
	if err := b.store.AddMood(ctx, post); err != nil {
		return MoodPost{}, err
	}
	return post, nil
}

// PostConfession shares anonymous text. Surrounding whitespace is dropped.
func (b *Board) PostConfession(ctx context.Context, text string) (Confession, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Confession{}, ErrEmptyConfession
	}
	if utf8.RuneCountInString(text) > MaxConfessionLength {
		return Confession{}, ErrTooLong
	}
	c := Confession{ID: uuid.NewString(), Content: text, CreatedAt: b.now().UTC()}
	if err := b.store.AddConfession(ctx, c); err != nil {
		return Confession{}, err
	}
	return c, nil
}

// Support adds one to a confession's support count.
func (b *Board) Support(ctx context.Context, id string) (Confession, error) {
	return b.store.IncrementSupport(ctx, id)
}

// Reply attaches or replaces the mentor reply on a confession.
func (b *Board) Reply(ctx context.Context, id, text string) (Confession, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Confession{}, ErrEmptyReply
	}
	if utf8.RuneCountInString(text) > MaxConfessionLength {
		return Confession{}, ErrTooLong
	}
	return b.store.SetMentorReply(ctx, id, text)
}

// Moods lists recent mood posts.
func (b *Board) Moods(ctx context.Context, limit int) ([]MoodPost, error) {
	return b.store.ListMoods(ctx, limit)
}

// Confessions lists recent confessions.
func (b *Board) Confessions(ctx context.Context, limit int) ([]Confession, error) {
	return b.store.ListConfessions(ctx, limit)
}

// MoodCounts tallies the most recent limit mood posts by mood.
func (b *Board) MoodCounts(ctx context.Context, limit int) (map[string]int, error) {
	posts, err := b.store.ListMoods(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int)
	for _, p := range posts {
		out[p.Mood]++
	}
	return out, nil
}

// Seed loads the starter posts shown on a fresh board, timed relative to now.
func (b *Board) Seed(ctx context.Context) error {
	moods, confessions := seedPosts(b.now().UTC())
	// Oldest first so list order ends up newest first.
	for i := len(moods) - 1; i >= 0; i-- {
		if err := b.store.AddMood(ctx, moods[i]); err != nil {
			return err
		}
	}
	for i := len(confessions) - 1; i >= 0; i-- {
		if err := b.store.AddConfession(ctx, confessions[i]); err != nil {
			return err
		}
	}
	return nil
}

func seedPosts(now time.Time) ([]MoodPost, []Confession) {
	ago := func(d time.Duration) time.Time { return now.Add(-d) }
	moods := []MoodPost{
		{ID: "seed-mood-1", Mood: "hopeful", Emoji: "🌱", Color: "green", CreatedAt: ago(30 * time.Minute)},
		{ID: "seed-mood-2", Mood: "anxious", Emoji: "😰", Color: "orange", CreatedAt: ago(2 * time.Hour)},
		{ID: "seed-mood-3", Mood: "grateful", Emoji: "🙏", Color: "pink", CreatedAt: ago(4 * time.Hour)},
		{ID: "seed-mood-4", Mood: "overwhelmed", Emoji: "😵", Color: "red", CreatedAt: ago(6 * time.Hour)},
		{ID: "seed-mood-5", Mood: "peaceful", Emoji: "😌", Color: "blue", CreatedAt: ago(8 * time.Hour)},
		{ID: "seed-mood-6", Mood: "excited", Emoji: "✨", Color: "yellow", CreatedAt: ago(12 * time.Hour)},
	}
	confessions := []Confession{
		{
			ID:           "seed-confession-1",
			Content:      "I've been struggling with imposter syndrome lately. Sometimes I feel like I don't belong here and everyone else is smarter than me.",
			MentorReply:  "Imposter syndrome affects 70% of college students. You earned your place here through your hard work and abilities. These feelings are temporary, but your achievements are real.",
			Likes:        12,
			SupportCount: 8,
			CreatedAt:    ago(2 * time.Hour),
		},
		{
			ID:           "seed-confession-2",
			Content:      "I feel so lonely even though I'm surrounded by people all the time. It's like I'm invisible and no one really sees me.",
			MentorReply:  "Loneliness in crowded spaces is more common than you think. Quality connections matter more than quantity. Consider joining clubs aligned with your interests to find your people.",
			Likes:        18,
			SupportCount: 15,
			CreatedAt:    ago(5 * time.Hour),
		},
		{
			ID:           "seed-confession-3",
			Content:      "The pressure to choose a major and plan my whole future is keeping me up at night. What if I make the wrong choice?",
			Likes:        9,
			SupportCount: 6,
			CreatedAt:    ago(12 * time.Hour),
		},
	}
	return moods, confessions
}

// TimeAgo renders the age of t as "Nm ago", "Nh ago" or "Nd ago".
func TimeAgo(now, t time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		diff = 0
	}
	minutes := int(diff / time.Minute)
	hours := int(diff / time.Hour)
	switch {
	case minutes < 60:
		return fmt.Sprintf("%dm ago", minutes)
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	default:
		return fmt.Sprintf("%dd ago", hours/24)
	}
}
