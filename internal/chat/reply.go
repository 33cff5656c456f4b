package chat

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// ReplyGenerator produces the assistant's answer to a user message.
type ReplyGenerator interface {
	Generate(ctx context.Context, userText string) (string, error)
}

// ReplyGeneratorFunc adapts a function to ReplyGenerator.
type ReplyGeneratorFunc func(ctx context.Context, userText string) (string, error)

func (f ReplyGeneratorFunc) Generate(ctx context.Context, userText string) (string, error) {
	return f(ctx, userText)
}

// Source is the subset of *rand.Rand used for reply and delay selection.
type Source interface {
	Intn(n int) int
	Int63n(n int64) int64
}

// NewSource returns a time-seeded source.
func NewSource() Source {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// lockedSource serializes access to a Source.
type lockedSource struct {
	mu  sync.Mutex
	src Source
}

func (l *lockedSource) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Intn(n)
}

func (l *lockedSource) Int63n(n int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Int63n(n)
}

func locked(src Source) Source {
	if src == nil {
		src = NewSource()
	}
	if l, ok := src.(*lockedSource); ok {
		return l
	}
	return &lockedSource{src: src}
}

var supportReplies = []string{
	"I understand that you're going through something difficult. It's completely normal to have these feelings, and I want you to know that reaching out shows great strength.",
	"Thank you for sharing that with me. Many college students experience similar challenges. Would you like to explore some coping strategies that might help?",
	"That sounds really challenging. Remember that you're not alone in this. Sometimes talking through our feelings can help us gain clarity and perspective.",
	"I hear you, and your feelings are valid. It's okay to not be okay sometimes. What kind of support do you think would be most helpful right now?",
	"It takes courage to open up about these feelings. Many students find that having someone listen without judgment can be incredibly healing. How long have you been feeling this way?",
}

// SupportReplies returns the built-in canned replies.
func SupportReplies() []string {
	return append([]string(nil), supportReplies...)
}

// CannedReplies picks uniformly from a fixed list and ignores the user text.
type CannedReplies struct {
	replies []string
	src     Source
}

// NewCannedReplies builds a generator over replies, defaulting to SupportReplies.
func NewCannedReplies(src Source, replies ...string) *CannedReplies {
	if len(replies) == 0 {
		replies = SupportReplies()
	}
	return &CannedReplies{replies: append([]string(nil), replies...), src: locked(src)}
}

// Generate returns one canned reply.
func (c *CannedReplies) Generate(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.replies[c.src.Intn(len(c.replies))], nil
}

// DelayPolicy decides how long the assistant appears to type.
type DelayPolicy interface {
	Next() time.Duration
}

// FixedDelay always waits the same duration.
type FixedDelay time.Duration

func (d FixedDelay) Next() time.Duration { return time.Duration(d) }

// UniformDelay draws uniformly from [Min, Max].
type UniformDelay struct {
	Min, Max time.Duration
	src      Source
}

// NewUniformDelay builds a delay policy. A nil src is time-seeded.
func NewUniformDelay(lo, hi time.Duration, src Source) *UniformDelay {
	if lo < 0 {
		lo = 0
	}
	if hi < lo {
		hi = lo
	}
	return &UniformDelay{Min: lo, Max: hi, src: locked(src)}
}

func (u *UniformDelay) Next() time.Duration {
	span := int64(u.Max - u.Min)
	if span <= 0 {
		return u.Min
	}
	return u.Min + time.Duration(u.src.Int63n(span+1))
}

// Clock abstracts time for the deferred reply.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// RealClock uses the time package.
type RealClock struct{}

func (RealClock) Now() time.Time                         { return time.Now() }
func (RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
