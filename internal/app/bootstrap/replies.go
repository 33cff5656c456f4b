package bootstrap

import (
	"context"
	"fmt"

	"github.com/wolfman30/mindfulu-platform/internal/chat"
	appconfig "github.com/wolfman30/mindfulu-platform/internal/config"
	"github.com/wolfman30/mindfulu-platform/pkg/logging"
)

// BuildReplyGenerator selects the chat reply source. The returned close
// function is never nil.
func BuildReplyGenerator(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (chat.ReplyGenerator, func() error, error) {
	noop := func() error { return nil }
	if cfg == nil {
		return nil, noop, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch cfg.ChatReplyProvider {
	case "", "canned":
		return chat.NewCannedReplies(nil), noop, nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			logger.Warn("gemini selected but GEMINI_API_KEY empty; using canned replies")
			return chat.NewCannedReplies(nil), noop, nil
		}
		gen, err := chat.NewGeminiReplies(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("chat replies enabled", "provider", "gemini", "model", cfg.GeminiModelID)
		return gen, gen.Close, nil
	default:
		return nil, noop, fmt.Errorf("bootstrap: unknown chat reply provider %q", cfg.ChatReplyProvider)
	}
}

// BuildReplyDelay returns the uniform delay policy, swapping inverted bounds.
func BuildReplyDelay(cfg *appconfig.Config) chat.DelayPolicy {
	lo, hi := cfg.ChatReplyMinDelay, cfg.ChatReplyMaxDelay
	if hi < lo {
		lo, hi = hi, lo
	}
	return chat.NewUniformDelay(lo, hi, nil)
}
