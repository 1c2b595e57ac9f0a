package llm

import (
	"context"

	"golang.org/x/time/rate"

	llmclient "fleetscan/internal/llmclient"
)

// WithRateLimit throttles generation calls to rps requests per second with
// the given burst. rps <= 0 disables the limiter. The generation service is
// rate-limited per caller, so every attempt consumes a token.
func WithRateLimit(rps float64, burst int) Middleware {
	if rps <= 0 {
		return func(next llmclient.Client) llmclient.Client { return next }
	}
	if burst <= 0 {
		burst = 1
	}
	lim := rate.NewLimiter(rate.Limit(rps), burst)
	return func(next llmclient.Client) llmclient.Client {
		return &limited{next: next, lim: lim}
	}
}

type limited struct {
	next llmclient.Client
	lim  *rate.Limiter
}

func (l *limited) Name() string { return l.next.Name() }
func (l *limited) Close() error { return l.next.Close() }

func (l *limited) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := l.lim.Wait(ctx); err != nil {
		return "", err
	}
	return l.next.GenerateText(ctx, prompt)
}
