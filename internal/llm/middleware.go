// Package llm layers cross-cutting concerns over an llmclient.Client:
// request logging, rate limiting, and the backoff policy the extraction
// client retries with.
package llm

import llmclient "fleetscan/internal/llmclient"

// Middleware wraps a Client with an additional concern.
type Middleware func(llmclient.Client) llmclient.Client

// Chain applies middlewares so the first listed is the outermost.
func Chain(c llmclient.Client, mws ...Middleware) llmclient.Client {
	for i := len(mws) - 1; i >= 0; i-- {
		c = mws[i](c)
	}
	return c
}
