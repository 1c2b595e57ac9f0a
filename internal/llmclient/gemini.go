package llmclient

import (
	"context"
	"strings"
	"time"

	genai "google.golang.org/genai"
)

// GeminiClient is a thin wrapper around the official genai client.
type GeminiClient struct {
	cli         *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
}

// NewGeminiClient builds a Gemini-backed Client. Temperature is pinned low so
// the model favors structural compliance over creativity; timeout bounds each
// GenerateText call.
func NewGeminiClient(ctx context.Context, apiKey, model string, temperature float32, timeout time.Duration) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &GeminiClient{cli: cli, model: model, temperature: temperature, timeout: timeout}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }
func (g *GeminiClient) Close() error { return nil }

// GenerateText sends the prompt requesting application/json output and
// returns the raw response text. A policy/safety withhold comes back as a
// PermanentError wrapping ErrBlocked; a response that is merely empty comes
// back as ErrEmptyResponse so callers can retry it.
func (g *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](g.temperature),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return "", err
	}

	if resp.PromptFeedback != nil && blockedByPolicy(resp.PromptFeedback.BlockReason) {
		return "", NewPermanentError(ErrBlocked)
	}

	txt := responseText(resp)
	if txt != "" {
		return txt, nil
	}
	if len(resp.Candidates) > 0 && problematicFinish(resp.Candidates[0].FinishReason) {
		return "", NewPermanentError(ErrBlocked)
	}
	return "", ErrEmptyResponse
}

func responseText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

func blockedByPolicy(r genai.BlockedReason) bool {
	return r != "" && r != genai.BlockedReasonUnspecified
}

// problematicFinish mirrors the finish reasons the service uses for withheld
// or refused candidates; STOP and MAX_TOKENS are normal completions.
func problematicFinish(r genai.FinishReason) bool {
	switch r {
	case genai.FinishReasonSafety, genai.FinishReasonRecitation, genai.FinishReasonOther:
		return true
	default:
		return false
	}
}
