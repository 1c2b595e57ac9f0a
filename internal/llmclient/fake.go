package llmclient

import (
	"context"
	"sync"
)

// FakeClient replays a scripted sequence of responses for offline runs and
// tests. Each GenerateText call consumes the next step; when the script runs
// out the last step repeats.
type FakeClient struct {
	mu      sync.Mutex
	steps   []FakeStep
	calls   int
	Prompts []string
}

// FakeStep is one scripted response: either Text or Err is returned.
type FakeStep struct {
	Text string
	Err  error
}

func NewFakeClient(steps ...FakeStep) *FakeClient {
	if len(steps) == 0 {
		steps = []FakeStep{{Text: "[]"}}
	}
	return &FakeClient{steps: steps}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

// Calls returns how many times GenerateText was invoked.
func (f *FakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *FakeClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	if i >= len(f.steps) {
		i = len(f.steps) - 1
	}
	f.calls++
	f.Prompts = append(f.Prompts, prompt)
	step := f.steps[i]
	return step.Text, step.Err
}
