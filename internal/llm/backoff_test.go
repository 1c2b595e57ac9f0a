package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"fleetscan/internal/llmclient"
)

func TestBackoff_Attempts(t *testing.T) {
	if got := (Backoff{Retries: 2}).Attempts(); got != 3 {
		t.Fatalf("Attempts = %d, want 3", got)
	}
	if got := (Backoff{Retries: 0}).Attempts(); got != 1 {
		t.Fatalf("Attempts = %d, want 1", got)
	}
	if got := (Backoff{Retries: -5}).Attempts(); got != 1 {
		t.Fatalf("negative retries: Attempts = %d, want 1", got)
	}
}

func TestBackoff_WaitSchedule(t *testing.T) {
	var slept []time.Duration
	b := Backoff{Retries: 3, BaseDelay: time.Second, Sleep: func(d time.Duration) { slept = append(slept, d) }}

	for attempt := 0; attempt < b.Attempts(); attempt++ {
		b.Wait(attempt)
	}
	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}
	if len(slept) != len(want) {
		t.Fatalf("slept %v, want %v", slept, want)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Fatalf("wait %d = %v, want %v", i, slept[i], want[i])
		}
	}
}

func TestChain_OrderAndPassthrough(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next llmclient.Client) llmclient.Client {
			return clientFunc{name: name, fn: func(ctx context.Context, prompt string) (string, error) {
				order = append(order, name)
				return next.GenerateText(ctx, prompt)
			}}
		}
	}

	fake := llmclient.NewFakeClient(llmclient.FakeStep{Text: "ok"})
	wrapped := Chain(fake, tag("outer"), tag("inner"))

	out, err := wrapped.GenerateText(context.Background(), "p")
	if err != nil || out != "ok" {
		t.Fatalf("GenerateText = %q, %v", out, err)
	}
	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Fatalf("middleware order = %v", order)
	}
}

type clientFunc struct {
	name string
	fn   func(context.Context, string) (string, error)
}

func (c clientFunc) Name() string { return c.name }
func (c clientFunc) Close() error { return nil }
func (c clientFunc) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.fn(ctx, prompt)
}

func TestWithLogging_PreservesErrors(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	transient := errors.New("boom")
	fake := llmclient.NewFakeClient(llmclient.FakeStep{Err: transient})
	wrapped := WithLogging(log)(fake)

	if _, err := wrapped.GenerateText(context.Background(), "p"); !errors.Is(err, transient) {
		t.Fatalf("transient error not passed through: %v", err)
	}

	perm := llmclient.NewPermanentError(llmclient.ErrBlocked)
	fake2 := llmclient.NewFakeClient(llmclient.FakeStep{Err: perm})
	wrapped2 := WithLogging(log)(fake2)
	_, err := wrapped2.GenerateText(context.Background(), "p")
	if !llmclient.IsPermanent(err) {
		t.Fatalf("permanence lost through logging middleware: %v", err)
	}
}

func TestWithRateLimit_ZeroRPSIsIdentity(t *testing.T) {
	fake := llmclient.NewFakeClient(llmclient.FakeStep{Text: "ok"})
	wrapped := WithRateLimit(0, 0)(fake)
	if wrapped != llmclient.Client(fake) {
		t.Fatal("rps<=0 should return the client unchanged")
	}
}
