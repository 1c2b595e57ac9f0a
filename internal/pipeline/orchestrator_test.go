package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"fleetscan/internal/extract"
	"fleetscan/internal/llm"
	"fleetscan/internal/llmclient"
	"fleetscan/internal/model"
	"fleetscan/internal/vocab"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testRows() []model.ServiceRow {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return []model.ServiceRow{
		{DeviceID: "D1", Client: "C1", Timestamp: base, Description: "se instalo gps 111"},
		{DeviceID: "D2", Client: "C1", Timestamp: base.Add(time.Hour), Description: "retiro de paro"},
		{DeviceID: "D3", Client: "C2", Timestamp: base.Add(2 * time.Hour), Description: "nada relevante"},
	}
}

func newOrchestrator(fake *llmclient.FakeClient, batchSize int, opts ...Option) *Orchestrator {
	backoff := llm.Backoff{Retries: 0, Sleep: func(time.Duration) {}}
	extractor := extract.New(fake, vocab.Default(), backoff, quietLogger(), 0)
	return New(extractor, batchSize, quietLogger(), opts...)
}

func TestRun_BatchesAndZipsPositionally(t *testing.T) {
	// Three rows with batch size 2: first batch has two results, second one.
	fake := llmclient.NewFakeClient(
		llmclient.FakeStep{Text: `[
			{"events": [{"component": "gps", "action": "instalacion", "accessory_id": "111"}]},
			{"events": [{"component": "paro motor", "action": "retiro"}]}
		]`},
		llmclient.FakeStep{Text: `[{"events": []}]`},
	)
	o := newOrchestrator(fake, 2)

	records, report := o.Run(context.Background(), "run-1", testRows())
	if fake.Calls() != 2 {
		t.Fatalf("calls = %d, want 2 batches", fake.Calls())
	}
	if report.TotalBatches != 2 || report.ProcessedRows != 3 || report.TotalRows != 3 {
		t.Fatalf("report = %+v", report)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}

	first := records[0]
	if first.RunID != "run-1" || first.DeviceID != "D1" || first.Client != "C1" {
		t.Fatalf("row metadata not carried onto event: %+v", first)
	}
	if first.Component != "GPS" || first.Action != string(vocab.Installation) || first.AccessoryID != "111" {
		t.Fatalf("event payload wrong: %+v", first)
	}
	if first.OriginalDescription != "se instalo gps 111" {
		t.Fatalf("original description lost: %+v", first)
	}
	second := records[1]
	if second.DeviceID != "D2" || second.Component != "Paro de Motor" || second.Action != string(vocab.Uninstallation) {
		t.Fatalf("second event wrong: %+v", second)
	}
	if report.EventsExtracted != 2 {
		t.Fatalf("EventsExtracted = %d, want 2", report.EventsExtracted)
	}
}

func TestRun_AllEmptyBatchCountsDegraded(t *testing.T) {
	fake := llmclient.NewFakeClient(llmclient.FakeStep{Text: `[{"events": []},{"events": []}]`})
	o := newOrchestrator(fake, 2)

	records, report := o.Run(context.Background(), "run-2", testRows()[:2])
	if len(records) != 0 {
		t.Fatalf("records = %d, want 0", len(records))
	}
	if report.DegradedBatches != 1 {
		t.Fatalf("DegradedBatches = %d, want 1", report.DegradedBatches)
	}
}

// cancelAfterFirst cancels the run's context once the first generation call
// has gone through, so batch two finds the context dead.
type cancelAfterFirst struct {
	llmclient.Client
	cancel context.CancelFunc
}

func (c *cancelAfterFirst) GenerateText(ctx context.Context, prompt string) (string, error) {
	txt, err := c.Client.GenerateText(ctx, prompt)
	c.cancel()
	return txt, err
}

func TestRun_CancelKeepsCompletedBatches(t *testing.T) {
	fake := llmclient.NewFakeClient(llmclient.FakeStep{Text: `[
		{"events": [{"component": "gps", "action": "instalacion"}]}
	]`})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backoff := llm.Backoff{Retries: 0, Sleep: func(time.Duration) {}}
	extractor := extract.New(&cancelAfterFirst{Client: fake, cancel: cancel}, vocab.Default(), backoff, quietLogger(), 0)
	o := New(extractor, 1, quietLogger())

	records, report := o.Run(ctx, "run-3", testRows())
	if len(records) != 1 {
		t.Fatalf("records = %d, want the one completed batch", len(records))
	}
	if report.LastError == "" {
		t.Fatal("cancellation not recorded in report")
	}
	if report.ProcessedRows >= report.TotalRows {
		t.Fatalf("run should have stopped early: %+v", report)
	}
}

func TestRun_EmptyInput(t *testing.T) {
	fake := llmclient.NewFakeClient()
	o := newOrchestrator(fake, 10)
	records, report := o.Run(context.Background(), "run-4", nil)
	if len(records) != 0 || report.TotalBatches != 0 || fake.Calls() != 0 {
		t.Fatalf("empty input should be a no-op run: %+v", report)
	}
}

func TestRun_InterBatchPauseOnlyForLargeBatches(t *testing.T) {
	var slept []time.Duration
	rows := make([]model.ServiceRow, 22)
	for i := range rows {
		rows[i] = model.ServiceRow{DeviceID: "D", Client: "C", Timestamp: time.Now(), Description: "nada"}
	}
	response := func(n int) string {
		s := "["
		for i := 0; i < n; i++ {
			if i > 0 {
				s += ","
			}
			s += `{"events": []}`
		}
		return s + "]"
	}

	fake := llmclient.NewFakeClient(
		llmclient.FakeStep{Text: response(11)},
		llmclient.FakeStep{Text: response(11)},
	)
	o := newOrchestrator(fake, 11, WithClock(time.Now, func(d time.Duration) { slept = append(slept, d) }))
	o.Run(context.Background(), "run-5", rows)
	if len(slept) != 1 || slept[0] != interBatchWait {
		t.Fatalf("large batches: slept %v, want one %v pause", slept, interBatchWait)
	}

	slept = nil
	fake2 := llmclient.NewFakeClient(llmclient.FakeStep{Text: response(5)})
	o2 := newOrchestrator(fake2, 5, WithClock(time.Now, func(d time.Duration) { slept = append(slept, d) }))
	o2.Run(context.Background(), "run-6", rows[:10])
	if len(slept) != 0 {
		t.Fatalf("small batches must not pause, slept %v", slept)
	}
}
