// Package extract turns a batch of free-text service descriptions into
// normalized per-row event lists by calling a text-generation backend under a
// strict structural contract: exactly N outputs for N inputs, in order.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"fleetscan/internal/llm"
	llmclient "fleetscan/internal/llmclient"
	"fleetscan/internal/model"
	"fleetscan/internal/vocab"
)

// Transient failure classes surfaced through Outcome.Err.
var (
	ErrInvalidJSON = errors.New("response is not a JSON array")
	ErrBadLength   = errors.New("result count does not match batch size")
)

// Extractor drives one batch-generation call per Extract: invoke, clean,
// parse, validate, normalize, and repair the result to the input length.
type Extractor struct {
	client  llmclient.Client
	table   *vocab.Table
	backoff llm.Backoff
	log     *logrus.Logger
	cache   *lru.Cache[string, model.BatchResult]
}

// Outcome reports how a batch went. It is informational: Extract always
// returns a usable BatchResult, so callers never branch on a batch failing.
type Outcome struct {
	Attempts int
	Forced   bool // wrong-length response accepted on the final attempt
	Blocked  bool // terminal content-policy withhold
	Cached   bool
	Err      error // last concrete error, for operator display
}

// New builds an Extractor. cacheSize <= 0 disables the batch-result cache.
func New(client llmclient.Client, table *vocab.Table, backoff llm.Backoff, log *logrus.Logger, cacheSize int) *Extractor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	e := &Extractor{client: client, table: table, backoff: backoff, log: log}
	if cacheSize > 0 {
		e.cache, _ = lru.New[string, model.BatchResult](cacheSize)
	}
	return e
}

// Extract processes one batch of descriptions and always returns a
// BatchResult of length exactly len(descriptions). Transient failures (empty
// response, malformed JSON, wrong-length array) are retried with exponential
// backoff; a content-policy withhold stops retrying immediately. When the
// attempt budget runs out the result degrades to whatever was recovered,
// padded with empty placeholders, rather than failing the batch.
func (e *Extractor) Extract(ctx context.Context, descriptions []string) (model.BatchResult, Outcome) {
	n := len(descriptions)
	if n == 0 {
		return model.BatchResult{}, Outcome{}
	}

	key := strings.Join(descriptions, "\x1f")
	if e.cache != nil {
		if hit, ok := e.cache.Get(key); ok {
			return append(model.BatchResult(nil), hit...), Outcome{Cached: true}
		}
	}

	prompt := BuildPrompt(e.table, descriptions)

	var (
		accepted []json.RawMessage
		out      Outcome
	)
	attempts := e.backoff.Attempts()

attemptLoop:
	for attempt := 0; attempt < attempts; attempt++ {
		e.backoff.Wait(attempt)
		out.Attempts = attempt + 1

		txt, err := e.client.GenerateText(ctx, prompt)
		if err != nil {
			out.Err = err
			if llmclient.IsPermanent(err) {
				out.Blocked = true
				e.log.WithField("batch_size", n).WithError(err).
					Error("extraction withheld by content policy, not retrying")
				break attemptLoop
			}
			e.log.WithFields(logrus.Fields{"attempt": attempt + 1, "batch_size": n}).
				WithError(err).Warn("extraction call failed")
			continue
		}

		cleaned := extractJSONArray(stripCodeFence(txt))
		e.log.WithFields(logrus.Fields{"attempt": attempt + 1, "response_bytes": len(cleaned)}).
			Debugf("extraction response preview: %.200s", cleaned)

		var items []json.RawMessage
		if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
			out.Err = fmt.Errorf("%w: %v", ErrInvalidJSON, err)
			e.log.WithField("attempt", attempt+1).WithError(err).Warn("response is not a JSON array")
			continue
		}

		if len(items) != n {
			out.Err = fmt.Errorf("%w: got %d, want %d", ErrBadLength, len(items), n)
			if attempt < attempts-1 {
				e.log.WithFields(logrus.Fields{"got": len(items), "want": n}).
					Warn("wrong-length response, retrying")
				continue
			}
			// Final attempt: partial data beats losing the batch.
			out.Forced = true
			e.log.WithFields(logrus.Fields{"got": len(items), "want": n}).
				Warn("wrong-length response on final attempt, forcing acceptance")
		} else {
			out.Err = nil
		}
		accepted = items
		break
	}

	result := e.normalize(accepted, n)
	if e.cache != nil && !out.Forced && !out.Blocked && out.Err == nil && accepted != nil {
		e.cache.Add(key, append(model.BatchResult(nil), result...))
	}
	return result, out
}

type rawRow struct {
	Events []json.RawMessage `json:"events"`
}

type rawEvent struct {
	Component   *string         `json:"component"`
	Action      *string         `json:"action"`
	AccessoryID json.RawMessage `json:"accessory_id"`
}

// normalize validates and normalizes up to n positions of the accepted items
// and unconditionally restores length n: extra positions are truncated, the
// missing tail is padded with empty placeholders. Downstream row-to-event
// mapping is positional, so this invariant is non-negotiable.
func (e *Extractor) normalize(items []json.RawMessage, n int) model.BatchResult {
	result := make(model.BatchResult, 0, n)
	for i := 0; i < len(items) && i < n; i++ {
		var row rawRow
		if err := json.Unmarshal(items[i], &row); err != nil {
			e.log.WithField("position", i).Warn("malformed result object, using empty events")
			result = append(result, model.RowResult{Events: []model.ExtractedEvent{}})
			continue
		}
		result = append(result, model.RowResult{Events: e.normalizeEvents(row.Events)})
	}
	for len(result) < n {
		result = append(result, model.RowResult{Events: []model.ExtractedEvent{}})
	}
	return result
}

func (e *Extractor) normalizeEvents(events []json.RawMessage) []model.ExtractedEvent {
	out := make([]model.ExtractedEvent, 0, len(events))
	for _, raw := range events {
		var ev rawEvent
		if err := json.Unmarshal(raw, &ev); err != nil || ev.Component == nil || ev.Action == nil {
			continue
		}
		comp := e.table.NormalizeComponent(*ev.Component)
		if comp == vocab.Unknown {
			e.log.WithField("component", *ev.Component).Debug("unknown component, dropping event")
			continue
		}
		out = append(out, model.ExtractedEvent{
			Component:   comp,
			Action:      e.table.NormalizeAction(*ev.Action),
			AccessoryID: accessoryString(ev.AccessoryID),
		})
	}
	return out
}

// accessoryString coerces the accessory_id field, which models return as a
// string, a number, or a list, into a single comma-joined string. Numbers go
// through json.Number so long IMEIs keep their digits.
func accessoryString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ""
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			var s string
			switch it := item.(type) {
			case string:
				s = strings.TrimSpace(it)
			case json.Number:
				s = it.String()
			default:
				continue
			}
			if s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}
