// Package ingest loads the service-history table from CSV and binds the four
// columns the pipeline needs: device identifier, free-text description, event
// timestamp, client name. The pipeline is column-name-agnostic; binding is
// explicit or auto-detected from header keywords.
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"fleetscan/internal/model"
)

// Table is a loaded CSV: header plus raw string rows.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ReadCSV loads a CSV document, decoding as UTF-8 and falling back to
// latin-1 when the bytes are not valid UTF-8. Exports from legacy Windows
// tooling regularly arrive in latin-1.
func ReadCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ingest: read: %w", err)
	}
	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("ingest: decode latin-1: %w", err)
		}
		data = decoded
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ingest: parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("ingest: empty csv")
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	return &Table{Columns: header, Rows: records[1:]}, nil
}

// Binding names the four columns the pipeline consumes.
type Binding struct {
	DeviceID    string
	Description string
	Date        string
	Client      string
}

// Complete reports whether all four columns are bound.
func (b Binding) Complete() bool {
	return b.DeviceID != "" && b.Description != "" && b.Date != "" && b.Client != ""
}

var detectKeywords = []struct {
	assign   func(*Binding, string)
	bound    func(Binding) string
	keywords []string
}{
	{func(b *Binding, c string) { b.DeviceID = c }, func(b Binding) string { return b.DeviceID }, []string{"IMEI"}},
	{func(b *Binding, c string) { b.Description = c }, func(b Binding) string { return b.Description }, []string{"DESC", "OBSERVACION", "DESCRIPTION"}},
	{func(b *Binding, c string) { b.Date = c }, func(b Binding) string { return b.Date }, []string{"FECHA", "DATE", "TIMESTAMP"}},
	{func(b *Binding, c string) { b.Client = c }, func(b Binding) string { return b.Client }, []string{"CLIENT", "CLIENTE"}},
}

// AutoDetect fills the unbound fields of base by scanning the header for
// well-known keyword fragments, never rebinding a column already claimed.
func AutoDetect(columns []string, base Binding) Binding {
	taken := map[string]bool{
		base.DeviceID: true, base.Description: true, base.Date: true, base.Client: true,
	}
	for _, d := range detectKeywords {
		if d.bound(base) != "" {
			continue
		}
		for _, kw := range d.keywords {
			found := ""
			for _, col := range columns {
				if !taken[col] && strings.Contains(strings.ToUpper(col), kw) {
					found = col
					break
				}
			}
			if found != "" {
				d.assign(&base, found)
				taken[found] = true
				break
			}
		}
	}
	return base
}

// dateFormats are tried in order; they cover the layouts seen in real
// exports (day-first Latin American plus ISO).
var dateFormats = []string{
	"02/01/2006 15:04:05",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

// ParseTimestamp parses a raw date cell. ok is false when no layout matches;
// such rows still flow to extraction but are excluded from reconciliation.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Rows materializes ServiceRows from the table using the given binding.
// Missing cells become empty strings; unparseable dates become the zero time.
func Rows(t *Table, b Binding) ([]model.ServiceRow, error) {
	idx := map[string]int{}
	for i, c := range t.Columns {
		idx[c] = i
	}
	var cols [4]int
	for i, name := range []string{b.DeviceID, b.Description, b.Date, b.Client} {
		j, ok := idx[name]
		if !ok {
			return nil, fmt.Errorf("ingest: column %q not in header", name)
		}
		cols[i] = j
	}

	rows := make([]model.ServiceRow, 0, len(t.Rows))
	for _, rec := range t.Rows {
		ts, _ := ParseTimestamp(cell(rec, cols[2]))
		rows = append(rows, model.ServiceRow{
			DeviceID:    strings.TrimSpace(cell(rec, cols[0])),
			Description: cell(rec, cols[1]),
			Timestamp:   ts,
			Client:      strings.TrimSpace(cell(rec, cols[3])),
		})
	}
	return rows, nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// Filter restricts rows before batching. Zero Start/End leave that side
// unbounded; an empty client list means all clients.
type Filter struct {
	Start   time.Time
	End     time.Time
	Clients []string
}

// Apply returns the rows passing the filter. The date range is inclusive on
// both ends; rows without a parseable timestamp are excluded once a range is
// set, since they cannot be compared.
func Apply(rows []model.ServiceRow, f Filter) []model.ServiceRow {
	clientSet := map[string]bool{}
	for _, c := range f.Clients {
		c = strings.TrimSpace(c)
		if c != "" {
			clientSet[c] = true
		}
	}

	out := make([]model.ServiceRow, 0, len(rows))
	for _, r := range rows {
		if !f.Start.IsZero() || !f.End.IsZero() {
			if r.Timestamp.IsZero() {
				continue
			}
			if !f.Start.IsZero() && r.Timestamp.Before(f.Start) {
				continue
			}
			if !f.End.IsZero() && r.Timestamp.After(f.End) {
				continue
			}
		}
		if len(clientSet) > 0 && !clientSet[r.Client] {
			continue
		}
		out = append(out, r)
	}
	return out
}
