// Package export renders run results as CSV and optionally publishes them to
// an S3-compatible object store.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"fleetscan/internal/model"
)

// EventsCSV renders the flattened event table. Timestamps serialize as ISO
// dates so downstream spreadsheets sort correctly.
func EventsCSV(events []model.EventRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"device_id", "timestamp", "client", "component", "action", "accessory_id", "original_description"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("export: write header: %w", err)
	}
	for _, ev := range events {
		ts := ""
		if !ev.Timestamp.IsZero() {
			ts = ev.Timestamp.Format("2006-01-02 15:04:05")
		}
		rec := []string{ev.DeviceID, ts, ev.Client, ev.Component, ev.Action, ev.AccessoryID, ev.OriginalDescription}
		if err := w.Write(rec); err != nil {
			return nil, fmt.Errorf("export: write row: %w", err)
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// StatesCSV renders the device-state snapshot.
func StatesCSV(states []model.DeviceStateRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"client", "device_id", "installed_components", "last_event_timestamp"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("export: write header: %w", err)
	}
	for _, st := range states {
		rec := []string{st.Client, st.DeviceID, st.InstalledComponents, st.LastEventTime}
		if err := w.Write(rec); err != nil {
			return nil, fmt.Errorf("export: write row: %w", err)
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// RunSummaryCSV renders one run report as a two-row CSV for quick inspection.
func RunSummaryCSV(report model.RunReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"run_id", "started_at", "duration", "total_rows", "processed_rows", "total_batches", "degraded_batches", "events_extracted", "last_error"}
	row := []string{
		report.RunID,
		report.StartedAt.Format("2006-01-02 15:04:05"),
		report.Duration.String(),
		strconv.Itoa(report.TotalRows),
		strconv.Itoa(report.ProcessedRows),
		strconv.Itoa(report.TotalBatches),
		strconv.Itoa(report.DegradedBatches),
		strconv.Itoa(report.EventsExtracted),
		report.LastError,
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.Write(row); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
