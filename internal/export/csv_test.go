package export

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"fleetscan/internal/model"
)

func TestEventsCSV(t *testing.T) {
	events := []model.EventRecord{
		{
			DeviceID:            "359632107908086",
			Timestamp:           time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC),
			Client:              "Transportes Norte",
			Component:           "Power Hub",
			Action:              "Installation",
			AccessoryID:         "868",
			OriginalDescription: "SE PUSO POWER HUB 868, con \"comillas\"",
		},
		{DeviceID: "d2", Client: "C2", Component: "GPS", Action: "Inspection"},
	}

	data, err := EventsCSV(events)
	if err != nil {
		t.Fatalf("EventsCSV: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want header + 2", len(records))
	}
	if records[0][0] != "device_id" || records[0][6] != "original_description" {
		t.Fatalf("header = %v", records[0])
	}
	if records[1][1] != "2025-03-15 10:30:00" {
		t.Fatalf("timestamp rendering = %q", records[1][1])
	}
	if records[1][6] != `SE PUSO POWER HUB 868, con "comillas"` {
		t.Fatalf("description not round-tripped: %q", records[1][6])
	}
	// Zero timestamp renders empty, not the zero-time string.
	if records[2][1] != "" {
		t.Fatalf("zero timestamp = %q, want empty", records[2][1])
	}
}

func TestStatesCSV(t *testing.T) {
	states := []model.DeviceStateRecord{
		{Client: "C1", DeviceID: "D1", InstalledComponents: "GPS, Sirena", LastEventTime: "2025-03-15"},
		{Client: "C1", DeviceID: "D2", InstalledComponents: "None", LastEventTime: "2025-03-10"},
	}
	data, err := StatesCSV(states)
	if err != nil {
		t.Fatalf("StatesCSV: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d", len(records))
	}
	if records[2][2] != "None" {
		t.Fatalf("empty set rendering = %q", records[2][2])
	}
}

func TestRunSummaryCSV(t *testing.T) {
	report := model.RunReport{
		RunID:           "run-1",
		StartedAt:       time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC),
		Duration:        90 * time.Second,
		TotalRows:       100,
		ProcessedRows:   100,
		TotalBatches:    4,
		DegradedBatches: 1,
		EventsExtracted: 42,
	}
	data, err := RunSummaryCSV(report)
	if err != nil {
		t.Fatalf("RunSummaryCSV: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d", len(records))
	}
	if records[1][0] != "run-1" || records[1][7] != "42" {
		t.Fatalf("summary row = %v", records[1])
	}
}
