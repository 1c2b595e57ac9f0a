package ingest

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/encoding/charmap"
)

const sampleCSV = `IMEI_EQUIPO,DESCRIPCION_SERVICIO,FECHA_SERVICIO,CLIENTE
359632107908086,"SE PUSO POWER HUB 868",15/03/2025 10:30:00,Transportes Norte
359632107908087,"Medición de tanque",16/03/2025,Transportes Norte
359632107908088,"revision general",2025-03-17 08:00:00,Logistica Sur
`

func TestReadCSV_UTF8(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(table.Columns) != 4 {
		t.Fatalf("columns = %v", table.Columns)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(table.Rows))
	}
}

func TestReadCSV_Latin1Fallback(t *testing.T) {
	// "Medición" and "Logística" encoded as latin-1 are invalid UTF-8.
	encoded, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	table, err := ReadCSV(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("ReadCSV(latin-1): %v", err)
	}
	if got := table.Rows[1][1]; got != "Medición de tanque" {
		t.Fatalf("latin-1 text not restored: %q", got)
	}
}

func TestReadCSV_Empty(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestAutoDetect(t *testing.T) {
	columns := []string{"IMEI_EQUIPO", "DESCRIPCION_SERVICIO", "FECHA_SERVICIO", "CLIENTE", "EXTRA"}
	b := AutoDetect(columns, Binding{})
	if b.DeviceID != "IMEI_EQUIPO" || b.Description != "DESCRIPCION_SERVICIO" ||
		b.Date != "FECHA_SERVICIO" || b.Client != "CLIENTE" {
		t.Fatalf("binding = %+v", b)
	}
	if !b.Complete() {
		t.Fatal("binding should be complete")
	}
}

func TestAutoDetect_RespectsExplicitBinding(t *testing.T) {
	columns := []string{"IMEI", "OBSERVACIONES", "FECHA", "CLIENTE", "NOTAS_DESC"}
	b := AutoDetect(columns, Binding{Description: "NOTAS_DESC"})
	if b.Description != "NOTAS_DESC" {
		t.Fatalf("explicit binding overridden: %+v", b)
	}
	if b.DeviceID != "IMEI" {
		t.Fatalf("remaining columns not detected: %+v", b)
	}
}

func TestAutoDetect_NeverBindsSameColumnTwice(t *testing.T) {
	// "FECHA_DESC" contains both DESC and FECHA fragments.
	columns := []string{"IMEI", "FECHA_DESC", "CLIENTE"}
	b := AutoDetect(columns, Binding{})
	if b.Description == b.Date && b.Description != "" {
		t.Fatalf("same column bound twice: %+v", b)
	}
}

func TestParseTimestamp_Formats(t *testing.T) {
	cases := map[string]time.Time{
		"15/03/2025 10:30:00":   time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC),
		"16/03/2025":            time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC),
		"2025-03-17 08:00:00":   time.Date(2025, 3, 17, 8, 0, 0, 0, time.UTC),
		"2025-03-18":            time.Date(2025, 3, 18, 0, 0, 0, 0, time.UTC),
		" 15/03/2025 10:30:00 ": time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, ok := ParseTimestamp(in)
		if !ok {
			t.Fatalf("ParseTimestamp(%q) failed", in)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseTimestamp(%q) = %v, want %v", in, got, want)
		}
	}
	for _, in := range []string{"", "not a date", "99/99/9999"} {
		if _, ok := ParseTimestamp(in); ok {
			t.Fatalf("ParseTimestamp(%q) should fail", in)
		}
	}
}

func TestRows_BindingAndZeroTimes(t *testing.T) {
	csv := "IMEI,DESC,FECHA,CLIENTE\nabc , hola ,garbage-date, C1 \n"
	table, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	rows, err := Rows(table, AutoDetect(table.Columns, Binding{}))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	r := rows[0]
	if r.DeviceID != "abc" || r.Client != "C1" {
		t.Fatalf("ids not trimmed: %+v", r)
	}
	if !r.Timestamp.IsZero() {
		t.Fatalf("garbage date should yield zero time, got %v", r.Timestamp)
	}
	if r.Description != " hola " {
		t.Fatalf("description must stay verbatim, got %q", r.Description)
	}
}

func TestRows_MissingColumn(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	b := AutoDetect(table.Columns, Binding{})
	b.Client = "NO_SUCH"
	if _, err := Rows(table, b); err == nil {
		t.Fatal("expected error for unbound column")
	}
}

func TestApply_Filters(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	rows, err := Rows(table, AutoDetect(table.Columns, Binding{}))
	if err != nil {
		t.Fatal(err)
	}

	onlyNorte := Apply(rows, Filter{Clients: []string{"Transportes Norte"}})
	if len(onlyNorte) != 2 {
		t.Fatalf("client filter: %d rows, want 2", len(onlyNorte))
	}

	ranged := Apply(rows, Filter{
		Start: time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 16, 23, 59, 59, 0, time.UTC),
	})
	if len(ranged) != 1 || ranged[0].DeviceID != "359632107908087" {
		t.Fatalf("date filter: %+v", ranged)
	}

	all := Apply(rows, Filter{})
	if len(all) != 3 {
		t.Fatalf("empty filter should keep everything, got %d", len(all))
	}
}

func TestApply_DropsUndatedRowsWhenRangeSet(t *testing.T) {
	csv := "IMEI,DESC,FECHA,CLIENTE\nd1,x,garbage,C1\nd2,y,15/03/2025,C1\n"
	table, _ := ReadCSV(strings.NewReader(csv))
	rows, err := Rows(table, AutoDetect(table.Columns, Binding{}))
	if err != nil {
		t.Fatal(err)
	}
	out := Apply(rows, Filter{Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)})
	if len(out) != 1 || out[0].DeviceID != "d2" {
		t.Fatalf("undated row not excluded: %+v", out)
	}
}
