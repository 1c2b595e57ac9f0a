// Command fleetscan runs the extraction pipeline once over a local CSV and
// writes the event table, device-state snapshot and run summary next to it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fleetscan/internal/config"
	"fleetscan/internal/export"
	"fleetscan/internal/extract"
	"fleetscan/internal/ingest"
	"fleetscan/internal/llm"
	"fleetscan/internal/llmclient"
	"fleetscan/internal/model"
	"fleetscan/internal/pipeline"
	"fleetscan/internal/reconcile"
	"fleetscan/internal/store"
	"fleetscan/internal/vocab"
)

func main() {
	input := flag.String("input", "", "path to the service-history CSV (required)")
	outDir := flag.String("out", ".", "directory for the rendered CSV outputs")
	deviceCol := flag.String("device-column", "", "device id column (auto-detected when empty)")
	descCol := flag.String("description-column", "", "description column (auto-detected when empty)")
	dateCol := flag.String("date-column", "", "date column (auto-detected when empty)")
	clientCol := flag.String("client-column", "", "client column (auto-detected when empty)")
	startDate := flag.String("start", "", "keep rows on or after this date")
	endDate := flag.String("end", "", "keep rows on or before this date")
	clients := flag.String("clients", "", "comma-separated client filter")
	persist := flag.Bool("persist", false, "also save the run to the configured database")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("configuration invalid")
	}

	ctx := context.Background()

	rows, err := loadRows(*input, ingest.Binding{
		DeviceID:    *deviceCol,
		Description: *descCol,
		Date:        *dateCol,
		Client:      *clientCol,
	})
	if err != nil {
		log.WithError(err).Fatal("loading input failed")
	}

	filter, err := buildFilter(*startDate, *endDate, *clients)
	if err != nil {
		log.WithError(err).Fatal("invalid filter")
	}
	rows = ingest.Apply(rows, filter)
	if len(rows) == 0 {
		log.Fatal("no rows left after filtering")
	}

	gemini, err := llmclient.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, float32(cfg.Gemini.Temperature), cfg.Gemini.Timeout)
	if err != nil {
		log.WithError(err).Fatal("generation client init failed")
	}
	defer gemini.Close()

	client := llm.Chain(gemini,
		llm.WithLogging(log),
		llm.WithRateLimit(cfg.Gemini.RPS, cfg.Gemini.Burst),
	)

	table := vocab.Default()
	if path := os.Getenv("FLEETSCAN_VOCAB_FILE"); path != "" {
		table, err = vocab.LoadFile(path)
		if err != nil {
			log.WithError(err).Fatal("vocabulary file invalid")
		}
	}

	backoff := llm.Backoff{Retries: cfg.Pipeline.Retries, BaseDelay: cfg.Pipeline.BaseDelay}
	extractor := extract.New(client, table, backoff, log, cfg.Pipeline.CacheSize)
	orchestrator := pipeline.New(extractor, cfg.Pipeline.BatchSize, log)

	runID := uuid.NewString()
	records, report := orchestrator.Run(ctx, runID, rows)
	states := reconcile.Table(runID, reconcile.Reconcile(records))

	if err := writeOutputs(*outDir, records, states, report); err != nil {
		log.WithError(err).Fatal("writing outputs failed")
	}

	if *persist {
		st, err := store.Open(cfg.Storage.DSN, cfg.Storage.SQLitePath)
		if err != nil {
			log.WithError(err).Fatal("storage init failed")
		}
		if err := st.SaveRun(ctx, report, records, states); err != nil {
			log.WithError(err).Fatal("saving run failed")
		}
	}

	fmt.Printf("run %s: %d events from %d rows (%d/%d batches degraded)\n",
		runID, report.EventsExtracted, report.ProcessedRows, report.DegradedBatches, report.TotalBatches)
}

func loadRows(path string, binding ingest.Binding) ([]model.ServiceRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := ingest.ReadCSV(f)
	if err != nil {
		return nil, err
	}
	binding = ingest.AutoDetect(table.Columns, binding)
	if !binding.Complete() {
		return nil, fmt.Errorf("could not bind all required columns, header is %v", table.Columns)
	}
	return ingest.Rows(table, binding)
}

func buildFilter(start, end, clients string) (ingest.Filter, error) {
	var f ingest.Filter
	if start != "" {
		t, ok := ingest.ParseTimestamp(start)
		if !ok {
			return f, fmt.Errorf("unparseable start date %q", start)
		}
		f.Start = t
	}
	if end != "" {
		t, ok := ingest.ParseTimestamp(end)
		if !ok {
			return f, fmt.Errorf("unparseable end date %q", end)
		}
		f.End = t
	}
	if clients != "" {
		f.Clients = strings.Split(clients, ",")
	}
	return f, nil
}

func writeOutputs(dir string, records []model.EventRecord, states []model.DeviceStateRecord, report model.RunReport) error {
	eventsCSV, err := export.EventsCSV(records)
	if err != nil {
		return err
	}
	statesCSV, err := export.StatesCSV(states)
	if err != nil {
		return err
	}
	summaryCSV, err := export.RunSummaryCSV(report)
	if err != nil {
		return err
	}
	for _, out := range []struct {
		name string
		data []byte
	}{
		{"events.csv", eventsCSV},
		{"state.csv", statesCSV},
		{"summary.csv", summaryCSV},
	} {
		if err := os.WriteFile(filepath.Join(dir, out.name), out.data, 0o644); err != nil {
			return err
		}
	}
	return nil
}
