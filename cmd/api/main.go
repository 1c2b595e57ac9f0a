package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"fleetscan/internal/api"
	"fleetscan/internal/config"
	"fleetscan/internal/export"
	"fleetscan/internal/extract"
	"fleetscan/internal/llm"
	"fleetscan/internal/llmclient"
	"fleetscan/internal/metrics"
	"fleetscan/internal/store"
	"fleetscan/internal/vocab"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("configuration invalid")
	}

	ctx := context.Background()

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

	reg := metrics.NewRegistry()

	st, err := store.Open(cfg.Storage.DSN, cfg.Storage.SQLitePath)
	if err != nil {
		log.WithError(err).Fatal("storage init failed")
	}

	var sink *export.S3Sink
	if cfg.Artifact.Enabled {
		sink, err = export.NewS3Sink(export.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			UseSSL:    cfg.Artifact.UseSSL,
		})
		if err != nil {
			log.WithError(err).Fatal("artifact sink init failed")
		}
	}

	server := api.NewServer(extractor, cfg.Pipeline.BatchSize, st, reg, sink, log)
	log.WithField("port", cfg.Port).Info("listening")
	if err := server.Router().Run(cfg.Port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
