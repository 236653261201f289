package main

import (
	"context"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/your-org/docrepo/internal/document"
	"github.com/your-org/docrepo/internal/extract"
	"github.com/your-org/docrepo/internal/ingestion"
	"github.com/your-org/docrepo/internal/sink"
	"github.com/your-org/docrepo/pkg/config"
	"github.com/your-org/docrepo/pkg/kafka"
	"github.com/your-org/docrepo/pkg/logger"
	"github.com/your-org/docrepo/pkg/storage/objectstore"
	"github.com/your-org/docrepo/pkg/tracing"
)

// app holds the read-only handles shared by every invocation.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    objectstore.Client
	service  *ingestion.Service
	shutdown func(context.Context) error
}

func newApp(ctx context.Context, envFile string) (*app, error) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}

	logr, err := logger.New(cfg.App.LogLevel, cfg.App.LogEncoding, cfg.App.Name)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	traceShutdown, err := tracing.Init(ctx, tracing.Config{
		Endpoint:       cfg.Tracing.Endpoint,
		Insecure:       cfg.Tracing.Insecure,
		SampleRatio:    cfg.Tracing.SampleRatio,
		Attributes:     tracing.ParseAttributes(cfg.Tracing.ResourceAttr),
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	store, err := objectstore.New(ctx, objectstore.Config{
		Provider:  cfg.Storage.Provider,
		Endpoint:  cfg.Storage.Endpoint,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		traceShutdown(ctx) //nolint:errcheck
		return nil, fmt.Errorf("init object store: %w", err)
	}

	admin := kafka.NewAdmin(kafka.AdminConfig{
		Brokers:     cfg.Kafka.Brokers,
		DialTimeout: cfg.Kafka.DialTimeout,
		ClientID:    cfg.App.Name,
	})
	compression := kafka.CompressionFromString(cfg.Kafka.CompressionCodec)
	newPutter := func(endpoint string) sink.MessagePutter {
		return kafka.NewProducer(kafka.ProducerConfig{
			Endpoint:     endpoint,
			DialTimeout:  cfg.Kafka.DialTimeout,
			ClientID:     cfg.App.Name,
			Compression:  compression,
			RequiredAcks: kafkago.RequireAll,
		})
	}

	service := ingestion.NewService(ingestion.Params{
		Store: store,
		Extractor: extract.NewDocconvEngine(extract.Options{
			MaxBytes:    cfg.Extract.MaxBytes,
			Readability: cfg.Extract.HTMLReadability,
		}),
		Assembler: document.NewAssembler(cfg.Document.BaseURL),
		Archive:   sink.NewArchive(store, logr.Named("archive")),
		Stream: sink.NewStream(sink.StreamParams{
			Admin:      admin,
			NewPutter:  newPutter,
			StreamName: cfg.Stream.Name,
			Logger:     logr.Named("stream"),
		}),
		Search:       sink.NewSearch(cfg.Search.Endpoint, cfg.Search.Timeout, logr.Named("search")),
		OutputBucket: cfg.Output.Bucket,
		IndexPath:    cfg.Search.IndexPath,
		Logger:       logr.Named("ingestion"),
	})

	return &app{
		cfg:      cfg,
		logger:   logr,
		store:    store,
		service:  service,
		shutdown: traceShutdown,
	}, nil
}

func (a *app) Close(ctx context.Context) {
	if err := a.shutdown(ctx); err != nil {
		a.logger.Error("tracing shutdown failed", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("object store close failed", zap.Error(err))
	}
	a.logger.Sync() //nolint:errcheck
}
