package ingestion

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/your-org/docrepo/internal/document"
	"github.com/your-org/docrepo/internal/extract"
	"github.com/your-org/docrepo/internal/sink"
	"github.com/your-org/docrepo/pkg/storage/objectstore"
)

const archiveSuffix = ".json"

// Fetcher opens source objects.
type Fetcher interface {
	Get(ctx context.Context, ref objectstore.ObjectRef) (*objectstore.Object, error)
}

type Archiver interface {
	Archive(ctx context.Context, doc *document.ExtractedDocument, namespace, bucket, objectName string) (sink.Outcome, error)
}

type Publisher interface {
	Publish(ctx context.Context, doc *document.ExtractedDocument, messageKey, compartmentID string) (sink.Outcome, error)
}

type Indexer interface {
	Index(ctx context.Context, doc *document.ExtractedDocument, indexPath string) (sink.Outcome, error)
}

// Service runs one invocation per event: fetch, extract, assemble, then fan
// out to the stream, archive and search sinks. It holds only read-only
// handles and is safe for concurrent invocations.
type Service struct {
	store        Fetcher
	extractor    extract.Engine
	assembler    *document.Assembler
	archive      Archiver
	stream       Publisher
	search       Indexer
	outputBucket string
	indexPath    string
	logger       *zap.Logger
	tracer       trace.Tracer
}

type Params struct {
	Store        Fetcher
	Extractor    extract.Engine
	Assembler    *document.Assembler
	Archive      Archiver
	Stream       Publisher
	Search       Indexer
	OutputBucket string
	IndexPath    string
	Logger       *zap.Logger
}

// NewService constructs an ingestion Service.
func NewService(p Params) *Service {
	return &Service{
		store:        p.Store,
		extractor:    p.Extractor,
		assembler:    p.Assembler,
		archive:      p.Archive,
		stream:       p.Stream,
		search:       p.Search,
		outputBucket: p.OutputBucket,
		indexPath:    p.IndexPath,
		logger:       p.Logger,
		tracer:       otel.Tracer("github.com/your-org/docrepo/internal/ingestion"),
	}
}

// Handle runs Process and returns the external response string.
func (s *Service) Handle(ctx context.Context, ev IngestionEvent) string {
	return s.Process(ctx, ev).Response()
}

// Process runs the pipeline for ev. It never retries; failures are reported
// in the returned Result rather than as an error.
func (s *Service) Process(ctx context.Context, ev IngestionEvent) *Result {
	res := &Result{InvocationID: uuid.NewString(), State: StateStart}
	logger := s.logger.With(
		zap.String("invocation_id", res.InvocationID),
		zap.String("namespace", ev.Namespace),
		zap.String("bucket", ev.BucketName),
		zap.String("resource", ev.ResourceName),
	)
	ctx = sink.WithInvocationID(ctx, res.InvocationID)

	ctx, span := s.tracer.Start(ctx, "ingestion.process", trace.WithAttributes(
		attribute.String("invocation.id", res.InvocationID),
		attribute.String("object.bucket", ev.BucketName),
		attribute.String("object.name", ev.ResourceName),
	))
	defer span.End()

	logger.Info("got a new event", zap.String("compartment_id", ev.CompartmentID))

	fail := func(kind Kind, err error) *Result {
		res.State = StateFailed
		res.Err = &StageError{Kind: kind, Err: err}
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, string(kind))
		logger.Error("invocation failed", zap.String("stage", string(kind)), zap.Error(err))
		return res
	}

	obj, err := s.fetch(ctx, ev)
	if err != nil {
		return fail(KindFetch, err)
	}
	res.State = StateFetched

	extracted, err := s.extract(ctx, obj)
	if err != nil {
		return fail(KindExtraction, err)
	}
	res.State = StateExtracted

	path := s.assembler.Path(ev.Namespace, ev.BucketName, ev.ResourceName)
	doc := s.assembler.Assemble(extracted.Metadata, extracted.Content, obj.Checksum, path)
	payload, err := doc.MarshalJSON()
	if err != nil {
		return fail(KindExtraction, fmt.Errorf("encode document: %w", err))
	}
	res.Document = doc
	res.Payload = payload
	logger.Debug("document assembled", zap.Int("content_length", len(doc.Content)), zap.Int("metadata_keys", len(doc.Metadata)))

	var sinkErrs []error
	record := func(outcome sink.Outcome, err error) {
		res.Outcomes = append(res.Outcomes, outcome)
		if err != nil {
			sinkErrs = append(sinkErrs, err)
		}
		logger.Info("sink finished",
			zap.String("sink", outcome.Sink),
			zap.String("status", string(outcome.Status)),
			zap.String("reason", outcome.Reason),
		)
	}

	record(s.fanOut(ctx, sink.NameStream, func(ctx context.Context) (sink.Outcome, error) {
		return s.stream.Publish(ctx, doc, ev.ResourceName, ev.CompartmentID)
	}))
	record(s.fanOut(ctx, sink.NameArchive, func(ctx context.Context) (sink.Outcome, error) {
		return s.archive.Archive(ctx, doc, ev.Namespace, s.outputBucket, ev.ResourceName+archiveSuffix)
	}))
	record(s.fanOut(ctx, sink.NameSearch, func(ctx context.Context) (sink.Outcome, error) {
		return s.search.Index(ctx, doc, s.indexPath)
	}))
	res.State = StateFannedOut

	if len(sinkErrs) > 0 {
		return fail(KindSink, errors.Join(sinkErrs...))
	}

	res.State = StateDone
	logger.Info("invocation completed")
	return res
}

func (s *Service) fetch(ctx context.Context, ev IngestionEvent) (*objectstore.Object, error) {
	ctx, span := s.tracer.Start(ctx, "ingestion.fetch")
	defer span.End()

	if err := ev.Validate(); err != nil {
		return nil, err
	}
	obj, err := s.store.Get(ctx, objectstore.ObjectRef{
		Namespace: ev.Namespace,
		Bucket:    ev.BucketName,
		Name:      ev.ResourceName,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("object.size", obj.Size), attribute.String("object.checksum", obj.Checksum))
	return obj, nil
}

// extract consumes and closes the object body exactly once.
func (s *Service) extract(ctx context.Context, obj *objectstore.Object) (*extract.Result, error) {
	ctx, span := s.tracer.Start(ctx, "ingestion.extract")
	defer span.End()

	res, err := s.extractor.Extract(ctx, obj.Body)
	closeErr := obj.Body.Close()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if closeErr != nil {
		s.logger.Warn("close source object", zap.Error(closeErr))
	}
	span.SetAttributes(attribute.String("document.content_type", res.Metadata[extract.ContentTypeKey]))
	return res, nil
}

// fanOut runs one sink call in its own span. A panicking sink is reported as
// a failed outcome so the remaining sinks still run.
func (s *Service) fanOut(ctx context.Context, name string, call func(context.Context) (sink.Outcome, error)) (outcome sink.Outcome, err error) {
	ctx, span := s.tracer.Start(ctx, "sink."+name)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = &sink.Error{Sink: name, Err: fmt.Errorf("panic: %v", r)}
			outcome = sink.Outcome{Sink: name, Status: sink.StatusFailed, Reason: err.Error()}
		}
		span.SetAttributes(attribute.String("sink.status", string(outcome.Status)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, name)
		}
	}()

	return call(ctx)
}
