package sink

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/your-org/docrepo/internal/document"
	"github.com/your-org/docrepo/pkg/kafka"
)

// EventType is carried in the header of every published message.
const EventType = "document.extracted"

// StreamAdmin discovers streams.
type StreamAdmin interface {
	ListStreams(ctx context.Context, req kafka.ListStreamsRequest) ([]kafka.StreamSummary, error)
	GetStream(ctx context.Context, id string) (kafka.StreamSummary, error)
}

// MessagePutter submits messages through one messages endpoint.
type MessagePutter interface {
	PutMessages(ctx context.Context, streamID string, entries []kafka.MessageEntry) ([]kafka.PutResult, error)
	Close() error
}

// Stream publishes documents to the active stream with the configured name.
type Stream struct {
	admin      StreamAdmin
	newPutter  func(endpoint string) MessagePutter
	streamName string
	logger     *zap.Logger
}

type StreamParams struct {
	Admin      StreamAdmin
	NewPutter  func(endpoint string) MessagePutter
	StreamName string
	Logger     *zap.Logger
}

func NewStream(p StreamParams) *Stream {
	return &Stream{
		admin:      p.Admin,
		newPutter:  p.NewPutter,
		streamName: p.StreamName,
		logger:     p.Logger,
	}
}

// Publish sends doc as one message keyed by messageKey. With no active stream
// of the configured name in compartmentID the outcome is skipped. When several
// match, the first one listed wins.
func (s *Stream) Publish(ctx context.Context, doc *document.ExtractedDocument, messageKey, compartmentID string) (Outcome, error) {
	streams, err := s.admin.ListStreams(ctx, kafka.ListStreamsRequest{
		CompartmentID:  compartmentID,
		Name:           s.streamName,
		LifecycleState: kafka.StateActive,
	})
	if err != nil {
		return failed(NameStream, err)
	}
	if len(streams) == 0 {
		s.logger.Info("no active stream found, skipping publish",
			zap.String("stream", s.streamName),
			zap.String("compartment_id", compartmentID),
		)
		return skipped(NameStream, fmt.Sprintf("no active stream named %s", s.streamName)), nil
	}

	s.logger.Info("active stream found", zap.String("stream", s.streamName), zap.String("stream_id", streams[0].ID))
	stream, err := s.admin.GetStream(ctx, streams[0].ID)
	if err != nil {
		return failed(NameStream, err)
	}

	payload, err := doc.MarshalJSON()
	if err != nil {
		return failed(NameStream, fmt.Errorf("encode document: %w", err))
	}

	headers := map[string]string{"event_type": EventType}
	if id := InvocationID(ctx); id != "" {
		headers["invocation_id"] = id
	}

	putter := s.newPutter(stream.MessagesEndpoint)
	defer putter.Close() //nolint:errcheck

	results, err := putter.PutMessages(ctx, stream.ID, []kafka.MessageEntry{{
		Key:     []byte(messageKey),
		Value:   payload,
		Headers: headers,
	}})
	if err != nil {
		return failed(NameStream, err)
	}
	if len(results) == 0 {
		return failed(NameStream, fmt.Errorf("publish to %s: no result entries", stream.ID))
	}

	entry := results[0]
	if entry.Error != "" {
		reason := fmt.Sprintf("Error(%s): %s", entry.Error, entry.ErrorMessage)
		s.logger.Warn("stream rejected message",
			zap.String("stream_id", stream.ID),
			zap.String("error", entry.Error),
			zap.String("error_message", entry.ErrorMessage),
		)
		return Outcome{Sink: NameStream, Status: StatusFailed, Reason: reason}, nil
	}

	s.logger.Info("published message",
		zap.String("stream_id", stream.ID),
		zap.Int("partition", entry.Partition),
		zap.Int64("offset", entry.Offset),
	)
	return succeeded(NameStream, fmt.Sprintf("partition=%d offset=%d", entry.Partition, entry.Offset)), nil
}
