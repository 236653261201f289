package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// MessageEntry is one keyed message submitted to a stream.
type MessageEntry struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// PutResult is the per-entry outcome of PutMessages. Error is empty on success.
// Offset is -1 when the broker was not asked to acknowledge the write.
type PutResult struct {
	Partition    int
	Offset       int64
	Error        string
	ErrorMessage string
}

// Producer submits messages to streams served by one messages endpoint.
type Producer struct {
	client       *kafkago.Client
	transport    *kafkago.Transport
	balancer     kafkago.Balancer
	compression  kafkago.Compression
	requiredAcks kafkago.RequiredAcks
}

type ProducerConfig struct {
	Endpoint     string
	DialTimeout  time.Duration
	ClientID     string
	Compression  kafkago.Compression
	RequiredAcks kafkago.RequiredAcks
}

// NewProducer constructs a Producer bound to cfg.Endpoint, a comma separated
// list of broker addresses.
func NewProducer(cfg ProducerConfig) *Producer {
	transport := &kafkago.Transport{
		DialTimeout: cfg.DialTimeout,
		ClientID:    cfg.ClientID,
	}
	return &Producer{
		client: &kafkago.Client{
			Addr:      kafkago.TCP(strings.Split(cfg.Endpoint, ",")...),
			Timeout:   cfg.DialTimeout,
			Transport: transport,
		},
		transport:    transport,
		balancer:     &kafkago.Hash{},
		compression:  cfg.Compression,
		requiredAcks: cfg.RequiredAcks,
	}
}

// PutMessages produces every entry to streamID and reports a result per entry.
// Broker-side rejections land in the result; only transport faults are
// returned as an error, together with the results gathered so far.
func (p *Producer) PutMessages(ctx context.Context, streamID string, entries []MessageEntry) ([]PutResult, error) {
	partitions, err := p.partitions(ctx, streamID)
	if err != nil {
		return nil, err
	}

	results := make([]PutResult, 0, len(entries))
	for _, entry := range entries {
		partition := p.balancer.Balance(kafkago.Message{Key: entry.Key}, partitions...)

		record := kafkago.Record{
			Time:  time.Now().UTC(),
			Key:   kafkago.NewBytes(entry.Key),
			Value: kafkago.NewBytes(entry.Value),
		}
		for k, v := range entry.Headers {
			record.Headers = append(record.Headers, kafkago.Header{Key: k, Value: []byte(v)})
		}

		resp, err := p.client.Produce(ctx, &kafkago.ProduceRequest{
			Topic:        streamID,
			Partition:    partition,
			RequiredAcks: p.requiredAcks,
			Compression:  p.compression,
			Records:      kafkago.NewRecordReader(record),
		})
		if err != nil {
			return results, fmt.Errorf("produce to %s/%d: %w", streamID, partition, err)
		}
		if resp == nil {
			// RequireNone: the client returns no response to read an offset from
			results = append(results, PutResult{Partition: partition, Offset: -1})
			continue
		}

		result := PutResult{Partition: partition, Offset: resp.BaseOffset}
		perr := resp.Error
		if perr == nil {
			perr = resp.RecordErrors[0]
		}
		if perr != nil {
			result.Error, result.ErrorMessage = describe(perr)
		}
		results = append(results, result)
	}
	return results, nil
}

func (p *Producer) partitions(ctx context.Context, streamID string) ([]int, error) {
	meta, err := p.client.Metadata(ctx, &kafkago.MetadataRequest{Topics: []string{streamID}})
	if err != nil {
		return nil, fmt.Errorf("stream metadata %s: %w", streamID, err)
	}
	for _, topic := range meta.Topics {
		if topic.Name != streamID {
			continue
		}
		if topic.Error != nil {
			return nil, fmt.Errorf("stream metadata %s: %w", streamID, topic.Error)
		}
		ids := make([]int, 0, len(topic.Partitions))
		for _, part := range topic.Partitions {
			ids = append(ids, part.ID)
		}
		if len(ids) > 0 {
			return ids, nil
		}
	}
	return nil, fmt.Errorf("stream metadata %s: %w", streamID, ErrStreamNotFound)
}

// Close releases pooled broker connections.
func (p *Producer) Close() error {
	p.transport.CloseIdleConnections()
	return nil
}

func describe(err error) (string, string) {
	var kerr kafkago.Error
	if errors.As(err, &kerr) {
		return kerr.Title(), kerr.Description()
	}
	return "ProduceError", err.Error()
}

// CompressionFromString maps textual codec to kafka-go value.
func CompressionFromString(name string) kafkago.Compression {
	switch strings.ToLower(name) {
	case "gzip":
		return kafkago.Gzip
	case "snappy":
		return kafkago.Snappy
	case "lz4":
		return kafkago.Lz4
	case "zstd":
		return kafkago.Zstd
	case "none", "":
		return 0
	default:
		return kafkago.Snappy
	}
}
