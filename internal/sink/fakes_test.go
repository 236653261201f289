package sink

import (
	"context"
	"sync"

	"github.com/your-org/docrepo/internal/document"
	"github.com/your-org/docrepo/pkg/kafka"
	"github.com/your-org/docrepo/pkg/storage/objectstore"
)

func testDocument() *document.ExtractedDocument {
	return document.NewAssembler("https://store").Assemble(
		map[string]string{"Content-Type": "text/plain"},
		"helloworld",
		"abc123",
		"https://store/n/ns1/b/in-bkt/o/doc1.txt",
	)
}

type putCall struct {
	ref         objectstore.ObjectRef
	contentType string
	data        []byte
}

type fakeWriter struct {
	mu    sync.Mutex
	calls []putCall
	err   error
}

func (f *fakeWriter) Put(_ context.Context, ref objectstore.ObjectRef, contentType string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, putCall{ref: ref, contentType: contentType, data: data})
	if f.err != nil {
		return "", f.err
	}
	return "etag-1", nil
}

type fakeAdmin struct {
	streams  []kafka.StreamSummary
	listErr  error
	getErr   error
	listReqs []kafka.ListStreamsRequest
	gotIDs   []string
}

func (f *fakeAdmin) ListStreams(_ context.Context, req kafka.ListStreamsRequest) ([]kafka.StreamSummary, error) {
	f.listReqs = append(f.listReqs, req)
	return f.streams, f.listErr
}

func (f *fakeAdmin) GetStream(_ context.Context, id string) (kafka.StreamSummary, error) {
	f.gotIDs = append(f.gotIDs, id)
	if f.getErr != nil {
		return kafka.StreamSummary{}, f.getErr
	}
	for _, s := range f.streams {
		if s.ID == id {
			return s, nil
		}
	}
	return kafka.StreamSummary{}, kafka.ErrStreamNotFound
}

type fakePutter struct {
	endpoint string
	streamID string
	entries  []kafka.MessageEntry
	results  []kafka.PutResult
	err      error
	closed   bool
}

func (f *fakePutter) PutMessages(_ context.Context, streamID string, entries []kafka.MessageEntry) ([]kafka.PutResult, error) {
	f.streamID = streamID
	f.entries = append(f.entries, entries...)
	return f.results, f.err
}

func (f *fakePutter) Close() error {
	f.closed = true
	return nil
}
