package ingestion

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/your-org/docrepo/internal/document"
	"github.com/your-org/docrepo/internal/sink"
	"github.com/your-org/docrepo/pkg/kafka"
	"github.com/your-org/docrepo/pkg/storage/objectstore"
)

type storedObject struct {
	data     []byte
	checksum string
}

type trackingBody struct {
	io.Reader
	closes int
}

func (b *trackingBody) Close() error {
	b.closes++
	return nil
}

// fakeStore serves Get from memory and records Put.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string]storedObject
	getErr  error
	putErr  error
	bodies  []*trackingBody
	puts    map[string][]byte
	putType map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects: map[string]storedObject{},
		puts:    map[string][]byte{},
		putType: map[string]string{},
	}
}

func (f *fakeStore) add(bucket, name, content, checksum string) {
	f.objects[bucket+"/"+name] = storedObject{data: []byte(content), checksum: checksum}
}

func (f *fakeStore) Get(_ context.Context, ref objectstore.ObjectRef) (*objectstore.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	obj, ok := f.objects[ref.Bucket+"/"+ref.Name]
	if !ok {
		return nil, objectstore.ErrNotFound
	}
	body := &trackingBody{Reader: bytes.NewReader(obj.data)}
	f.bodies = append(f.bodies, body)
	return &objectstore.Object{Body: body, Checksum: obj.checksum, Size: int64(len(obj.data))}, nil
}

func (f *fakeStore) Put(_ context.Context, ref objectstore.ObjectRef, contentType string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", f.putErr
	}
	f.puts[ref.Bucket+"/"+ref.Name] = data
	f.putType[ref.Bucket+"/"+ref.Name] = contentType
	return "new-etag", nil
}

// fakeAdmin lists a fixed set of streams.
type fakeAdmin struct {
	streams []kafka.StreamSummary
	reqs    []kafka.ListStreamsRequest
}

func (f *fakeAdmin) ListStreams(_ context.Context, req kafka.ListStreamsRequest) ([]kafka.StreamSummary, error) {
	f.reqs = append(f.reqs, req)
	return f.streams, nil
}

func (f *fakeAdmin) GetStream(_ context.Context, id string) (kafka.StreamSummary, error) {
	for _, s := range f.streams {
		if s.ID == id {
			return s, nil
		}
	}
	return kafka.StreamSummary{}, kafka.ErrStreamNotFound
}

type fakePutter struct {
	entries []kafka.MessageEntry
}

func (f *fakePutter) PutMessages(_ context.Context, _ string, entries []kafka.MessageEntry) ([]kafka.PutResult, error) {
	f.entries = append(f.entries, entries...)
	return []kafka.PutResult{{Partition: 0, Offset: 7}}, nil
}

func (f *fakePutter) Close() error { return nil }

// recordingSinks implements Archiver, Publisher and Indexer with canned results.
type recordingSinks struct {
	mu         sync.Mutex
	calls      []string
	archiveErr error
	streamErr  error
	searchErr  error
	panicOn    string
}

func (r *recordingSinks) result(name string, err error) (sink.Outcome, error) {
	r.mu.Lock()
	r.calls = append(r.calls, name)
	r.mu.Unlock()
	if r.panicOn == name {
		panic("sink exploded")
	}
	if err != nil {
		return sink.Outcome{Sink: name, Status: sink.StatusFailed, Reason: err.Error()}, &sink.Error{Sink: name, Err: err}
	}
	return sink.Outcome{Sink: name, Status: sink.StatusSucceeded}, nil
}

func (r *recordingSinks) Archive(context.Context, *document.ExtractedDocument, string, string, string) (sink.Outcome, error) {
	return r.result(sink.NameArchive, r.archiveErr)
}

func (r *recordingSinks) Publish(context.Context, *document.ExtractedDocument, string, string) (sink.Outcome, error) {
	return r.result(sink.NameStream, r.streamErr)
}

func (r *recordingSinks) Index(context.Context, *document.ExtractedDocument, string) (sink.Outcome, error) {
	return r.result(sink.NameSearch, r.searchErr)
}
