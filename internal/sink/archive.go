package sink

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/your-org/docrepo/internal/document"
	"github.com/your-org/docrepo/pkg/storage/objectstore"
)

const jsonContentType = "application/json"

// ObjectWriter is the slice of the object store the archive needs.
type ObjectWriter interface {
	Put(ctx context.Context, ref objectstore.ObjectRef, contentType string, data []byte) (string, error)
}

// Archive writes a JSON copy of each document to the output bucket.
type Archive struct {
	store  ObjectWriter
	logger *zap.Logger
}

func NewArchive(store ObjectWriter, logger *zap.Logger) *Archive {
	return &Archive{store: store, logger: logger}
}

// Archive writes doc as objectName in bucket. The name is used verbatim and
// the write is not retried.
func (a *Archive) Archive(ctx context.Context, doc *document.ExtractedDocument, namespace, bucket, objectName string) (Outcome, error) {
	payload, err := doc.MarshalJSON()
	if err != nil {
		return failed(NameArchive, fmt.Errorf("encode document: %w", err))
	}

	ref := objectstore.ObjectRef{Namespace: namespace, Bucket: bucket, Name: objectName}
	checksum, err := a.store.Put(ctx, ref, jsonContentType, payload)
	if err != nil {
		return failed(NameArchive, err)
	}

	a.logger.Info("document archived",
		zap.String("object", ref.String()),
		zap.Int("size_bytes", len(payload)),
		zap.String("checksum", checksum),
	)
	return succeeded(NameArchive, "checksum="+checksum), nil
}
