package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/your-org/docrepo/internal/document"
)

const maxLoggedResponse = 4 << 10

// Search submits documents to the search index endpoint.
type Search struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

func NewSearch(endpoint string, timeout time.Duration, logger *zap.Logger) *Search {
	return &Search{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Index posts doc to {endpoint}/{indexPath}. Every HTTP response counts as
// completed, whatever its status; only transport faults fail.
func (s *Search) Index(ctx context.Context, doc *document.ExtractedDocument, indexPath string) (Outcome, error) {
	payload, err := doc.MarshalJSON()
	if err != nil {
		return failed(NameSearch, fmt.Errorf("encode document: %w", err))
	}

	url := s.endpoint + "/" + strings.TrimLeft(indexPath, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return failed(NameSearch, err)
	}
	req.Header.Set("Content-Type", jsonContentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return failed(NameSearch, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedResponse))
	// drain so the keep-alive connection goes back to the pool
	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	s.logger.Info("search index response",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", body),
	)

	return succeeded(NameSearch, fmt.Sprintf("status=%d", resp.StatusCode)), nil
}
