// Package extract turns arbitrary document bytes into metadata and plain text.
package extract

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"code.sajari.com/docconv"
	"github.com/gabriel-vasile/mimetype"
)

// ContentTypeKey is the metadata key holding the detected media type.
const ContentTypeKey = "Content-Type"

var (
	ErrEmpty       = errors.New("empty document")
	ErrTooLarge    = errors.New("document exceeds size limit")
	ErrUnsupported = errors.New("unsupported document type")
)

// Error reports a failed extraction. It wraps one of the sentinel errors
// above or the underlying read/convert error.
type Error struct {
	MediaType string
	Err       error
}

func (e *Error) Error() string {
	if e.MediaType != "" {
		return fmt.Sprintf("extract %s: %v", e.MediaType, e.Err)
	}
	return fmt.Sprintf("extract: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// supported lists the media types docconv.Convert dispatches on.
var supported = setOf(
	"application/msword",
	"application/vnd.ms-word",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"application/vnd.oasis.opendocument.text",
	"application/vnd.apple.pages",
	"application/x-iwork-pages-sffpages",
	"application/pdf",
	"application/rtf",
	"application/x-rtf",
	"text/rtf",
	"text/richtext",
	"text/html",
	"text/url",
	"text/xml",
	"application/xml",
	"image/jpeg",
	"image/png",
	"image/tif",
	"image/tiff",
	"text/plain",
)

// Result is the engine output before provenance is attached.
type Result struct {
	Metadata map[string]string
	Content  string
}

// Engine detects the format of a byte stream and extracts its text.
type Engine interface {
	Extract(ctx context.Context, r io.Reader) (*Result, error)
}

type Options struct {
	// MaxBytes rejects larger documents; zero means unbounded.
	MaxBytes int64
	// Readability runs docconv's readability pass over HTML.
	Readability bool
}

// DocconvEngine sniffs the media type from content and converts with docconv.
type DocconvEngine struct {
	opts Options
}

var _ Engine = (*DocconvEngine)(nil)

func NewDocconvEngine(opts Options) *DocconvEngine {
	return &DocconvEngine{opts: opts}
}

// Extract reads r fully, then converts it. The converted text is consumed
// line by line and the lines are joined with no separator.
func (e *DocconvEngine) Extract(ctx context.Context, r io.Reader) (*Result, error) {
	data, err := e.readAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, &Error{Err: ErrEmpty}
	}

	detected := mimetype.Detect(data)
	mediaType := baseMediaType(detected.String())
	if err := ctx.Err(); err != nil {
		return nil, &Error{MediaType: mediaType, Err: err}
	}

	convertAs, ok := convertibleType(detected)
	if !ok {
		return nil, &Error{MediaType: mediaType, Err: ErrUnsupported}
	}

	res, err := docconv.Convert(bytes.NewReader(data), convertAs, e.opts.Readability)
	if err != nil {
		return nil, &Error{MediaType: mediaType, Err: err}
	}
	if res.Error != "" {
		return nil, &Error{MediaType: mediaType, Err: errors.New(res.Error)}
	}

	content, err := joinLines(strings.NewReader(res.Body))
	if err != nil {
		return nil, &Error{MediaType: mediaType, Err: err}
	}

	metadata := make(map[string]string, len(res.Meta)+1)
	for k, v := range res.Meta {
		metadata[k] = v
	}
	metadata[ContentTypeKey] = mediaType

	return &Result{Metadata: metadata, Content: content}, nil
}

func (e *DocconvEngine) readAll(r io.Reader) ([]byte, error) {
	if e.opts.MaxBytes <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, &Error{Err: fmt.Errorf("read document: %w", err)}
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(r, e.opts.MaxBytes+1))
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("read document: %w", err)}
	}
	if int64(len(data)) > e.opts.MaxBytes {
		return nil, &Error{Err: ErrTooLarge}
	}
	return data, nil
}

// joinLines drops line terminators ("\n", "\r\n") and concatenates what is left.
func joinLines(r io.Reader) (string, error) {
	br := bufio.NewReader(r)
	var sb strings.Builder
	for {
		line, err := br.ReadString('\n')
		sb.WriteString(strings.TrimRight(line, "\r\n"))
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return "", err
		}
	}
}

// convertibleType walks from the detected type up its ancestors (text/csv and
// image/svg+xml are both text/plain) to the first type docconv converts.
func convertibleType(m *mimetype.MIME) (string, bool) {
	for ; m != nil; m = m.Parent() {
		if mt := baseMediaType(m.String()); supported[mt] {
			return mt, true
		}
	}
	return "", false
}

func setOf(values ...string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func baseMediaType(mt string) string {
	if idx := strings.IndexByte(mt, ';'); idx >= 0 {
		mt = mt[:idx]
	}
	return strings.TrimSpace(strings.ToLower(mt))
}
