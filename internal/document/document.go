// Package document assembles the canonical extracted-document record.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Reserved keys are written by the assembler after extracted metadata.
const (
	KeyContent = "content"
	KeyMD5     = "md5"
	KeyPath    = "path"
)

// ExtractedDocument is built once per invocation and only read afterwards.
// Metadata never contains the reserved keys.
type ExtractedDocument struct {
	Metadata map[string]string
	Content  string
	Checksum string
	Path     string
}

// Fields flattens the document into the map that is serialized.
func (d *ExtractedDocument) Fields() map[string]string {
	fields := make(map[string]string, len(d.Metadata)+3)
	for k, v := range d.Metadata {
		fields[k] = v
	}
	fields[KeyContent] = d.Content
	fields[KeyMD5] = d.Checksum
	fields[KeyPath] = d.Path
	return fields
}

// MarshalJSON renders one flat object with keys in sorted order.
// HTML characters are left unescaped; json.Marshal re-escapes them, so sinks
// call MarshalJSON directly.
func (d *ExtractedDocument) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d.Fields()); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON splits a flat object back into metadata and reserved fields.
func (d *ExtractedDocument) UnmarshalJSON(data []byte) error {
	var fields map[string]string
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	d.Content = fields[KeyContent]
	d.Checksum = fields[KeyMD5]
	d.Path = fields[KeyPath]
	d.Metadata = make(map[string]string, len(fields))
	for k, v := range fields {
		if isReserved(k) {
			continue
		}
		d.Metadata[k] = v
	}
	return nil
}

// Assembler attaches provenance to extraction output.
type Assembler struct {
	baseURL string
}

// NewAssembler returns an Assembler rendering paths under baseURL,
// e.g. "https://objectstorage.eu-frankfurt-1.oraclecloud.com".
func NewAssembler(baseURL string) *Assembler {
	return &Assembler{baseURL: strings.TrimRight(baseURL, "/")}
}

// Path returns the fully-qualified locator of a source object.
func (a *Assembler) Path(namespace, bucket, name string) string {
	return a.baseURL + "/n/" + namespace + "/b/" + bucket + "/o/" + name
}

// Assemble copies metadata and then sets the reserved fields, so extracted
// keys named content, md5 or path are dropped.
func (a *Assembler) Assemble(metadata map[string]string, content, checksum, path string) *ExtractedDocument {
	md := make(map[string]string, len(metadata))
	for k, v := range metadata {
		if isReserved(k) {
			continue
		}
		md[k] = v
	}
	return &ExtractedDocument{
		Metadata: md,
		Content:  content,
		Checksum: checksum,
		Path:     path,
	}
}

func isReserved(key string) bool {
	return key == KeyContent || key == KeyMD5 || key == KeyPath
}
