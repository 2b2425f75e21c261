package policy

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
)

// compress encodes body with coding at level (1..9).
func compress(coding string, level int, body []byte) ([]byte, error) {
	var buf bytes.Buffer
	var w io.WriteCloser
	var err error
	switch coding {
	case CodingBrotli:
		w = brotli.NewWriterLevel(&buf, level)
	case CodingGzip:
		w, err = gzip.NewWriterLevel(&buf, level)
	case CodingDeflate:
		w, err = flate.NewWriter(&buf, level)
	default:
		return nil, fmt.Errorf("unsupported content coding %q", coding)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s writer: %w", coding, err)
	}
	if _, err := w.Write(body); err != nil {
		return nil, fmt.Errorf("write %s payload: %w", coding, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close %s writer: %w", coding, err)
	}
	return buf.Bytes(), nil
}
