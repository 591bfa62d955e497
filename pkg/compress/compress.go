package compress

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"strings"
)

// Encoding identifies the content coding applied to a response body.
// The empty value means the payload was left as-is.
type Encoding string

const (
	// Identity marks an uncompressed payload. No Content-Encoding header
	// should be written for it.
	Identity Encoding = ""

	// Gzip is the preferred content coding.
	Gzip Encoding = "gzip"

	// Deflate is offered as a fallback when the client does not accept gzip.
	Deflate Encoding = "deflate"
)

// Negotiate compresses payload according to the client's Accept-Encoding
// header and returns the body to send along with the coding that was
// applied. Gzip is preferred over deflate. A compressed form is only used
// when it is strictly smaller than the original; equal-size or larger
// output, an empty payload, and any compression error all fall back to the
// identity form. Negotiate never fails: the worst case is sending the
// payload uncompressed.
func Negotiate(payload []byte, acceptEncoding string) ([]byte, Encoding) {
	if len(payload) == 0 {
		return payload, Identity
	}

	switch {
	case accepts(acceptEncoding, "gzip"):
		if body, ok := compressGzip(payload); ok {
			return body, Gzip
		}
	case accepts(acceptEncoding, "deflate"):
		if body, ok := compressDeflate(payload); ok {
			return body, Deflate
		}
	}
	return payload, Identity
}

// accepts reports whether the Accept-Encoding header value lists the given
// coding. Matching is token-based and case-insensitive; quality values are
// ignored except that "coding;q=0" still counts as listed, mirroring a
// permissive reading of the header.
func accepts(header, coding string) bool {
	for _, part := range strings.Split(header, ",") {
		token := part
		if i := strings.IndexByte(token, ';'); i >= 0 {
			token = token[:i]
		}
		if strings.EqualFold(strings.TrimSpace(token), coding) {
			return true
		}
	}
	return false
}

func compressGzip(payload []byte) ([]byte, bool) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(payload); err != nil {
		return nil, false
	}
	if err := w.Close(); err != nil {
		return nil, false
	}
	if buf.Len() >= len(payload) {
		return nil, false
	}
	return buf.Bytes(), true
}

func compressDeflate(payload []byte) ([]byte, bool) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, false
	}
	if _, err := w.Write(payload); err != nil {
		return nil, false
	}
	if err := w.Close(); err != nil {
		return nil, false
	}
	if buf.Len() >= len(payload) {
		return nil, false
	}
	return buf.Bytes(), true
}
