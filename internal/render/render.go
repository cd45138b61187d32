// Package render writes reports as JSON documents or as fixed-label text.
// Output is built in memory and written in one call, so a failed render
// never leaves a partial document on the writer.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Format selects the output form.
type Format int

const (
	Text Format = iota
	JSON
)

// FormatFor returns JSON when asJSON is set and Text otherwise.
func FormatFor(asJSON bool) Format {
	if asJSON {
		return JSON
	}
	return Text
}

func (f Format) String() string {
	if f == JSON {
		return "json"
	}
	return "text"
}

// field is one key of an ordered JSON object.
type field struct {
	key   string
	value any
}

// object is a JSON object that keeps its keys in insertion order.
type object []field

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeCompact(&buf, f.key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeCompact(&buf, f.value); err != nil {
			return nil, fmt.Errorf("field %s: %w", f.key, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeCompact(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// writeJSON encodes doc with four-space indentation.
func writeJSON(w io.Writer, doc any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// textWriter accumulates text lines.
type textWriter struct {
	buf bytes.Buffer
}

func (t *textWriter) line(format string, args ...any) {
	fmt.Fprintf(&t.buf, format, args...)
	t.buf.WriteByte('\n')
}

func (t *textWriter) blank() { t.buf.WriteByte('\n') }

func (t *textWriter) flush(w io.Writer) error {
	_, err := w.Write(t.buf.Bytes())
	return err
}
