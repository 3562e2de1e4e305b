package flate

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/andybalholm/optflate"
)

// A Writer is an io.WriteCloser that compresses what is written to it.
// Optimal parsing needs to see all the data, so nothing is written to the
// underlying writer until Close.
type Writer struct {
	dest     io.Writer
	opts     *optflate.Options
	compress func(opts *optflate.Options, data []byte) []byte
	buf      bytes.Buffer
	closed   bool
}

var errClosed = errors.New("optflate: write to closed Writer")

// NewWriter returns a Writer that writes a raw DEFLATE stream to w. If opts
// is nil, the default options are used.
func NewWriter(w io.Writer, opts *optflate.Options) *Writer {
	return newWriter(w, opts, Compress)
}

// NewGzipWriter returns a Writer that writes gzip format to w.
func NewGzipWriter(w io.Writer, opts *optflate.Options) *Writer {
	return newWriter(w, opts, GzipCompress)
}

// NewZlibWriter returns a Writer that writes zlib format to w.
func NewZlibWriter(w io.Writer, opts *optflate.Options) *Writer {
	return newWriter(w, opts, ZlibCompress)
}

func newWriter(w io.Writer, opts *optflate.Options, compress func(*optflate.Options, []byte) []byte) *Writer {
	return &Writer{
		dest:     w,
		opts:     opts,
		compress: compress,
	}
}

func (w *Writer) Write(p []byte) (n int, err error) {
	if w.closed {
		return 0, errClosed
	}
	return w.buf.Write(p)
}

// Close compresses the buffered data and writes it out. It does not close
// the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	out := w.compress(w.opts, w.buf.Bytes())
	w.buf = bytes.Buffer{}
	if _, err := w.dest.Write(out); err != nil {
		return fmt.Errorf("optflate: writing compressed data: %w", err)
	}
	return nil
}

// Reset discards any buffered data and makes w write to dest.
func (w *Writer) Reset(dest io.Writer) {
	w.dest = dest
	w.buf.Reset()
	w.closed = false
}
