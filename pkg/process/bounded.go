package process

import (
	"errors"
	"io"
)

// Exported variables.
var (
	ErrBoundedClosed = errors.New("read from closed bounded stream")
)

// BoundedReader is a read view over a shared stream limited to a fixed
// number of bytes. Reading past the bound returns io.EOF. The underlying
// stream is closed on Close only if propagateClose is set.
type BoundedReader struct {
	r              io.Reader
	remaining      int64
	size           int64
	propagateClose bool
	closed         bool
	truncated      bool
}

// NewBoundedReader limits r to n bytes.
func NewBoundedReader(r io.Reader, n int64, propagateClose bool) *BoundedReader {
	return &BoundedReader{
		r:              r,
		remaining:      n,
		size:           n,
		propagateClose: propagateClose,
	}
}

// Close marks the view closed; see NewBoundedReader for propagation.
func (b *BoundedReader) Close() error {
	if b.closed {
		return nil
	}

	b.closed = true

	if !b.propagateClose {
		return nil
	}

	if closer, ok := b.r.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}

// Drain discards the unread part of the view so the shared stream is
// positioned right after it. It works on closed views too.
func (b *BoundedReader) Drain() error {
	if b.remaining <= 0 {
		return nil
	}

	n, err := io.CopyN(io.Discard, b.r, b.remaining)
	b.remaining -= n

	if errors.Is(err, io.EOF) {
		b.truncated = true

		return io.ErrUnexpectedEOF
	}

	return err
}

// Read reads at most the remaining bytes of the view. A shared stream that
// ends before the bound yields io.ErrUnexpectedEOF.
func (b *BoundedReader) Read(p []byte) (int, error) {
	if b.closed {
		return 0, ErrBoundedClosed
	}

	if b.remaining <= 0 {
		return 0, io.EOF
	}

	if int64(len(p)) > b.remaining {
		p = p[:b.remaining]
	}

	n, err := b.r.Read(p)
	b.remaining -= int64(n)

	if errors.Is(err, io.EOF) {
		if b.remaining > 0 {
			b.truncated = true

			return n, io.ErrUnexpectedEOF
		}

		return n, nil
	}

	return n, err
}

// Remaining returns the number of unread bytes in the view.
func (b *BoundedReader) Remaining() int64 {
	return b.remaining
}

// Truncated reports whether the shared stream ended before the bound.
func (b *BoundedReader) Truncated() bool {
	return b.truncated
}

// Size returns the bound.
func (b *BoundedReader) Size() int64 {
	return b.size
}
