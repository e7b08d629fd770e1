package compression

import (
	"io"

	"github.com/andybalholm/brotli"
	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// nopWriteCloser lets the identity codec satisfy io.WriteCloser without
// closing the wrapped writer.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

type identityCodec struct{}

func (identityCodec) OpenWriter(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{Writer: w}, nil
}

func (identityCodec) OpenReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

type bzip2Codec struct{}

func (bzip2Codec) OpenWriter(w io.Writer) (io.WriteCloser, error) {
	return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.DefaultCompression})
}

func (bzip2Codec) OpenReader(r io.Reader) (io.ReadCloser, error) {
	return bzip2.NewReader(r, nil)
}

type gzipCodec struct{}

func (gzipCodec) OpenWriter(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriter(w), nil
}

func (gzipCodec) OpenReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

type lz4Codec struct{}

func (lz4Codec) OpenWriter(w io.Writer) (io.WriteCloser, error) {
	return lz4.NewWriter(w), nil
}

func (lz4Codec) OpenReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}

type lzmaCodec struct{}

func (lzmaCodec) OpenWriter(w io.Writer) (io.WriteCloser, error) {
	return lzma.NewWriter(w)
}

func (lzmaCodec) OpenReader(r io.Reader) (io.ReadCloser, error) {
	reader, err := lzma.NewReader(r)
	if err != nil {
		return nil, err
	}

	return io.NopCloser(reader), nil
}

type xzCodec struct{}

func (xzCodec) OpenWriter(w io.Writer) (io.WriteCloser, error) {
	return xz.NewWriter(w)
}

func (xzCodec) OpenReader(r io.Reader) (io.ReadCloser, error) {
	reader, err := xz.NewReader(r)
	if err != nil {
		return nil, err
	}

	return io.NopCloser(reader), nil
}

type zstdCodec struct{}

func (zstdCodec) OpenWriter(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w)
}

func (zstdCodec) OpenReader(r io.Reader) (io.ReadCloser, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}

	return decoder.IOReadCloser(), nil
}

type brotliCodec struct{}

func (brotliCodec) OpenWriter(w io.Writer) (io.WriteCloser, error) {
	return brotli.NewWriter(w), nil
}

func (brotliCodec) OpenReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(brotli.NewReader(r)), nil
}
