package regionvar

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// A .tsz archive is a zstandard-compressed treeseq container stream.

func newArchiveReader(r io.Reader) (*zstd.Decoder, error) {
	return zstd.NewReader(r)
}

func newArchiveWriter(w io.Writer) (*zstd.Encoder, error) {
	return zstd.NewWriter(w)
}
