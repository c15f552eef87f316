package dump

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

type dumpReader struct {
	io.Reader
	close func() error
}

func (r *dumpReader) Close() error {
	return r.close()
}

// OpenDumpFile opens a dump with decompression picked by extension. Anything
// other than .gz, .xz or .zst is read as plain text.
func OpenDumpFile(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch filepath.Ext(path) {
	case ".gz":
		gz, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, err
		}
		return &dumpReader{Reader: gz, close: func() error {
			gz.Close()
			return file.Close()
		}}, nil
	case ".xz":
		xzr, err := xz.NewReader(file)
		if err != nil {
			file.Close()
			return nil, err
		}
		return &dumpReader{Reader: xzr, close: file.Close}, nil
	case ".zst":
		zr, err := zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, err
		}
		return &dumpReader{Reader: zr, close: func() error {
			zr.Close()
			return file.Close()
		}}, nil
	default:
		return file, nil
	}
}
