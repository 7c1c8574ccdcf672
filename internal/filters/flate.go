package filters

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// FlateDecode decompresses Flate (zlib/deflate) data, the most common PDF
// stream filter, and applies the declared predictor.
func FlateDecode(data []byte, params Params) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create zlib reader: %w", err)
	}
	defer reader.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}

	return applyPredictor(buf.Bytes(), params)
}
