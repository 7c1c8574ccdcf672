package filters

import (
	"bytes"
	stdlzw "compress/lzw"
	"fmt"
	"io"

	tifflzw "golang.org/x/image/tiff/lzw"
)

// LZWDecode decompresses LZW data. PDF uses MSB-first codes with an
// EarlyChange parameter defaulting to 1, which matches the TIFF variant;
// EarlyChange 0 matches the standard-library decoder. The declared
// predictor is applied afterwards.
func LZWDecode(data []byte, params Params) ([]byte, error) {
	earlyChange := params.IntOr("EarlyChange", 1)

	var reader io.ReadCloser
	if earlyChange == 0 {
		reader = stdlzw.NewReader(bytes.NewReader(data), stdlzw.MSB, 8)
	} else {
		reader = tifflzw.NewReader(bytes.NewReader(data), tifflzw.MSB, 8)
	}
	defer reader.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("lzw decompress: %w", err)
	}

	return applyPredictor(buf.Bytes(), params)
}
