package filters

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/image/ccitt"
)

// CCITTFaxDecode decodes CCITT Group 3/4 fax data, common for bi-level
// scanned images.
//
// Parameters:
//   - K: group selector (<0 Group 4, 0 Group 3 one-dimensional, >0 mixed)
//   - Columns: image width in pixels (default 1728)
//   - Rows: image height (default 0, auto-detected)
//   - BlackIs1: bit interpretation (maps to ccitt.Options.Invert)
//   - EncodedByteAlign: rows padded to byte boundaries
func CCITTFaxDecode(data []byte, params Params) ([]byte, error) {
	columns := params.IntOr("Columns", 1728)
	rows := params.IntOr("Rows", 0)
	k := params.IntOr("K", 0)
	blackIs1 := params.BoolOr("BlackIs1", false)
	byteAlign := params.BoolOr("EncodedByteAlign", false)

	var sf ccitt.SubFormat
	if k < 0 {
		sf = ccitt.Group4
	} else {
		sf = ccitt.Group3
	}

	opts := &ccitt.Options{Invert: blackIs1, Align: byteAlign}

	if rows == 0 {
		rows = ccitt.AutoDetectHeight
	}

	reader := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, sf, columns, rows, opts)
	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("ccitt decode: %w", err)
	}
	return out, nil
}
