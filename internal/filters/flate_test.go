package filters

import (
	"bytes"
	"compress/zlib"
	"testing"
)

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("compress: %v", err)
	}
	zw.Close()
	return buf.Bytes()
}

// TestFlateRoundTrip decodes stdlib-compressed payloads.
func TestFlateRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte(""),
		[]byte("hello"),
		bytes.Repeat([]byte("abcdef"), 500),
	}

	for _, want := range payloads {
		got, err := FlateDecode(deflate(t, want), nil)
		if err != nil {
			t.Fatalf("FlateDecode error = %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("round trip failed for %d bytes", len(want))
		}
	}
}

// TestFlateCorrupt reports an error for non-zlib data.
func TestFlateCorrupt(t *testing.T) {
	if _, err := FlateDecode([]byte("not zlib at all"), nil); err == nil {
		t.Error("expected error")
	}
}

// pngFilter applies a PNG row filter forward, producing test input for
// the predictor.
func pngFilter(filterType byte, rows [][]byte, bytesPerPixel int) []byte {
	var out []byte
	prev := make([]byte, len(rows[0]))
	for _, row := range rows {
		out = append(out, filterType)
		for i := range row {
			var left, up, upLeft byte
			if i >= bytesPerPixel {
				left = row[i-bytesPerPixel]
				upLeft = prev[i-bytesPerPixel]
			}
			up = prev[i]

			var predicted byte
			switch filterType {
			case 0:
			case 1:
				predicted = left
			case 2:
				predicted = up
			case 3:
				predicted = byte((int(left) + int(up)) / 2)
			case 4:
				predicted = paeth(left, up, upLeft)
			}
			out = append(out, row[i]-predicted)
		}
		prev = row
	}
	return out
}

// TestPNGPredictors recovers rows filtered with every PNG filter type.
func TestPNGPredictors(t *testing.T) {
	rows := [][]byte{
		{10, 20, 30, 40},
		{15, 25, 35, 45},
		{100, 110, 120, 130},
	}
	want := bytes.Join(rows, nil)

	for filterType := byte(0); filterType <= 4; filterType++ {
		filtered := pngFilter(filterType, rows, 1)
		compressed := deflate(t, filtered)

		got, err := FlateDecode(compressed, Params{
			"Predictor": 10 + int(filterType),
			"Columns":   4,
			"Colors":    1,
		})
		if err != nil {
			t.Fatalf("filter type %d: error = %v", filterType, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("filter type %d: got %v, want %v", filterType, got, want)
		}
	}
}

// TestTIFFPredictor recovers horizontally differenced samples.
func TestTIFFPredictor(t *testing.T) {
	want := []byte{10, 20, 30, 12, 24, 36}
	diffed := []byte{10, 10, 10, 12, 12, 12} // per-row left differences

	got, err := FlateDecode(deflate(t, diffed), Params{
		"Predictor": 2,
		"Columns":   3,
		"Colors":    1,
	})
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

// TestPredictorErrors rejects unknown predictors and bad geometry.
func TestPredictorErrors(t *testing.T) {
	if _, err := FlateDecode(deflate(t, []byte{1, 2, 3}), Params{"Predictor": 7}); err == nil {
		t.Error("expected error for unknown predictor")
	}
	if _, err := FlateDecode(deflate(t, []byte{1, 2, 3}), Params{
		"Predictor": 10, "Columns": 4, "Colors": 1,
	}); err == nil {
		t.Error("expected error for data not matching row size")
	}
}
