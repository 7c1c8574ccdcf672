package filters

import "fmt"

// applyPredictor undoes the predictor declared in params. Predictor 1 is
// identity, 2 is TIFF horizontal differencing, 10-15 are the PNG filters
// applied per row with a leading filter-type byte. Predictors run after
// the compression stage using the declared row geometry.
func applyPredictor(data []byte, params Params) ([]byte, error) {
	predictor := params.IntOr("Predictor", 1)
	switch {
	case predictor == 1:
		return data, nil
	case predictor == 2:
		return applyTIFFPredictor(data, params)
	case predictor >= 10 && predictor <= 15:
		return applyPNGPredictor(data, params)
	default:
		return nil, fmt.Errorf("unsupported predictor: %d", predictor)
	}
}

// applyTIFFPredictor undoes TIFF Predictor 2, which differences each
// sample against its left neighbor.
func applyTIFFPredictor(data []byte, params Params) ([]byte, error) {
	columns := params.IntOr("Columns", 1)
	colors := params.IntOr("Colors", 1)
	bpc := params.IntOr("BitsPerComponent", 8)

	if bpc != 8 {
		return nil, fmt.Errorf("TIFF predictor supports 8 bits per component, got %d", bpc)
	}

	rowSize := columns * colors
	if rowSize <= 0 || len(data)%rowSize != 0 {
		return nil, fmt.Errorf("data size %d is not a multiple of row size %d", len(data), rowSize)
	}

	result := make([]byte, len(data))
	for row := 0; row < len(data)/rowSize; row++ {
		rowStart := row * rowSize
		for col := 0; col < rowSize; col++ {
			idx := rowStart + col
			if col < colors {
				result[idx] = data[idx]
			} else {
				result[idx] = data[idx] + result[idx-colors]
			}
		}
	}
	return result, nil
}

// applyPNGPredictor undoes the PNG row filters. Each row carries a filter
// type byte (0 None, 1 Sub, 2 Up, 3 Average, 4 Paeth) followed by the
// filtered samples.
func applyPNGPredictor(data []byte, params Params) ([]byte, error) {
	columns := params.IntOr("Columns", 1)
	colors := params.IntOr("Colors", 1)
	bpc := params.IntOr("BitsPerComponent", 8)

	bytesPerPixel := (colors*bpc + 7) / 8
	if bytesPerPixel < 1 {
		bytesPerPixel = 1
	}
	rowLength := (columns*colors*bpc + 7) / 8
	rowSize := rowLength + 1 // leading filter-type byte

	if rowLength <= 0 || len(data)%rowSize != 0 {
		return nil, fmt.Errorf("data size %d is not a multiple of row size %d", len(data), rowSize)
	}

	numRows := len(data) / rowSize
	result := make([]byte, numRows*rowLength)
	prevRow := make([]byte, rowLength)

	for row := 0; row < numRows; row++ {
		filterType := data[row*rowSize]
		rowData := data[row*rowSize+1 : (row+1)*rowSize]
		out := result[row*rowLength : (row+1)*rowLength]

		for i := 0; i < rowLength; i++ {
			var left, up, upLeft byte
			if i >= bytesPerPixel {
				left = out[i-bytesPerPixel]
				upLeft = prevRow[i-bytesPerPixel]
			}
			up = prevRow[i]

			var predicted byte
			switch filterType {
			case 0: // None
			case 1: // Sub
				predicted = left
			case 2: // Up
				predicted = up
			case 3: // Average
				predicted = byte((int(left) + int(up)) / 2)
			case 4: // Paeth
				predicted = paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("unknown PNG filter type %d in row %d", filterType, row)
			}
			out[i] = rowData[i] + predicted
		}

		copy(prevRow, out)
	}

	return result, nil
}

// paeth selects the neighbor closest to the linear prediction p = a+b-c,
// as defined by the PNG specification.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := iabs(p - int(a))
	pb := iabs(p - int(b))
	pc := iabs(p - int(c))

	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func iabs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
