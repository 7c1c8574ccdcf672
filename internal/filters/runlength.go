package filters

import (
	"bytes"
	"fmt"
)

// RunLengthDecode decodes run-length data per ISO 32000-1 §7.4.5. A length
// byte 0-127 is followed by length+1 literal bytes; 129-255 repeats the
// next byte 257-length times; 128 is end of data.
func RunLengthDecode(data []byte) ([]byte, error) {
	var result bytes.Buffer

	i := 0
	for i < len(data) {
		length := data[i]
		i++

		switch {
		case length == 128:
			return result.Bytes(), nil
		case length < 128:
			n := int(length) + 1
			if i+n > len(data) {
				return nil, fmt.Errorf("truncated literal run: need %d bytes, have %d", n, len(data)-i)
			}
			result.Write(data[i : i+n])
			i += n
		default:
			if i >= len(data) {
				return nil, fmt.Errorf("truncated repeat run")
			}
			n := 257 - int(length)
			b := data[i]
			i++
			for j := 0; j < n; j++ {
				result.WriteByte(b)
			}
		}
	}

	// Missing EOD byte is tolerated at end of input.
	return result.Bytes(), nil
}
