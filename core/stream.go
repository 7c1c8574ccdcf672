package core

import (
	"fmt"

	"github.com/tsawler/vellum/internal/filters"
)

// FilterError reports a stream decode failure. The affected stream is
// unusable; the document remains usable.
type FilterError struct {
	Filter string
	Reason error
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("filter %s: %v", e.Filter, e.Reason)
}

func (e *FilterError) Unwrap() error { return e.Reason }

// Decode decodes the stream payload by applying the /Filter chain left to
// right with the matching /DecodeParms. The result is memoized: decoding
// twice yields identical bytes without re-running the filters.
func (s *Stream) Decode() ([]byte, error) {
	if s.decodeRun {
		return s.decoded, s.decodeErr
	}
	s.decoded, s.decodeErr = s.decode()
	s.decodeRun = true
	return s.decoded, s.decodeErr
}

func (s *Stream) decode() ([]byte, error) {
	filterObj := s.Dict.Get("Filter")
	if filterObj == nil {
		return s.Data, nil
	}

	paramsObj := s.Dict.Get("DecodeParms")
	if paramsObj == nil {
		paramsObj = s.Dict.Get("DP") // abbreviated form used by inline images
	}

	// Single filter.
	if filterName, ok := filterObj.(Name); ok {
		out, err := decodeWithFilter(s.Data, string(filterName), paramsObjToDict(paramsObj))
		if err != nil {
			return nil, &FilterError{Filter: string(filterName), Reason: err}
		}
		return out, nil
	}

	// Filter chain.
	filterArray, ok := filterObj.(Array)
	if !ok {
		return nil, fmt.Errorf("invalid /Filter type: %T", filterObj)
	}

	data := s.Data
	for i, filter := range filterArray {
		filterName, ok := filter.(Name)
		if !ok {
			return nil, fmt.Errorf("filter %d is not a name: %T", i, filter)
		}

		var params Dict
		if paramsArray, ok := paramsObj.(Array); ok {
			if i < len(paramsArray) {
				params = paramsObjToDict(paramsArray[i])
			}
		} else {
			params = paramsObjToDict(paramsObj)
		}

		var err error
		data, err = decodeWithFilter(data, string(filterName), params)
		if err != nil {
			return nil, &FilterError{Filter: string(filterName), Reason: err}
		}
	}

	return data, nil
}

// Filters returns the stream's filter names in application order.
func (s *Stream) Filters() []string {
	switch f := s.Dict.Get("Filter").(type) {
	case Name:
		return []string{string(f)}
	case Array:
		names := make([]string, 0, len(f))
		for _, item := range f {
			if n, ok := item.(Name); ok {
				names = append(names, string(n))
			}
		}
		return names
	default:
		return nil
	}
}

// decodeWithFilter applies a single filter. Both full names and the
// inline-image abbreviations are accepted.
func decodeWithFilter(data []byte, filterName string, params Dict) ([]byte, error) {
	switch filterName {
	case "FlateDecode", "Fl":
		return filters.FlateDecode(data, dictToParams(params))

	case "ASCIIHexDecode", "AHx":
		return filters.ASCIIHexDecode(data)

	case "ASCII85Decode", "A85":
		return filters.ASCII85Decode(data)

	case "LZWDecode", "LZW":
		return filters.LZWDecode(data, dictToParams(params))

	case "RunLengthDecode", "RL":
		return filters.RunLengthDecode(data)

	case "CCITTFaxDecode", "CCF":
		return filters.CCITTFaxDecode(data, dictToParams(params))

	case "DCTDecode", "DCT":
		// JPEG payload is passed through; raster decoding is out of scope.
		return data, nil

	case "JBIG2Decode":
		// JBIG2 payload is passed through, like DCTDecode.
		return data, nil

	case "JPXDecode":
		// JPEG2000 payload is passed through.
		return data, nil

	case "Crypt":
		return nil, fmt.Errorf("Crypt filter is not supported")

	default:
		return nil, fmt.Errorf("unknown filter: %s", filterName)
	}
}

// paramsObjToDict converts a DecodeParms object to a Dict; nil and Null
// both mean no parameters.
func paramsObjToDict(obj Object) Dict {
	if dict, ok := obj.(Dict); ok {
		return dict
	}
	return nil
}

// dictToParams translates a core.Dict into filters.Params with Go
// primitive values.
func dictToParams(dict Dict) filters.Params {
	if dict == nil {
		return nil
	}

	params := make(filters.Params, len(dict))
	for k, v := range dict {
		switch obj := v.(type) {
		case Int:
			params[k] = int(obj)
		case Real:
			params[k] = float64(obj)
		case Bool:
			params[k] = bool(obj)
		case Name:
			params[k] = string(obj)
		case String:
			params[k] = string(obj.Value)
		default:
			params[k] = v
		}
	}
	return params
}
