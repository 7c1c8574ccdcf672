package filters

// Params carries decode parameters from a stream's /DecodeParms
// dictionary, translated to Go primitive types. Common keys are
// Predictor, Columns, Colors, BitsPerComponent, EarlyChange, K, Rows,
// BlackIs1.
type Params map[string]interface{}

// IntOr returns the integer parameter for key, or def when the key is
// missing or not numeric.
func (p Params) IntOr(key string, def int) int {
	if p == nil {
		return def
	}
	switch v := p[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// BoolOr returns the boolean parameter for key, or def when the key is
// missing or not a boolean.
func (p Params) BoolOr(key string, def bool) bool {
	if p == nil {
		return def
	}
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}
