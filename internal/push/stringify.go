package push

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
)

// Stringify converts an arbitrary custom-data value into the string form carried by the
// push data channel. It is total: every input yields a string.
//
//	nil            -> "null"
//	string         -> unchanged
//	bool           -> "true" / "false"
//	json.Number    -> shortest decimal when that keeps the exact value, else its literal
//	integers       -> decimal
//	floats         -> shortest decimal ("5", "2.5"), exponent form outside [1e-6, 1e21)
//	map/slice/struct -> compact JSON, map keys sorted
//	anything else  -> fmt.Sprint
func Stringify(v any) string {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return "null"
	}

	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return formatNumber(val)
	case float64:
		return formatFloat(val, 64)
	case float32:
		return formatFloat(float64(val), 32)
	case int:
		return strconv.Itoa(val)
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(val).Int(), 10)
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(val).Uint(), 10)
	case fmt.Stringer:
		return val.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if rv.Kind() == reflect.Map || rv.Kind() == reflect.Slice {
			if rv.IsNil() {
				return "null"
			}
		}
		if raw, err := json.Marshal(v); err == nil {
			return string(raw)
		}
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "null"
		}
		return Stringify(rv.Elem().Interface())
	}
	return fmt.Sprint(v)
}

// formatNumber renders n like a float64 ("1.0" -> "1", "1e2" -> "100") unless the
// float64 form names a different value, as with integers beyond 2^53.
func formatNumber(n json.Number) string {
	lit := n.String()
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return lit
	}
	if f == 0 {
		return "0"
	}
	out := formatFloat(f, 64)

	want, ok := new(big.Rat).SetString(lit)
	if !ok {
		return lit
	}
	got, ok := new(big.Rat).SetString(out)
	if !ok || got.Cmp(want) != 0 {
		return lit
	}
	return out
}

func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'g', -1, bitSize)
	}
	return strconv.FormatFloat(f, 'f', -1, bitSize)
}

// StringifyData coerces every value of data. The result is always a new, non-nil map.
func StringifyData(data map[string]any) map[string]string {
	out := make(map[string]string, len(data))
	for k, v := range data {
		out[k] = Stringify(v)
	}
	return out
}
