package value

import (
	"math"
	"strconv"

	"github.com/tidwall/gjson"
)

// MarshalJSON renders v as JSON. Object members keep insertion order.
// Non-finite numbers are rendered as null. Strings are escaped the way
// encoding/json escapes them, invalid UTF-8 included.
func (v Value) MarshalJSON() ([]byte, error) {
	return v.appendJSON(nil), nil
}

func (v Value) appendJSON(buf []byte) []byte {
	switch v.kind {
	case KindBool:
		return strconv.AppendBool(buf, v.b)
	case KindNumber:
		return appendNumber(buf, v.n)
	case KindString:
		return appendString(buf, v.s)
	case KindArray:
		buf = append(buf, '[')
		for i, e := range v.arr.elems {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = e.appendJSON(buf)
		}
		return append(buf, ']')
	case KindObject:
		buf = append(buf, '{')
		for i, k := range v.obj.keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendString(buf, k)
			buf = append(buf, ':')
			buf = v.obj.fields[k].appendJSON(buf)
		}
		return append(buf, '}')
	default:
		return append(buf, "null"...)
	}
}

func appendNumber(buf []byte, n float64) []byte {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return append(buf, "null"...)
	}
	if n == 0 {
		return append(buf, '0')
	}
	abs := math.Abs(n)
	if abs >= 1e21 || abs < 1e-6 {
		buf = strconv.AppendFloat(buf, n, 'e', -1, 64)
		// Shorten two-digit exponents: 1e-07 -> 1e-7.
		if l := len(buf); l >= 4 && buf[l-4] == 'e' && buf[l-2] == '0' {
			buf[l-2] = buf[l-1]
			buf = buf[:l-1]
		}
		return buf
	}
	return strconv.AppendFloat(buf, n, 'f', -1, 64)
}

func appendString(buf []byte, s string) []byte {
	return gjson.AppendJSONString(buf, s)
}
