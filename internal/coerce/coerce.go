// Package coerce converts loosely typed attribute values the way the Clear
// Books client has always treated them: integers and floats are read
// leniently, dates and the payment amount strictly.
package coerce

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnsupportedType is returned for values of a kind that has no conversion.
	ErrUnsupportedType = errors.New("unsupported type")
	// ErrInvalidDecimal is returned when a string is not a decimal number.
	ErrInvalidDecimal = errors.New("invalid decimal")
	// ErrInvalidDate is returned when a string matches no known date layout.
	ErrInvalidDate = errors.New("invalid date")
)

// dateLayouts are tried in order by Date.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006",
	"2 Jan 2006",
	"Jan 2 2006",
}

// LenientInt converts v to an integer and never fails. Strings contribute
// their leading decimal digits ("42abc" is 42, "abc" is 0), floats and
// decimals are truncated, and anything else is zero.
func LenientInt(v any) int64 {
	switch val := v.(type) {
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case int64:
		return val
	case uint:
		return clampUint(uint64(val))
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint64:
		return clampUint(val)
	case float32:
		return truncFloat(float64(val))
	case float64:
		return truncFloat(val)
	case decimal.Decimal:
		return val.IntPart()
	case string:
		return parseLenientInt(val)
	default:
		return 0
	}
}

// parseLenientInt reads an optional sign and the digits that follow it,
// skipping leading whitespace and single underscores between digits.
// Input without leading digits yields zero.
func parseLenientInt(s string) int64 {
	s = strings.TrimLeft(s, " \t\n\r\f\v")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	var n int64
	prevDigit := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' && prevDigit && i+1 < len(s) && isDigit(s[i+1]) {
			prevDigit = false
			continue
		}
		if !isDigit(c) {
			break
		}
		d := int64(c - '0')
		if n > (math.MaxInt64-d)/10 {
			if neg {
				return math.MinInt64
			}
			return math.MaxInt64
		}
		n = n*10 + d
		prevDigit = true
	}
	if neg {
		return -n
	}
	return n
}

// LenientDecimal converts v to a decimal the way a float conversion reads
// strings: the longest numeric prefix counts and no prefix means zero.
// Strings never fail: magnitudes beyond float64 saturate at
// ±math.MaxFloat64 and underflow becomes zero. nil is zero. Maps, slices
// and other kinds are rejected.
func LenientDecimal(v any) (decimal.Decimal, error) {
	switch val := v.(type) {
	case nil:
		return decimal.Zero, nil
	case string:
		prefix, _ := numericPrefix(val)
		if prefix == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(prefix)
		if err != nil || overflows(d) {
			return saturate(prefix), nil
		}
		return dropUnderflow(d), nil
	default:
		return number(v)
	}
}

// saturate reads a validated numeric prefix as a float64, clamping
// overflow to the largest finite value of the same sign.
func saturate(prefix string) decimal.Decimal {
	f, _ := strconv.ParseFloat(prefix, 64)
	if math.IsInf(f, 0) {
		f = math.Copysign(math.MaxFloat64, f)
	}
	return decimal.NewFromFloat(f)
}

// Decimal converts v to a decimal strictly: a string must be a number in its
// entirety, surrounding whitespace aside. Values too large to send as a
// float64 are rejected, as is nil.
func Decimal(v any) (decimal.Decimal, error) {
	s, ok := v.(string)
	if !ok {
		d, err := number(v)
		if err != nil {
			return decimal.Zero, err
		}
		return finite(d, v)
	}
	trimmed := strings.TrimSpace(s)
	prefix, consumed := numericPrefix(trimmed)
	if prefix == "" || consumed != len(trimmed) {
		return decimal.Zero, fmt.Errorf("%w %q", ErrInvalidDecimal, s)
	}
	d, err := decimal.NewFromString(prefix)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w %q: %v", ErrInvalidDecimal, s, err)
	}
	return finite(d, s)
}

// maxFloatMagnitude is the decimal exponent past which every value exceeds
// math.MaxFloat64 (about 1.8e308).
const maxFloatMagnitude = 309

// overflows reports whether d becomes ±Inf as a float64. The exponent is
// checked first so huge inputs never reach the exact conversion.
func overflows(d decimal.Decimal) bool {
	if d.IsZero() {
		return false
	}
	mag := int64(d.Exponent()) + int64(d.NumDigits())
	switch {
	case mag > maxFloatMagnitude:
		return true
	case mag < maxFloatMagnitude-1:
		return false
	}
	return math.IsInf(d.InexactFloat64(), 0)
}

func finite(d decimal.Decimal, in any) (decimal.Decimal, error) {
	if overflows(d) {
		return decimal.Zero, fmt.Errorf("%w %v: out of float64 range", ErrInvalidDecimal, in)
	}
	return dropUnderflow(d), nil
}

// minFloatMagnitude is the decimal exponent below which every value rounds
// to zero as a float64 (the smallest subnormal is about 4.9e-324).
const minFloatMagnitude = -324

// dropUnderflow returns zero for values no float64 can tell apart from zero.
func dropUnderflow(d decimal.Decimal) decimal.Decimal {
	if !d.IsZero() && int64(d.Exponent())+int64(d.NumDigits()) < minFloatMagnitude {
		return decimal.Zero
	}
	return d
}

func number(v any) (decimal.Decimal, error) {
	switch val := v.(type) {
	case decimal.Decimal:
		return val, nil
	case float32:
		return decimal.NewFromFloat32(val), nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return decimal.Zero, fmt.Errorf("%w %v", ErrInvalidDecimal, val)
		}
		return decimal.NewFromFloat(val), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return decimal.NewFromInt(LenientInt(val)), nil
	default:
		return decimal.Zero, fmt.Errorf("%w %T for decimal", ErrUnsupportedType, v)
	}
}

// numericPrefix returns the normalized leading number of s and how many
// bytes of s it spans. Underscores between digits are dropped.
func numericPrefix(s string) (string, int) {
	i := 0
	for i < len(s) && strings.IndexByte(" \t\n\r\f\v", s[i]) >= 0 {
		i++
	}

	var b strings.Builder
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		if s[i] == '-' {
			b.WriteByte('-')
		}
		i++
	}

	intDigits, i := digits(s, i, &b)
	end := i
	fracDigits := 0
	if i < len(s) && s[i] == '.' && i+1 < len(s) && isDigit(s[i+1]) {
		if intDigits == 0 {
			b.WriteByte('0')
		}
		b.WriteByte('.')
		fracDigits, i = digits(s, i+1, &b)
		end = i
	}
	if intDigits == 0 && fracDigits == 0 {
		return "", 0
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		var exp strings.Builder
		exp.WriteByte('e')
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			exp.WriteByte(s[j])
			j++
		}
		if n, k := digits(s, j, &exp); n > 0 {
			b.WriteString(exp.String())
			end = k
		}
	}
	return b.String(), end
}

func digits(s string, i int, b *strings.Builder) (int, int) {
	n := 0
	for i < len(s) {
		c := s[i]
		if c == '_' && n > 0 && i+1 < len(s) && isDigit(s[i+1]) {
			i++
			continue
		}
		if !isDigit(c) {
			break
		}
		b.WriteByte(c)
		n++
		i++
	}
	return n, i
}

// String converts v to its display form. nil is the empty string and
// floats always carry a fractional part ("100.0").
func String(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float32:
		return formatFloat(float64(val), 32)
	case float64:
		return formatFloat(val, 64)
	case decimal.Decimal:
		return val.String()
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(time.DateOnly)
		}
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// Float converts a decimal to the float64 sent on the wire.
func Float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// Date parses v into a calendar date.
func Date(v any) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val, nil
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w %q", ErrInvalidDate, val)
	default:
		return time.Time{}, fmt.Errorf("%w %T for date", ErrUnsupportedType, v)
	}
}

func formatFloat(f float64, bits int) string {
	s := strconv.FormatFloat(f, 'f', -1, bits)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, bits)
	}
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func truncFloat(f float64) int64 {
	if math.IsNaN(f) {
		return 0
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	if f <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(f)
}

func clampUint(u uint64) int64 {
	if u > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(u)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
