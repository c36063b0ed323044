package runner

import (
	"math"
	"strconv"
	"strings"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindString Kind = iota
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return "unknown"
	}
}

// Value is a simulated runtime value: either a string or a number.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
}

// StringValue wraps s.
func StringValue(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// NumberValue wraps f.
func NumberValue(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

// String renders the value the way print would show it.
func (v Value) String() string {
	if v.Kind == KindNumber {
		return formatNumber(v.Num)
	}
	return v.Str
}

// Number coerces the value for arithmetic. Strings that are not numeric
// literals become 0.
func (v Value) Number() float64 {
	if v.Kind == KindNumber {
		return v.Num
	}
	if f, ok := parseNumber(v.Str); ok {
		return f
	}
	return 0
}

// formatNumber prints plain decimals for magnitudes in [1e-6, 1e21) and
// exponent notation ("1e+21", "1.5e-7") outside that range. Zero never
// carries a sign.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
		return mantissa + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// parseNumber accepts decimal literals only. Words such as "inf" or "nan"
// that strconv would otherwise accept are rejected.
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	switch c := s[0]; {
	case c >= '0' && c <= '9', c == '-', c == '+', c == '.':
	default:
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// scope is the single flat variable table of one simulated run.
type scope map[string]Value

// operand resolves one side of a product. A variable holding non-numeric
// text poisons the product with NaN; an empty string counts as 0.
func (s scope) operand(tok string) float64 {
	if v, ok := s[tok]; ok {
		if v.Kind == KindString && v.Str != "" {
			if _, numeric := parseNumber(v.Str); !numeric {
				return math.NaN()
			}
		}
		return v.Number()
	}
	if f, ok := parseNumber(tok); ok {
		return f
	}
	return 0
}
