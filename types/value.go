package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/minidb/qcore/rc"
)

// Value is a tagged scalar over Kind. Only one of the payload fields is
// meaningful at a time, selected by kind: a tagged union over
// int/float/bool/date/string, translated to an idiomatic Go struct rather
// than a C union since Go has no unsafe-free union primitive and the class
// is small enough that the extra fields cost nothing observable.
type Value struct {
	kind Kind

	intVal   int64
	floatVal float64
	boolVal  bool
	dateVal  DateValue
	strVal   string
	// textOffset/textLength hold the (offset, length) handle a TEXT value
	// resolves through the storage collaborator's text buffer pool; see
	// storage.Table.WriteText/ReadText.
	textOffset int64
	textLength int64

	length int
}

// NullValue constructs a NULL-kind Value.
func NullValue() Value { return Value{kind: Null} }

func IntValue(v int) Value    { return Value{kind: Int, intVal: int64(v), length: 4} }
func LongValue(v int64) Value { return Value{kind: Long, intVal: v, length: 8} }
func FloatValue(v float32) Value {
	return Value{kind: Float, floatVal: float64(v), length: 4}
}
func DoubleValue(v float64) Value { return Value{kind: Double, floatVal: v, length: 8} }
func BoolValue(v bool) Value      { return Value{kind: Boolean, boolVal: v, length: 1} }
func DateVal(d DateValue) Value   { return Value{kind: Date, dateVal: d, length: 8} }
func CharsValue(s string) Value   { return Value{kind: Chars, strVal: s, length: len(s)} }
func TextHandle(offset, length int64) Value {
	return Value{kind: Text, textOffset: offset, textLength: length, length: 16}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) Length() int  { return v.length }
func (v Value) IsNull() bool { return v.kind == Null }

// TextHandleParts returns the (offset, length) pair a TEXT value resolves
// through the storage collaborator's text buffer pool.
func (v Value) TextHandleParts() (offset, length int64) { return v.textOffset, v.textLength }

// SetData parses raw bytes/text for attr_type kind into the Value,
// mirroring Value::set_data. Unlike the original (which LOG_WARNs on a
// malformed DATE and proceeds with the invalid sentinel date) this rewrite
// returns INVALID_ARGUMENT — see DESIGN.md Open Question (ii); a caller
// must not use the Value if err != nil.
func SetData(kind Kind, data string) (Value, error) {
	switch kind {
	case Chars:
		return CharsValue(data), nil
	case Int:
		n, err := strconv.Atoi(strings.TrimSpace(data))
		if err != nil {
			return Value{}, fmt.Errorf("invalid int literal %q: %w", data, err)
		}
		return IntValue(n), nil
	case Float:
		f, err := strconv.ParseFloat(strings.TrimSpace(data), 32)
		if err != nil {
			return Value{}, fmt.Errorf("invalid float literal %q: %w", data, err)
		}
		return FloatValue(float32(f)), nil
	case Double:
		f, err := strconv.ParseFloat(strings.TrimSpace(data), 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid double literal %q: %w", data, err)
		}
		return DoubleValue(f), nil
	case Boolean:
		b, err := strconv.ParseBool(strings.TrimSpace(data))
		if err != nil {
			return Value{}, fmt.Errorf("invalid bool literal %q: %w", data, err)
		}
		return BoolValue(b), nil
	case Date:
		d, err := ParseDate(data)
		if err != nil {
			return Value{}, rc.New(rc.InvalidArgument, "%v", err)
		}
		return DateVal(d), nil
	default:
		return Value{}, fmt.Errorf("unsupported attr type for set_data: %s", kind)
	}
}

// Int converts the value to an int: string parses best-effort (0 on
// failure), float truncates, bool widens, date has no numeric
// representation (returns 0).
func (v Value) Int() int {
	switch v.kind {
	case Chars, Text:
		n, err := strconv.ParseInt(strings.TrimSpace(v.strVal), 10, 64)
		if err != nil {
			return 0
		}
		return int(n)
	case Int, Long:
		return int(v.intVal)
	case Float, Double:
		return int(v.floatVal)
	case Boolean:
		if v.boolVal {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func (v Value) Float64() float64 {
	switch v.kind {
	case Chars, Text:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.strVal), 64)
		if err != nil {
			return 0
		}
		return f
	case Int, Long:
		return float64(v.intVal)
	case Float, Double:
		return v.floatVal
	case Boolean:
		if v.boolVal {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// Bool converts the value to bool: numeric values are true iff |x| >=
// epsilon (i.e. not "zero"), strings are true if they parse to a non-zero
// float or int and otherwise true iff non-empty (so "0" is true), dates
// are never truthy.
func (v Value) Bool() bool {
	switch v.kind {
	case Chars, Text:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v.strVal), 64); err == nil {
			if f >= epsilon || f <= -epsilon {
				return true
			}
		}
		if n, err := strconv.ParseInt(strings.TrimSpace(v.strVal), 10, 64); err == nil && n != 0 {
			return true
		}
		return v.strVal != ""
	case Int, Long:
		return v.intVal != 0
	case Float, Double:
		return v.floatVal >= epsilon || v.floatVal <= -epsilon
	case Boolean:
		return v.boolVal
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.kind {
	case Int, Long:
		return strconv.FormatInt(v.intVal, 10)
	case Float:
		return decimal.NewFromFloat32(float32(v.floatVal)).String()
	case Double:
		return decimal.NewFromFloat(v.floatVal).String()
	case Boolean:
		return strconv.FormatBool(v.boolVal)
	case Chars, Text:
		return v.strVal
	case Date:
		return v.dateVal.String()
	case Null:
		return "NULL"
	default:
		return ""
	}
}

func (v Value) Date() DateValue { return v.dateVal }

// Compare implements the engine's comparison semantics: same-kind
// comparison is exact; INT/FLOAT/DOUBLE/LONG cross-kind
// comparisons widen both sides to float64; any other kind mismatch is an
// error, not a silently-wrong answer. NULL never compares equal to a
// non-NULL value through Compare — callers needing null-aware equality
// (the IS [NOT] NULL and IN operators) must check IsNull() explicitly
// before calling Compare.
func (v Value) Compare(other Value) (int, error) {
	if v.kind == other.kind {
		switch v.kind {
		case Int, Long:
			return cmpInt64(v.intVal, other.intVal), nil
		case Float, Double:
			return cmpFloat(v.floatVal, other.floatVal), nil
		case Chars, Text:
			return strings.Compare(v.strVal, other.strVal), nil
		case Boolean:
			return cmpBool(v.boolVal, other.boolVal), nil
		case Date:
			return v.dateVal.Compare(other.dateVal), nil
		case Null:
			return 0, nil
		default:
			return 0, fmt.Errorf("unsupported type for comparison: %s", v.kind)
		}
	}

	if v.kind.IsNumeric() && other.kind.IsNumeric() {
		return cmpFloat(v.Float64(), other.Float64()), nil
	}

	return 0, fmt.Errorf("cannot compare %s with %s", v.kind, other.kind)
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpBool(a, b bool) int {
	ai, bi := 0, 0
	if a {
		ai = 1
	}
	if b {
		bi = 1
	}
	return cmpInt64(int64(ai), int64(bi))
}

// Typecast coerces v to target kind. Numeric targets convert through
// Int()/Float64() (strings parse best-effort, 0 on failure), Boolean
// through Bool(), Chars through String(), and Date only from Chars/Text
// via SetData; any other target is an error.
func (v Value) Typecast(target Kind) (Value, error) {
	if v.kind == target {
		return v, nil
	}
	if v.IsNull() {
		return Value{kind: Null}, nil
	}
	switch target {
	case Int:
		return IntValue(v.Int()), nil
	case Long:
		return LongValue(int64(v.Int())), nil
	case Float:
		return FloatValue(float32(v.Float64())), nil
	case Double:
		return DoubleValue(v.Float64()), nil
	case Boolean:
		return BoolValue(v.Bool()), nil
	case Chars:
		return CharsValue(v.String()), nil
	case Date:
		if v.kind == Chars || v.kind == Text {
			return SetData(Date, v.strVal)
		}
		return Value{}, fmt.Errorf("cannot cast %s to date", v.kind)
	default:
		return Value{}, fmt.Errorf("unsupported cast target: %s", target)
	}
}
