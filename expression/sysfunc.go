package expression

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/minidb/qcore/rc"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/types"
)

type SysFuncKind int

const (
	Length SysFuncKind = iota
	Round
	DateFormat
)

// SysFunc implements LENGTH/ROUND/DATE_FORMAT. Params
// holds the function's positional arguments; arity is validated in the
// binder (stmt's resolveExpr), not here, and argument types are not
// validated up front.
type SysFunc struct {
	header
	Func   SysFuncKind
	Params []row.Expression
}

func NewSysFunc(fn SysFuncKind, params ...row.Expression) *SysFunc {
	return &SysFunc{header: newHeader(), Func: fn, Params: params}
}

func (e *SysFunc) Type() row.ExprType { return row.ExprSysFunc }

func (e *SysFunc) ValueType() types.Kind {
	switch e.Func {
	case Length:
		return types.Int
	case Round:
		return types.Float
	case DateFormat:
		return types.Chars
	default:
		return noValueKind
	}
}

func (e *SysFunc) ValueLength() int { return 0 }

func (e *SysFunc) GetValue(t row.Tuple, out *types.Value) error {
	switch e.Func {
	case Length:
		return e.evalLength(t, out)
	case Round:
		return e.evalRound(t, out)
	case DateFormat:
		return e.evalDateFormat(t, out)
	default:
		return rc.New(rc.Unimplemented, "unknown system function")
	}
}

func (e *SysFunc) evalLength(t row.Tuple, out *types.Value) error {
	var v types.Value
	if err := e.Params[0].GetValue(t, &v); err != nil {
		return err
	}
	if v.IsNull() {
		*out = types.NullValue()
		return nil
	}
	*out = types.IntValue(len(v.String()))
	return nil
}

// evalRound performs real rounding via shopspring/decimal: half-away-from-zero
// to the requested precision (0 if unspecified), rather than nudging the
// float's bit pattern before formatting.
func (e *SysFunc) evalRound(t row.Tuple, out *types.Value) error {
	var v types.Value
	if err := e.Params[0].GetValue(t, &v); err != nil {
		return err
	}
	if v.IsNull() {
		*out = types.NullValue()
		return nil
	}
	precision := int32(0)
	if len(e.Params) > 1 {
		var p types.Value
		if err := e.Params[1].GetValue(t, &p); err != nil {
			return err
		}
		if !p.IsNull() {
			precision = int32(p.Int())
		}
	}
	d := decimal.NewFromFloat(v.Float64()).Round(precision)
	f, _ := d.Float64()
	*out = types.FloatValue(float32(f))
	return nil
}

var monthNames = []string{"", "January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December"}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// evalDateFormat implements the format-token semantics: %Y
// full year, %y 2-digit zero-padded year, %M English month name, %m
// zero-padded month, %D day with English ordinal suffix, %d zero-padded
// day; any other letter passes through literally, and '%' before an
// unrecognized letter passes through as just that letter.
func (e *SysFunc) evalDateFormat(t row.Tuple, out *types.Value) error {
	var dv, fv types.Value
	if err := e.Params[0].GetValue(t, &dv); err != nil {
		return err
	}
	if err := e.Params[1].GetValue(t, &fv); err != nil {
		return err
	}
	if dv.IsNull() || fv.IsNull() {
		*out = types.NullValue()
		return nil
	}
	d := dv.Date()
	format := fv.String()

	var sb strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i == len(format)-1 {
			sb.WriteByte(c)
			continue
		}
		tok := format[i+1]
		i++
		switch tok {
		case 'Y':
			fmt.Fprintf(&sb, "%04d", d.Year)
		case 'y':
			fmt.Fprintf(&sb, "%02d", d.Year%100)
		case 'M':
			sb.WriteString(monthNames[d.Month])
		case 'm':
			fmt.Fprintf(&sb, "%02d", d.Month)
		case 'D':
			fmt.Fprintf(&sb, "%d%s", d.Day, ordinalSuffix(d.Day))
		case 'd':
			fmt.Fprintf(&sb, "%02d", d.Day)
		default:
			sb.WriteByte(tok)
		}
	}
	*out = types.CharsValue(sb.String())
	return nil
}

func (e *SysFunc) TryGetValue(*types.Value) (bool, error) { return false, nil }

func (e *SysFunc) Traverse(filter func(row.Expression) bool, visit func(row.Expression)) {
	traverseChildren(e.Params, filter, visit)
	if filter == nil || filter(e) {
		visit(e)
	}
}

func (e *SysFunc) TraverseCheck(check func(row.Expression) error) error {
	if err := traverseCheckChildren(e.Params, check); err != nil {
		return err
	}
	return check(e)
}

func (e *SysFunc) DeepCopy() row.Expression {
	cp := &SysFunc{header: e.header, Func: e.Func}
	cp.Params = make([]row.Expression, len(e.Params))
	for i, p := range e.Params {
		cp.Params[i] = p.DeepCopy()
	}
	return cp
}
