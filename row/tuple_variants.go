package row

import "github.com/minidb/qcore/types"

// ValueListTuple is a fully materialized row: a parallel slice of values and
// the specs they were bound under. Operators build these for rows they
// compute themselves: Calc and aggregate/group outputs, OrderBy's
// materialization, Explain's plan text and the DML affected-row count.
type ValueListTuple struct {
	Specs  []TupleCellSpec
	Values []types.Value
}

func NewValueListTuple(specs []TupleCellSpec, values []types.Value) *ValueListTuple {
	return &ValueListTuple{Specs: specs, Values: values}
}

func (t *ValueListTuple) CellNum() int { return len(t.Values) }

func (t *ValueListTuple) CellAt(i int) (types.Value, error) {
	if i < 0 || i >= len(t.Values) {
		return types.Value{}, rcInternal("value list index %d out of range", i)
	}
	return t.Values[i], nil
}

func (t *ValueListTuple) FindCell(spec TupleCellSpec) (types.Value, int, error) {
	for i, s := range t.Specs {
		if s == spec {
			return t.Values[i], i, nil
		}
	}
	return types.Value{}, -1, errFieldMissing(spec)
}

func (t *ValueListTuple) SpecAt(i int) TupleCellSpec { return t.Specs[i] }

// CompositeTuple concatenates child tuples' cells without copying them,
// used by NestedLoopJoin to present (outer ++ inner) as a single tuple to
// predicates and projections above the join.
type CompositeTuple struct {
	children []Tuple
	offsets  []int
}

func NewCompositeTuple(children ...Tuple) *CompositeTuple {
	ct := &CompositeTuple{children: children}
	offset := 0
	for _, c := range children {
		ct.offsets = append(ct.offsets, offset)
		offset += c.CellNum()
	}
	ct.offsets = append(ct.offsets, offset)
	return ct
}

func (t *CompositeTuple) CellNum() int {
	return t.offsets[len(t.offsets)-1]
}

func (t *CompositeTuple) childFor(i int) (Tuple, int) {
	for ci, off := range t.offsets[:len(t.offsets)-1] {
		next := t.offsets[ci+1]
		if i < next {
			return t.children[ci], i - off
		}
	}
	return nil, -1
}

func (t *CompositeTuple) CellAt(i int) (types.Value, error) {
	child, localIdx := t.childFor(i)
	if child == nil {
		return types.Value{}, rcInternal("composite tuple index %d out of range", i)
	}
	return child.CellAt(localIdx)
}

func (t *CompositeTuple) FindCell(spec TupleCellSpec) (types.Value, int, error) {
	base := 0
	for _, child := range t.children {
		if v, idx, err := child.FindCell(spec); err == nil {
			return v, base + idx, nil
		}
		base += child.CellNum()
	}
	return types.Value{}, -1, errFieldMissing(spec)
}

// SpecAt satisfies NamedTuple so a join output can still be materialized
// (by OrderBy, or a correlated subquery re-deriving its outer schema)
// without losing the (table, field) identity of whichever child actually
// carries that cell; a child with no name information (ExpressionTuple, a
// bare composite of composites) contributes the zero TupleCellSpec.
func (t *CompositeTuple) SpecAt(i int) TupleCellSpec {
	child, localIdx := t.childFor(i)
	if child == nil {
		return TupleCellSpec{}
	}
	if nt, ok := child.(NamedTuple); ok {
		return nt.SpecAt(localIdx)
	}
	return TupleCellSpec{}
}

// ExpressionTuple evaluates a list of expressions (expression.Field,
// expression.Literal, etc. — anything satisfying this package's Expression
// interface) against an underlying tuple on every cell access, used to
// present the output row of a Project operator without materializing it
// up front.
type ExpressionTuple struct {
	Exprs      []Expression
	Underlying Tuple
}

func NewExpressionTuple(exprs []Expression, underlying Tuple) *ExpressionTuple {
	return &ExpressionTuple{Exprs: exprs, Underlying: underlying}
}

func (t *ExpressionTuple) CellNum() int { return len(t.Exprs) }

func (t *ExpressionTuple) CellAt(i int) (types.Value, error) {
	var out types.Value
	if err := t.Exprs[i].GetValue(t.Underlying, &out); err != nil {
		return types.Value{}, err
	}
	return out, nil
}

func (t *ExpressionTuple) FindCell(spec TupleCellSpec) (types.Value, int, error) {
	for i, e := range t.Exprs {
		if e.Name() == spec.String() || e.Alias() == spec.Alias {
			v, err := t.CellAt(i)
			return v, i, err
		}
	}
	return types.Value{}, -1, errFieldMissing(spec)
}

// SplicedTuple is the output row shape of OrderBy: columnar per-attribute
// value vectors (one slice per projected column, filled while materializing
// the child) indexed through a permutation built by the sort, so the sort
// itself only ever permutes int indices rather than copying rows.
type SplicedTuple struct {
	Specs   []TupleCellSpec
	Columns [][]types.Value // Columns[col][physicalRow]
	Row     int
}

func (t *SplicedTuple) CellNum() int { return len(t.Columns) }

func (t *SplicedTuple) CellAt(i int) (types.Value, error) {
	if i < 0 || i >= len(t.Columns) {
		return types.Value{}, rcInternal("spliced tuple column %d out of range", i)
	}
	return t.Columns[i][t.Row], nil
}

func (t *SplicedTuple) FindCell(spec TupleCellSpec) (types.Value, int, error) {
	for i, s := range t.Specs {
		if s == spec {
			v, err := t.CellAt(i)
			return v, i, err
		}
	}
	return types.Value{}, -1, errFieldMissing(spec)
}

func (t *SplicedTuple) SpecAt(i int) TupleCellSpec { return t.Specs[i] }
