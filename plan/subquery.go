package plan

import (
	"github.com/minidb/qcore/rc"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/storage"
	"github.com/minidb/qcore/types"
)

// RowIter is the row-pipeline iterator contract in its
// minimal shape: Next returns rc.RecordEOF (io.EOF) once drained. It is
// declared here, not in rowexec, so Subquery can hold one without this
// package importing rowexec.
type RowIter interface {
	Next() (row.Tuple, error)
	Close() error
}

// ExecBuilder lowers a logical Node into an executable RowIter. The only
// implementation is rowexec.DefaultBuilder; Subquery holds this interface
// rather than a concrete *rowexec.Builder so that plan (and the expression
// tree, which embeds Subquery) never import rowexec — rowexec imports
// plan, not the other way around. Concrete builders are wired in once, at
// the point a full statement is assembled for execution (an
// `.WithExecBuilder(rowexec.DefaultBuilder)` call), never at
// parse/bind time.
type ExecBuilder interface {
	Build(node Node, trx storage.Trx, outer row.Tuple) (RowIter, error)
}

// Subquery is a correlated or uncorrelated scalar subquery expression. It
// satisfies row.Expression directly; GetValue draws exactly one row,
// treating a second row as INVALID_ARGUMENT — a subquery used as a
// scalar must not return more than one row. It also satisfies the
// narrower subqueryOperand shape the
// expression package's Comparison node uses for EXISTS/IN.
type Subquery struct {
	name, alias string
	pos         int

	Node    Node
	Builder ExecBuilder
	Trx     storage.Trx

	// the cell of each row of Node's output used as the scalar value
	// (typically the single projection column); the zero value selects
	// cell 0.
	ValueIndex int

	cursor *subqueryCursor
}

func NewSubquery(node Node) *Subquery {
	return &Subquery{pos: -1, Node: node}
}

// WithExecBuilder injects the concrete executor, breaking the
// expression<->plan<->rowexec import cycle (see package doc).
func (s *Subquery) WithExecBuilder(b ExecBuilder) *Subquery {
	s.Builder = b
	return s
}

func (s *Subquery) WithTrx(trx storage.Trx) *Subquery {
	s.Trx = trx
	return s
}

func (s *Subquery) Type() row.ExprType    { return row.ExprSubquery }
func (s *Subquery) ValueType() types.Kind { return types.Undefined }
func (s *Subquery) ValueLength() int      { return 0 }

func (s *Subquery) Name() string      { return s.name }
func (s *Subquery) SetName(n string)  { s.name = n }
func (s *Subquery) Alias() string     { return s.alias }
func (s *Subquery) SetAlias(a string) { s.alias = a }
func (s *Subquery) Pos() int          { return s.pos }
func (s *Subquery) SetPos(p int)      { s.pos = p }

func (s *Subquery) open(outer row.Tuple) (RowIter, error) {
	if s.Builder == nil {
		return nil, rc.New(rc.Internal, "subquery has no exec builder wired")
	}
	return s.Builder.Build(s.Node, s.Trx, outer)
}

// GetValue draws exactly one row from the subquery:
// EOF -> NULL, a second row present -> INVALID_ARGUMENT.
func (s *Subquery) GetValue(outer row.Tuple, out *types.Value) error {
	iter, err := s.open(outer)
	if err != nil {
		return err
	}
	defer iter.Close()

	first, err := iter.Next()
	if rc.Is(err, rc.RecordEOF) {
		*out = types.NullValue()
		return nil
	}
	if err != nil {
		return err
	}
	v, err := first.CellAt(s.ValueIndex)
	if err != nil {
		return err
	}
	if _, err := iter.Next(); err == nil {
		return rc.New(rc.InvalidArgument, "subquery returned more than one row where a scalar was expected")
	} else if !rc.Is(err, rc.RecordEOF) {
		return err
	}
	*out = v
	return nil
}

func (s *Subquery) TryGetValue(*types.Value) (bool, error) { return false, nil }

func (s *Subquery) Traverse(filter func(row.Expression) bool, visit func(row.Expression)) {
	if filter == nil || filter(s) {
		visit(s)
	}
}
func (s *Subquery) TraverseCheck(check func(row.Expression) error) error { return check(s) }

func (s *Subquery) DeepCopy() row.Expression {
	cp := *s
	cp.cursor = nil
	return &cp
}

// HasAnyRow opens the subquery and reports whether it produces at least
// one row, for EXISTS/NOT EXISTS.
func (s *Subquery) HasAnyRow(outer row.Tuple) (bool, error) {
	iter, err := s.open(outer)
	if err != nil {
		return false, err
	}
	defer iter.Close()
	_, err = iter.Next()
	if rc.Is(err, rc.RecordEOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Reset/Next implement the IN-list RHS iteration contract: for a subquery
// RHS each Reset reopens the iterator (unlike ExprList, which just rewinds
// an index), since the subquery must be re-executed per outer row for
// correlated IN predicates.
type subqueryCursor struct {
	sq   *Subquery
	iter RowIter
}

func (s *Subquery) newCursor(outer row.Tuple) (*subqueryCursor, error) {
	iter, err := s.open(outer)
	if err != nil {
		return nil, err
	}
	return &subqueryCursor{sq: s, iter: iter}, nil
}

// Reset and Next are defined directly on Subquery to satisfy the
// expression package's subqueryOperand interface; Reset lazily (re)opens
// the iterator on the first Next call of each outer-row evaluation since
// Reset itself has no outer tuple to correlate with.
func (s *Subquery) Reset() {
	if s.cursor != nil {
		s.cursor.iter.Close()
		s.cursor = nil
	}
}

func (s *Subquery) Next(outer row.Tuple, out *types.Value) error {
	if s.cursor == nil {
		c, err := s.newCursor(outer)
		if err != nil {
			return err
		}
		s.cursor = c
	}
	t, err := s.cursor.iter.Next()
	if err != nil {
		return err
	}
	idx := s.ValueIndex
	v, err := t.CellAt(idx)
	if err != nil {
		return err
	}
	*out = v
	return nil
}
