package rowexec

import (
	"context"

	"github.com/minidb/qcore/expression"
	"github.com/minidb/qcore/plan"
	"github.com/minidb/qcore/rc"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/storage"
	"github.com/minidb/qcore/types"
)

const vecChunkCapacity = 1024

// VecIter is the vectorized counterpart of plan.RowIter: Next fills dst up
// to its capacity and returns rc.RecordEOF on the final (possibly partial
// or empty) batch, same contract the row-pipeline RowIter uses for
// end-of-stream but operating a whole chunk at a time.
type VecIter interface {
	Next(dst *row.Chunk) error
	Close() error
}

// VecBuilder lowers the subset of the logical plan that has a vectorized
// physical alternative — TableGet, Projection, GroupBy (or Aggregate when
// there are no group keys), Explain — into a VecIter pipeline. It does not
// cover Predicate/Join/OrderBy/Insert/Update/Delete: those stay row-wise
// only, so a tree containing one of them has no vectorized plan and
// BuildVec reports Unimplemented rather than silently degrading.
type VecBuilder struct{}

func (VecBuilder) BuildVec(n plan.Node, trx storage.Trx) (VecIter, error) {
	switch node := n.(type) {
	case *plan.TableGet:
		return buildTableScanVec(node, trx)

	case *plan.Projection:
		child, err := VecBuilder{}.BuildVec(node.Child, trx)
		if err != nil {
			return nil, err
		}
		return &projectVecIter{child: child, exprs: node.Exprs}, nil

	case *plan.GroupBy:
		child, err := VecBuilder{}.BuildVec(node.Child, trx)
		if err != nil {
			return nil, err
		}
		aggExprs := make([]*expression.Aggregate, len(node.AggregateExprs))
		for i, a := range node.AggregateExprs {
			agg, ok := a.(*expression.Aggregate)
			if !ok {
				return nil, rc.New(rc.Internal, "GroupBy aggregate expression has unexpected type")
			}
			aggExprs[i] = agg
		}
		if len(node.GroupExprs) == 0 {
			return &aggregateVecIter{child: child, aggExprs: aggExprs}, nil
		}
		return &groupByVecIter{child: child, groupExprs: node.GroupExprs, aggExprs: aggExprs}, nil

	case *plan.Explain:
		return &explainVecIter{text: describeNode(node.Child, 0)}, nil

	default:
		return nil, rc.New(rc.Unimplemented, "no vectorized physical operator for logical node type %T", n)
	}
}

// tableScanVecIter is the physical TableScanVec operator: pulls a
// storage.Chunk at a time from the collaborator's ChunkFileScanner,
// converts it to a row.Chunk, and compacts out rows failing any stored
// predicate. Predicates are evaluated row by row through a chunkRowTuple
// view (no per-operator kernel exists for arbitrary boolean expressions),
// and a row that passes is appended to every output column in lockstep.
type tableScanVecIter struct {
	table      storage.Table
	scanner    storage.ChunkFileScanner
	predicates []row.Expression
	buf        storage.Chunk
}

func buildTableScanVec(tg *plan.TableGet, trx storage.Trx) (*tableScanVecIter, error) {
	scanner, err := tg.Table.GetChunkScanner(scanMode(tg))
	if err != nil {
		return nil, err
	}
	return &tableScanVecIter{table: tg.Table, scanner: scanner, predicates: tg.Predicates}, nil
}

func (it *tableScanVecIter) Next(dst *row.Chunk) error {
	dst.Reset()
	err := it.scanner.Next(context.Background(), &it.buf)
	if err != nil && !rc.Is(err, rc.RecordEOF) {
		return err
	}
	eof := rc.Is(err, rc.RecordEOF)

	meta := it.table.Meta()
	if dst.ColumnNum() == 0 {
		for _, f := range meta.Fields {
			dst.AddColumn(row.NewColumn(f.Kind, f.Length, vecChunkCapacity), row.TupleCellSpec{Table: it.table.Name(), Field: f.Name})
		}
	}
	for i := 0; i < it.buf.Count; i++ {
		t := chunkRowTuple{chunk: &it.buf, row: i, fields: len(meta.Fields)}
		ok, perr := evalAllTrue(it.predicates, t)
		if perr != nil {
			return perr
		}
		if !ok {
			continue
		}
		for fi := range meta.Fields {
			dst.ColumnAt(fi).Append(it.buf.Columns[fi][i])
		}
	}
	if eof {
		return rc.New(rc.RecordEOF, "")
	}
	return nil
}

func (it *tableScanVecIter) Close() error { return it.scanner.Close() }

// chunkRowTuple adapts one row of a storage.Chunk to row.Tuple so stored
// predicates (ordinary row.Expression values) can evaluate against it
// without their own vectorized kernel.
type chunkRowTuple struct {
	chunk  *storage.Chunk
	row    int
	fields int
}

func (t chunkRowTuple) CellNum() int { return t.fields }
func (t chunkRowTuple) CellAt(i int) (types.Value, error) {
	return t.chunk.Columns[i][t.row], nil
}
func (t chunkRowTuple) FindCell(spec row.TupleCellSpec) (types.Value, int, error) {
	for i, f := range t.chunk.Meta.Fields {
		if f.Name == spec.Field {
			return t.chunk.Columns[i][t.row], i, nil
		}
	}
	return types.Value{}, -1, rc.New(rc.SchemaFieldMissing, "no field %q in chunk", spec.Field)
}

// projectVecIter is the physical ProjectVec operator: fills one output
// column per projection expression via row.EvalColumn against the
// pulled-in child chunk.
type projectVecIter struct {
	child VecIter
	exprs []row.Expression
	in    row.Chunk
}

func (it *projectVecIter) Next(dst *row.Chunk) error {
	it.in.Reset()
	err := it.child.Next(&it.in)
	if err != nil && !rc.Is(err, rc.RecordEOF) {
		return err
	}
	eof := rc.Is(err, rc.RecordEOF)

	dst.Reset()
	if dst.ColumnNum() == 0 {
		for _, e := range it.exprs {
			dst.AddColumn(row.NewColumn(e.ValueType(), e.ValueLength(), vecChunkCapacity), row.TupleCellSpec{Field: e.Name(), Alias: e.Alias()})
		}
	}
	for ci, e := range it.exprs {
		col, cerr := row.EvalColumn(e, &it.in)
		if cerr != nil {
			return cerr
		}
		for i := 0; i < col.Count(); i++ {
			dst.ColumnAt(ci).Append(col.At(i))
		}
	}
	if eof {
		return rc.New(rc.RecordEOF, "")
	}
	return nil
}

func (it *projectVecIter) Close() error { return it.child.Close() }

// aggregateVecIter is the vectorized no-grouping Aggregate: it drains
// every input chunk into one set of Accumulators, then emits a single
// one-row chunk, mirroring aggregateIter's "always emit one row" rule.
type aggregateVecIter struct {
	child    VecIter
	aggExprs []*expression.Aggregate
	emitted  bool
	buf      row.Chunk
}

func (it *aggregateVecIter) Next(dst *row.Chunk) error {
	if it.emitted {
		dst.Reset()
		return rc.New(rc.RecordEOF, "")
	}
	accs := newAccumulators(it.aggExprs)
	for {
		it.buf.Reset()
		err := it.child.Next(&it.buf)
		if err != nil && !rc.Is(err, rc.RecordEOF) {
			return err
		}
		eof := rc.Is(err, rc.RecordEOF)
		for i := 0; i < it.buf.Count(); i++ {
			if accErr := accumulateRow(it.aggExprs, accs, it.buf.TupleAt(i)); accErr != nil {
				return accErr
			}
		}
		if eof {
			break
		}
	}
	it.emitted = true
	dst.Reset()
	specs := aggSpecs(it.aggExprs)
	for i, acc := range accs {
		col := row.NewColumn(it.aggExprs[i].ValueType(), it.aggExprs[i].ValueLength(), 1)
		col.Append(acc.Evaluate())
		dst.AddColumn(col, specs[i])
	}
	return nil
}

func (it *aggregateVecIter) Close() error { return it.child.Close() }

// groupByVecIter is the vectorized streaming GroupBy: like groupByIter it
// requires input pre-sorted on groupExprs, but it buffers whole input
// chunks and emits one output chunk per Next call containing every
// complete group drained from that cycle, deferring an in-progress final
// group to the next call (or to a trailing emit on child EOF).
type groupByVecIter struct {
	child      VecIter
	groupExprs []row.Expression
	aggExprs   []*expression.Aggregate

	buf        row.Chunk
	childEOF   bool
	haveCarry  bool
	carryKey   []types.Value
	carryAccs  []expression.Accumulator
}

func (it *groupByVecIter) pullAndGroup(dst *row.Chunk) (bool, error) {
	it.buf.Reset()
	err := it.child.Next(&it.buf)
	if err != nil && !rc.Is(err, rc.RecordEOF) {
		return false, err
	}
	if rc.Is(err, rc.RecordEOF) {
		it.childEOF = true
	}

	emittedAny := false
	for i := 0; i < it.buf.Count(); i++ {
		t := it.buf.TupleAt(i)
		key, kerr := evalKey(it.groupExprs, t)
		if kerr != nil {
			return false, kerr
		}
		if it.haveCarry && sameKey(it.carryKey, key) {
			if aerr := accumulateRow(it.aggExprs, it.carryAccs, t); aerr != nil {
				return false, aerr
			}
			continue
		}
		if it.haveCarry {
			emitGroupRow(dst, it.groupExprs, it.carryKey, it.aggExprs, it.carryAccs)
			emittedAny = true
		}
		it.carryKey = key
		it.carryAccs = newAccumulators(it.aggExprs)
		it.haveCarry = true
		if aerr := accumulateRow(it.aggExprs, it.carryAccs, t); aerr != nil {
			return false, aerr
		}
	}
	return emittedAny, nil
}

func (it *groupByVecIter) Next(dst *row.Chunk) error {
	dst.Reset()
	if it.childEOF {
		if !it.haveCarry {
			return rc.New(rc.RecordEOF, "")
		}
		emitGroupRow(dst, it.groupExprs, it.carryKey, it.aggExprs, it.carryAccs)
		it.haveCarry = false
		return nil
	}
	for {
		emitted, err := it.pullAndGroup(dst)
		if err != nil {
			return err
		}
		if emitted || it.childEOF {
			return nil
		}
	}
}

func (it *groupByVecIter) Close() error { return it.child.Close() }

func emitGroupRow(dst *row.Chunk, groupExprs []row.Expression, key []types.Value, aggExprs []*expression.Aggregate, accs []expression.Accumulator) {
	if dst.ColumnNum() == 0 {
		for i, g := range groupExprs {
			var spec row.TupleCellSpec
			if f, ok := g.(*expression.Field); ok {
				spec = row.TupleCellSpec{Table: f.Table, Field: f.Column}
			} else {
				spec = row.TupleCellSpec{Field: g.Name(), Alias: g.Alias()}
			}
			dst.AddColumn(row.NewColumn(g.ValueType(), g.ValueLength(), vecChunkCapacity), spec)
			_ = i
		}
		for _, a := range aggExprs {
			dst.AddColumn(row.NewColumn(a.ValueType(), a.ValueLength(), vecChunkCapacity), row.TupleCellSpec{Field: a.Name(), Alias: a.Alias()})
		}
	}
	col := 0
	for _, k := range key {
		dst.ColumnAt(col).Append(k)
		col++
	}
	for _, acc := range accs {
		dst.ColumnAt(col).Append(acc.Evaluate())
		col++
	}
}

// explainVecIter mirrors explainIter: Explain never runs a vectorized
// subtree for rows either, it only describes the logical tree once.
type explainVecIter struct {
	text string
	done bool
}

func (it *explainVecIter) Next(dst *row.Chunk) error {
	if it.done {
		dst.Reset()
		return rc.New(rc.RecordEOF, "")
	}
	it.done = true
	dst.Reset()
	if dst.ColumnNum() == 0 {
		dst.AddColumn(row.NewColumn(types.Chars, 0, 1), row.TupleCellSpec{Field: "plan"})
	}
	dst.ColumnAt(0).Append(types.CharsValue(it.text))
	return nil
}

func (it *explainVecIter) Close() error { return nil }
