package stmt

import (
	"github.com/minidb/qcore/expression"
	"github.com/minidb/qcore/rc"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/storage"
)

// InsertStmt is the bound output of an INSERT statement: the target table
// and every VALUES row as given (one value per visible column); the cast
// to each column's declared kind happens in Table.MakeRecord.
type InsertStmt struct {
	Table storage.Table
	Rows  [][]row.Expression
}

// NewInsertStmt binds node against db: the table must exist, each row must
// supply exactly one value per visible column, and every literal NULL is
// checked against its column's nullability up front so it fails at bind
// time rather than mid-insert. Value kinds are not checked here.
func NewInsertStmt(db storage.Database, node *InsertSqlNode) (*InsertStmt, error) {
	tbl, ok := db.Table(node.Table.Source)
	if !ok {
		return nil, rc.New(rc.SchemaTableNotExist, "table %q does not exist", node.Table.Source)
	}

	visible := visibleFields(tbl.Meta())
	for _, vals := range node.Rows {
		if len(vals) != len(visible) {
			return nil, rc.New(rc.SchemaFieldMissing,
				"table %q has %d columns, %d values given", tbl.Name(), len(visible), len(vals))
		}
		for i, v := range vals {
			if err := checkInsertValue(visible[i], v); err != nil {
				return nil, err
			}
		}
	}

	return &InsertStmt{Table: tbl, Rows: node.Rows}, nil
}

func visibleFields(meta *storage.TableMeta) []storage.FieldMeta {
	var out []storage.FieldMeta
	for _, f := range meta.Fields {
		if f.Visible {
			out = append(out, f)
		}
	}
	return out
}

// checkInsertValue rejects a literal that cannot possibly satisfy field:
// NULL against a non-nullable column fails now rather than at
// Table.MakeRecord time, matching the binder-level validation already
// applied to WHERE/projection expressions.
func checkInsertValue(field storage.FieldMeta, v row.Expression) error {
	lit, ok := v.(*expression.Literal)
	if !ok {
		// a non-literal VALUES entry (e.g. a bound subquery scalar) is
		// validated at execution time instead, once its value is known.
		return nil
	}
	val := lit.Value()
	if val.IsNull() {
		if !field.Nullable {
			return rc.New(rc.InvalidArgument, "column %q is not nullable", field.Name)
		}
		return nil
	}
	return nil
}

// UpdateStmt is the bound output of an UPDATE statement: the driving
// TableGet's table and WHERE filter, plus the bound column/value pairs to
// apply to every surviving row. A value may itself be a
// BoundSubquery, lowered to its own logical plan by the plan package.
type UpdateStmt struct {
	Table   storage.Table
	Columns []string
	Values  []row.Expression // parallel to Columns
	Where   *FilterStmt      // nil if no WHERE clause
}

func NewUpdateStmt(db storage.Database, node *UpdateSqlNode) (*UpdateStmt, error) {
	tbl, ok := db.Table(node.Table.Source)
	if !ok {
		return nil, rc.New(rc.SchemaTableNotExist, "table %q does not exist", node.Table.Source)
	}
	if len(node.Columns) != len(node.Values) {
		return nil, rc.New(rc.Internal, "UPDATE column/value count mismatch")
	}

	tables := tableMap{node.Table.name(): tbl, tbl.Name(): tbl}
	ctx := &resolveCtx{db: db, tables: tables, defaultTable: tbl}

	values := make([]row.Expression, len(node.Values))
	for i, col := range node.Columns {
		if _, ok := tbl.Meta().FieldByName(col); !ok {
			return nil, rc.New(rc.SchemaFieldMissing, "column %q not found on table %q", col, tbl.Name())
		}
		bound, err := resolveExpr(ctx, node.Values[i])
		if err != nil {
			return nil, err
		}
		values[i] = bound
	}

	var where *FilterStmt
	if node.Where != nil {
		bound, err := resolveExpr(ctx, node.Where)
		if err != nil {
			return nil, err
		}
		where = &FilterStmt{Expr: bound}
	}

	return &UpdateStmt{Table: tbl, Columns: node.Columns, Values: values, Where: where}, nil
}

// DeleteStmt is the bound output of a DELETE statement: the target table
// and its bound WHERE filter.
type DeleteStmt struct {
	Table storage.Table
	Where *FilterStmt
}

func NewDeleteStmt(db storage.Database, node *DeleteSqlNode) (*DeleteStmt, error) {
	tbl, ok := db.Table(node.Table.Source)
	if !ok {
		return nil, rc.New(rc.SchemaTableNotExist, "table %q does not exist", node.Table.Source)
	}

	var where *FilterStmt
	if node.Where != nil {
		tables := tableMap{node.Table.name(): tbl, tbl.Name(): tbl}
		ctx := &resolveCtx{db: db, tables: tables, defaultTable: tbl}
		bound, err := resolveExpr(ctx, node.Where)
		if err != nil {
			return nil, err
		}
		where = &FilterStmt{Expr: bound}
	}

	return &DeleteStmt{Table: tbl, Where: where}, nil
}
