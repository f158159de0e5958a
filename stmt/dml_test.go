package stmt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minidb/qcore/expression"
	"github.com/minidb/qcore/memtable"
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/storage"
	"github.com/minidb/qcore/types"
)

func dmlTestDB() *memtable.Database {
	db := memtable.NewDatabase("test")
	memtable.NewIntTable(db, "t1", "id", "val")
	return db
}

func TestNewInsertStmtValidatesArity(t *testing.T) {
	db := dmlTestDB()
	node := &InsertSqlNode{
		Table: RelationRef{Source: "t1"},
		Rows:  [][]row.Expression{{expression.NewLiteral(types.IntValue(1))}},
	}
	_, err := NewInsertStmt(db, node)
	require.Error(t, err)
}

func TestNewInsertStmtAcceptsFullRow(t *testing.T) {
	db := dmlTestDB()
	node := &InsertSqlNode{
		Table: RelationRef{Source: "t1"},
		Rows: [][]row.Expression{
			{expression.NewLiteral(types.IntValue(1)), expression.NewLiteral(types.IntValue(2))},
		},
	}
	bound, err := NewInsertStmt(db, node)
	require.NoError(t, err)
	require.Equal(t, "t1", bound.Table.Name())
	require.Len(t, bound.Rows, 1)
}

func TestNewInsertStmtRejectsNullForNonNullable(t *testing.T) {
	db := memtable.NewDatabase("test2")
	meta := &storage.TableMeta{
		TableName: "t2",
		Fields: []storage.FieldMeta{
			{Name: "__null", Offset: 0, Length: 1, System: true},
			{Name: "id", Offset: 1, Length: 4, Kind: types.Int, Nullable: false, Visible: true},
		},
		SysFieldNum:  1,
		NullFieldIdx: 0,
		RecordSize:   5,
	}
	db.CreateTable(meta)

	node := &InsertSqlNode{
		Table: RelationRef{Source: "t2"},
		Rows:  [][]row.Expression{{expression.NewLiteral(types.NullValue())}},
	}
	_, err := NewInsertStmt(db, node)
	require.Error(t, err)
}

func TestNewUpdateStmtBindsSetValues(t *testing.T) {
	db := dmlTestDB()
	node := &UpdateSqlNode{
		Table:   RelationRef{Source: "t1"},
		Columns: []string{"val"},
		Values:  []row.Expression{expression.NewLiteral(types.IntValue(99))},
		Where:   expression.NewComparison(expression.Eq, expression.NewUnboundField("", "id"), expression.NewLiteral(types.IntValue(1))),
	}
	bound, err := NewUpdateStmt(db, node)
	require.NoError(t, err)
	require.Equal(t, []string{"val"}, bound.Columns)
	require.NotNil(t, bound.Where)
}

func TestNewUpdateStmtRejectsUnknownColumn(t *testing.T) {
	db := dmlTestDB()
	node := &UpdateSqlNode{
		Table:   RelationRef{Source: "t1"},
		Columns: []string{"nope"},
		Values:  []row.Expression{expression.NewLiteral(types.IntValue(1))},
	}
	_, err := NewUpdateStmt(db, node)
	require.Error(t, err)
}

func TestNewDeleteStmtBindsWhere(t *testing.T) {
	db := dmlTestDB()
	node := &DeleteSqlNode{
		Table: RelationRef{Source: "t1"},
		Where: expression.NewComparison(expression.Gt, expression.NewUnboundField("", "val"), expression.NewLiteral(types.IntValue(0))),
	}
	bound, err := NewDeleteStmt(db, node)
	require.NoError(t, err)
	require.NotNil(t, bound.Where)
}
