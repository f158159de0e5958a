// Package expression implements the polymorphic expression tree: a set of
// concrete node types, each satisfying row.Expression, that evaluate
// against a row.Tuple or a row.Chunk. Rather than a C++-style abstract
// base class plus virtual dispatch, it is a tagged sum: a set of Go
// structs each implementing the same row.Expression interface.
package expression

import (
	"github.com/minidb/qcore/row"
	"github.com/minidb/qcore/types"
)

// header holds the fields every expression node carries regardless of
// variant: display name, alias, and the "already materialized at this
// chunk column" position hint.
type header struct {
	name  string
	alias string
	pos   int
}

func newHeader() header { return header{pos: -1} }

func (h *header) Name() string       { return h.name }
func (h *header) SetName(n string)   { h.name = n }
func (h *header) Alias() string      { return h.alias }
func (h *header) SetAlias(a string)  { h.alias = a }
func (h *header) Pos() int           { return h.pos }
func (h *header) SetPos(p int)       { h.pos = p }

// traverseChildren is the shared post-order traversal driver used by every
// node's Traverse/TraverseCheck: visit each child (recursively, post-order)
// before invoking the callback on self.
func traverseChildren(children []row.Expression, filter func(row.Expression) bool, visit func(row.Expression)) {
	for _, c := range children {
		c.Traverse(filter, visit)
	}
}

func traverseCheckChildren(children []row.Expression, check func(row.Expression) error) error {
	for _, c := range children {
		if err := c.TraverseCheck(check); err != nil {
			return err
		}
	}
	return nil
}

// noValueKind is returned by ValueType for placeholder nodes (Star,
// UnboundField, UnboundAggregate) that the binder rewrites before any
// evaluation is attempted.
const noValueKind = types.Undefined
