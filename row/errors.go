package row

import "github.com/minidb/qcore/rc"

func errFieldMissing(spec TupleCellSpec) error {
	return rc.New(rc.SchemaFieldMissing, "no cell for %s", spec.String())
}

func rcInternal(format string, args ...interface{}) error {
	return rc.New(rc.Internal, format, args...)
}
