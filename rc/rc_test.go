package rc_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minidb/qcore/rc"
)

func TestRecordEOFIsIoEOF(t *testing.T) {
	err := rc.New(rc.RecordEOF, "")
	require.Equal(t, io.EOF, err)
	require.True(t, rc.Is(err, rc.RecordEOF))
}

func TestDistinctCodesDontMatch(t *testing.T) {
	err := rc.New(rc.InvalidArgument, "")
	require.True(t, rc.Is(err, rc.InvalidArgument))
	require.False(t, rc.Is(err, rc.SchemaFieldMissing))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := rc.New(rc.Internal, "")
	wrapped := rc.Wrap(rc.Internal, cause, "while updating record")
	require.Error(t, wrapped)
	require.Contains(t, wrapped.Error(), "while updating record")
	require.ErrorIs(t, wrapped, cause)
}
