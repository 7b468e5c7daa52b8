package errs

import (
	stdErrors "errors"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

var errDisk = stdErrors.New("disk is full")

func TestKindOf(t *testing.T) {
	err := Store(errDisk, "set key %s", "k1")
	require.Equal(t, KindStore, KindOf(err))
	require.True(t, Is(err, KindStore))
	require.False(t, Is(err, KindDispatch))
	require.ErrorIs(t, err, errDisk)
	require.Contains(t, err.Error(), "set key k1")
	require.Contains(t, err.Error(), "disk is full")
}

func TestKindOf_Wrapped(t *testing.T) {
	err := errors.Wrap(Config("relay %s not found", "r1"), "resolve")
	require.Equal(t, KindConfig, KindOf(err))
}

func TestWrapNil(t *testing.T) {
	require.NoError(t, Store(nil, "nothing"))
	require.NoError(t, Dispatch(nil, "nothing"))
	require.NoError(t, Fatal(nil, "nothing"))
}

func TestKindOf_Untagged(t *testing.T) {
	require.Equal(t, Kind(""), KindOf(errDisk))
	require.False(t, Is(nil, KindStore))
}
