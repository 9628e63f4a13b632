package migrate

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lampe2020/l2db/pkg/store"
	"github.com/lampe2020/l2db/pkg/value"
)

func newTestStore(t *testing.T) *store.Store {
	s, err := store.New(store.Options{Mode: "rw", Diagnostics: func(string) {}})
	require.NoError(t, err)
	return s
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newTestStore(t)
	_, err := src.Write("count", value.Int(-42), "")
	require.NoError(t, err)
	_, err = src.Write("ratio", value.Float(2.5), "")
	require.NoError(t, err)
	_, err = src.Write("name", value.String("l2db"), "")
	require.NoError(t, err)
	_, err = src.Write("blob", value.Raw([]byte{0x00, 0xFF}), "")
	require.NoError(t, err)
	_, err = src.Write("on", value.Bool(true), "")
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "pebble")
	n, err := Export(src, dir)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	dst := newTestStore(t)
	n, err = Import(dst, dir)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	for _, key := range src.Keys() {
		want, err := src.Read(key, "")
		require.NoError(t, err)
		got, err := dst.Read(key, "")
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "entry %q changed across the round trip", key)
		assert.Equal(t, want.Type(), got.Type())
	}
}

func TestImportOverwritesExisting(t *testing.T) {
	src := newTestStore(t)
	_, err := src.Write("k", value.String("new"), "")
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "pebble")
	_, err = Export(src, dir)
	require.NoError(t, err)

	dst := newTestStore(t)
	_, err = dst.Write("k", value.String("old"), "")
	require.NoError(t, err)

	_, err = Import(dst, dir)
	require.NoError(t, err)

	v, err := dst.Read("k", "")
	require.NoError(t, err)
	assert.Equal(t, "new", v.Text())
}

func TestExportEmptyStore(t *testing.T) {
	src := newTestStore(t)

	dir := filepath.Join(t.TempDir(), "pebble")
	n, err := Export(src, dir)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	dst := newTestStore(t)
	n, err = Import(dst, dir)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, dst.Len())
}
