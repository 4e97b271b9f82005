package artifact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passthrough(ctx context.Context, inputs map[string]any) (any, error) {
	return inputs, nil
}

func TestBuilderSourceAndRegister(t *testing.T) {
	b := NewBuilder()

	src, err := b.Source("base", 42)
	require.NoError(t, err)
	assert.Equal(t, "base", src.Key)

	out, err := b.Register("derived", passthrough, map[string]Ref{"in": src})
	require.NoError(t, err)
	assert.Equal(t, "derived", out.Key)
	assert.Equal(t, 2, b.Len())

	n, ok := b.Node("derived")
	require.True(t, ok)
	assert.False(t, n.IsSource)
	assert.Equal(t, src, n.Inputs["in"])

	deps, err := b.Graph().Dependencies("derived")
	require.NoError(t, err)
	assert.Equal(t, []string{"base"}, deps)
}

func TestBuilderDuplicateKey(t *testing.T) {
	b := NewBuilder()
	_, err := b.Source("k", 1)
	require.NoError(t, err)

	_, err = b.Source("k", 2)
	require.Error(t, err)
	_, err = b.Register("k", passthrough, nil)
	require.Error(t, err)
}

func TestBuilderRegisterErrors(t *testing.T) {
	b := NewBuilder()

	t.Run("nil builder fn", func(t *testing.T) {
		_, err := b.Register("n", nil, nil)
		require.Error(t, err)
	})

	t.Run("unknown input", func(t *testing.T) {
		_, err := b.Register("n", passthrough, map[string]Ref{"in": {Key: "missing"}})
		require.Error(t, err)
		assert.False(t, b.Graph().Has("n"))
	})
}

func TestBuilderConnect(t *testing.T) {
	b := NewBuilder()
	src, err := b.Source("base", 1)
	require.NoError(t, err)
	extra, err := b.Source("extra", 2)
	require.NoError(t, err)
	out, err := b.Register("derived", passthrough, map[string]Ref{"in": src})
	require.NoError(t, err)

	require.NoError(t, b.Connect(extra, out, "aux"))
	n, _ := b.Node("derived")
	assert.Equal(t, extra, n.Inputs["aux"])

	t.Run("slot already wired", func(t *testing.T) {
		require.Error(t, b.Connect(src, out, "in"))
	})
	t.Run("target is a source", func(t *testing.T) {
		require.Error(t, b.Connect(extra, src, "x"))
	})
	t.Run("unknown target", func(t *testing.T) {
		require.Error(t, b.Connect(src, Ref{Key: "missing"}, "x"))
	})
	t.Run("unknown origin", func(t *testing.T) {
		require.Error(t, b.Connect(Ref{Key: "missing"}, out, "x"))
	})
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "WM_2_00E_PC5", Label("WM-2.00E-PC5"))
	assert.Equal(t, "plain_key", Label("plain_key"))
}

func TestRefIsZero(t *testing.T) {
	assert.True(t, Ref{}.IsZero())
	assert.False(t, Ref{Key: "k"}.IsZero())
}
