package volume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulComposesRightToLeft(t *testing.T) {
	shift := Identity()
	shift[0][3] = 2
	scale := Identity()
	scale[0][0] = 3

	// scale∘shift maps x to 3*(x+2).
	composed := Mul(scale, shift)
	out := composed.Apply([3]float64{1, 0, 0})
	assert.Equal(t, 9.0, out[0])
}

func TestInvertRoundTrips(t *testing.T) {
	a := Identity()
	a[0][0] = 2
	a[0][3] = 5
	a[1][3] = -1

	inv, err := Invert(a)
	require.NoError(t, err)

	p := [3]float64{1.5, 2, -3}
	back := inv.Apply(a.Apply(p))
	for i := range p {
		assert.InDelta(t, p[i], back[i], 1e-12)
	}
}

func TestInvertRejectsSingular(t *testing.T) {
	var a Affine // all zeros
	_, err := Invert(a)
	require.Error(t, err)
}

func TestApplyTranslation(t *testing.T) {
	a := Identity()
	a[0][3] = 1
	a[1][3] = 2
	a[2][3] = 3
	assert.Equal(t, [3]float64{1, 2, 3}, a.Apply([3]float64{0, 0, 0}))
}
