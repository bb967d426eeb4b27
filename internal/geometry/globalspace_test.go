package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_EmptyGeometry(t *testing.T) {
	gs, err := Compute(New(), false)
	require.NoError(t, err)
	assert.Equal(t, &GlobalSpace{}, gs)
}

func TestCompute_SideBySideNoVoid(t *testing.T) {
	g := New()
	require.NoError(t, g.Add(&Output{RegistryName: 1, X: 0, Y: 0, Width: 800, Height: 600, InitDone: true}))
	require.NoError(t, g.Add(&Output{RegistryName: 2, X: 800, Y: 0, Width: 800, Height: 600, InitDone: true}))

	gs, err := Compute(g, false)
	require.NoError(t, err)
	assert.Equal(t, int32(0), gs.X)
	assert.Equal(t, int32(0), gs.Y)
	assert.Equal(t, int32(1600), gs.Width)
	assert.Equal(t, int32(600), gs.Height)
}

func TestCompute_InteriorVoidRejectedWhenNotGapTolerant(t *testing.T) {
	g := New()
	require.NoError(t, g.Add(&Output{RegistryName: 1, X: 0, Y: 0, Width: 800, Height: 600, InitDone: true}))
	require.NoError(t, g.Add(&Output{RegistryName: 2, X: 0, Y: 700, Width: 800, Height: 600, InitDone: true}))

	_, err := Compute(g, false)
	assert.Error(t, err)
}

func TestCompute_InteriorVoidAllowedWhenGapTolerant(t *testing.T) {
	g := New()
	require.NoError(t, g.Add(&Output{RegistryName: 1, X: 0, Y: 0, Width: 800, Height: 600, InitDone: true}))
	require.NoError(t, g.Add(&Output{RegistryName: 2, X: 0, Y: 700, Width: 800, Height: 600, InitDone: true}))

	gs, err := Compute(g, true)
	require.NoError(t, err)
	assert.Equal(t, int32(1300), gs.Height)
}
