package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutput_Contains(t *testing.T) {
	o := &Output{X: 10, Y: 20, Width: 100, Height: 50, InitDone: true}
	assert.True(t, o.Contains(10, 20))
	assert.True(t, o.Contains(109, 69))
	assert.False(t, o.Contains(110, 69))
	assert.False(t, o.Contains(10, 70))
	assert.False(t, o.Contains(9, 20))
}

func TestOutput_ContainsRequiresInitDone(t *testing.T) {
	o := &Output{X: 0, Y: 0, Width: 800, Height: 600}
	assert.False(t, o.Contains(0, 0))
}

func TestGeometry_AddRemoveByRegistryName(t *testing.T) {
	g := New()
	a := &Output{RegistryName: 1, X: 0, Y: 0, Width: 800, Height: 600, InitDone: true}
	b := &Output{RegistryName: 2, X: 800, Y: 0, Width: 800, Height: 600, InitDone: true}

	require.NoError(t, g.Add(a))
	require.NoError(t, g.Add(b))
	assert.Same(t, a, g.ByRegistryName(1))
	assert.Same(t, b, g.ByRegistryName(2))
	assert.Len(t, g.Outputs(), 2)

	g.Remove(1)
	assert.Nil(t, g.ByRegistryName(1))
	assert.Len(t, g.Outputs(), 1)
}

func TestGeometry_AddExhaustsSlots(t *testing.T) {
	g := New()
	for i := 0; i < MaxOutputs; i++ {
		require.NoError(t, g.Add(&Output{RegistryName: uint32(i)}))
	}
	assert.Error(t, g.Add(&Output{RegistryName: 999}))
}

func TestGeometry_OutputAt(t *testing.T) {
	g := New()
	require.NoError(t, g.Add(&Output{RegistryName: 1, X: 0, Y: 0, Width: 800, Height: 600, InitDone: true}))
	require.NoError(t, g.Add(&Output{RegistryName: 2, X: 0, Y: 700, Width: 800, Height: 600, InitDone: true}))

	assert.NotNil(t, g.OutputAt(400, 300))
	assert.Nil(t, g.OutputAt(400, 650))
	assert.NotNil(t, g.OutputAt(400, 750))
}
