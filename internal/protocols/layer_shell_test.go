package protocols

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnchorAllEdges_CombinesAllFourBits(t *testing.T) {
	assert.Equal(t, AnchorTop|AnchorBottom|AnchorLeft|AnchorRight, AnchorAllEdges)
	assert.Equal(t, uint32(0xF), AnchorAllEdges)
}

func TestLayerValues_AreDistinct(t *testing.T) {
	layers := []uint32{LayerBackground, LayerBottom, LayerTop, LayerOverlay}
	seen := make(map[uint32]bool)
	for _, l := range layers {
		assert.False(t, seen[l])
		seen[l] = true
	}
}
