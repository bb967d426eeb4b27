package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampVersion_CapsAtMinimumWhenCompositorAdvertisesMore(t *testing.T) {
	assert.Equal(t, uint32(5), clampVersion(9, 5))
}

func TestClampVersion_FollowsCompositorWhenItAdvertisesLess(t *testing.T) {
	assert.Equal(t, uint32(3), clampVersion(3, 5))
}

func TestClampVersion_ExactMatch(t *testing.T) {
	assert.Equal(t, uint32(5), clampVersion(5, 5))
}
