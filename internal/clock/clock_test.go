package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNowMillis_Monotonic(t *testing.T) {
	c := New()
	a := c.NowMillis()
	time.Sleep(5 * time.Millisecond)
	b := c.NowMillis()
	assert.GreaterOrEqual(t, b, a)
}

func TestNowMillis_StartsNearZero(t *testing.T) {
	c := New()
	assert.Less(t, c.NowMillis(), int64(50))
}
