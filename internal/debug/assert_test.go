//go:build !release

package debug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssert(t *testing.T) {
	assert.NotPanics(t, func() { Assert(true, "never") })
	assert.PanicsWithValue(t, "assertion failed: root is 7", func() { Assert(false, "root is %d", 7) })
}
