package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerator_Monotonic(t *testing.T) {
	var g Generator

	assert.Zero(t, g.Current())
	assert.Equal(t, int64(1), g.Next())
	assert.Equal(t, int64(2), g.Next())
	assert.Equal(t, int64(3), g.Next())
	assert.Equal(t, int64(3), g.Current())
}

func TestGenerator_Reset(t *testing.T) {
	var g Generator

	g.Next()
	g.Next()
	g.Reset()

	assert.Zero(t, g.Current())
	assert.Equal(t, int64(1), g.Next())
}

func TestGenerator_Independent(t *testing.T) {
	var orders, trades Generator

	orders.Next()
	orders.Next()
	assert.Equal(t, int64(1), trades.Next()) // separate sequences never share
}
