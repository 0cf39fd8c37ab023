package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxCenterOfContentQuad(t *testing.T) {
	x, y, err := boxCenter([]float64{100, 200, 300, 200, 300, 400, 100, 400})

	require.NoError(t, err)
	assert.Equal(t, 200, x)
	assert.Equal(t, 300, y)
}

func TestBoxCenterRejectsShortQuad(t *testing.T) {
	_, _, err := boxCenter([]float64{100, 200})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "got 2 quad coordinates")
}

func TestBoxCenterRejectsEmptyQuad(t *testing.T) {
	_, _, err := boxCenter(nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "need 8")
}
