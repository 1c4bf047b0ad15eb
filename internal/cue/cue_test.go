package cue

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBellWritesBell(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewBell(&buf).Play())
	assert.Equal(t, "\a", buf.String())
}

func TestNew(t *testing.T) {
	assert.IsType(t, Silent{}, New("silent", nil))
	assert.IsType(t, &Bell{}, New("bell", &bytes.Buffer{}))
	assert.NoError(t, Silent{}.Play())
}
