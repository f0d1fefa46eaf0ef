package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/pagecheck/checkpoint"
)

func TestParseViewport(t *testing.T) {
	v, err := parseViewport("1280x720")
	require.NoError(t, err)
	assert.Equal(t, checkpoint.Viewport{Width: 1280, Height: 720}, v)

	for _, invalid := range []string{"", "1280", "1280x", "x720", "-1x720", "1280xabc"} {
		_, err := parseViewport(invalid)
		assert.Error(t, err, "viewport %q", invalid)
	}
}
