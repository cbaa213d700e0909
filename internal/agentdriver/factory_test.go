package agentdriver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDriverDefaultsToClaude(t *testing.T) {
	d, err := NewDriver("")
	require.NoError(t, err)
	_, ok := d.(*ClaudeCodeDriver)
	assert.True(t, ok)
}

func TestNewDriverSelectsEachBackend(t *testing.T) {
	claude, err := NewDriver(BackendClaude)
	require.NoError(t, err)
	assert.IsType(t, &ClaudeCodeDriver{}, claude)

	opencode, err := NewDriver(BackendOpenCode)
	require.NoError(t, err)
	assert.IsType(t, &OpenCodeDriver{}, opencode)

	amp, err := NewDriver(BackendAmp)
	require.NoError(t, err)
	assert.IsType(t, &AmpDriver{}, amp)
}

func TestNewDriverUnknownBackend(t *testing.T) {
	_, err := NewDriver("bogus")
	assert.Error(t, err)
}
