package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Default_isValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func Test_Parse_overridesOnlyGivenFields(t *testing.T) {
	assert := assert.New(t)
	lim, err := Parse([]byte("max_states = 500\n"))
	require.NoError(t, err)

	assert.Equal(500, lim.MaxStates)
	assert.Equal(DefaultMaxRecoveryExpansions, lim.MaxRecoveryExpansions)
	assert.Equal(DefaultMaxStackDepth, lim.MaxStackDepth)
}

func Test_Parse_allFieldsOverridden(t *testing.T) {
	assert := assert.New(t)
	toml := `
max_states = 1
max_recovery_expansions = 2
max_stack_depth = 3
`
	lim, err := Parse([]byte(toml))
	require.NoError(t, err)
	assert.Equal(Limits{MaxStates: 1, MaxRecoveryExpansions: 2, MaxStackDepth: 3}, lim)
}

func Test_Parse_nonPositiveLimit_returnsError(t *testing.T) {
	_, err := Parse([]byte("max_states = 0\n"))
	assert.Error(t, err)
}

func Test_Parse_malformedTOML_returnsError(t *testing.T) {
	_, err := Parse([]byte("this is not : valid toml ["))
	assert.Error(t, err)
}

func Test_Load_missingFile_returnsError(t *testing.T) {
	_, err := Load("/nonexistent/path/limits.toml")
	assert.Error(t, err)
}
