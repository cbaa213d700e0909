package agentdriver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAmpResultSuccess(t *testing.T) {
	stdout := `{"type":"system"}
{"type":"result","result":"fn foo() {\n    1\n}","is_error":false}
`
	result, err := extractAmpResult(stdout)
	require.NoError(t, err)
	assert.Equal(t, "fn foo() {\n    1\n}", result)
}

func TestExtractAmpResultUsesLastResultLine(t *testing.T) {
	stdout := `{"type":"result","result":"first","is_error":false}
{"type":"other"}
{"type":"result","result":"second","is_error":false}
`
	result, err := extractAmpResult(stdout)
	require.NoError(t, err)
	assert.Equal(t, "second", result)
}

func TestExtractAmpResultErrorFlag(t *testing.T) {
	stdout := `{"type":"result","result":"something broke","is_error":true}`
	_, err := extractAmpResult(stdout)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "something broke")
}

func TestExtractAmpResultNoResultLine(t *testing.T) {
	stdout := `{"type":"system"}
not json at all
`
	_, err := extractAmpResult(stdout)
	assert.Error(t, err)
}

func TestAmpBuildPrompt(t *testing.T) {
	prompt := ampBuildPrompt(ImplementRequest{
		Line: 9, Character: 4, LanguageID: "rust", FileContents: "fn main() {}",
	})
	assert.Contains(t, prompt, "line 10")
	assert.Contains(t, prompt, "character 5")
	assert.Contains(t, prompt, "rust file")
	assert.Contains(t, prompt, "fn main() {}")
	assert.Contains(t, prompt, "no explanations or markdown")
}
