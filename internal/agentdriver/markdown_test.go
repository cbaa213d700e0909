package agentdriver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMarkdownCodeBlockWithLanguage(t *testing.T) {
	input := "```rust\nfn foo() {\n    println!(\"hello\");\n}\n```"
	expected := "fn foo() {\n    println!(\"hello\");\n}"
	assert.Equal(t, expected, StripMarkdownCodeBlock(input))
}

func TestStripMarkdownCodeBlockWithoutLanguage(t *testing.T) {
	input := "```\nsome code\n```"
	assert.Equal(t, "some code", StripMarkdownCodeBlock(input))
}

func TestStripMarkdownCodeBlockPlainText(t *testing.T) {
	input := "plain text without code block"
	assert.Equal(t, input, StripMarkdownCodeBlock(input))
}

func TestStripMarkdownCodeBlockWithWhitespace(t *testing.T) {
	input := "  ```python\nprint('hello')\n```  "
	assert.Equal(t, "print('hello')", StripMarkdownCodeBlock(input))
}

func TestStripMarkdownCodeBlockEmpty(t *testing.T) {
	input := "```\n```"
	assert.Equal(t, "", StripMarkdownCodeBlock(input))
}

func TestStripMarkdownCodeBlockMultiline(t *testing.T) {
	input := "```typescript\nconst x = 1;\nconst y = 2;\nreturn x + y;\n```"
	expected := "const x = 1;\nconst y = 2;\nreturn x + y;"
	assert.Equal(t, expected, StripMarkdownCodeBlock(input))
}
