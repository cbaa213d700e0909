package agentdriver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClaudeBuildPromptOutputFormat(t *testing.T) {
	prompt := claudeBuildPrompt(ImplementRequest{
		Line: 9, Character: 4, LanguageID: "rust",
		FileContents: "fn main() {}", OutputPath: "/tmp/output.rs",
		FunctionSignature: "fn calculate_sum(a: i32, b: i32) -> i32",
	})

	assert.Contains(t, prompt, "<FILE-CONTENT>")
	assert.Contains(t, prompt, "</FILE-CONTENT>")
	assert.Contains(t, prompt, "<MUST-OBEY>")
	assert.Contains(t, prompt, "</MUST-OBEY>")
	assert.Contains(t, prompt, "Implement the function body")
	assert.Contains(t, prompt, "Write ONLY this function's implementation")
	assert.Contains(t, prompt, "Do NOT include any other code")
	assert.Contains(t, prompt, "Do NOT output the code to stdout")
	assert.Contains(t, prompt, "NEVER read it, just write to it")
	assert.Contains(t, prompt, "Describe your steps before performing them")
}

func TestClaudeBuildPromptLineAndCharacterAreOneIndexed(t *testing.T) {
	prompt := claudeBuildPrompt(ImplementRequest{
		Line: 0, Character: 0, LanguageID: "rust",
		FileContents: "code", OutputPath: "/tmp/out.rs", FunctionSignature: "fn test()",
	})
	assert.Contains(t, prompt, "line 1")
	assert.Contains(t, prompt, "character 1")

	prompt = claudeBuildPrompt(ImplementRequest{
		Line: 99, Character: 49, LanguageID: "rust",
		FileContents: "code", OutputPath: "/tmp/out.rs", FunctionSignature: "fn test()",
	})
	assert.Contains(t, prompt, "line 100")
	assert.Contains(t, prompt, "character 50")
}

func TestClaudeBuildPromptContainsFunctionSignature(t *testing.T) {
	signature := "fn complex_function(x: &str, y: Vec<u32>) -> Result<String, Error>"
	prompt := claudeBuildPrompt(ImplementRequest{
		Line: 5, Character: 10, LanguageID: "rust",
		FileContents: "source code", OutputPath: "/tmp/out.rs", FunctionSignature: signature,
	})

	assert.Contains(t, prompt, signature)
	assert.Contains(t, prompt, fmt.Sprintf("IMPORTANT: Implement ONLY the function `%s`", signature))
}

func TestClaudeBuildPromptContainsOutputPath(t *testing.T) {
	outputPath := "/home/user/project/temp_impl_abc123.rs"
	prompt := claudeBuildPrompt(ImplementRequest{
		Line: 0, Character: 0, LanguageID: "rust",
		FileContents: "code", OutputPath: outputPath, FunctionSignature: "fn test()",
	})

	assert.Contains(t, prompt, outputPath)
	assert.Contains(t, prompt, fmt.Sprintf("Write ONLY this function's implementation (signature and body) to the file: %s", outputPath))
}

func TestClaudeBuildPromptContainsLanguageID(t *testing.T) {
	prompt := claudeBuildPrompt(ImplementRequest{
		Line: 0, Character: 0, LanguageID: "typescript",
		FileContents: "const x = 1;", OutputPath: "/tmp/out.ts", FunctionSignature: "function foo()",
	})
	assert.Contains(t, prompt, "typescript file")

	prompt = claudeBuildPrompt(ImplementRequest{
		Line: 0, Character: 0, LanguageID: "python",
		FileContents: "def main(): pass", OutputPath: "/tmp/out.py", FunctionSignature: "def bar()",
	})
	assert.Contains(t, prompt, "python file")
}

func TestClaudeBuildPromptContainsFileContents(t *testing.T) {
	fileContents := "use std::collections::HashMap;\n\nfn existing_function() -> i32 {\n    42\n}\n\nfn todo_implement() -> String {\n    todo!()\n}\n"
	prompt := claudeBuildPrompt(ImplementRequest{
		Line: 7, Character: 0, LanguageID: "rust",
		FileContents: fileContents, OutputPath: "/tmp/out.rs", FunctionSignature: "fn todo_implement()",
	})

	assert.Contains(t, prompt, "use std::collections::HashMap")
	assert.Contains(t, prompt, "fn existing_function()")
	assert.Contains(t, prompt, "fn todo_implement()")
}
