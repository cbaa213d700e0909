package agentdriver

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ClaudeCodeDriver shells out to the `claude` CLI.
type ClaudeCodeDriver struct{}

// NewClaudeCodeDriver returns a driver backed by the Claude Code CLI.
func NewClaudeCodeDriver() *ClaudeCodeDriver {
	return &ClaudeCodeDriver{}
}

func claudeBuildPrompt(req ImplementRequest) string {
	return fmt.Sprintf(
		"Implement the function body at line %d, character %d in the following %s file. "+
			"The function to implement is: `%s`\n\n"+
			"IMPORTANT: Implement ONLY the function `%s` - do NOT implement any other functions in the file.\n\n"+
			"Write ONLY this function's implementation (signature and body) to the file: %s "+
			"Do NOT include any other code from the source file (no imports, no other functions). "+
			"Do NOT output the code to stdout. "+
			"Output only status messages or confirmation.\n\n<FILE-CONTENT>\n%s</FILE-CONTENT>\n\n"+
			"<MUST-OBEY>\n"+
			"You can overwrite the output file's content, but NEVER read it, just write to it.\n"+
			"Describe your steps before performing them.\n"+
			"</MUST-OBEY>",
		req.Line+1,
		req.Character+1,
		req.LanguageID,
		req.FunctionSignature,
		req.FunctionSignature,
		req.OutputPath,
		req.FileContents,
	)
}

// ImplementStreaming invokes `claude -p <prompt> --output-format text --model
// sonnet --dangerously-skip-permissions` and streams its stdout line by line
// to onProgress as plain accumulated text.
func (d *ClaudeCodeDriver) ImplementStreaming(ctx context.Context, req ImplementRequest, onProgress ProgressFunc) error {
	prompt := claudeBuildPrompt(req)

	cmd := exec.CommandContext(ctx, "claude",
		"-p", prompt,
		"--output-format", "text",
		"--model", "sonnet",
		"--dangerously-skip-permissions",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("claude stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("claude stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("claude CLI start: %w", err)
	}

	var accumulated strings.Builder
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		accumulated.WriteString(scanner.Text())
		accumulated.WriteByte('\n')
		onProgress(strings.TrimSpace(accumulated.String()))
	}

	var stderrContent strings.Builder
	stderrScanner := bufio.NewScanner(stderr)
	for stderrScanner.Scan() {
		stderrContent.WriteString(stderrScanner.Text())
		stderrContent.WriteByte('\n')
	}

	err = cmd.Wait()
	if err != nil {
		details := strings.TrimSpace(stderrContent.String())
		if details == "" {
			details = strings.TrimSpace(accumulated.String())
		}
		if details == "" {
			details = err.Error()
		}
		return fmt.Errorf("claude CLI failed: %s", details)
	}

	return nil
}
