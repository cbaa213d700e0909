package agentdriver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// AmpDriver shells out to the `amp` CLI.
type AmpDriver struct{}

// NewAmpDriver returns a driver backed by the Amp CLI.
func NewAmpDriver() *AmpDriver {
	return &AmpDriver{}
}

// ampResult is the final NDJSON event Amp emits on --stream-json, carrying
// the implementation text it produced.
type ampResult struct {
	Type    string `json:"type"`
	Result  string `json:"result"`
	IsError bool   `json:"is_error"`
}

func ampBuildPrompt(req ImplementRequest) string {
	return fmt.Sprintf(
		"Implement the function at line %d, character %d in the following %s file. "+
			"Output ONLY the implementation code, no explanations or markdown:\n\n%s",
		req.Line+1,
		req.Character+1,
		req.LanguageID,
		req.FileContents,
	)
}

// extractAmpResult scans stdout's lines in reverse for the last NDJSON line
// of shape {"type":"result",...} and returns its result text.
func extractAmpResult(stdout string) (string, error) {
	lines := strings.Split(stdout, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		var msg ampResult
		if err := json.Unmarshal([]byte(lines[i]), &msg); err != nil {
			continue
		}
		if msg.Type != "result" {
			continue
		}
		if msg.IsError {
			return "", fmt.Errorf("amp returned error: %s", msg.Result)
		}
		return strings.TrimSpace(msg.Result), nil
	}
	return "", fmt.Errorf("no result found in amp output")
}

// ImplementStreaming invokes `amp --execute <prompt> --stream-json`,
// streaming raw stdout lines to onProgress as accumulated text, then once
// the process exits, extracts the final result event and writes it to
// req.OutputPath. Amp has no built-in notion of a destination file, unlike
// the other two variants, so this is where the scratch-file protocol is
// enforced on its behalf.
func (d *AmpDriver) ImplementStreaming(ctx context.Context, req ImplementRequest, onProgress ProgressFunc) error {
	prompt := ampBuildPrompt(req)

	cmd := exec.CommandContext(ctx, "amp",
		"--execute", prompt,
		"--stream-json",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("amp stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("amp CLI start: %w", err)
	}

	var full strings.Builder
	var accumulated strings.Builder
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		full.WriteString(line)
		full.WriteByte('\n')
		accumulated.WriteString(line)
		accumulated.WriteByte('\n')
		onProgress(strings.TrimSpace(accumulated.String()))
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("amp CLI failed: %s", strings.TrimSpace(full.String()))
	}

	result, err := extractAmpResult(full.String())
	if err != nil {
		return err
	}

	// Amp is prompted not to use markdown, but strip a stray fence anyway
	// before the result lands in the scratch file.
	return os.WriteFile(req.OutputPath, []byte(StripMarkdownCodeBlock(result)), 0o644)
}
