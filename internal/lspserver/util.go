package lspserver

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"go.lsp.dev/protocol"
)

// stdioReadWriteCloser joins this process's stdin and stdout into the single
// ReadWriteCloser jsonrpc2's buffered stream wants, the server-direction
// mirror of the pipe pairing used for spawned language-server children.
type stdioReadWriteCloser struct {
	reader io.ReadCloser
	writer io.WriteCloser
}

func (s stdioReadWriteCloser) Read(p []byte) (int, error)  { return s.reader.Read(p) }
func (s stdioReadWriteCloser) Write(p []byte) (int, error) { return s.writer.Write(p) }
func (s stdioReadWriteCloser) Close() error {
	_ = s.reader.Close()
	return s.writer.Close()
}

// wholeDocumentRange spans from the origin past any real end-of-document, so
// a single TextEdit against it replaces the entire file. Clients clamp the
// end position to the document's actual extent.
var wholeDocumentRange = protocol.Range{
	Start: protocol.Position{Line: 0, Character: 0},
	End:   protocol.Position{Line: math.MaxUint32, Character: 0},
}

func newJobID() string {
	return uuid.New().String()
}

func uriToFilePath(uri string) string {
	uri = strings.TrimPrefix(uri, "file://")
	uri = strings.ReplaceAll(uri, "%3A", ":")
	if runtime.GOOS == "windows" {
		uri = strings.TrimPrefix(uri, "/")
	}
	return filepath.FromSlash(uri)
}

// splitLines splits text on newlines without manufacturing a trailing empty
// line when the text ends in one, matching the line-indexed view the locator
// operates on.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// parseImplFunctionArgs decodes the positional amp.implFunction arguments
// [uri, line, character, version, languageId, pendingId?].
func parseImplFunctionArgs(args []json.RawMessage) (implFunctionArgs, error) {
	var parsed implFunctionArgs
	if len(args) < 5 {
		return parsed, fmt.Errorf("amp.implFunction expects at least 5 arguments, got %d", len(args))
	}
	if err := json.Unmarshal(args[0], &parsed.URI); err != nil {
		return parsed, fmt.Errorf("argument 0 (uri) must be a string: %w", err)
	}
	if err := json.Unmarshal(args[1], &parsed.Line); err != nil {
		return parsed, fmt.Errorf("argument 1 (line) must be an unsigned integer: %w", err)
	}
	if err := json.Unmarshal(args[2], &parsed.Character); err != nil {
		return parsed, fmt.Errorf("argument 2 (character) must be an unsigned integer: %w", err)
	}
	if err := json.Unmarshal(args[3], &parsed.Version); err != nil {
		return parsed, fmt.Errorf("argument 3 (version) must be an integer: %w", err)
	}
	if err := json.Unmarshal(args[4], &parsed.LanguageID); err != nil {
		return parsed, fmt.Errorf("argument 4 (languageId) must be a string: %w", err)
	}
	if len(args) > 5 {
		if err := json.Unmarshal(args[5], &parsed.PendingID); err != nil {
			return parsed, fmt.Errorf("argument 5 (pendingId) must be a string: %w", err)
		}
	}
	return parsed, nil
}
