// Package coordinator drives a single implementation job end to end: it
// invokes the configured Agent Driver, relocates the target function in
// whatever the document has become by the time the agent finishes, rewrites
// it, and propagates the resulting line shift to every other job still
// in flight on the same document.
package coordinator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/lexcodex/agentlsp/internal/agentdriver"
	"github.com/lexcodex/agentlsp/internal/docstore"
	"github.com/lexcodex/agentlsp/internal/jobtracker"
	"github.com/lexcodex/agentlsp/internal/locator"
)

// Notifier is the outbound half of the LSP Surface that the Coordinator
// reports through. Keeping it as an interface here (rather than importing
// the lspserver package directly) avoids a lspserver<->coordinator import
// cycle: the lspserver.Server is passed in as the Notifier when the
// Coordinator is built, and the Coordinator is then attached to it.
type Notifier interface {
	NotifyProgress(uri, jobID string, line int, preview, pendingID string)
	NotifyJobCompleted(uri, jobID string, success bool, errMsg, pendingID string)
	ApplyEdit(ctx context.Context, uri string, version int32, newText string) error
}

// SpawnParams carries everything a worker needs to run one implementation
// job, captured as of the moment the LSP Surface accepted the command.
type SpawnParams struct {
	JobID              string
	URI                string
	FilePath           string
	Line               int
	Character          int
	LanguageID         string
	DocText            string
	DocVersion         int32
	FunctionIdentifier string
	PendingID          string
}

// Coordinator is the shared, stateless orchestrator; all per-job state
// lives in the Job Tracker and on each worker goroutine's stack.
type Coordinator struct {
	docs            *docstore.Store
	jobs            *jobtracker.Tracker
	driver          agentdriver.Driver
	notifier        Notifier
	deleteTempFiles bool
}

// New builds a Coordinator wired to its collaborators.
func New(docs *docstore.Store, jobs *jobtracker.Tracker, driver agentdriver.Driver, notifier Notifier, deleteTempFiles bool) *Coordinator {
	return &Coordinator{
		docs:            docs,
		jobs:            jobs,
		driver:          driver,
		notifier:        notifier,
		deleteTempFiles: deleteTempFiles,
	}
}

// Spawn starts the job's worker goroutine, which registers the job with the
// Job Tracker as its first step. It returns immediately; all further
// communication happens through the Notifier.
func (c *Coordinator) Spawn(ctx context.Context, p SpawnParams) {
	go c.run(ctx, p)
}

func (c *Coordinator) run(ctx context.Context, p SpawnParams) {
	if err := c.jobs.Register(p.URI, p.JobID, p.Line, p.FunctionIdentifier); err != nil {
		c.notifier.NotifyJobCompleted(p.URI, p.JobID, false, "capacity", p.PendingID)
		return
	}

	scratchPath, cleanup := c.allocateScratchPath(p.FilePath)

	// Error-path scratch deletion rides the same flag as the success path.
	fail := func(errMsg string) {
		c.notifier.NotifyJobCompleted(p.URI, p.JobID, false, errMsg, p.PendingID)
		c.jobs.Complete(p.URI, p.JobID)
		if c.deleteTempFiles {
			cleanup()
		}
	}

	req := agentdriver.ImplementRequest{
		FilePath:          p.FilePath,
		Line:              p.Line,
		Character:         p.Character,
		LanguageID:        p.LanguageID,
		FileContents:      p.DocText,
		OutputPath:        scratchPath,
		FunctionSignature: p.FunctionIdentifier,
	}

	onProgress := func(preview string) {
		line := p.Line
		if current, ok := c.jobs.CurrentLine(p.JobID); ok {
			line = current
		}
		c.notifier.NotifyProgress(p.URI, p.JobID, line, preview, p.PendingID)
	}

	if err := c.driver.ImplementStreaming(ctx, req, onProgress); err != nil {
		fail(fmt.Sprintf("agent failed: %v", err))
		return
	}

	implementationBytes, err := os.ReadFile(scratchPath)
	if err != nil {
		fail(fmt.Sprintf("could not read agent output: %v", err))
		return
	}
	implementation := strings.TrimSpace(string(implementationBytes))
	if implementation == "" {
		fail("agent produced an empty implementation")
		return
	}
	if c.deleteTempFiles {
		cleanup()
	}

	doc, ok := c.docs.Get(p.URI)
	if !ok {
		fail("document closed")
		return
	}
	lines := splitLines(doc.Text)

	currentLine, ok := c.jobs.CurrentLine(p.JobID)
	if !ok {
		fail("job vanished from tracker")
		return
	}

	startLine, found := c.relocate(lines, currentLine, p.FunctionIdentifier)
	if !found {
		fail("could not find function")
		return
	}

	endLine, ok := locator.FindEnd(lines, startLine)
	if !ok {
		fail("could not find function end")
		return
	}

	implLines := splitLines(implementation)
	newLines := make([]string, 0, startLine+len(implLines)+len(lines)-endLine)
	newLines = append(newLines, lines[:startLine]...)
	newLines = append(newLines, implLines...)
	if endLine+1 < len(lines) {
		newLines = append(newLines, lines[endLine+1:]...)
	}
	newText := strings.Join(newLines, "\n") + "\n"

	if err := c.notifier.ApplyEdit(ctx, p.URI, doc.Version, newText); err != nil {
		fail(fmt.Sprintf("failed to apply edit: %v", err))
		return
	}

	delta := len(implLines) - (endLine - startLine + 1)
	c.jobs.AdjustForEdit(p.URI, startLine, endLine, delta, p.JobID)
	for _, peer := range c.jobs.ListActive(p.URI) {
		if peer.JobID == p.JobID {
			continue
		}
		c.notifier.NotifyProgress(p.URI, peer.JobID, peer.Line, "", "")
	}

	c.notifier.NotifyJobCompleted(p.URI, p.JobID, true, "", p.PendingID)
	c.jobs.Complete(p.URI, p.JobID)
}

// relocate runs the backward -> forward-by-identifier -> full-scan-by-identifier
// cascade described for the Edit Coordinator, starting from currentLine.
func (c *Coordinator) relocate(lines []string, currentLine int, identifier string) (int, bool) {
	if startLine, ok := locator.FindStart(lines, currentLine); ok {
		if locator.IdentifiersMatch(lines[startLine], identifier) {
			return startLine, true
		}
	}
	if identifier == "" {
		return 0, false
	}
	if startLine, ok := locator.FindStartForward(lines, currentLine, identifier); ok {
		return startLine, true
	}
	return locator.FindByIdentifier(lines, identifier)
}

// allocateScratchPath picks a collision-resistant sibling tmp/ path next to
// filePath without creating the file; the driver's agent is expected to
// create it. cleanup best-effort removes it and is always safe to call
// more than once.
func (c *Coordinator) allocateScratchPath(filePath string) (string, func()) {
	dir := filepath.Join(filepath.Dir(filePath), "tmp")
	_ = os.MkdirAll(dir, 0o755)

	name := uuid.New().String() + filepath.Ext(filePath)
	path := filepath.Join(dir, name)

	return path, func() {
		_ = os.Remove(path)
	}
}

// splitLines splits text into lines the way the locator's line-indexed
// contract expects: a trailing newline terminates the final line rather
// than introducing an empty one after it, so callers that always re-append
// a single trailing "\n" on rewrite don't double it up.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
