// Package agentdriver abstracts over the external AI coding CLIs that
// actually produce a function implementation. Each variant shells out to a
// different tool with its own prompt template and progress-parsing rule, but
// all of them converge on the same contract: the finished implementation
// ends up in a scratch file on disk, and the caller reads it from there
// rather than from the CLI's stdout.
package agentdriver

import "context"

// ImplementRequest carries everything a driver needs to build its prompt
// and invoke its backend CLI.
type ImplementRequest struct {
	FilePath          string
	Line              int
	Character         int
	LanguageID        string
	FileContents      string
	OutputPath        string
	FunctionSignature string
}

// ProgressFunc is invoked with the accumulated, human-readable progress text
// seen so far as a backend streams its output. It may be called many times
// during a single ImplementStreaming call.
type ProgressFunc func(text string)

// Driver runs a single function-implementation job against one backend CLI.
// ImplementStreaming blocks until the backend process exits; the
// implementation itself is expected to land at req.OutputPath, not in the
// returned error.
type Driver interface {
	ImplementStreaming(ctx context.Context, req ImplementRequest, onProgress ProgressFunc) error
}
