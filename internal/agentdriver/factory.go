package agentdriver

import "fmt"

// Backend names the configured agent CLI variant.
type Backend string

const (
	BackendClaude   Backend = "claude"
	BackendOpenCode Backend = "opencode"
	BackendAmp      Backend = "amp"
)

// NewDriver selects a concrete Driver for the given backend name.
func NewDriver(backend Backend) (Driver, error) {
	switch backend {
	case BackendClaude, "":
		return NewClaudeCodeDriver(), nil
	case BackendOpenCode:
		return NewOpenCodeDriver(), nil
	case BackendAmp:
		return NewAmpDriver(), nil
	default:
		return nil, fmt.Errorf("unknown agent backend: %q", backend)
	}
}
