package lspserver

import "go.lsp.dev/protocol"

// didChangeParams mirrors textDocument/didChange's wire shape with the
// change's range kept as a pointer, so an absent "range" member reliably
// marks a full-document replacement.
type didChangeParams struct {
	TextDocument struct {
		URI     string `json:"uri"`
		Version int32  `json:"version"`
	} `json:"textDocument"`
	ContentChanges []contentChangeEvent `json:"contentChanges"`
}

type contentChangeEvent struct {
	Range *protocol.Range `json:"range,omitempty"`
	Text  string          `json:"text"`
}

// backendInfoParams is the payload of the one-shot agent/backendInfo
// notification emitted right after initialize acknowledges.
type backendInfoParams struct {
	Name string `json:"name"`
}

// progressParams is the payload of amp/implFunctionProgress. An empty
// Preview with a new Line signals a pure relocation rather than fresh
// agent output.
type progressParams struct {
	JobID     string `json:"jobId"`
	URI       string `json:"uri"`
	Line      uint32 `json:"line"`
	Preview   string `json:"preview"`
	PendingID string `json:"pendingId,omitempty"`
}

// jobCompletedParams is the payload of amp/jobCompleted.
type jobCompletedParams struct {
	JobID     string  `json:"jobId"`
	URI       string  `json:"uri"`
	Success   bool    `json:"success"`
	Error     *string `json:"error"`
	PendingID string  `json:"pendingId,omitempty"`
}

// implFunctionArgs is the positional amp.implFunction command payload:
// [uri, line, character, version, languageId, pendingId?].
type implFunctionArgs struct {
	URI        string
	Line       uint32
	Character  uint32
	Version    int32
	LanguageID string
	PendingID  string
}
