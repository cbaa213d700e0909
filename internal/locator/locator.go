// Package locator implements the shallow, textual function-boundary
// heuristics used to re-find a function after the document it lives in has
// moved or drifted out from under a stale line guess. It is deliberately not
// a parser: it trades language generality for a handful of line-prefix
// patterns and brace counting, matching the kind of approximation that is
// good enough to seed an agent's context and cheap enough to run on every
// relocation attempt.
package locator

import "strings"

// functionPrefixes are the line-prefix markers (after trimming leading
// whitespace) that identify a function declaration across the handful of
// C-family, Rust-like and Python-like syntaxes this heuristic set targets.
var functionPrefixes = []string{
	"fn ",
	"pub fn ",
	"async fn ",
	"pub async fn ",
	"pub(crate) fn ",
	"def ",
	"async def ",
}

// functionContainsMarkers catches declarations where the keyword isn't at
// the start of the trimmed line, e.g. a trait default-method continuation.
var functionContainsMarkers = []string{
	" fn ",
}

// cFamilyReturnPrefixes are C-family return-type / access-modifier keywords
// that, combined with a "(" somewhere on the line, are treated as a function
// declaration.
var cFamilyReturnPrefixes = []string{
	"void", "int", "bool", "char", "float", "double",
	"public", "private", "protected", "static",
}

// FindStart scans backwards from fromIndex (inclusive) looking for a line
// that looks like a function declaration. It returns the line number and
// true on success, or false if no candidate line was found before the top
// of the file.
func FindStart(lines []string, fromIndex int) (int, bool) {
	if fromIndex >= len(lines) || fromIndex < 0 {
		return 0, false
	}
	for i := fromIndex; i >= 0; i-- {
		if looksLikeFunctionStart(lines[i]) {
			return i, true
		}
	}
	return 0, false
}

// FindStartForward scans forward from fromIndex for a function start whose
// extracted identifier equals identifier, the second leg of the relocation
// cascade, used when the backward scan lands on the wrong function.
func FindStartForward(lines []string, fromIndex int, identifier string) (int, bool) {
	if fromIndex < 0 {
		fromIndex = 0
	}
	for i := fromIndex; i < len(lines); i++ {
		if !looksLikeFunctionStart(lines[i]) {
			continue
		}
		if IdentifiersMatch(lines[i], identifier) {
			return i, true
		}
	}
	return 0, false
}

// FindByIdentifier performs a full-document scan for the first function
// declaration line whose extracted identifier matches identifier. This is
// the last leg of the relocation cascade.
func FindByIdentifier(lines []string, identifier string) (int, bool) {
	if identifier == "" {
		return 0, false
	}
	for i, line := range lines {
		if !looksLikeFunctionStart(line) {
			continue
		}
		if IdentifiersMatch(line, identifier) {
			return i, true
		}
	}
	return 0, false
}

// FindEnd finds the line holding the closing brace that balances the first
// opening brace seen at or after startIndex, by simple brace counting. If
// the counter goes negative it returns that line as a safety valve. It
// reports false for brace-less bodies (e.g. Python); callers must treat
// that as a relocation failure rather than guess.
func FindEnd(lines []string, startIndex int) (int, bool) {
	openBraces := 0
	foundStart := false

	for i := startIndex; i < len(lines); i++ {
		for _, r := range lines[i] {
			switch r {
			case '{':
				openBraces++
				foundStart = true
			case '}':
				openBraces--
			}
		}
		if (foundStart && openBraces <= 0) || openBraces < 0 {
			return i, true
		}
	}
	return 0, false
}

// ExtractIdentifier returns the function name out of signatureLine by
// splitting at " fn ", "def "/"async def ", or the token immediately
// preceding "(". Returns false if no recognized pattern matches.
func ExtractIdentifier(signatureLine string) (string, bool) {
	trimmed := strings.TrimSpace(signatureLine)

	for _, kw := range []string{"async def ", "def "} {
		if strings.HasPrefix(trimmed, kw) {
			return takeIdentifier(trimmed[len(kw):]), true
		}
	}

	if idx := strings.Index(trimmed, " fn "); idx >= 0 {
		return takeIdentifier(trimmed[idx+len(" fn "):]), true
	}
	for _, kw := range []string{"pub(crate) fn ", "pub async fn ", "pub fn ", "async fn ", "fn "} {
		if strings.HasPrefix(trimmed, kw) {
			return takeIdentifier(trimmed[len(kw):]), true
		}
	}

	// Fall back to the token immediately preceding the first "(".
	if idx := strings.Index(trimmed, "("); idx >= 0 {
		before := strings.TrimSpace(trimmed[:idx])
		fields := strings.Fields(before)
		if len(fields) > 0 {
			return fields[len(fields)-1], true
		}
	}

	return "", false
}

func takeIdentifier(s string) string {
	end := len(s)
	for i, r := range s {
		if r == '(' || r == ' ' || r == '\t' || r == '<' || r == ':' {
			end = i
			break
		}
	}
	return strings.TrimSpace(s[:end])
}

// IdentifiersMatch reports whether foundLine and expectedLine refer to the
// same function: true on exact equality, or when both yield the same
// extracted identifier. An empty expectedLine always matches: the caller
// never had an identifier to check against, so the positional guess is
// trusted as-is.
func IdentifiersMatch(foundLine, expectedLine string) bool {
	if expectedLine == "" {
		return true
	}
	if foundLine == expectedLine {
		return true
	}
	gotID, gotOK := ExtractIdentifier(foundLine)
	wantID, wantOK := ExtractIdentifier(expectedLine)
	if !gotOK || !wantOK {
		return false
	}
	return gotID == wantID
}

func looksLikeFunctionStart(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, p := range functionPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	for _, m := range functionContainsMarkers {
		if strings.Contains(trimmed, m) {
			return true
		}
	}
	for _, p := range cFamilyReturnPrefixes {
		if strings.HasPrefix(trimmed, p) && strings.Contains(trimmed, "(") {
			return true
		}
	}
	return false
}
