package usecase

import "strings"

// The embedded page payload is a large script/HTML blob that is not valid
// JSON as a whole, so blocks are recovered lexically: find the literal
// `"key":` pattern, then walk forward counting bracket depth. Depth counting
// must ignore brackets inside string literals, otherwise a seller name like
// "ACME {Official}" desynchronizes the scan.

// literalState tracks whether the scan cursor is inside a JSON string
// literal. A backslash escapes the next character regardless of what it is.
type literalState struct {
	inString bool
	escaped  bool
}

// step consumes one character and reports whether it is structural, i.e.
// outside any string literal. Quote characters that open or close a literal
// are not structural.
func (s *literalState) step(ch byte) bool {
	if s.inString {
		switch {
		case s.escaped:
			s.escaped = false
		case ch == '\\':
			s.escaped = true
		case ch == '"':
			s.inString = false
		}
		return false
	}
	if ch == '"' {
		s.inString = true
		return false
	}
	return true
}

// scanBalancedSpan returns the exclusive end index of the balanced span
// starting at start, where text[start] is the open bracket. It returns -1
// when no matching close exists before the text ends; callers treat that as
// "no block found", never as a partial block.
func scanBalancedSpan(text string, start int, open, close byte) int {
	if start < 0 || start >= len(text) || text[start] != open {
		return -1
	}

	var state literalState
	depth := 0
	for i := start; i < len(text); i++ {
		ch := text[i]
		if !state.step(ch) {
			continue
		}
		switch ch {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// extractBlockByKey locates the first `"key":<open>` occurrence and returns
// the balanced span from the open bracket to its matching close.
func extractBlockByKey(text, key string, open, close byte) (string, bool) {
	needle := `"` + key + `":` + string(open)
	idx := strings.Index(text, needle)
	if idx == -1 {
		return "", false
	}

	start := idx + len(needle) - 1
	end := scanBalancedSpan(text, start, open, close)
	if end == -1 {
		return "", false
	}
	return text[start:end], true
}

// ExtractObjectBlock returns the exact text of the first `"key":{...}` span
// in the blob.
func ExtractObjectBlock(text, key string) (string, bool) {
	return extractBlockByKey(text, key, '{', '}')
}

// ExtractArrayBlock returns the exact text of the first `"key":[...]` span
// in the blob.
func ExtractArrayBlock(text, key string) (string, bool) {
	return extractBlockByKey(text, key, '[', ']')
}

// ExtractArrayBlockAt returns the balanced `[...]` span starting at the
// given index, used when an array has been located by a window scan rather
// than by key.
func ExtractArrayBlockAt(text string, start int) (string, bool) {
	end := scanBalancedSpan(text, start, '[', ']')
	if end == -1 {
		return "", false
	}
	return text[start:end], true
}

// ExtractObjectBlocksFromArray finds every `"key":[...]` occurrence in the
// blob and splits each array span into its top-level object spans. Nested
// objects and arrays inside an element never split it. The key may match
// inside a string value; such spurious blocks are filtered downstream.
func ExtractObjectBlocksFromArray(text, key string) []string {
	var blocks []string
	needle := `"` + key + `":[`

	searchFrom := 0
	for {
		rel := strings.Index(text[searchFrom:], needle)
		if rel == -1 {
			break
		}
		arrayStart := searchFrom + rel + len(needle) - 1
		arrayEnd := scanBalancedSpan(text, arrayStart, '[', ']')
		if arrayEnd == -1 {
			// Truncated array: yield nothing for this occurrence and stop,
			// the remainder of the blob is inside the unterminated span.
			break
		}

		blocks = append(blocks, splitTopLevelObjects(text[arrayStart+1:arrayEnd-1])...)
		searchFrom = arrayEnd
	}
	return blocks
}

// splitTopLevelObjects walks an array body and returns each span where the
// object depth transitions 0->1 (open) through 1->0 (close).
func splitTopLevelObjects(body string) []string {
	var spans []string
	var state literalState
	depth := 0
	objStart := -1

	for i := 0; i < len(body); i++ {
		ch := body[i]
		if !state.step(ch) {
			continue
		}
		switch ch {
		case '{':
			if depth == 0 {
				objStart = i
			}
			depth++
		case '}':
			depth--
			if depth == 0 && objStart != -1 {
				spans = append(spans, body[objStart:i+1])
				objStart = -1
			}
		}
	}
	return spans
}
