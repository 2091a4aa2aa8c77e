package rst

import (
	"path/filepath"
	"strings"
)

// Extract recovers RST text from a file's bytes given its path (used only
// for the extension). It never fails: malformed input yields a
// best-effort partial result and warnings on sink, which may be nil.
//
// Dispatch is by extension, case-sensitive:
//
//	.rst                                    -> contents verbatim
//	.cpp .cxx .cc .h .hpp .hxx .hh           -> C/C++ comment extraction
//	.py                                      -> Python docstring extraction
//	anything else                           -> empty string (file ignored)
func Extract(path string, content string, sink *Sink) string {
	switch filepath.Ext(path) {
	case ".rst":
		return content
	case ".cpp", ".cxx", ".cc", ".h", ".hpp", ".hxx", ".hh":
		return extractCPP(content, path, sink)
	case ".py":
		return extractPython(content, path, sink)
	default:
		return ""
	}
}

const rstStartMarker = "@rst"
const rstEndMarker = "@endrst"

// commentPayload reports whether line is a "///" or "//" comment (with or
// without one following space) and, if so, returns the text after the
// marker and that optional space.
func commentPayload(line string) (payload string, ok bool) {
	trimmed := strings.TrimLeft(line, " \t")
	switch {
	case strings.HasPrefix(trimmed, "///"):
		payload = trimmed[len("///"):]
	case strings.HasPrefix(trimmed, "//"):
		payload = trimmed[len("//"):]
	default:
		return "", false
	}
	if strings.HasPrefix(payload, " ") {
		payload = payload[1:]
	}
	return payload, true
}

// extractCPP implements a two-state (OUT / IN_BLOCK) line-oriented
// machine.
func extractCPP(content string, path string, sink *Sink) string {
	var blocks []string
	var current []string
	inBlock := false

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		payload, isComment := commentPayload(line)

		if !inBlock {
			if !isComment {
				continue
			}
			afterSpaces := strings.TrimLeft(payload, " ")
			if !strings.HasPrefix(afterSpaces, rstStartMarker) {
				continue
			}
			inBlock = true
			rest := afterSpaces[len(rstStartMarker):]
			if strings.HasPrefix(rest, " ") {
				rest = rest[1:]
			}
			if idx := strings.Index(rest, rstEndMarker); idx >= 0 {
				single := strings.TrimRight(rest[:idx], " \t")
				blocks = append(blocks, dedentLines(splitLines(single)))
				inBlock = false
				continue
			}
			if rest != "" {
				current = append(current, rest)
			}
			continue
		}

		// inBlock
		if isComment {
			if idx := strings.Index(payload, rstEndMarker); idx >= 0 {
				before := strings.TrimRight(payload[:idx], " \t")
				if before != "" {
					current = append(current, before)
				}
				blocks = append(blocks, dedentLines(current))
				current = nil
				inBlock = false
				continue
			}
			current = append(current, payload)
			continue
		}

		if strings.TrimSpace(line) == "" {
			current = append(current, "")
			continue
		}

		// Non-blank, non-comment line: unterminated block.
		sink.Warn(path, "unterminated @rst block in C/C++ comment, discarding %d line(s)", len(current))
		current = nil
		inBlock = false
	}

	if inBlock {
		sink.Warn(path, "unterminated @rst block at end of file, discarding %d line(s)", len(current))
	}

	return strings.Join(blocks, "\n\n")
}

// extractPython implements a three-state (OUT_OF_DOCSTRING /
// IN_DOCSTRING / IN_RST_BLOCK) machine.
func extractPython(content string, path string, sink *Sink) string {
	const dq = `"""`
	const sq = `'''`

	var blocks []string
	searchFrom := 0

	for searchFrom < len(content) {
		dqIdx := indexFrom(content, dq, searchFrom)
		sqIdx := indexFrom(content, sq, searchFrom)

		var delim string
		var start int
		switch {
		case dqIdx < 0 && sqIdx < 0:
			searchFrom = len(content)
			continue
		case dqIdx < 0:
			delim, start = sq, sqIdx
		case sqIdx < 0:
			delim, start = dq, dqIdx
		case dqIdx <= sqIdx:
			delim, start = dq, dqIdx
		default:
			delim, start = sq, sqIdx
		}

		docContentStart := start + len(delim)
		end := indexFrom(content, delim, docContentStart)
		if end < 0 {
			sink.Warn(path, "unclosed docstring, halting extraction for this file")
			return strings.Join(blocks, "\n\n")
		}
		docContent := content[docContentStart:end]
		searchFrom = end + len(delim)

		pos := 0
		for pos < len(docContent) {
			rstIdx := strings.Index(docContent[pos:], rstStartMarker)
			if rstIdx < 0 {
				break
			}
			blockStart := pos + rstIdx + len(rstStartMarker)
			endIdx := strings.Index(docContent[blockStart:], rstEndMarker)
			if endIdx < 0 {
				sink.Warn(path, "unterminated @rst block inside docstring")
				break
			}
			blockEnd := blockStart + endIdx
			raw := docContent[blockStart:blockEnd]
			blocks = append(blocks, dedentLines(splitLines(trimOneNewline(raw))))
			pos = blockEnd + len(rstEndMarker)
		}
	}

	return strings.Join(blocks, "\n\n")
}

func indexFrom(s, substr string, from int) int {
	if from >= len(s) {
		return -1
	}
	idx := strings.Index(s[from:], substr)
	if idx < 0 {
		return -1
	}
	return from + idx
}

// trimOneNewline strips exactly one optional leading and one optional
// trailing newline (handling both "\n" and "\r\n").
func trimOneNewline(s string) string {
	if strings.HasPrefix(s, "\r\n") {
		s = s[2:]
	} else if strings.HasPrefix(s, "\n") {
		s = s[1:]
	}
	if strings.HasSuffix(s, "\r\n") {
		s = s[:len(s)-2]
	} else if strings.HasSuffix(s, "\n") {
		s = s[:len(s)-1]
	}
	return s
}

func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

// dedentLines implements the uniform-dedent algorithm shared by both
// extractor paths: subtract the minimum leading-space width across
// non-blank lines from every line, normalise blank lines to "", and drop
// leading/trailing blank lines.
func dedentLines(lines []string) string {
	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " "))
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			out[i] = ""
			continue
		}
		if minIndent > 0 && len(line) >= minIndent {
			out[i] = line[minIndent:]
		} else {
			out[i] = line
		}
	}

	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}

	return strings.Join(out, "\n")
}
