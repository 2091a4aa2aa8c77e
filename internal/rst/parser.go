package rst

import (
	"regexp"
	"strings"
)

var nameTokenRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Parse is a single-pass scanner: it walks rstText looking for
// ".. name::" openings whose name is one of targetNames, and for each
// match runs the per-directive options/content machine. Output is in
// strict source order. Malformed candidates are skipped locally;
// nothing aborts the whole parse.
func Parse(rstText string, targetNames []string, sourceFile string, sink *Sink) []DirectiveWithSource {
	targets := make(map[string]bool, len(targetNames))
	for _, n := range targetNames {
		targets[n] = true
	}

	var out []DirectiveWithSource
	pos := 0
	for pos < len(rstText) {
		rel := strings.Index(rstText[pos:], ".. ")
		if rel < 0 {
			break
		}
		idx := pos + rel

		lineEnd := strings.IndexByte(rstText[idx:], '\n')
		if lineEnd < 0 {
			lineEnd = len(rstText)
		} else {
			lineEnd += idx
		}

		markerRel := strings.Index(rstText[idx+3:lineEnd], "::")
		if markerRel < 0 {
			pos = idx + 3
			continue
		}
		markerIdx := idx + 3 + markerRel

		name := strings.TrimSpace(rstText[idx+3 : markerIdx])
		if name == "" || !nameTokenRe.MatchString(name) || !targets[name] {
			pos = markerIdx + 2
			continue
		}

		lineNumber := 1 + strings.Count(rstText[:idx], "\n")
		d, next := parseDirectiveBody(rstText, markerIdx+2, name, sink, sourceFile)
		out = append(out, WithSource(d, sourceFile, lineNumber))
		pos = next
	}
	return out
}

// line is one physical line of text together with the offsets needed to
// resume scanning on either side of it.
type line struct {
	text    string
	start   int
	nextPos int
	ok      bool // false once we've run past the end of the input
}

func nextLine(text string, pos int) line {
	if pos >= len(text) {
		return line{ok: false}
	}
	rel := strings.IndexByte(text[pos:], '\n')
	if rel < 0 {
		return line{text: text[pos:], start: pos, nextPos: len(text), ok: true}
	}
	return line{text: text[pos : pos+rel], start: pos, nextPos: pos + rel + 1, ok: true}
}

func leadingSpaces(s string) int {
	return len(s) - len(strings.TrimLeft(s, " "))
}

func looksLikeOption(trimmed string) bool {
	if !strings.HasPrefix(trimmed, ":") {
		return false
	}
	return strings.Contains(trimmed[1:], ":")
}

// parseDirectiveBody parses arguments, options, and content starting
// right after the opening directive's "::", and returns the parsed body
// plus the byte offset at which scanning should resume (the terminator
// line, if any, is never consumed).
func parseDirectiveBody(text string, cursor int, name string, sink *Sink, sourceFile string) (Directive, int) {
	argLineEnd := strings.IndexByte(text[cursor:], '\n')
	var arguments string
	var afterArgs int
	if argLineEnd < 0 {
		arguments = strings.TrimSpace(text[cursor:])
		afterArgs = len(text)
	} else {
		arguments = strings.TrimSpace(text[cursor : cursor+argLineEnd])
		afterArgs = cursor + argLineEnd + 1
	}

	blockIndent := -1
	for probe := afterArgs; ; {
		l := nextLine(text, probe)
		if !l.ok {
			break
		}
		if strings.TrimSpace(l.text) != "" {
			blockIndent = leadingSpaces(l.text)
			break
		}
		probe = l.nextPos
	}

	if blockIndent == -1 {
		return Directive{Name: name, Arguments: arguments, Options: map[string]string{}}, afterArgs
	}

	options := map[string]string{}
	var forcedFirstContent string
	haveForcedFirst := false

	contentStart := afterArgs
	cur := afterArgs
optionsLoop:
	for {
		l := nextLine(text, cur)
		if !l.ok {
			contentStart = cur
			break
		}
		trimmed := strings.TrimSpace(l.text)

		switch {
		case trimmed == "":
			contentStart = l.nextPos
			break optionsLoop

		case looksLikeOption(trimmed):
			indent := leadingSpaces(l.text)
			rest := trimmed[1:]
			colon := strings.Index(rest, ":")
			key := strings.TrimSpace(rest[:colon])
			value := strings.TrimLeft(rest[colon+1:], " \t")

			var valueLines []string
			if value != "" {
				valueLines = append(valueLines, value)
			}

			contPos := l.nextPos
			for {
				cl := nextLine(text, contPos)
				if !cl.ok {
					break
				}
				if strings.TrimSpace(cl.text) == "" {
					break
				}
				if leadingSpaces(cl.text) <= indent {
					break
				}
				if looksLikeOption(strings.TrimSpace(cl.text)) {
					break
				}
				valueLines = append(valueLines, strings.TrimSpace(cl.text))
				contPos = cl.nextPos
			}

			if _, dup := options[key]; dup {
				sink.Warn(sourceFile, "duplicate option %q on directive %q, overwriting", key, name)
			}
			options[key] = strings.Join(valueLines, "\n")
			cur = contPos
			continue

		default:
			// Malformed option line, or a non-blank line that isn't an
			// option at all: ends the options phase and becomes the
			// first content line verbatim.
			forcedFirstContent = l.text
			haveForcedFirst = true
			contentStart = l.nextPos
			break optionsLoop
		}
	}

	var contentLines []string
	if haveForcedFirst {
		contentLines = append(contentLines, forcedFirstContent)
	}

	pos := contentStart
	for {
		l := nextLine(text, pos)
		if !l.ok {
			break
		}
		trimmed := strings.TrimSpace(l.text)
		if trimmed == "" {
			contentLines = append(contentLines, "")
			pos = l.nextPos
			continue
		}
		if strings.HasPrefix(trimmed, ".. ") && strings.Contains(trimmed, "::") {
			break
		}
		if leadingSpaces(l.text) < blockIndent {
			break
		}
		contentLines = append(contentLines, l.text)
		pos = l.nextPos
	}

	content := dedentLines(contentLines)
	return Directive{Name: name, Arguments: arguments, Options: options, Content: content}, pos
}
