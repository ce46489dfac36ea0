package sequence

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	prefixShellIn = "in ! "
	prefixIn      = "in "
	prefixOut     = "ou "
	prefixIm      = "im "
)

// ParseScript reads a step script into a Builder.
//
// Each non-blank line that does not start with '#' is one of:
//
//	in <args...>     command appended to the base invocation
//	in ! <args...>   command run through the shell
//	ou <pattern>     expected pattern for the preceding input
//
// Consecutive ou lines belong to the same step.
func ParseScript(r io.Reader) (*Builder, error) {
	b := New()
	var patterns []string
	flush := func() {
		if len(patterns) > 0 {
			b.Output(patterns...)
			patterns = nil
		}
	}

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		ln := strings.TrimSpace(sc.Text())
		if ln == "" || strings.HasPrefix(ln, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(ln, prefixShellIn):
			flush()
			b.Exec(strings.Fields(ln[len(prefixShellIn):])...)
		case strings.HasPrefix(ln, prefixIn):
			flush()
			b.Input(strings.Fields(ln[len(prefixIn):])...)
		case strings.HasPrefix(ln, prefixOut):
			if !b.Pending() && len(patterns) == 0 {
				b.Output()
			}
			patterns = append(patterns, ln[len(prefixOut):])
		case strings.HasPrefix(ln, prefixIm):
			return nil, &SyntaxError{Line: lineNo, Msg: "`im` items are not yet supported"}
		default:
			return nil, &SyntaxError{
				Line: lineNo,
				Msg:  fmt.Sprintf("item must start with one of `in !`, `in`, `ou`, found %q", ln),
			}
		}

		if err := b.Err(); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	flush()
	if err := b.Err(); err != nil {
		return nil, err
	}
	return b, nil
}
