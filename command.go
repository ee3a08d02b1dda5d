package wdl

import (
	"context"
	"strings"
)

// ApplyCommand evaluates a task's command section and renders it into the
// final shell command string, applying the dedent transform of section
// 4.5: the common leading whitespace is stripped from every non-blank
// line (tabs count as 2 columns, matching the rest of the indentation
// convention used by the examples' own formatted output), a single leading
// and a single trailing blank line are trimmed, and a newline is appended
// when the result does not already end in one. Further blank lines at
// either end are kept, so the result can end in more than one newline.
func ApplyCommand(ctx context.Context, rt *Runtime, env *Ctx, cmd *CommandSection) (string, *Error) {
	v, err := evalFragments(ctx, rt, env, cmd.Fragments)
	if err != nil {
		return "", err
	}
	return Dedent(v.Str), nil
}

const tabWidth = 2

// Dedent implements the command-section whitespace normalization described
// above. After one pass no common leading whitespace is left to strip, so
// Dedent(Dedent(s)) == Dedent(s) whenever s has at most one blank line at
// each end. With more blank lines at an end, each pass trims one more:
// Dedent("\n\nfoo\n") is "\nfoo\n", and Dedent of that is "foo\n".
func Dedent(s string) string {
	lines := strings.Split(s, "\n")

	// Trim a single leading and a single trailing blank line (not every
	// blank line -- only the one immediately adjacent to the heredoc/brace
	// delimiters, which is what a typical
	//   command <<<
	//     ...
	//   >>>
	// layout produces).
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := leadingWhitespaceWidth(line)
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}
	if minIndent <= 0 {
		minIndent = 0
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			out[i] = ""
			continue
		}
		out[i] = stripWidth(line, minIndent)
	}
	result := strings.Join(out, "\n")
	if result != "" && !strings.HasSuffix(result, "\n") {
		result += "\n"
	}
	return result
}

// leadingWhitespaceWidth measures a line's leading whitespace in columns,
// counting a tab as tabWidth columns and a space as 1.
func leadingWhitespaceWidth(line string) int {
	width := 0
	for _, c := range line {
		switch c {
		case ' ':
			width++
		case '\t':
			width += tabWidth
		default:
			return width
		}
	}
	return width
}

// stripWidth removes up to width columns of leading whitespace from line,
// which may end mid-character if a tab is only partially consumed; WDL
// command bodies in practice use consistent indentation within one block,
// so this edge case does not arise for well-formed input.
func stripWidth(line string, width int) string {
	col := 0
	i := 0
	for i < len(line) && col < width {
		switch line[i] {
		case ' ':
			col++
			i++
		case '\t':
			col += tabWidth
			i++
		default:
			return line[i:]
		}
	}
	return line[i:]
}
