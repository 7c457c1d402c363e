package aitime

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// WordPattern compiles body as a case-insensitive whole-word pattern.
// Capture group 1 always spans the matched word; groups inside body follow.
// RE2 has no lookaround and its \b is ASCII-only, so the leading boundary is
// consumed here and the trailing one is checked by FindAllWords.
func WordPattern(body string) *regexp.Regexp {
	re, err := CompileWordPattern(body)
	if err != nil {
		panic(err)
	}
	return re
}

// CompileWordPattern is WordPattern for bodies that come from configuration.
func CompileWordPattern(body string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)(?:^|[^\p{L}\p{N}])(` + body + `)`)
}

// FindAllWords returns the submatch indices of every whole-word match of re,
// which must come from WordPattern.
func FindAllWords(re *regexp.Regexp, text string) [][]int {
	var out [][]int
	for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
		end := m[3]
		if end < len(text) {
			r, _ := utf8.DecodeRuneInString(text[end:])
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}

// Group returns the text of capture group n of match m, or "" when unset.
func Group(text string, m []int, n int) string {
	if 2*n+1 >= len(m) || m[2*n] < 0 {
		return ""
	}
	return text[m[2*n]:m[2*n+1]]
}
