package mockapi

import (
	"errors"
	"regexp"
	"strings"
)

var (
	errBadFilter = errors.New("unsupported filter")

	titleFilterPattern = regexp.MustCompile(`^\(?\s*title\s*\?~\s*'((?:[^'\\]|\\.)*)'\s*\)?$`)
)

// parseTitleFilter reads a "(title ?~ 'value')" expression and returns the
// unescaped value. It is the only filter form the mock understands.
func parseTitleFilter(filter string) (string, error) {
	m := titleFilterPattern.FindStringSubmatch(strings.TrimSpace(filter))
	if m == nil {
		return "", errBadFilter
	}
	var b strings.Builder
	escaped := false
	for _, r := range m[1] {
		if !escaped && r == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String(), nil
}
