package dataset

import "strings"

// Category strings encode a set of Freebase id/name pairs as a brace-wrapped,
// comma-separated list of quoted tokens:
//
//	{"/m/02kdv5l": "Action", "/m/03q4nz": "Thriller"}
//
// ParseCategoryString extracts the display names once, at load time, so no
// query has to re-run this string surgery. Identifiers (tokens starting with
// "/m/") are discarded; duplicate names are collapsed; first-appearance order
// is preserved because downstream frequency ties break on it.
func ParseCategoryString(s string) []string {
	if s == "" || !strings.ContainsRune(s, '"') {
		return nil
	}

	var names []string
	var seen map[string]struct{}

	for {
		start := strings.IndexByte(s, '"')
		if start < 0 {
			break
		}
		s = s[start+1:]
		end := quoteEnd(s)
		if end < 0 {
			break
		}
		tok := s[:end]
		s = s[end+1:]

		if tok == "" || strings.HasPrefix(tok, "/m/") {
			continue
		}
		tok = unescape(tok)
		if seen == nil {
			seen = make(map[string]struct{}, 4)
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		names = append(names, tok)
	}
	return names
}

// quoteEnd finds the closing quote of a token, honoring backslash escapes.
func quoteEnd(s string) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

// unescape undoes the two escapes that occur in corpus tokens.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	s = strings.ReplaceAll(s, `\"`, `"`)
	return strings.ReplaceAll(s, `\\`, `\`)
}
