package merge

import "strings"

// findJSONCandidates extracts every complete top-level JSON object from raw
// inference output. Replies often surround the object with prose or markdown
// fences, so the text between objects is skipped rather than parsed.
func findJSONCandidates(s string) []string {
	var candidates []string
	for i := 0; i < len(s); {
		open := strings.IndexByte(s[i:], '{')
		if open < 0 {
			break
		}
		start := i + open
		end := scanObject(s, start)
		if end < 0 {
			// The outermost object never closes; nothing after this
			// point can complete it.
			break
		}
		candidates = append(candidates, s[start:end])
		i = end
	}
	return candidates
}

// scanObject returns the index just past the brace that closes the object
// opening at s[start], or -1 if the object is unterminated. Braces inside
// string literals do not count toward nesting, and escaped quotes do not end
// a string. Byte iteration is safe here: UTF-8 never encodes the ASCII
// delimiters as part of a multi-byte sequence.
func scanObject(s string, start int) int {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		case '"':
			for i++; i < len(s); i++ {
				if s[i] == '\\' {
					i++
				} else if s[i] == '"' {
					break
				}
			}
		}
	}
	return -1
}
