package skills

import (
	"regexp"
	"strings"
)

const delimiter = "---"

var keyLine = regexp.MustCompile(`^(\w[\w-]*):\s*(.*)$`)

// ParseFrontMatter reads the metadata block at the top of a manifest. The
// block opens with a "---" line and closes with another. Inside, each
// "key: value" line sets a key; a value of "|" or ">" starts a block value
// continued by lines indented two spaces, or blank. Values are trimmed and
// surrounding quotes are removed. Lines that fit neither form are ignored.
// ok is false if the block is missing or unterminated.
func ParseFrontMatter(content string) (map[string]string, bool) {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != delimiter {
		return nil, false
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == delimiter {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, false
	}

	out := map[string]string{}
	var key string
	var buf []string
	flush := func() {
		if key != "" {
			out[key] = strings.TrimSpace(strings.Join(buf, "\n"))
		}
	}

	for _, line := range lines[1:end] {
		if m := keyLine.FindStringSubmatch(line); m != nil {
			flush()
			key = m[1]
			switch val := strings.TrimSpace(m[2]); val {
			case "|", ">":
				buf = nil
			default:
				buf = []string{unquote(val)}
			}
			continue
		}
		if key != "" && (strings.HasPrefix(line, "  ") || strings.TrimSpace(line) == "") {
			buf = append(buf, strings.TrimPrefix(line, "  "))
		}
	}
	flush()
	return out, true
}

// unquote drops one leading and one trailing quote character. The two ends
// are independent, so mismatched or unbalanced quotes are stripped too.
func unquote(s string) string {
	if s != "" && (s[0] == '"' || s[0] == '\'') {
		s = s[1:]
	}
	if s != "" && (s[len(s)-1] == '"' || s[len(s)-1] == '\'') {
		s = s[:len(s)-1]
	}
	return s
}
