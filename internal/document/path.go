package document

import (
	"errors"
	"strconv"
	"strings"

	"github.com/duanecilliers/openclaw-admin/internal/domain"
)

// reservedKeys never appear in a path. Browser clients merge documents
// into plain objects, where these keys reach the prototype chain.
var reservedKeys = map[string]bool{
	"__proto__":   true,
	"prototype":   true,
	"constructor": true,
}

// ParsePath splits a dotted path such as "channels.discord.enabled" into
// segments. Numeric segments index into arrays.
func ParsePath(raw string) ([]string, error) {
	if raw == "" {
		return nil, &domain.ValidationError{Field: "path", Message: "empty path"}
	}
	parts := strings.Split(raw, ".")
	for _, p := range parts {
		if p == "" {
			return nil, &domain.ValidationError{Field: "path", Message: "empty segment in " + strconv.Quote(raw)}
		}
		if reservedKeys[p] {
			return nil, &domain.ValidationError{Field: "path", Message: "reserved key " + strconv.Quote(p)}
		}
	}
	return parts, nil
}

var errIndex = errors.New("index out of range")

// setAt returns node with value stored at path. Missing or scalar
// intermediates become objects. An array index may address an existing
// element or one past the end, which appends.
func setAt(node any, path []string, value any) (any, error) {
	if len(path) == 0 {
		return value, nil
	}
	seg, rest := path[0], path[1:]

	if arr, ok := node.([]any); ok {
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i > len(arr) {
			return nil, &domain.ValidationError{Field: "path", Message: errIndex.Error() + ": " + seg}
		}
		var child any
		if i < len(arr) {
			child = arr[i]
		}
		v, err := setAt(child, rest, value)
		if err != nil {
			return nil, err
		}
		if i == len(arr) {
			return append(arr, v), nil
		}
		arr[i] = v
		return arr, nil
	}

	obj, ok := node.(map[string]any)
	if !ok {
		obj = map[string]any{}
	}
	v, err := setAt(obj[seg], rest, value)
	if err != nil {
		return nil, err
	}
	obj[seg] = v
	return obj, nil
}

// deleteAt removes the value at path from node and reports whether it was
// present. Array elements are removed and later elements shift down.
func deleteAt(node any, path []string) (any, bool) {
	seg, rest := path[0], path[1:]
	switch n := node.(type) {
	case map[string]any:
		child, ok := n[seg]
		if !ok {
			return node, false
		}
		if len(rest) == 0 {
			delete(n, seg)
			return n, true
		}
		v, ok := deleteAt(child, rest)
		n[seg] = v
		return n, ok
	case []any:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(n) {
			return node, false
		}
		if len(rest) == 0 {
			return append(n[:i:i], n[i+1:]...), true
		}
		v, ok := deleteAt(n[i], rest)
		n[i] = v
		return n, ok
	}
	return node, false
}
