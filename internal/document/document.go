// Package document owns the openclaw configuration document: reading it
// tolerantly, walking its untyped tree, and replacing it on disk atomically.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
)

// Document is a decoded configuration document. The tree is untyped so
// unknown keys survive a round trip; object key order as read from disk is
// remembered and reproduced when the document is encoded again.
type Document struct {
	root  map[string]any
	order map[string][]string // joined path -> keys in document order
}

// New wraps an existing tree. Keys are encoded in sorted order.
func New(root map[string]any) *Document {
	if root == nil {
		root = map[string]any{}
	}
	return &Document{root: root, order: map[string][]string{}}
}

// Parse decodes a JSON document. Comments and trailing commas are accepted.
// The top level must be an object.
func Parse(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()

	d := &Document{order: map[string][]string{}}
	v, err := d.decodeValue(dec, nil)
	if err != nil {
		return nil, err
	}
	root, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("top level is not an object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level object")
	}
	d.root = root
	return d, nil
}

// Root returns the underlying tree. Mutations are visible to the document.
func (d *Document) Root() map[string]any { return d.root }

// Get returns the value at path. Numeric segments index into arrays.
func (d *Document) Get(path ...string) (any, bool) {
	var cur any = d.root
	for _, seg := range path {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Map returns the object at path, or nil.
func (d *Document) Map(path ...string) map[string]any {
	v, _ := d.Get(path...)
	m, _ := v.(map[string]any)
	return m
}

// List returns the array at path, or nil.
func (d *Document) List(path ...string) []any {
	v, _ := d.Get(path...)
	l, _ := v.([]any)
	return l
}

// String returns the string at path, or "".
func (d *Document) String(path ...string) string {
	v, _ := d.Get(path...)
	s, _ := v.(string)
	return s
}

// Bool returns the boolean at path, or false.
func (d *Document) Bool(path ...string) bool {
	v, _ := d.Get(path...)
	b, _ := v.(bool)
	return b
}

// Int returns the integer at path and whether one was present.
func (d *Document) Int(path ...string) (int, bool) {
	v, _ := d.Get(path...)
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

// Keys returns the keys of the object at path in document order. Keys added
// after the document was read follow, sorted.
func (d *Document) Keys(path ...string) []string {
	return orderedKeys(d.order[pathKey(path)], d.Map(path...))
}

// Set stores value at path, creating intermediate objects as needed.
func (d *Document) Set(path []string, value any) error {
	if len(path) == 0 {
		return errors.New("empty path")
	}
	root, err := setAt(d.root, path, value)
	if err != nil {
		return err
	}
	d.root = root.(map[string]any)
	return nil
}

// Delete removes the value at path. Returns true if removed.
func (d *Document) Delete(path []string) bool {
	if len(path) == 0 {
		return false
	}
	_, ok := deleteAt(d.root, path)
	return ok
}

// Marshal encodes the document indented by two spaces, with a trailing
// newline, preserving the key order it was read with.
func (d *Document) Marshal() ([]byte, error) {
	var compact bytes.Buffer
	if err := d.encodeValue(&compact, d.root, nil); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// MarshalJSON implements json.Marshaler with the same key order as Marshal.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.encodeValue(&buf, d.root, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// marshalVerified encodes the document and checks that the bytes decode
// back to the same tree.
func (d *Document) marshalVerified() ([]byte, error) {
	data, err := d.Marshal()
	if err != nil {
		return nil, err
	}
	back, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("re-reading encoded document: %w", err)
	}
	want, err := normalize(d.root)
	if err != nil {
		return nil, err
	}
	if !reflect.DeepEqual(back.root, want) {
		return nil, errors.New("encoded document does not round-trip")
	}
	return data, nil
}

// normalize converts a tree into the shape Parse produces.
func normalize(root map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(root)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Document) decodeValue(dec *json.Decoder, path []string) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		obj := map[string]any{}
		var keys []string
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := kt.(string)
			v, err := d.decodeValue(dec, childPath(path, key))
			if err != nil {
				return nil, err
			}
			if _, dup := obj[key]; !dup {
				keys = append(keys, key)
			}
			obj[key] = v
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		d.order[pathKey(path)] = keys
		return obj, nil
	case '[':
		arr := []any{}
		for i := 0; dec.More(); i++ {
			v, err := d.decodeValue(dec, childPath(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	}
	return nil, fmt.Errorf("unexpected delimiter %q", delim)
}

func (d *Document) encodeValue(buf *bytes.Buffer, v any, path []string) error {
	switch node := v.(type) {
	case map[string]any:
		buf.WriteByte('{')
		for i, k := range orderedKeys(d.order[pathKey(path)], node) {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeLeaf(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := d.encodeValue(buf, node[k], childPath(path, k)); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, item := range node {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := d.encodeValue(buf, item, childPath(path, strconv.Itoa(i))); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return encodeLeaf(buf, node)
	}
	return nil
}

func encodeLeaf(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

func orderedKeys(known []string, m map[string]any) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, k := range known {
		if _, ok := m[k]; ok && !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(keys, rest...)
}

func childPath(path []string, seg string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = seg
	return out
}

func pathKey(path []string) string {
	return strings.Join(path, "\x00")
}
