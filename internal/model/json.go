package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrNotProject is returned by DecodeProject for JSON documents that have no
// pages array.
var ErrNotProject = errors.New("not a project: missing pages array")

// DecodeProject parses a project document. Malformed pages and nodes are
// tolerated and kept verbatim; only invalid JSON or a missing pages array
// is an error.
func DecodeProject(data []byte) (*Project, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decoding project: %w", err)
	}
	var pages []json.RawMessage
	raw, ok := fields["pages"]
	if !ok || json.Unmarshal(raw, &pages) != nil || pages == nil {
		return nil, ErrNotProject
	}
	delete(fields, "pages")

	p := &Project{Extra: leftover(fields)}
	for _, pr := range pages {
		p.Pages = append(p.Pages, decodePage(pr))
	}
	return p, nil
}

// EncodeProject serializes a project as indented JSON with a trailing newline.
func EncodeProject(p *Project) ([]byte, error) {
	// json.Marshal would re-escape <, > and & inside MarshalJSON output.
	compact, err := marshalNoEscape(p)
	if err != nil {
		return nil, fmt.Errorf("encoding project: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("indenting project: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func decodePage(data json.RawMessage) *Page {
	var fields map[string]json.RawMessage
	if json.Unmarshal(data, &fields) != nil || fields == nil {
		return &Page{Raw: data}
	}
	pg := &Page{}
	takeString(fields, "id", &pg.ID)
	takeString(fields, "name", &pg.Name)
	pg.Components = takeNodes(fields, "components")
	pg.Extra = leftover(fields)
	return pg
}

// UnmarshalJSON decodes a node without ever failing: anything that does not
// fit the expected shape is kept in Extra (or Raw) for re-encoding.
func (n *Node) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if json.Unmarshal(data, &fields) != nil || fields == nil {
		n.Raw = append(json.RawMessage(nil), data...)
		return nil
	}
	takeString(fields, "id", &n.ID)
	takeString(fields, "type", &n.Type)
	if raw, ok := fields["props"]; ok {
		var props map[string]any
		if json.Unmarshal(raw, &props) == nil && props != nil {
			n.Props = props
			delete(fields, "props")
		}
	}
	n.Children = takeNodes(fields, "children")
	n.Extra = leftover(fields)
	return nil
}

// MarshalJSON emits id, type, props and children first, then any preserved
// extra fields in key order.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n.Raw != nil {
		return n.Raw, nil
	}
	var w objectWriter
	if n.ID != "" {
		w.add("id", n.ID)
	}
	if n.Type != "" {
		w.add("type", n.Type)
	}
	if n.Props != nil {
		w.add("props", map[string]any(n.Props))
	}
	if n.Children != nil {
		w.add("children", n.Children)
	}
	w.addExtra(n.Extra)
	return w.bytes()
}

// MarshalJSON implements json.Marshaler.
func (p *Page) MarshalJSON() ([]byte, error) {
	if p.Raw != nil {
		return p.Raw, nil
	}
	var w objectWriter
	if p.ID != "" {
		w.add("id", p.ID)
	}
	if p.Name != "" {
		w.add("name", p.Name)
	}
	if p.Components != nil {
		w.add("components", p.Components)
	}
	w.addExtra(p.Extra)
	return w.bytes()
}

// MarshalJSON implements json.Marshaler.
func (p *Project) MarshalJSON() ([]byte, error) {
	var w objectWriter
	pages := p.Pages
	if pages == nil {
		pages = []*Page{}
	}
	w.add("pages", pages)
	w.addExtra(p.Extra)
	return w.bytes()
}

func takeString(fields map[string]json.RawMessage, key string, dst *string) {
	raw, ok := fields[key]
	if !ok || string(raw) == "null" {
		return
	}
	if json.Unmarshal(raw, dst) == nil {
		delete(fields, key)
	}
}

func takeNodes(fields map[string]json.RawMessage, key string) []*Node {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if json.Unmarshal(raw, &items) != nil || items == nil {
		return nil
	}
	delete(fields, key)
	nodes := make([]*Node, 0, len(items))
	for _, item := range items {
		n := &Node{}
		_ = n.UnmarshalJSON(item)
		nodes = append(nodes, n)
	}
	return nodes
}

func leftover(fields map[string]json.RawMessage) map[string]json.RawMessage {
	if len(fields) == 0 {
		return nil
	}
	return fields
}

type objectWriter struct {
	buf  bytes.Buffer
	seen map[string]struct{}
	err  error
}

func (w *objectWriter) add(key string, value any) {
	data, err := marshalNoEscape(value)
	if err != nil {
		if w.err == nil {
			w.err = err
		}
		return
	}
	w.addRaw(key, data)
}

func (w *objectWriter) addRaw(key string, data []byte) {
	if w.seen == nil {
		w.seen = make(map[string]struct{})
	}
	if _, dup := w.seen[key]; dup {
		return
	}
	w.seen[key] = struct{}{}
	if w.buf.Len() == 0 {
		w.buf.WriteByte('{')
	} else {
		w.buf.WriteByte(',')
	}
	k, _ := marshalNoEscape(key)
	w.buf.Write(k)
	w.buf.WriteByte(':')
	w.buf.Write(data)
}

func (w *objectWriter) addExtra(extra map[string]json.RawMessage) {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		w.addRaw(k, extra[k])
	}
}

func (w *objectWriter) bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	if w.buf.Len() == 0 {
		return []byte("{}"), nil
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes(), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
