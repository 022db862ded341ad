// Package cssvalue classifies CSS property values with tree-sitter's CSS
// grammar, so repair rules can tell placeholder values (theme variable
// references, transparent) from deliberate ones.
package cssvalue

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/css"
)

// Values are parsed as the right-hand side of a declaration inside a dummy
// rule set.
const (
	wrapPrefix = "a{x:"
	wrapSuffix = "}"
)

var (
	callRe = regexp.MustCompile(`([A-Za-z][A-Za-z0-9-]*)\(`)
	varRe  = regexp.MustCompile(`var\(\s*(--[A-Za-z0-9_-]+)`)
)

// Value is the classification of a single prop value.
type Value struct {
	Raw       string
	Functions []string // lower-cased function names in source order
	Vars      []string // custom properties referenced through var()
}

// Empty reports whether the value is blank.
func (v Value) Empty() bool {
	return strings.TrimSpace(v.Raw) == ""
}

// IsThemeRef reports whether the value references any theme variable.
func (v Value) IsThemeRef() bool {
	return len(v.Vars) > 0
}

// References reports whether the value references one of the named
// custom properties (for example "--primary").
func (v Value) References(names ...string) bool {
	for _, ref := range v.Vars {
		for _, name := range names {
			if strings.EqualFold(ref, name) {
				return true
			}
		}
	}
	return false
}

// IsTransparent reports whether the value is the transparent keyword.
func (v Value) IsTransparent() bool {
	return strings.EqualFold(strings.TrimSpace(v.Raw), "transparent")
}

// IsGradient reports whether the value uses any *-gradient() function.
func (v Value) IsGradient() bool {
	for _, fn := range v.Functions {
		if strings.HasSuffix(fn, "gradient") {
			return true
		}
	}
	return false
}

// Classifier parses and memoizes values. It owns a tree-sitter parser and is
// not safe for concurrent use; give each goroutine its own.
type Classifier struct {
	parser *sitter.Parser
	cache  map[string]Value
}

// NewClassifier creates a classifier backed by a fresh CSS parser.
func NewClassifier() *Classifier {
	p := sitter.NewParser()
	p.SetLanguage(css.GetLanguage())
	return &Classifier{parser: p, cache: make(map[string]Value)}
}

// Classify returns the classification of raw.
func (c *Classifier) Classify(raw string) Value {
	if v, ok := c.cache[raw]; ok {
		return v
	}
	v := c.parse(raw)
	c.cache[raw] = v
	return v
}

func (c *Classifier) parse(raw string) Value {
	v := Value{Raw: raw}
	if v.Empty() {
		return v
	}
	// Braces or semicolons would escape the wrapping rule set.
	if strings.ContainsAny(raw, "{};") {
		return scan(v)
	}

	source := []byte(wrapPrefix + raw + wrapSuffix)
	tree, err := c.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return scan(v)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return scan(v)
	}
	collect(root, source, &v)
	return v
}

func collect(node *sitter.Node, source []byte, v *Value) {
	if node.Type() == "call_expression" {
		var name string
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			switch child.Type() {
			case "function_name":
				name = strings.ToLower(nodeText(child, source))
				v.Functions = append(v.Functions, name)
			case "arguments":
				if name == "var" {
					if ref := firstArg(nodeText(child, source)); ref != "" {
						v.Vars = append(v.Vars, ref)
					}
				}
			}
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		collect(node.Child(i), source, v)
	}
}

// scan is the regexp fallback for values tree-sitter cannot parse cleanly.
func scan(v Value) Value {
	for _, m := range callRe.FindAllStringSubmatch(v.Raw, -1) {
		v.Functions = append(v.Functions, strings.ToLower(m[1]))
	}
	for _, m := range varRe.FindAllStringSubmatch(v.Raw, -1) {
		v.Vars = append(v.Vars, m[1])
	}
	return v
}

func firstArg(args string) string {
	args = strings.TrimSuffix(strings.TrimPrefix(args, "("), ")")
	first, _, _ := strings.Cut(args, ",")
	first = strings.TrimSpace(first)
	if !strings.HasPrefix(first, "--") {
		return ""
	}
	return first
}

func nodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}
