// Package model defines core data structures for uirepair.
package model

import (
	"encoding/json"
	"strings"
)

// Node types the repair rules key off. The type tag is open; anything not
// listed here is carried through untouched.
const (
	TypeDiv           = "div"
	TypeText          = "text"
	TypeLink          = "link"
	TypeButton        = "button"
	TypeHeading       = "heading"
	TypeImage         = "image"
	TypeSection       = "section"
	TypeNavHorizontal = "nav-horizontal"
)

// Props holds style and behavior attributes of a node.
type Props map[string]any

// Node is one element of the declarative UI tree.
type Node struct {
	ID       string
	Type     string
	Props    Props
	Children []*Node

	// Extra holds fields that are unknown, or known but of the wrong JSON
	// type, so they survive a decode/encode round trip.
	Extra map[string]json.RawMessage
	// Raw is set when the node was not a JSON object at all.
	Raw json.RawMessage
}

// LowerID returns the node id lower-cased, the form every id heuristic uses.
func (n *Node) LowerID() string {
	if n == nil {
		return ""
	}
	return strings.ToLower(n.ID)
}

// Is reports whether the node has the given type.
func (n *Node) Is(typ string) bool {
	return n != nil && n.Type == typ
}

// Page is an ordered list of root components.
type Page struct {
	ID         string
	Name       string
	Components []*Node
	Extra      map[string]json.RawMessage
	Raw        json.RawMessage
}

// Label returns a human-readable page identifier for logs and reports.
func (p *Page) Label() string {
	switch {
	case p.Name != "":
		return p.Name
	case p.ID != "":
		return p.ID
	default:
		return "<unnamed>"
	}
}

// Project is an ordered list of pages.
type Project struct {
	Pages []*Page
	Extra map[string]json.RawMessage
}

// Fix records one rule application on one node.
type Fix struct {
	Page   string
	NodeID string
	Rule   string
	Keys   []string
}

// FileResult summarizes the repair of a single project file.
type FileResult struct {
	Path          string
	Pages         int
	FooterChanged bool
	NavbarRepairs int
	Fixes         []Fix
}

// Changed reports whether anything in the file was rewritten.
func (r *FileResult) Changed() bool {
	return r.FooterChanged || r.NavbarRepairs > 0
}

// Report is the complete result of a repair run, ready for serialization.
type Report struct {
	Root  string
	Files []FileResult
}
