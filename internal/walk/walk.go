// Package walk implements the depth-first traversal the repair passes share.
package walk

import "github.com/phobologic/uirepair/internal/model"

// Marker reports whether a node opens a context (for example, a footer
// section) that all of its descendants inherit.
type Marker func(n *model.Node) bool

// Visitor applies rules to a single node under the given context flag and
// reports whether it changed anything.
type Visitor func(n *model.Node, inside bool) bool

// Walk visits n and its descendants in order. The flag passed to visit and
// down to the children is inside OR mark(n). Children are read after visit
// returns, so a visitor may restructure them. Nil nodes are skipped.
func Walk(n *model.Node, inside bool, mark Marker, visit Visitor) bool {
	if n == nil {
		return false
	}
	if mark != nil && mark(n) {
		inside = true
	}
	changed := visit(n, inside)
	for _, child := range n.Children {
		if Walk(child, inside, mark, visit) {
			changed = true
		}
	}
	return changed
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n *model.Node) int {
	if n == nil {
		return 0
	}
	total := 1
	for _, child := range n.Children {
		total += Count(child)
	}
	return total
}
