// Package classify picks out the logo and the menu button among the flat
// children of a navigation bar. Each classifier is an ordered chain of
// strategies; the first strategy with a match wins.
package classify

import (
	"strings"

	"github.com/phobologic/uirepair/internal/model"
)

// Strategy is one link of a classifier chain. Match is called for each child
// with its index among its siblings.
type Strategy struct {
	Name  string
	Match func(i int, n *model.Node) bool
}

// Chain is a priority-ordered list of strategies.
type Chain []Strategy

// Find returns the index of the first child matched by the highest-priority
// strategy, skipping indexes listed in skip, and the name of that strategy.
// It returns -1 and "" when nothing matches.
func (c Chain) Find(children []*model.Node, skip ...int) (int, string) {
	for _, s := range c {
		for i, n := range children {
			if n == nil || contains(skip, i) {
				continue
			}
			if s.Match(i, n) {
				return i, s.Name
			}
		}
	}
	return -1, ""
}

// Logo finds the logo or brand child.
var Logo = Chain{
	{Name: "logo-id", Match: func(_ int, n *model.Node) bool {
		return idContainsAny(n, "logo", "brand")
	}},
	{Name: "leading-heading", Match: func(i int, n *model.Node) bool {
		return i < 2 && n.Is(model.TypeHeading)
	}},
	{Name: "leading-image", Match: func(i int, n *model.Node) bool {
		return i == 0 && n.Is(model.TypeImage)
	}},
	{Name: "name-id", Match: func(_ int, n *model.Node) bool {
		id := n.LowerID()
		return (strings.Contains(id, "title") && strings.Contains(id, "nav")) ||
			idContainsAny(n, "name", "store", "company")
	}},
}

// menuIcons are icon names, lower-cased with separators removed.
var menuIcons = map[string]struct{}{
	"menu":         {},
	"hamburger":    {},
	"alignjustify": {},
}

// MenuButton finds the mobile menu toggle.
var MenuButton = Chain{
	{Name: "menu-icon", Match: func(_ int, n *model.Node) bool {
		_, ok := menuIcons[iconName(n)]
		return ok
	}},
	{Name: "menu-id", Match: func(_ int, n *model.Node) bool {
		return idContainsAny(n, "mobile", "hamburger", "menu-toggle", "menu-button")
	}},
}

// iconName returns the normalized icon name of a node, read from the "icon"
// or "iconName" prop as a string or as an object with a "name" field.
func iconName(n *model.Node) string {
	for _, key := range []string{"icon", "iconName"} {
		var name string
		switch v := n.Props[key].(type) {
		case string:
			name = v
		case map[string]any:
			name, _ = v["name"].(string)
		}
		if name == "" {
			continue
		}
		name = strings.ToLower(name)
		return strings.NewReplacer("-", "", "_", "", " ", "").Replace(name)
	}
	return ""
}

func idContainsAny(n *model.Node, subs ...string) bool {
	id := n.LowerID()
	if id == "" {
		return false
	}
	for _, s := range subs {
		if strings.Contains(id, s) {
			return true
		}
	}
	return false
}

func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
