// Package navbar repairs horizontal navigation bars. Every visit enforces
// sticky flex styling without overriding deliberate values; a bar whose
// children are a flat list is regrouped once per run into
// [logo, links container, menu button].
package navbar

import (
	"strings"

	"github.com/google/uuid"

	"github.com/phobologic/uirepair/internal/classify"
	"github.com/phobologic/uirepair/internal/config"
	"github.com/phobologic/uirepair/internal/cssvalue"
	"github.com/phobologic/uirepair/internal/model"
	"github.com/phobologic/uirepair/internal/style"
	"github.com/phobologic/uirepair/internal/walk"
)

// Rule names, as reported in fixes.
const (
	RuleStyle      = "navbar-style"
	RuleGroup      = "navbar-group"
	RuleMenuButton = "navbar-menu-button"
)

// ContainerPrefix starts the id of every synthesized links container.
const ContainerPrefix = "nav-links-"

// Fixer applies the navbar rule set.
type Fixer struct {
	cfg   config.NavbarConfig
	css   *cssvalue.Classifier
	newID func() string
}

// Option configures a Fixer.
type Option func(*Fixer)

// WithIDGenerator sets the function that names synthesized containers. The
// ids it returns should start with ContainerPrefix so later passes recognize
// the container.
func WithIDGenerator(fn func() string) Option {
	return func(f *Fixer) { f.newID = fn }
}

// New creates a Fixer. css is used to spot gradient backgrounds.
func New(cfg config.NavbarConfig, css *cssvalue.Classifier, opts ...Option) *Fixer {
	f := &Fixer{
		cfg: cfg,
		css: css,
		newID: func() string {
			return ContainerPrefix + uuid.NewString()[:8]
		},
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Walk repairs every nav-horizontal node in the tree rooted at n.
func (f *Fixer) Walk(n *model.Node, ledger *Ledger, record style.Recorder) bool {
	return walk.Walk(n, false, nil, func(n *model.Node, _ bool) bool {
		if !n.Is(model.TypeNavHorizontal) {
			return false
		}
		return f.Repair(n, ledger, record)
	})
}

// Repair enforces styling on a single navbar and, unless the ledger already
// holds it, regroups its children.
func (f *Fixer) Repair(n *model.Node, ledger *Ledger, record style.Recorder) bool {
	changed := false
	if keys := style.Apply(n, f.stylePatch(n.Props)); len(keys) > 0 {
		changed = true
		record.Record(n, RuleStyle, keys)
	}

	if ledger.Processed(n.ID) {
		return changed
	}
	if len(n.Children) <= 2 || HasLinksContainer(n.Children) {
		ledger.Mark(n.ID)
		return changed
	}
	// Children that are not objects cannot be placed; leave the bar as is.
	if hasMalformed(n.Children) {
		return changed
	}
	// Fewer than two nav items leaves the bar unrecorded so a later run
	// can retry.
	if f.group(n, record) {
		ledger.Mark(n.ID)
		changed = true
	}
	return changed
}

// group rebuilds n.Children as [logo?, container, menuButton?]. It returns
// false, leaving n untouched, when fewer than two nav items remain.
func (f *Fixer) group(n *model.Node, record style.Recorder) bool {
	logoIdx, _ := classify.Logo.Find(n.Children)
	menuIdx, _ := classify.MenuButton.Find(n.Children, logoIdx)

	var logo, menu *model.Node
	var items []*model.Node
	for i, c := range n.Children {
		switch {
		case i == logoIdx:
			logo = c
		case i == menuIdx:
			menu = c
		default:
			items = append(items, c)
		}
	}
	if len(items) < 2 {
		return false
	}

	container := &model.Node{
		ID:   f.newID(),
		Type: model.TypeDiv,
		Props: model.Props{
			"display":       "flex",
			"flexDirection": "row",
			"alignItems":    "center",
			"gap":           f.cfg.LinksGap,
			style.KeyResponsive: map[string]any{
				style.Mobile: map[string]any{"display": "none"},
			},
			style.KeyMarker: true,
		},
		Children: items,
	}

	children := make([]*model.Node, 0, 3)
	if logo != nil {
		children = append(children, logo)
	}
	children = append(children, container)
	if menu != nil {
		children = append(children, menu)
	}
	n.Children = children
	record.Record(n, RuleGroup, []string{"children"})

	if menu != nil {
		// Hiding the button on desktop is only safe once it is shown on mobile.
		p := style.Patch{}
		if p.ForceBlock(menu.Props, style.KeyResponsive, style.Mobile, "display", "flex") {
			p.Force("display", "none")
			if keys := style.Apply(menu, p); len(keys) > 0 {
				record.Record(menu, RuleMenuButton, keys)
			}
		}
	}
	return true
}

func hasMalformed(children []*model.Node) bool {
	for _, c := range children {
		if c == nil || c.Raw != nil {
			return true
		}
	}
	return false
}

func (f *Fixer) stylePatch(props model.Props) style.Patch {
	p := style.Patch{}
	p.Default(props, "position", "sticky")
	p.Default(props, "top", "0")
	p.Default(props, "zIndex", f.cfg.ZIndex)
	p.Default(props, "display", "flex")
	p.Default(props, "alignItems", "center")
	// Creative layouts vary justifyContent on purpose; only fill a gap.
	p.Default(props, "justifyContent", "space-between")
	if !f.hasAnyBackground(props) {
		p.Force("backgroundColor", f.cfg.Background)
		p.Force("backdropFilter", f.cfg.BackdropFilter)
	}
	if !style.HasPadding(props) {
		p.Force("padding", f.cfg.Padding)
	}
	return p
}

// hasAnyBackground reports whether props carry a background, gradient or
// backdrop filter of any kind, placeholders included.
func (f *Fixer) hasAnyBackground(props model.Props) bool {
	for key, v := range props {
		if style.IsUnset(v) {
			continue
		}
		k := strings.ToLower(key)
		if strings.Contains(k, "background") || strings.Contains(k, "gradient") ||
			strings.Contains(k, "backdrop") || strings.HasPrefix(k, "bg") {
			return true
		}
		if s, ok := v.(string); ok && f.css.Classify(s).IsGradient() {
			return true
		}
	}
	return false
}

// HasLinksContainer reports whether children already include a nav-links
// container. Matching is by exact id (or id prefix) so that unrelated
// wrappers are not mistaken for one.
func HasLinksContainer(children []*model.Node) bool {
	for _, c := range children {
		id := c.LowerID()
		switch {
		case id == "":
		case id == "nav-links", strings.HasPrefix(id, ContainerPrefix), strings.HasPrefix(id, "link-div"):
			return true
		case c.Is(model.TypeDiv) && (id == "nav-right" || id == "links-container"):
			return true
		}
	}
	return false
}
