// Package footer repairs footer sections: dark section background and
// layout, the column grid, column sizing, and link contrast on the dark
// background.
package footer

import (
	"strings"

	"github.com/phobologic/uirepair/internal/config"
	"github.com/phobologic/uirepair/internal/cssvalue"
	"github.com/phobologic/uirepair/internal/model"
	"github.com/phobologic/uirepair/internal/style"
	"github.com/phobologic/uirepair/internal/walk"
)

// Rule names, as reported in fixes.
const (
	RuleSection  = "footer-section"
	RuleGrid     = "footer-grid"
	RuleColumn   = "footer-column"
	RuleLink     = "footer-link"
	RuleTextLink = "footer-text-link"
)

const gridColumnsKey = "gridTemplateColumns"

// Rule is one footer repair. Patch must only return keys the rule is allowed
// to write for the node's current props.
type Rule struct {
	Name  string
	Match func(n *model.Node) bool
	Patch func(n *model.Node) style.Patch
	// Mark adds the repair marker to nodes this rule changed.
	Mark bool
}

// Fixer applies the footer rule set.
type Fixer struct {
	cfg   config.FooterConfig
	css   *cssvalue.Classifier
	rules []Rule
}

// New creates a Fixer. css is used to recognize placeholder colors.
func New(cfg config.FooterConfig, css *cssvalue.Classifier) *Fixer {
	f := &Fixer{cfg: cfg, css: css}
	f.rules = []Rule{
		{Name: RuleSection, Match: isSection, Patch: f.sectionPatch, Mark: true},
		{Name: RuleGrid, Match: isGrid, Patch: f.gridPatch},
		{Name: RuleColumn, Match: isColumn, Patch: f.columnPatch},
		{Name: RuleLink, Match: isLink, Patch: f.linkPatch},
		{Name: RuleTextLink, Match: isTextLink, Patch: f.textLinkPatch},
	}
	return f
}

// InFooter reports whether n opens a footer context.
func InFooter(n *model.Node) bool {
	return strings.Contains(n.LowerID(), "footer")
}

// Walk repairs every node of the tree rooted at n that sits inside a footer
// context. inside seeds the context flag for n itself.
func (f *Fixer) Walk(n *model.Node, inside bool, record style.Recorder) bool {
	return walk.Walk(n, inside, InFooter, func(n *model.Node, in bool) bool {
		if !in {
			return false
		}
		return f.Apply(n, record)
	})
}

// Apply runs every matching rule against a single node.
func (f *Fixer) Apply(n *model.Node, record style.Recorder) bool {
	changed := false
	for _, r := range f.rules {
		if !r.Match(n) {
			continue
		}
		keys := style.Apply(n, r.Patch(n))
		if len(keys) == 0 {
			continue
		}
		if r.Mark {
			style.Apply(n, style.Patch{style.KeyMarker: true})
		}
		changed = true
		record.Record(n, r.Name, keys)
	}
	return changed
}

func isSection(n *model.Node) bool {
	id := n.LowerID()
	return id == "footer" || id == "footer-section" ||
		(n.Is(model.TypeSection) && strings.Contains(id, "footer"))
}

func isGrid(n *model.Node) bool {
	if !n.Is(model.TypeDiv) {
		return false
	}
	id := n.LowerID()
	if containsAny(id, "footer-content", "footer-grid", "footer-columns") {
		return true
	}
	return strings.HasSuffix(id, "-inner") && strings.Contains(id, "footer")
}

// isColumn excludes nodes the section or grid rule owns; both force a
// layout the column rule would contradict.
func isColumn(n *model.Node) bool {
	if !n.Is(model.TypeDiv) || isSection(n) || isGrid(n) {
		return false
	}
	if containsAny(n.LowerID(), "footer-brand", "footer-links", "footer-col") {
		return true
	}
	textual := 0
	for _, c := range n.Children {
		if c.Is(model.TypeLink) || c.Is(model.TypeText) {
			textual++
		}
	}
	return textual >= 2
}

func isLink(n *model.Node) bool {
	return n.Is(model.TypeLink)
}

func isTextLink(n *model.Node) bool {
	return n.Is(model.TypeText) && strings.Contains(n.LowerID(), "link")
}

func (f *Fixer) sectionPatch(n *model.Node) style.Patch {
	p := style.Patch{}
	if !f.hasBackground(n.Props) {
		p.Force("backgroundColor", f.cfg.Background)
		if !style.IsUnset(n.Props["background"]) {
			p.Force("background", f.cfg.Background)
		}
	}
	p.Force("display", "flex")
	p.Force("flexDirection", "column")
	p.Force("alignItems", "center")
	p.Force("width", "100%")
	if !style.HasPadding(n.Props) {
		p.Force("padding", f.cfg.Padding)
	}
	return p
}

func (f *Fixer) gridPatch(n *model.Node) style.Patch {
	p := style.Patch{}
	p.Force("display", "grid")
	cols, isString := style.String(n.Props, gridColumnsKey)
	if style.IsUnset(n.Props[gridColumnsKey]) || (isString && collapse(cols) == "1fr 1fr") {
		p.Force(gridColumnsKey, f.cfg.GridColumns)
	}
	p.Force("alignItems", "start")
	p.Default(n.Props, "gap", f.cfg.GridGap)
	p.Default(n.Props, "maxWidth", f.cfg.GridMaxWidth)
	p.Default(n.Props, "width", "100%")
	p.DefaultBlock(n.Props, style.KeyResponsive, style.Tablet,
		map[string]any{gridColumnsKey: f.cfg.GridTabletColumns})
	p.DefaultBlock(n.Props, style.KeyResponsive, style.Mobile,
		map[string]any{gridColumnsKey: f.cfg.GridMobileColumns})
	return p
}

func (f *Fixer) columnPatch(n *model.Node) style.Patch {
	p := style.Patch{}
	p.Force("display", "flex")
	p.Force("flexDirection", "column")
	p.Default(n.Props, "gap", f.cfg.ColumnGap)
	basis := f.cfg.LinkColumnBasis
	if strings.Contains(n.LowerID(), "brand") {
		basis = f.cfg.BrandBasis
	}
	p.Default(n.Props, "flexBasis", basis)
	p.Default(n.Props, "minWidth", f.cfg.ColumnMinWidth)
	return p
}

func (f *Fixer) linkPatch(n *model.Node) style.Patch {
	p := f.contrastPatch(n)
	td := n.Props["textDecoration"]
	if style.IsUnset(td) || td == "underline" {
		p.Force("textDecoration", "none")
	}
	p.Default(n.Props, "fontSize", f.cfg.LinkFontSize)
	return p
}

func (f *Fixer) textLinkPatch(n *model.Node) style.Patch {
	p := f.contrastPatch(n)
	p.Default(n.Props, "cursor", "pointer")
	return p
}

// contrastPatch makes link text readable on the dark footer background.
func (f *Fixer) contrastPatch(n *model.Node) style.Patch {
	p := style.Patch{}
	if f.isPlaceholderColor(n.Props["color"]) {
		p.Force("color", f.cfg.LinkColor)
	}
	p.Default(n.Props, style.KeyHover, map[string]any{"color": f.cfg.LinkHoverColor})
	return p
}

// hasBackground reports whether props already carry a deliberate background.
// Placeholders (theme variable references and transparent) do not count.
func (f *Fixer) hasBackground(props model.Props) bool {
	if style.HasAny(props, "backgroundImage", "backgroundGradient") {
		return true
	}
	for _, key := range []string{"backgroundColor", "background"} {
		v := props[key]
		if style.IsUnset(v) {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return true
		}
		cv := f.css.Classify(s)
		if cv.IsTransparent() || (cv.IsThemeRef() && !cv.IsGradient()) {
			continue
		}
		return true
	}
	return false
}

func (f *Fixer) isPlaceholderColor(v any) bool {
	if style.IsUnset(v) {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	return f.css.Classify(s).References(f.cfg.LinkColorVars...)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
