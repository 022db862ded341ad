// Package repair runs the footer and navbar passes over whole trees and
// projects, keeps the per-run bookkeeping, and logs every applied fix.
package repair

import (
	"go.uber.org/zap"

	"github.com/phobologic/uirepair/internal/config"
	"github.com/phobologic/uirepair/internal/cssvalue"
	"github.com/phobologic/uirepair/internal/footer"
	"github.com/phobologic/uirepair/internal/model"
	"github.com/phobologic/uirepair/internal/navbar"
	"github.com/phobologic/uirepair/internal/style"
	"github.com/phobologic/uirepair/internal/walk"
)

// Pass selects which rule families a project run applies.
type Pass int

const (
	PassFooter Pass = 1 << iota
	PassNavbar

	PassAll = PassFooter | PassNavbar
)

// Repairer owns the state of one sequence of repair runs: a CSS classifier,
// the navbar ledger and the fix journals. It is not safe for concurrent use;
// concurrent runs each need their own Repairer.
type Repairer struct {
	cfg    *config.Config
	log    *zap.Logger
	footer *footer.Fixer
	navbar *navbar.Fixer
	ledger *navbar.Ledger

	css     *cssvalue.Classifier
	navOpts []navbar.Option
	page    string

	footerFixes []model.Fix
	navbarFixes []model.Fix
}

// Option configures a Repairer.
type Option func(*Repairer)

// WithConfig sets the rule defaults. The zero value uses config.Default().
func WithConfig(cfg *config.Config) Option {
	return func(r *Repairer) { r.cfg = cfg }
}

// WithLogger sets the logger. Fixes are logged at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(r *Repairer) { r.log = l }
}

// WithContainerIDs sets the id generator for synthesized nav-links
// containers.
func WithContainerIDs(fn func() string) Option {
	return func(r *Repairer) { r.navOpts = append(r.navOpts, navbar.WithIDGenerator(fn)) }
}

// WithClassifier reuses an existing CSS classifier, and with it its parser
// and cache. The classifier must not be used concurrently elsewhere.
func WithClassifier(css *cssvalue.Classifier) Option {
	return func(r *Repairer) { r.css = css }
}

// New creates a Repairer.
func New(opts ...Option) *Repairer {
	r := &Repairer{
		cfg: config.Default(),
		log: zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}
	if r.css == nil {
		r.css = cssvalue.NewClassifier()
	}
	r.footer = footer.New(r.cfg.Footer, r.css)
	r.navbar = navbar.New(r.cfg.Navbar, r.css, r.navOpts...)
	r.ledger = navbar.NewLedger()
	return r
}

// RepairTreeFooter repairs footer sections in the tree rooted at root.
func (r *Repairer) RepairTreeFooter(root *model.Node) bool {
	return r.footer.Walk(root, false, r.recorder(&r.footerFixes))
}

// RepairProjectFooter repairs footer sections on every page of p.
func (r *Repairer) RepairProjectFooter(p *model.Project) bool {
	changed := false
	r.eachRoot(p, func(root *model.Node) {
		if r.RepairTreeFooter(root) {
			changed = true
		}
	})
	r.log.Info("footer pass complete", zap.Bool("changed", changed), zap.Int("fixes", len(r.footerFixes)))
	return changed
}

// RepairTreeNavbar repairs navigation bars in the tree rooted at root,
// sharing the ledger with earlier calls since the last ResetNavbarIndices.
func (r *Repairer) RepairTreeNavbar(root *model.Node) bool {
	return r.navbar.Walk(root, r.ledger, r.recorder(&r.navbarFixes))
}

// RepairProjectNavbar repairs navigation bars on every page of p with a fresh
// ledger and returns the number of root trees that changed.
func (r *Repairer) RepairProjectNavbar(p *model.Project) int {
	r.ResetNavbarIndices()
	count := 0
	r.eachRoot(p, func(root *model.Node) {
		if r.RepairTreeNavbar(root) {
			count++
		}
	})
	r.log.Info("navbar pass complete",
		zap.Int("repairs", count),
		zap.Int("navbars", r.ledger.Len()),
		zap.Int("fixes", len(r.navbarFixes)))
	return count
}

// Result is the outcome of RepairProject.
type Result struct {
	FooterChanged bool
	NavbarRepairs int
	Fixes         []model.Fix
}

// Changed reports whether the project was modified.
func (res Result) Changed() bool {
	return res.FooterChanged || res.NavbarRepairs > 0
}

// RepairProject starts from clean bookkeeping and runs the selected passes.
func (r *Repairer) RepairProject(p *model.Project, passes Pass) Result {
	r.ResetFooterIndices()
	r.ResetNavbarIndices()

	var res Result
	if passes&PassFooter != 0 {
		res.FooterChanged = r.RepairProjectFooter(p)
	}
	if passes&PassNavbar != 0 {
		res.NavbarRepairs = r.RepairProjectNavbar(p)
	}
	res.Fixes = r.Fixes()
	return res
}

// Fixes returns the fixes recorded since the last resets, footer first.
func (r *Repairer) Fixes() []model.Fix {
	out := make([]model.Fix, 0, len(r.footerFixes)+len(r.navbarFixes))
	out = append(out, r.footerFixes...)
	return append(out, r.navbarFixes...)
}

// ResetFooterIndices clears the footer fix journal.
func (r *Repairer) ResetFooterIndices() {
	r.footerFixes = nil
}

// ResetNavbarIndices starts a new ledger and clears the navbar fix journal.
func (r *Repairer) ResetNavbarIndices() {
	r.ledger = navbar.NewLedger()
	r.navbarFixes = nil
}

func (r *Repairer) eachRoot(p *model.Project, fn func(root *model.Node)) {
	if p == nil {
		return
	}
	for _, pg := range p.Pages {
		if pg == nil {
			continue
		}
		r.page = pg.Label()
		r.log.Debug("repairing page",
			zap.String("page", r.page),
			zap.Int("roots", len(pg.Components)),
			zap.Int("nodes", countNodes(pg.Components)))
		for _, root := range pg.Components {
			fn(root)
		}
	}
	r.page = ""
}

func (r *Repairer) recorder(journal *[]model.Fix) style.Recorder {
	return func(n *model.Node, rule string, keys []string) {
		fix := model.Fix{Page: r.page, NodeID: n.ID, Rule: rule, Keys: keys}
		*journal = append(*journal, fix)
		r.log.Debug("applied fix",
			zap.String("page", fix.Page),
			zap.String("node", fix.NodeID),
			zap.String("rule", fix.Rule),
			zap.Strings("keys", fix.Keys))
	}
}

func countNodes(roots []*model.Node) int {
	total := 0
	for _, root := range roots {
		total += walk.Count(root)
	}
	return total
}
