package navbar

// Ledger remembers which navigation bars were already restructured during
// one repair run. It is created by the caller for each run and never shared
// between runs on different projects.
type Ledger struct {
	done map[string]struct{}
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{done: make(map[string]struct{})}
}

// Processed reports whether the navbar with this id was already handled.
func (l *Ledger) Processed(id string) bool {
	if l == nil || id == "" {
		return false
	}
	_, ok := l.done[id]
	return ok
}

// Mark records id as handled. Empty ids are not recorded; such navbars rely
// on container detection alone.
func (l *Ledger) Mark(id string) {
	if l == nil || id == "" {
		return
	}
	l.done[id] = struct{}{}
}

// Len returns the number of recorded navbars.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.done)
}
