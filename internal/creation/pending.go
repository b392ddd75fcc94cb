package creation

import "sqlfixtables/internal/models"

// Ref is a foreign key field waiting for its target table.
type Ref struct {
	Model *models.Model
	Field *models.Field
}

// Pending maps a not-yet-created table to the references waiting on it.
// It only grows: Take hands out references that have not been emitted yet
// and remembers how far it got, but keys and entries are never removed.
type Pending struct {
	targets []string
	refs    map[string][]Ref
	emitted map[string]int
}

func NewPending() *Pending {
	return &Pending{
		refs:    make(map[string][]Ref),
		emitted: make(map[string]int),
	}
}

// Add queues a reference to target.
func (p *Pending) Add(target string, r Ref) {
	if _, ok := p.refs[target]; !ok {
		p.targets = append(p.targets, target)
	}
	p.refs[target] = append(p.refs[target], r)
}

// Merge appends every reference queued in o, preserving order, and
// returns p.
func (p *Pending) Merge(o *Pending) *Pending {
	if o == nil {
		return p
	}
	for _, t := range o.targets {
		for _, r := range o.refs[t] {
			p.Add(t, r)
		}
	}
	return p
}

// Has reports whether target was ever queued.
func (p *Pending) Has(target string) bool {
	_, ok := p.refs[target]
	return ok
}

// Refs returns every reference ever queued for target.
func (p *Pending) Refs(target string) []Ref {
	return p.refs[target]
}

// Take returns the references for target that have not been taken yet.
func (p *Pending) Take(target string) []Ref {
	all := p.refs[target]
	done := p.emitted[target]
	if done >= len(all) {
		return nil
	}
	p.emitted[target] = len(all)
	return all[done:]
}

// Targets returns queued target tables in first-queued order.
func (p *Pending) Targets() []string {
	return append([]string(nil), p.targets...)
}

// Unresolved returns targets with references that were never taken.
func (p *Pending) Unresolved() []string {
	var out []string
	for _, t := range p.targets {
		if p.emitted[t] < len(p.refs[t]) {
			out = append(out, t)
		}
	}
	return out
}

// Len returns the number of queued references.
func (p *Pending) Len() int {
	n := 0
	for _, rs := range p.refs {
		n += len(rs)
	}
	return n
}
