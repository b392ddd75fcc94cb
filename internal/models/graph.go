package models

import "log/slog"

// Dependencies returns the labels of models this model references through
// foreign keys, excluding itself.
func (m *Model) Dependencies() []string {
	var deps []string
	seen := make(map[string]bool)
	for _, f := range m.Fields {
		if f.Rel == nil || f.Rel.Model == nil || f.Rel.Model == m {
			continue
		}
		label := f.Rel.Model.Label()
		if !seen[label] {
			seen[label] = true
			deps = append(deps, label)
		}
	}
	return deps
}

// SortByDependencies orders models so that referenced models come first.
// Dependencies outside the given set are treated as satisfied. Cycles are
// broken with a score favouring models with few unsatisfied references
// that take part in a two-model cycle.
func SortByDependencies(models []*Model) []*Model {
	inSet := make(map[string]*Model, len(models))
	for _, m := range models {
		inSet[m.Label()] = m
	}
	deps := make(map[string][]string, len(models))
	for _, m := range models {
		for _, d := range m.Dependencies() {
			if _, ok := inSet[d]; ok {
				deps[m.Label()] = append(deps[m.Label()], d)
			}
		}
	}

	var sorted []*Model
	processed := make(map[string]bool)

	for len(sorted) < len(models) {
		added := false

		// Pass 1: models whose dependencies are all placed, in declaration order
		for _, m := range models {
			if processed[m.Label()] {
				continue
			}
			ready := true
			for _, d := range deps[m.Label()] {
				if !processed[d] {
					ready = false
					break
				}
			}
			if ready {
				sorted = append(sorted, m)
				processed[m.Label()] = true
				added = true
			}
		}
		if added {
			continue
		}

		// Pass 2: cycle. Place the best-scoring remaining model.
		var best *Model
		bestScore := 0
		for _, m := range models {
			if processed[m.Label()] {
				continue
			}
			score := 0
			circular := false
			for _, d := range deps[m.Label()] {
				if processed[d] {
					continue
				}
				score -= 100
				for _, back := range deps[d] {
					if back == m.Label() {
						circular = true
					}
				}
			}
			if circular {
				score += 500
			}
			if best == nil || score > bestScore {
				best, bestScore = m, score
			}
		}
		slog.Debug("breaking circular model dependency", "model", best.Label(), "score", bestScore)
		sorted = append(sorted, best)
		processed[best.Label()] = true
	}
	return sorted
}
