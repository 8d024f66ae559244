package solver

import "math/rand"

// construct builds an initial grid greedily: starting from the pinned cells,
// each column with a target is filled one cell at a time, always choosing
// the free cell that adds the fewest constraint violations. Ties break
// randomly so parallel islands start from different points.
func construct(p *Problem, rng *rand.Rand) *Grid {
	g := p.baseGrid()

	cols := rng.Perm(p.Cols)
	for _, c := range cols {
		target := p.ColTargets[c]
		if target < 0 {
			continue
		}

		for g.ColCount(c) < target {
			r := bestAddition(p, g, c, rng)
			if r < 0 {
				break // not enough free cells; left as a violation
			}
			g.Set(r, c, true)
		}
	}
	return g
}

// bestAddition picks the free, unset row in column c whose selection adds
// the fewest hard-constraint violations. Returns -1 when no candidate exists.
func bestAddition(p *Problem, g *Grid, c int, rng *rand.Rand) int {
	best := -1
	bestViol := 0
	ties := 0

	for r := 0; r < p.Rows; r++ {
		if !p.Free(r, c) || g.At(r, c) {
			continue
		}

		g.Set(r, c, true)
		viol := 0
		for _, con := range p.Constraints {
			viol += con.Violations(g)
		}
		g.Set(r, c, false)

		switch {
		case best < 0 || viol < bestViol:
			best, bestViol, ties = r, viol, 1
		case viol == bestViol:
			// reservoir sampling over tied candidates
			ties++
			if rng.Intn(ties) == 0 {
				best = r
			}
		}
	}
	return best
}
