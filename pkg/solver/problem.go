// Package solver provides a time-budgeted local-search solver for boolean
// assignment problems over a staff × day grid. A Problem combines fixed
// cells, per-column required sums, hard constraints and an integer objective;
// Solve runs parallel annealing islands and returns the best feasible grid
// found within the budget, or a structured infeasible outcome.
package solver

// Grid is a boolean assignment of every (row, col) cell
type Grid struct {
	Rows, Cols int
	cells      []bool
}

// NewGrid creates an all-false grid
func NewGrid(rows, cols int) *Grid {
	return &Grid{Rows: rows, Cols: cols, cells: make([]bool, rows*cols)}
}

// At reports the value of a cell
func (g *Grid) At(r, c int) bool {
	return g.cells[r*g.Cols+c]
}

// Set assigns a cell
func (g *Grid) Set(r, c int, v bool) {
	g.cells[r*g.Cols+c] = v
}

// ColCount returns the number of true cells in a column
func (g *Grid) ColCount(c int) int {
	count := 0
	for r := 0; r < g.Rows; r++ {
		if g.At(r, c) {
			count++
		}
	}
	return count
}

// RowCount returns the number of true cells in a row
func (g *Grid) RowCount(r int) int {
	count := 0
	for c := 0; c < g.Cols; c++ {
		if g.At(r, c) {
			count++
		}
	}
	return count
}

// Clone deep-copies the grid
func (g *Grid) Clone() *Grid {
	clone := NewGrid(g.Rows, g.Cols)
	copy(clone.cells, g.cells)
	return clone
}

// Constraint is a hard rule over the whole grid. Violations returns the
// number of violated units; zero means satisfied.
type Constraint interface {
	Name() string
	Violations(g *Grid) int
}

// Objective scores a grid; lower is better. May be nil for pure feasibility
// problems.
type Objective func(g *Grid) int64

// Problem is a boolean grid model: cell fixing, per-column sum targets,
// hard constraints and an objective.
type Problem struct {
	Rows, Cols int

	// fixed holds -1 for free cells, 0/1 for pinned ones
	fixed []int8

	// ColTargets holds the required true-count per column, -1 when the
	// column is unconstrained
	ColTargets []int

	Constraints []Constraint
	Objective   Objective
}

// NewProblem creates an empty problem with all cells free and no column targets
func NewProblem(rows, cols int) *Problem {
	p := &Problem{
		Rows:       rows,
		Cols:       cols,
		fixed:      make([]int8, rows*cols),
		ColTargets: make([]int, cols),
	}
	for i := range p.fixed {
		p.fixed[i] = -1
	}
	for i := range p.ColTargets {
		p.ColTargets[i] = -1
	}
	return p
}

// Fix pins a cell to a value; the solver never touches it again
func (p *Problem) Fix(r, c int, v bool) {
	if v {
		p.fixed[r*p.Cols+c] = 1
	} else {
		p.fixed[r*p.Cols+c] = 0
	}
}

// Free reports whether a cell is open to the solver
func (p *Problem) Free(r, c int) bool {
	return p.fixed[r*p.Cols+c] < 0
}

// FixedValue returns the pinned value of a cell and whether it is pinned
func (p *Problem) FixedValue(r, c int) (bool, bool) {
	f := p.fixed[r*p.Cols+c]
	return f == 1, f >= 0
}

// SetColTarget requires the column's true-count to equal n
func (p *Problem) SetColTarget(c, n int) {
	p.ColTargets[c] = n
}

// AddConstraint registers a hard constraint
func (p *Problem) AddConstraint(c Constraint) {
	p.Constraints = append(p.Constraints, c)
}

// baseGrid returns a grid with every pinned cell applied
func (p *Problem) baseGrid() *Grid {
	g := NewGrid(p.Rows, p.Cols)
	for r := 0; r < p.Rows; r++ {
		for c := 0; c < p.Cols; c++ {
			if v, ok := p.FixedValue(r, c); ok && v {
				g.Set(r, c, true)
			}
		}
	}
	return g
}

// violations totals column-target mismatches and hard-constraint violations
func (p *Problem) violations(g *Grid) int {
	total := 0
	for c, target := range p.ColTargets {
		if target < 0 {
			continue
		}
		diff := g.ColCount(c) - target
		if diff < 0 {
			diff = -diff
		}
		total += diff
	}
	for _, con := range p.Constraints {
		total += con.Violations(g)
	}
	return total
}

// violationReport names every rule the grid still violates
func (p *Problem) violationReport(g *Grid) []string {
	var report []string
	for c, target := range p.ColTargets {
		if target >= 0 && g.ColCount(c) != target {
			report = append(report, columnMismatch(c, target, g.ColCount(c)))
		}
	}
	for _, con := range p.Constraints {
		if n := con.Violations(g); n > 0 {
			report = append(report, constraintMismatch(con.Name(), n))
		}
	}
	return report
}

// objective evaluates the problem objective, 0 when none is set
func (p *Problem) objective(g *Grid) int64 {
	if p.Objective == nil {
		return 0
	}
	return p.Objective(g)
}
