package solver

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"
)

// violationWeight makes a single hard-constraint violation outweigh any
// achievable objective difference, so the search always repairs feasibility
// before it optimizes.
const violationWeight int64 = 10_000_000

// Options control a solve run
type Options struct {
	// Budget is the wall-clock limit for the whole solve
	Budget time.Duration

	// Workers is the number of parallel annealing islands
	Workers int

	// Seed makes island starting points reproducible; 0 seeds from the clock
	Seed int64

	// InitialTemp and Cooling drive the annealing acceptance schedule
	InitialTemp float64
	Cooling     float64

	// PlateauIters stops an island after this many iterations without
	// improvement; 0 disables the early stop
	PlateauIters int64
}

// DefaultOptions mirror the production run: 15 seconds, parallel search
func DefaultOptions() Options {
	return Options{
		Budget:       15 * time.Second,
		Workers:      min(runtime.NumCPU(), 8),
		InitialTemp:  2000,
		Cooling:      0.99999,
		PlateauIters: 2_000_000,
	}
}

// Result is the outcome of a solve. Feasible=false is a valid outcome, not
// an error: Grid then holds the best attempt and Violations names what it
// still breaks.
type Result struct {
	Feasible   bool
	Grid       *Grid
	Objective  int64
	Violations []string
	Iterations int64
	Elapsed    time.Duration
}

// Solve runs parallel annealing islands over the problem and returns the
// best solution found within the budget.
func Solve(ctx context.Context, p *Problem, opts Options) (*Result, error) {
	if p.Rows <= 0 || p.Cols <= 0 {
		return nil, fmt.Errorf("solver: empty problem (%d rows, %d cols)", p.Rows, p.Cols)
	}
	if opts.Budget <= 0 {
		opts.Budget = DefaultOptions().Budget
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultOptions().Workers
	}
	if opts.InitialTemp <= 0 {
		opts.InitialTemp = DefaultOptions().InitialTemp
	}
	if opts.Cooling <= 0 || opts.Cooling >= 1 {
		opts.Cooling = DefaultOptions().Cooling
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	start := time.Now()
	runCtx, cancel := context.WithTimeout(ctx, opts.Budget)
	defer cancel()

	results := make([]*islandResult, opts.Workers)
	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func(island int) {
			defer wg.Done()
			results[island] = runIsland(runCtx, p, opts, seed+int64(island))
		}(i)
	}
	wg.Wait()

	best := pickBest(results)
	out := &Result{
		Feasible:  best.violations == 0,
		Grid:      best.grid,
		Objective: best.objective,
		Elapsed:   time.Since(start),
	}
	for _, r := range results {
		out.Iterations += r.iterations
	}
	if !out.Feasible {
		out.Violations = p.violationReport(best.grid)
	}
	return out, nil
}

type islandResult struct {
	grid       *Grid
	violations int
	objective  int64
	iterations int64
}

// runIsland performs one independent annealing search: greedy construction
// followed by column-sum-preserving local moves with a Metropolis acceptance
// rule. The best grid seen (fewest violations, then lowest objective) is kept
// aside and returned.
func runIsland(ctx context.Context, p *Problem, opts Options, seed int64) *islandResult {
	rng := rand.New(rand.NewSource(seed))

	g := construct(p, rng)
	curViol := p.violations(g)
	curObj := p.objective(g)

	best := &islandResult{grid: g.Clone(), violations: curViol, objective: curObj}

	freeCols := movableColumns(p)
	if len(freeCols) == 0 {
		return best
	}

	temp := opts.InitialTemp
	var sinceImprovement int64

	for iter := int64(0); ; iter++ {
		// the ctx check is the only budget guard; keep it cheap
		if iter&1023 == 0 {
			select {
			case <-ctx.Done():
				best.iterations = iter
				return best
			default:
			}
		}
		if opts.PlateauIters > 0 && sinceImprovement >= opts.PlateauIters {
			best.iterations = iter
			return best
		}

		undo, ok := proposeMove(p, g, freeCols, rng)
		if !ok {
			sinceImprovement++
			continue
		}

		newViol := p.violations(g)
		newObj := p.objective(g)
		delta := energy(newViol, newObj) - energy(curViol, curObj)

		if delta <= 0 || rng.Float64() < math.Exp(-float64(delta)/temp) {
			curViol, curObj = newViol, newObj
			if curViol < best.violations ||
				(curViol == best.violations && curObj < best.objective) {
				best.grid = g.Clone()
				best.violations = curViol
				best.objective = curObj
				sinceImprovement = 0
			} else {
				sinceImprovement++
			}
		} else {
			undo()
			sinceImprovement++
		}

		if temp > 1 {
			temp *= opts.Cooling
		}
	}
}

func energy(violations int, objective int64) int64 {
	return int64(violations)*violationWeight + objective
}

// movableColumns lists columns that have at least two free cells; moves in
// other columns can never change anything.
func movableColumns(p *Problem) []int {
	var cols []int
	for c := 0; c < p.Cols; c++ {
		free := 0
		for r := 0; r < p.Rows; r++ {
			if p.Free(r, c) {
				free++
			}
		}
		if free >= 2 {
			cols = append(cols, c)
		}
	}
	return cols
}

// proposeMove mutates the grid with one of two column-sum-preserving moves
// and returns an undo closure. Exchange swaps a set and an unset free cell
// within one column; row-swap trades a duty day between two rows across two
// columns. Both leave every column count unchanged, so a feasible column
// profile stays feasible.
func proposeMove(p *Problem, g *Grid, freeCols []int, rng *rand.Rand) (func(), bool) {
	if rng.Intn(4) == 0 {
		if undo, ok := proposeRowSwap(p, g, freeCols, rng); ok {
			return undo, true
		}
	}
	return proposeExchange(p, g, freeCols, rng)
}

func proposeExchange(p *Problem, g *Grid, freeCols []int, rng *rand.Rand) (func(), bool) {
	c := freeCols[rng.Intn(len(freeCols))]

	var set, unset []int
	for r := 0; r < p.Rows; r++ {
		if !p.Free(r, c) {
			continue
		}
		if g.At(r, c) {
			set = append(set, r)
		} else {
			unset = append(unset, r)
		}
	}
	if len(set) == 0 || len(unset) == 0 {
		return nil, false
	}

	r1 := set[rng.Intn(len(set))]
	r2 := unset[rng.Intn(len(unset))]
	g.Set(r1, c, false)
	g.Set(r2, c, true)
	return func() {
		g.Set(r1, c, true)
		g.Set(r2, c, false)
	}, true
}

func proposeRowSwap(p *Problem, g *Grid, freeCols []int, rng *rand.Rand) (func(), bool) {
	if len(freeCols) < 2 {
		return nil, false
	}
	// random probing; give up quickly when no swappable pattern turns up
	for attempt := 0; attempt < 8; attempt++ {
		c1 := freeCols[rng.Intn(len(freeCols))]
		c2 := freeCols[rng.Intn(len(freeCols))]
		if c1 == c2 {
			continue
		}
		r1 := rng.Intn(p.Rows)
		r2 := rng.Intn(p.Rows)
		if r1 == r2 {
			continue
		}
		if !p.Free(r1, c1) || !p.Free(r1, c2) || !p.Free(r2, c1) || !p.Free(r2, c2) {
			continue
		}
		if !g.At(r1, c1) || g.At(r1, c2) || g.At(r2, c1) || !g.At(r2, c2) {
			continue
		}

		g.Set(r1, c1, false)
		g.Set(r1, c2, true)
		g.Set(r2, c1, true)
		g.Set(r2, c2, false)
		return func() {
			g.Set(r1, c1, true)
			g.Set(r1, c2, false)
			g.Set(r2, c1, false)
			g.Set(r2, c2, true)
		}, true
	}
	return nil, false
}

// pickBest prefers fewer violations, then lower objective
func pickBest(results []*islandResult) *islandResult {
	best := results[0]
	for _, r := range results[1:] {
		if r == nil {
			continue
		}
		if r.violations < best.violations ||
			(r.violations == best.violations && r.objective < best.objective) {
			best = r
		}
	}
	return best
}

func columnMismatch(col, want, got int) string {
	return fmt.Sprintf("column %d: sum %d, want %d", col, got, want)
}

func constraintMismatch(name string, count int) string {
	return fmt.Sprintf("%s: %d violation(s)", name, count)
}
