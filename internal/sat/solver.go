// Package sat implements a CDCL (Conflict-Driven Clause Learning) SAT
// solver: DPLL backtracking search augmented with two-watched-literal
// Boolean constraint propagation, 1-UIP conflict analysis, non-chronological
// backjumping, a VSIDS-style decision heuristic, and a geometric restart
// policy with a size/count-capped learned-clause garbage collector.
package sat

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// watcher is an entry in a literal's watch list: the clause watching that
// literal's negation, plus a guard literal (one of the clause's other
// literals). If the guard is currently true, the clause is already
// satisfied and can be skipped without touching its literal slice at all.
type watcher struct {
	clause *Clause
	guard  Literal
}

// Options configures a Solver. There are deliberately no clause/variable
// activity decay fields: VSIDS scores here are a plain counter, and clause
// deletion is a size/count cap, not an activity ranking.
type Options struct {
	// Seed seeds the solver's own random generator, used only to break
	// VSIDS ties (see order.go) and nowhere else. Two solvers built with
	// the same seed and fed the same clauses in the same order produce the
	// same decisions, conflicts, and verdict.
	Seed uint64

	// MaxConflicts bounds the number of conflicts Solve will tolerate
	// before giving up and returning Unknown. Negative means unbounded.
	MaxConflicts int64

	// Timeout bounds wall-clock search time. Negative means unbounded.
	Timeout time.Duration

	// Verbose enables periodic search-progress lines on stdout.
	Verbose bool
}

// DefaultOptions are the options used by NewDefaultSolver.
var DefaultOptions = Options{
	Seed:         1,
	MaxConflicts: -1,
	Timeout:      -1,
}

// Solver is a single, self-contained CDCL solver instance. It is not safe
// for concurrent use: the whole package is single-threaded by design.
type Solver struct {
	clauses *clauseDB
	order   *varOrder
	rng     *rand.Rand

	// Watch index: watchers[l] lists the clauses currently watching the
	// negation of l, i.e. the clauses that must be inspected when l is
	// assigned true.
	watchers [][]watcher
	propQ    *Queue[Literal]

	// Per-literal truth value. assigns[l] and assigns[l.Opposite()] are
	// always kept as exact opposites.
	assigns []LBool

	// Trail: the chronological sequence of assigned literals, partitioned
	// into decision levels by trailLim (trailLim[i] is the trail length at
	// the start of decision level i+1).
	trail    []Literal
	trailLim []int
	reason   []*Clause
	level    []int

	unsat bool

	// Restart controller: conflictsSinceRestart increments per learned
	// clause; a restart is requested once it reaches the threshold, which
	// then grows geometrically.
	conflictsSinceRestart int64
	restartThreshold      int64

	TotalConflicts int64
	TotalRestarts  int64
	TotalDecisions int64
	startTime      time.Time

	hasStopCond  bool
	maxConflicts int64
	timeout      time.Duration
	verbose      bool

	// Model, populated by Solve on a SAT verdict.
	Model []bool

	// Scratch buffers reused across calls to avoid repeated allocation.
	seenVar     *ResetSet
	tmpWatchers []watcher
	tmpLearnt   []Literal
	tmpReason   []Literal
}

// NewDefaultSolver returns a Solver configured with DefaultOptions.
func NewDefaultSolver() *Solver {
	return NewSolver(DefaultOptions)
}

// NewSolver returns a new, empty Solver (no variables, no clauses).
func NewSolver(opts Options) *Solver {
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	s := &Solver{
		clauses: newClauseDB(),
		order:   newVarOrder(rng),
		rng:     rng,
		propQ:   NewQueue[Literal](128),
		seenVar: &ResetSet{},

		restartThreshold: 100,
		maxConflicts:     -1,
		timeout:          -1,
	}
	if opts.MaxConflicts >= 0 {
		s.hasStopCond = true
		s.maxConflicts = opts.MaxConflicts
	}
	if opts.Timeout >= 0 {
		s.hasStopCond = true
		s.timeout = opts.Timeout
	}
	s.verbose = opts.Verbose
	return s
}

func (s *Solver) shouldStop() bool {
	if !s.hasStopCond {
		return false
	}
	if s.maxConflicts >= 0 && s.TotalConflicts >= s.maxConflicts {
		return true
	}
	if s.timeout >= 0 && time.Since(s.startTime) >= s.timeout {
		return true
	}
	return false
}

// NumVariables returns the number of variables currently declared.
func (s *Solver) NumVariables() int {
	return len(s.assigns) / 2
}

// NumAssigns returns the number of currently assigned variables.
func (s *Solver) NumAssigns() int {
	return len(s.trail)
}

// NumConstraints returns the number of original (non-learned) clauses.
func (s *Solver) NumConstraints() int {
	return s.clauses.originalCount()
}

// NumLearnts returns the number of currently live learned clauses.
func (s *Solver) NumLearnts() int {
	return len(s.clauses.learnts)
}

// VarValue returns the current value of variable x.
func (s *Solver) VarValue(x int) LBool {
	return s.assigns[PositiveLiteral(x)]
}

// LitValue returns the current value of literal l.
func (s *Solver) LitValue(l Literal) LBool {
	return s.assigns[l]
}

// AddVariable declares one new variable and returns its id.
func (s *Solver) AddVariable() int {
	s.watchers = append(s.watchers, nil, nil)
	s.reason = append(s.reason, nil)
	s.level = append(s.level, -1)
	s.assigns = append(s.assigns, Unknown, Unknown)
	s.seenVar.Expand()
	return s.order.addVar()
}

// watch registers clause c to be inspected when watchLit is assigned true.
// guard is one of c's other literals: if it is already true when the
// watcher fires, the clause is known satisfied without inspecting it.
func (s *Solver) watch(c *Clause, watchLit Literal, guard Literal) {
	s.watchers[watchLit] = append(s.watchers[watchLit], watcher{clause: c, guard: guard})
}

// unwatch removes every entry for clause c from watchLit's watch list.
func (s *Solver) unwatch(c *Clause, watchLit Literal) {
	ws := s.watchers[watchLit]
	j := 0
	for i := range ws {
		if ws[i].clause != c {
			ws[j] = ws[i]
			j++
		}
	}
	s.watchers[watchLit] = ws[:j]
}

// AddClause adds an original (problem) clause. It must only be called at
// decision level 0. A unit clause is propagated immediately instead of
// being stored; an empty clause, or one that conflicts with an existing
// root-level assignment, marks the problem unsatisfiable.
func (s *Solver) AddClause(lits []Literal) error {
	if s.decisionLevel() != 0 {
		return fmt.Errorf("sat: AddClause called at decision level %d, want 0", s.decisionLevel())
	}
	if !s.clauses.addOriginal(s, lits) {
		s.unsat = true
	}
	return nil
}

func (s *Solver) decisionLevel() int {
	return len(s.trailLim)
}

// enqueue attempts to set l true. It returns false exactly when l is
// already assigned false (a conflicting assignment); it returns true both
// when l was already true (a no-op) and when it records a brand new fact.
// This ternary result folds "already assigned to the same value" and "new
// fact" into one success path without a separate error type: the only case
// a caller must react to is the false (conflict) case.
func (s *Solver) enqueue(l Literal, from *Clause) bool {
	switch s.LitValue(l) {
	case False:
		return false
	case True:
		return true
	default:
		varID := l.VarID()
		s.assigns[l] = True
		s.assigns[l.Opposite()] = False
		s.level[varID] = s.decisionLevel()
		s.reason[varID] = from
		s.trail = append(s.trail, l)
		s.propQ.Push(l)
		return true
	}
}

// Propagate drains the propagation queue, repairing watches lazily, until
// either the queue empties (OK) or a clause becomes empty under the current
// assignment (a conflict). It returns the conflicting clause, or nil on
// success.
func (s *Solver) Propagate() *Clause {
	for s.propQ.Size() > 0 {
		l := s.propQ.Pop()

		s.tmpWatchers = append(s.tmpWatchers[:0], s.watchers[l]...)
		s.watchers[l] = s.watchers[l][:0]

		for i, w := range s.tmpWatchers {
			if s.LitValue(w.guard) == True {
				s.watchers[l] = append(s.watchers[l], w)
				continue
			}
			if w.clause.propagate(s, l) {
				continue
			}
			// Conflict: put back everything not yet inspected and hand the
			// conflicting clause to the caller. Whatever this clause and
			// earlier ones in the batch already re-registered stays as is.
			s.watchers[l] = append(s.watchers[l], s.tmpWatchers[i+1:]...)
			s.propQ.Clear()
			return s.tmpWatchers[i].clause
		}
	}
	return nil
}

// assume pushes a new decision level and enqueues l as a decision (its
// reason is nil, distinguishing it from an implied literal).
func (s *Solver) assume(l Literal) bool {
	s.trailLim = append(s.trailLim, len(s.trail))
	return s.enqueue(l, nil)
}

// undoOne unassigns the most recently assigned literal on the trail.
func (s *Solver) undoOne() {
	l := s.trail[len(s.trail)-1]
	v := l.VarID()

	s.order.reinsert(v)
	s.assigns[l] = Unknown
	s.assigns[l.Opposite()] = Unknown
	s.reason[v] = nil
	s.level[v] = -1

	s.trail = s.trail[:len(s.trail)-1]
}

// cancel pops one decision level.
func (s *Solver) cancel() {
	n := len(s.trail) - s.trailLim[len(s.trailLim)-1]
	for ; n > 0; n-- {
		s.undoOne()
	}
	s.trailLim = s.trailLim[:len(s.trailLim)-1]
}

// popTo unassigns every variable with level > target and truncates the
// decision-boundary sequence so the current level is exactly target.
// Decision level 0 is never touched: any literal forced at level 0 survives
// every future backjump.
func (s *Solver) popTo(target int) {
	for s.decisionLevel() > target {
		s.cancel()
	}
}

// explain returns the negated reason literals for l's assignment. l == -1
// is the sentinel used to explain the conflicting clause itself rather than
// a specific assignment.
func (s *Solver) explain(c *Clause, l Literal) []Literal {
	if l == -1 {
		s.tmpReason = c.explainConflict(s.tmpReason)
	} else {
		s.tmpReason = c.explainAssign(s.tmpReason)
	}
	return s.tmpReason
}

// analyze implements 1-UIP conflict analysis: starting from the
// conflicting clause, it resolves backwards along the trail against each
// still-relevant variable's reason until exactly one literal at the current
// decision level remains. It returns the learned clause (asserting literal
// in slot 0, next-highest-level literal placed in slot 1 by newClause) and
// the backjump level.
func (s *Solver) analyze(confl *Clause) ([]Literal, int) {
	pathCount := 0
	backjumpLevel := 0

	s.tmpLearnt = append(s.tmpLearnt[:0], -1) // reserve slot 0 for the UIP
	s.seenVar.Clear()

	nextIdx := len(s.trail) - 1
	l := Literal(-1) // sentinel: "explain the conflict itself"

	for {
		for _, q := range s.explain(confl, l) {
			v := q.VarID()
			if s.seenVar.Contains(v) {
				continue
			}
			s.seenVar.Add(v)

			if s.level[v] == s.decisionLevel() {
				pathCount++
				continue
			}
			s.tmpLearnt = append(s.tmpLearnt, q.Opposite())
			if lv := s.level[v]; lv > backjumpLevel {
				backjumpLevel = lv
			}
		}

		// Walk backwards to the next seen variable on the trail.
		var v int
		for {
			l = s.trail[nextIdx]
			nextIdx--
			v = l.VarID()
			if s.seenVar.Contains(v) {
				break
			}
		}
		confl = s.reason[v]

		pathCount--
		if pathCount <= 0 {
			break
		}
	}

	s.tmpLearnt[0] = l.Opposite()
	for _, lit := range s.tmpLearnt {
		s.order.bump(lit.VarID())
	}

	return s.tmpLearnt, backjumpLevel
}

// record installs a learned clause and immediately asserts it.
func (s *Solver) record(lits []Literal) {
	s.clauses.addLearned(s, lits)
}

// maybeRestart requests, once enough conflicts have accumulated since the
// last restart, that the trail be cleared back to decision level 0 while
// the clause database and VSIDS scores survive.
func (s *Solver) maybeRestart() {
	s.conflictsSinceRestart++
	if s.conflictsSinceRestart < s.restartThreshold {
		return
	}
	s.conflictsSinceRestart = 0
	s.restartThreshold += s.restartThreshold / 2
	s.TotalRestarts++
	if s.decisionLevel() > 0 {
		// The queued asserting literal is unassigned by the pop.
		s.popTo(0)
		s.propQ.Clear()
	}
}

// Solve runs the search driver to completion (or until a configured
// conflict/time limit is hit) and returns the verdict. On True, Model holds
// a satisfying assignment in ascending variable order.
//
// Each iteration propagates; if the assignment is complete, SAT; otherwise
// it decides, propagates, and on conflict analyzes, backjumps, learns, and
// (periodically) restarts and collects garbage.
func (s *Solver) Solve() LBool {
	s.startTime = time.Now()

	if s.unsat {
		return False
	}
	if s.Propagate() != nil {
		s.unsat = true
		return False
	}
	s.clauses.simplify(s)

	for {
		if s.shouldStop() {
			return Unknown
		}

		if conflict := s.Propagate(); conflict != nil {
			s.TotalConflicts++
			if s.decisionLevel() == 0 {
				s.unsat = true
				return False
			}

			learnt, backjumpLevel := s.analyze(conflict)
			s.popTo(backjumpLevel)
			s.record(learnt)
			s.maybeRestart()

			if s.decisionLevel() == 0 {
				if s.Propagate() != nil {
					s.TotalConflicts++
					s.unsat = true
					return False
				}
				s.clauses.gc(s)
				s.clauses.simplify(s)
			}
			if s.verbose && s.TotalConflicts%1000 == 0 {
				s.printStats()
			}
			continue
		}

		if s.NumAssigns() == s.NumVariables() {
			s.saveModel()
			s.popTo(0)
			return True
		}

		lit, ok := s.order.next(s)
		if !ok {
			s.saveModel()
			s.popTo(0)
			return True
		}
		s.TotalDecisions++
		s.assume(lit)
	}
}

func (s *Solver) saveModel() {
	model := make([]bool, s.NumVariables())
	for i := range model {
		lb := s.VarValue(i)
		if lb == Unknown {
			panic("sat: saveModel called with an incomplete assignment")
		}
		model[i] = lb == True
	}
	s.Model = model
}

func (s *Solver) printStats() {
	fmt.Printf(
		"c %14.3fs %14d %14d %14d %14d\n",
		time.Since(s.startTime).Seconds(),
		s.TotalDecisions,
		s.TotalConflicts,
		s.TotalRestarts,
		s.NumLearnts(),
	)
}
