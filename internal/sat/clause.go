package sat

import "strings"

// Clause is an ordered, deduplicated disjunction of literals with at least
// two entries. Slots 0 and 1 are reserved: they are always the clause's two
// currently watched literals. Positions 2 and beyond are the rest pool that
// watch repair scans.
type Clause struct {
	literals []Literal
	learnt   bool

	// prevPos caches the rest-pool position the previous successful repair
	// swapped in from, so that repeated repairs on a stable clause don't
	// always restart the scan from position 2. It must stay in
	// [2, len(literals)); correctness never depends on its value, only
	// performance does.
	prevPos int
}

// newClause builds and registers a clause from tmpLiterals. For non-learnt
// (original) clauses it also removes duplicate literals, drops clauses that
// are trivially true (both a literal and its negation present, or a literal
// already assigned true), and drops literals already assigned false. Learnt
// clauses are assumed already minimal and are taken as-is.
//
// The returned bool is false only if the clause is unsatisfiable on its own
// (the empty clause); ok is true for clauses that are vacuously satisfied
// (nil clause, true) as well as clauses that were successfully registered.
func newClause(s *Solver, tmpLiterals []Literal, learnt bool) (*Clause, bool) {
	size := len(tmpLiterals)

	if !learnt {
		seen := map[Literal]struct{}{}
		for i := size - 1; i >= 0; i-- {
			if _, ok := seen[tmpLiterals[i].Opposite()]; ok {
				return nil, true // clause contains l and !l: always true
			}
			if _, ok := seen[tmpLiterals[i]]; ok {
				size--
				tmpLiterals[i], tmpLiterals[size] = tmpLiterals[size], tmpLiterals[i]
				continue
			}
			seen[tmpLiterals[i]] = struct{}{}

			switch s.LitValue(tmpLiterals[i]) {
			case True:
				return nil, true // already satisfied at the root level
			case False:
				size--
				tmpLiterals[i], tmpLiterals[size] = tmpLiterals[size], tmpLiterals[i]
			}
		}
		tmpLiterals = tmpLiterals[:size]
	}

	switch size {
	case 0:
		return nil, false // the empty clause: unsatisfiable
	case 1:
		return nil, s.enqueue(tmpLiterals[0], nil) // level-0 unit fact
	default:
		c := &Clause{
			learnt:   learnt,
			literals: append([]Literal(nil), tmpLiterals...),
			prevPos:  2,
		}

		if learnt {
			// Slot 1 holds the literal with the next-highest decision level
			// after the asserting literal in slot 0, so the clause is
			// immediately watchable and propagatable once installed.
			maxLevel, wl := -1, 1
			for i := 1; i < len(c.literals); i++ {
				if lv := s.level[c.literals[i].VarID()]; lv > maxLevel {
					maxLevel, wl = lv, i
				}
			}
			c.literals[wl], c.literals[1] = c.literals[1], c.literals[wl]
		}

		s.watch(c, c.literals[0].Opposite(), c.literals[1])
		s.watch(c, c.literals[1].Opposite(), c.literals[0])

		return c, true
	}
}

// locked reports whether c is currently the reason for its first literal's
// assignment. Locked clauses must never be deleted by garbage collection,
// as that would leave a dangling reason and break invariant I2.
func (c *Clause) locked(s *Solver) bool {
	return s.reason[c.literals[0].VarID()] == c
}

// remove unregisters c from the watch index. It does not touch the clause
// database slices; callers are responsible for that.
func (c *Clause) remove(s *Solver) {
	s.unwatch(c, c.literals[0].Opposite())
	s.unwatch(c, c.literals[1].Opposite())
}

// simplify drops literals already falsified at the root level and reports
// whether the clause is satisfied at the root level (in which case the
// caller should remove it entirely).
func (c *Clause) simplify(s *Solver) bool {
	k := 0
	for _, l := range c.literals {
		switch s.LitValue(l) {
		case True:
			return true
		case False:
			// discard
		default:
			c.literals[k] = l
			k++
		}
	}
	c.literals = c.literals[:k]
	return false
}

// propagate is called when literal l has just been assigned true and c was
// registered to watch l's negation. It folds the watch-repair search
// together with the resulting enqueue/conflict step:
//
//   - a non-false literal is found in the rest pool (RELOCATED): it becomes
//     the new watch, the watch index is updated, and propagate returns true
//     without enqueuing anything;
//   - the other watched literal is already true (SATISFIED, checked first
//     as a fast path): propagate re-registers the same watch and returns
//     true (a true literal met in the rest-pool scan is handled as
//     RELOCATED);
//   - no replacement exists (UNIT): propagate re-registers the same watch
//     and forwards the sole remaining literal to the solver's enqueue,
//     whose own three-way result folds in "new unit", "already true" and
//     "conflict", covering every outcome of a forced literal's value.
//
// propagate returns false exactly when enqueuing would conflict, i.e. when
// the clause has become empty under the current assignment.
func (c *Clause) propagate(s *Solver, l Literal) bool {
	opp := l.Opposite()
	if c.literals[0] == opp {
		c.literals[0], c.literals[1] = c.literals[1], opp
	}

	if s.LitValue(c.literals[0]) == True {
		s.watch(c, l, c.literals[0])
		return true
	}

	if c.prevPos >= len(c.literals) {
		c.prevPos = 2
	}
	for i, lit := range c.literals[c.prevPos:] {
		if s.LitValue(lit) != False {
			pos := c.prevPos + i
			c.literals[1], c.literals[pos] = lit, c.literals[1]
			c.prevPos = pos
			s.watch(c, c.literals[1].Opposite(), c.literals[0])
			return true
		}
	}
	for i, lit := range c.literals[2:c.prevPos] {
		if s.LitValue(lit) != False {
			pos := i + 2
			c.literals[1], c.literals[pos] = lit, c.literals[1]
			c.prevPos = pos
			s.watch(c, c.literals[1].Opposite(), c.literals[0])
			return true
		}
	}

	// All of literals[1:] are false: literals[0] must become true.
	s.watch(c, l, c.literals[0])
	return s.enqueue(c.literals[0], c)
}

// explainConflict returns the negation of every literal in c, used when c is
// itself the conflicting clause (an "empty" clause under the assignment).
func (c *Clause) explainConflict(buf []Literal) []Literal {
	buf = buf[:0]
	for _, l := range c.literals {
		buf = append(buf, l.Opposite())
	}
	return buf
}

// explainAssign returns the negation of every literal in c other than
// literals[0], used when c is the reason c forced literals[0] to be true.
func (c *Clause) explainAssign(buf []Literal) []Literal {
	buf = buf[:0]
	for _, l := range c.literals[1:] {
		buf = append(buf, l.Opposite())
	}
	return buf
}

func (c *Clause) String() string {
	if len(c.literals) == 0 {
		return "Clause[]"
	}
	sb := strings.Builder{}
	sb.WriteString("Clause[")
	sb.WriteString(c.literals[0].String())
	for _, l := range c.literals[1:] {
		sb.WriteByte(' ')
		sb.WriteString(l.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
