package sat

// Default garbage-collection thresholds.
const (
	defaultDBCap         = 1_000_000
	defaultClauseSizeCap = 25
)

// clauseDB holds the two logical regions of the clause database: original
// clauses (fixed, read-only once added) and learned clauses (appended
// during search, periodically garbage collected). Both regions are
// conceptually part of one uniformly indexed database; this solver realizes
// indices as clause pointers (a stable handle) rather than integer
// positions, so original clauses never need renumbering and learned clauses
// can be deleted without disturbing any live reference.
type clauseDB struct {
	original []*Clause
	learnts  []*Clause

	dbCap         int
	clauseSizeCap int
}

func newClauseDB() *clauseDB {
	return &clauseDB{
		dbCap:         defaultDBCap,
		clauseSizeCap: defaultClauseSizeCap,
	}
}

// len returns the total number of clauses currently stored, across both
// regions.
func (db *clauseDB) len() int {
	return len(db.original) + len(db.learnts)
}

// originalCount returns the number of original (non-learned) clauses.
func (db *clauseDB) originalCount() int {
	return len(db.original)
}

// addOriginal registers an original clause. The returned bool is false if
// adding the clause renders the problem immediately unsatisfiable (the
// empty clause, or a unit clause that conflicts with an existing root-level
// assignment).
func (db *clauseDB) addOriginal(s *Solver, lits []Literal) bool {
	c, ok := newClause(s, lits, false)
	if c != nil {
		db.original = append(db.original, c)
	}
	return ok
}

// addLearned registers a clause produced by conflict analysis and
// immediately enqueues its asserting literal (literals[0]). It does not run
// gc itself: the caller is responsible for invoking gc once back at decision
// level 0 (see Solver.Solve), since gc is only safe there.
func (db *clauseDB) addLearned(s *Solver, lits []Literal) {
	c, _ := newClause(s, lits, true)
	s.enqueue(lits[0], c)
	if c != nil {
		db.learnts = append(db.learnts, c)
	}
}

// simplify drops root-level-satisfied clauses and shrinks the rest from
// both regions. Must only be called at decision level 0, with an empty
// propagation queue: it is meaningless otherwise since clauses are
// simplified against the *current* assignment.
func (db *clauseDB) simplify(s *Solver) {
	db.simplifyRegion(s, &db.original)
	db.simplifyRegion(s, &db.learnts)
}

func (db *clauseDB) simplifyRegion(s *Solver, region *[]*Clause) {
	clauses := *region
	j := 0
	for _, c := range clauses {
		if c.simplify(s) {
			c.remove(s)
			continue
		}
		clauses[j] = c
		j++
	}
	*region = clauses[:j]
}

// gc enforces a size/count cap policy: once the whole database (original
// plus learned clauses) exceeds dbCap, every unlocked learned clause longer
// than clauseSizeCap is deleted. It intentionally does not rank clauses by
// activity and must only be invoked at decision level 0, since a clause can
// only be safely deleted once no live non-decision reason can possibly
// reference it (a `locked` clause, which protects the one reason that
// might, is always kept regardless of length).
func (db *clauseDB) gc(s *Solver) {
	if db.len() <= db.dbCap {
		return
	}
	j := 0
	for _, c := range db.learnts {
		if len(c.literals) > db.clauseSizeCap && !c.locked(s) {
			c.remove(s)
			continue
		}
		db.learnts[j] = c
		j++
	}
	db.learnts = db.learnts[:j]
}
