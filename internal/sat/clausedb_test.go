package sat

import "testing"

func TestClauseDB_addOriginal_emptyClauseIsUnsat(t *testing.T) {
	s := newTestSolver(1)

	ok := s.clauses.addOriginal(s, nil)
	if ok {
		t.Errorf("addOriginal(nil): want ok=false for the empty clause")
	}
}

func TestClauseDB_addOriginal_unitClauseIsNotStored(t *testing.T) {
	s := newTestSolver(1)

	before := s.clauses.originalCount()
	ok := s.clauses.addOriginal(s, []Literal{PositiveLiteral(0)})
	if !ok {
		t.Fatalf("addOriginal(unit): want ok=true")
	}
	if got := s.clauses.originalCount(); got != before {
		t.Errorf("originalCount() = %d, want %d (unit clauses become an immediate assignment, not a stored clause)", got, before)
	}
	if s.VarValue(0) != True {
		t.Errorf("VarValue(0) = %s, want true", s.VarValue(0))
	}
}

func TestClauseDB_gc_removesOnlyLongUnlockedLearnts(t *testing.T) {
	s := newTestSolver(10)
	s.clauses.dbCap = 0         // any database size exceeds the cap, so gc below does its work
	s.clauses.clauseSizeCap = 2 // anything longer than 2 literals is eligible

	short := []Literal{PositiveLiteral(0), NegativeLiteral(1)}
	long := []Literal{PositiveLiteral(2), NegativeLiteral(3), PositiveLiteral(4), NegativeLiteral(5)}

	// With its first literal already a root fact, the long clause is not
	// that literal's reason, so it is unlocked.
	s.enqueue(PositiveLiteral(2), nil)

	s.clauses.addLearned(s, append([]Literal{}, short...))
	s.clauses.addLearned(s, append([]Literal{}, long...))

	s.clauses.gc(s)

	if got := len(s.clauses.learnts); got != 1 {
		t.Fatalf("len(learnts) after gc = %d, want 1", got)
	}
	if got := len(s.clauses.learnts[0].literals); got > 2 {
		t.Errorf("surviving learnt clause has %d literals, want <= 2", got)
	}
}

func TestClauseDB_gc_belowCapIsNoop(t *testing.T) {
	s := newTestSolver(10)
	s.clauses.dbCap = 1000
	s.clauses.clauseSizeCap = 1

	long := []Literal{PositiveLiteral(0), NegativeLiteral(1), PositiveLiteral(2)}
	s.clauses.addLearned(s, append([]Literal{}, long...))

	before := len(s.clauses.learnts)
	s.clauses.gc(s)
	if got := len(s.clauses.learnts); got != before {
		t.Errorf("gc() below dbCap removed clauses: got %d, want %d", got, before)
	}
}
