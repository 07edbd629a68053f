package sat

import (
	"math/rand/v2"
	"testing"
)

func newTestVarOrder() *varOrder {
	rng := rand.New(rand.NewPCG(1, 2))
	return newVarOrder(rng)
}

func TestVarOrder_bumpedVariableIsPreferred(t *testing.T) {
	vo := newTestVarOrder()
	a := vo.addVar()
	b := vo.addVar()
	c := vo.addVar()

	vo.bump(b)
	vo.bump(b)

	s := newTestSolver(0)
	s.order = vo
	for i := 0; i < 3; i++ {
		s.assigns = append(s.assigns, Unknown, Unknown)
		s.level = append(s.level, 0)
		s.reason = append(s.reason, nil)
	}

	lit, ok := vo.next(s)
	if !ok {
		t.Fatalf("next(): want a candidate, got none")
	}
	if lit.VarID() != b {
		t.Errorf("next() = var %d, want %d (a=%d, c=%d) -- highest score should be picked first", lit.VarID(), b, a, c)
	}
	if !lit.IsPositive() {
		t.Errorf("next() returned a negative literal; phase saving is dropped, always positive")
	}
}

func TestVarOrder_next_skipsAssignedVariables(t *testing.T) {
	vo := newTestVarOrder()
	a := vo.addVar()
	vo.addVar()

	s := newTestSolver(0)
	s.order = vo
	for i := 0; i < 2; i++ {
		s.assigns = append(s.assigns, Unknown, Unknown)
		s.level = append(s.level, 0)
		s.reason = append(s.reason, nil)
	}
	s.assigns[PositiveLiteral(a)] = True
	s.assigns[NegativeLiteral(a)] = False

	lit, ok := vo.next(s)
	if !ok {
		t.Fatalf("next(): want a candidate, got none")
	}
	if lit.VarID() == a {
		t.Errorf("next() returned already-assigned variable %d", a)
	}
}

func TestVarOrder_next_emptyWhenAllAssigned(t *testing.T) {
	vo := newTestVarOrder()
	a := vo.addVar()

	s := newTestSolver(0)
	s.order = vo
	s.assigns = append(s.assigns, Unknown, Unknown)
	s.level = append(s.level, 0)
	s.reason = append(s.reason, nil)
	s.assigns[PositiveLiteral(a)] = True
	s.assigns[NegativeLiteral(a)] = False

	if _, ok := vo.next(s); ok {
		t.Errorf("next(): want no candidate once every variable is assigned")
	}
}
