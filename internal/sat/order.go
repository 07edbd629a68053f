package sat

import (
	"math/rand/v2"

	"github.com/rhartert/yagh"
)

// tieRange bounds the random tiebreak tag folded into each variable's heap
// priority (see priority below). It only needs to be large enough that two
// variables' tags essentially never collide by chance relative to the score
// granularity (VSIDS scores increment by exactly 1).
const tieRange = 1 << 20

// varOrder selects the next decision variable by VSIDS score: a plain
// nonnegative counter bumped by one whenever a variable appears in a
// learned clause. There is no decay or rescaling step, so scores only ever
// grow.
//
// Selection uses a binary heap (github.com/rhartert/yagh) for O(log n)
// max-extraction. The heap breaks priority ties deterministically by
// insertion order, which would always favor low variable ids on the very
// common all-zero starting scores; to break ties uniformly at random
// without assuming an undocumented multi-candidate peek API, each variable
// is given a fixed random tag at registration time and that tag is folded
// into its heap priority, so equal-score variables sort by that random tag
// instead of by id.
type varOrder struct {
	heap   *yagh.IntMap[int64]
	scores []int64
	tags   []int64
	rng    *rand.Rand
}

func newVarOrder(rng *rand.Rand) *varOrder {
	return &varOrder{
		heap: yagh.New[int64](0),
		rng:  rng,
	}
}

// priority returns the heap key for variable v: a min-heap priority that
// sorts highest-score-first, with its low bits carrying v's random tiebreak
// tag so that equal scores don't fall back to insertion order.
func (vo *varOrder) priority(v int) int64 {
	return -(vo.scores[v] * tieRange) - vo.tags[v]
}

// addVar registers a new variable (the next sequential id) with VSIDS score
// zero and returns its id.
func (vo *varOrder) addVar() int {
	v := len(vo.scores)
	vo.scores = append(vo.scores, 0)
	vo.tags = append(vo.tags, vo.rng.Int64N(tieRange))
	vo.heap.GrowBy(1)
	vo.heap.Put(v, vo.priority(v))
	return v
}

// bump increases v's VSIDS score by one and repositions it in the heap.
func (vo *varOrder) bump(v int) {
	vo.scores[v]++
	if vo.heap.Contains(v) {
		vo.heap.Put(v, vo.priority(v))
	}
}

// reinsert makes v a candidate again after it has been unassigned (e.g. by
// a backtrack). An implied variable is never popped, so v may still be in
// the heap; Put then only refreshes its entry.
func (vo *varOrder) reinsert(v int) {
	vo.heap.Put(v, vo.priority(v))
}

// next pops variables off the heap, discarding any that are already
// assigned, and returns the decision literal for the first unassigned one
// found. Polarity is always positive: phase saving is not implemented.
func (vo *varOrder) next(s *Solver) (Literal, bool) {
	for {
		item, ok := vo.heap.Pop()
		if !ok {
			return 0, false
		}
		if s.VarValue(item.Elem) == Unknown {
			return PositiveLiteral(item.Elem), true
		}
	}
}
