package dimacs

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScanner_ReadProblem(t *testing.T) {
	const text = `c a comment line
c another comment
p cnf 3 3
1 2 0
-1 3 0
-2 -3 0
`
	want := Instance{
		Variables: 3,
		Clauses: [][]int{
			{1, 2},
			{-1, 3},
			{-2, -3},
		},
	}

	got := Instance{}
	nVars, nClauses, err := NewScanner(strings.NewReader(text)).ReadProblem(&got)
	if err != nil {
		t.Fatalf("ReadProblem(): unexpected error: %s", err)
	}
	if nVars != 3 || nClauses != 3 {
		t.Errorf("ReadProblem(): got (%d, %d), want (3, 3)", nVars, nClauses)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadProblem(): mismatch (-want +got):\n%s", diff)
	}
}

func TestScanner_ReadProblem_clauseSpansMultipleLines(t *testing.T) {
	// Newlines are irrelevant for clause framing.
	const text = "p cnf 3 1\n1 2\n-3\n0\n"

	got := Instance{}
	_, _, err := NewScanner(strings.NewReader(text)).ReadProblem(&got)
	if err != nil {
		t.Fatalf("ReadProblem(): unexpected error: %s", err)
	}
	want := [][]int{{1, 2, -3}}
	if diff := cmp.Diff(want, got.Clauses); diff != "" {
		t.Errorf("ReadProblem(): mismatch (-want +got):\n%s", diff)
	}
}

func TestScanner_ReadProblem_sequentialInstances(t *testing.T) {
	// Several DIMACS instances, back to back in one stream.
	const text = "p cnf 1 1\n1 0\np cnf 1 2\n1 0\n-1 0\n"

	sc := NewScanner(strings.NewReader(text))

	first := Instance{}
	if _, _, err := sc.ReadProblem(&first); err != nil {
		t.Fatalf("first ReadProblem(): unexpected error: %s", err)
	}
	if diff := cmp.Diff([][]int{{1}}, first.Clauses); diff != "" {
		t.Errorf("first instance mismatch (-want +got):\n%s", diff)
	}

	second := Instance{}
	if _, _, err := sc.ReadProblem(&second); err != nil {
		t.Fatalf("second ReadProblem(): unexpected error: %s", err)
	}
	if diff := cmp.Diff([][]int{{1}, {-1}}, second.Clauses); diff != "" {
		t.Errorf("second instance mismatch (-want +got):\n%s", diff)
	}
}

func TestScanner_ReadProblem_malformedHeader(t *testing.T) {
	for name, text := range map[string]string{
		"missing p":       "cnf 1 1\n1 0\n",
		"wrong type":      "p sat 1 1\n1 0\n",
		"nonnumeric vars": "p cnf x 1\n1 0\n",
		"premature EOF":   "p cnf 2 2\n1 2 0\n",
	} {
		t.Run(name, func(t *testing.T) {
			got := Instance{}
			_, _, err := NewScanner(strings.NewReader(text)).ReadProblem(&got)
			if err == nil {
				t.Errorf("ReadProblem(%q): want error, got none", text)
			}
		})
	}
}

func TestScanner_ReadProblem_literalOutOfRange(t *testing.T) {
	got := Instance{}
	_, _, err := NewScanner(strings.NewReader("p cnf 1 1\n2 0\n")).ReadProblem(&got)
	if err == nil {
		t.Errorf("ReadProblem(): want error for out-of-range literal, got none")
	}
}

func TestScanner_ReadProblem_emptyClause(t *testing.T) {
	got := Instance{}
	_, _, err := NewScanner(strings.NewReader("p cnf 1 1\n0\n")).ReadProblem(&got)
	if err != nil {
		t.Fatalf("ReadProblem(): unexpected error: %s", err)
	}
	if diff := cmp.Diff([][]int{{}}, got.Clauses); diff != "" {
		t.Errorf("ReadProblem(): mismatch (-want +got):\n%s", diff)
	}
}
