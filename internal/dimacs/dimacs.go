// Package dimacs reads problems in the DIMACS CNF text format and wires
// them into a SAT solver. Unlike a one-shot "parse one whole file" loader,
// Scanner is re-entrant: ReadProblem reads exactly one DIMACS instance (one
// header line plus its clauses) and leaves the underlying reader positioned
// right after it, so a batch driver can call it n times in a row against
// one shared stream.
package dimacs

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/brodyw/cdclsat/internal/sat"
)

// Builder receives the declarations of one parsed DIMACS instance. It is
// satisfied by *sat.Solver.
type Builder interface {
	AddVariable() int
	AddClause([]sat.Literal) error
}

// Instance is a fully-materialized DIMACS problem, used by tests and by
// callers that want to inspect or replay a problem without a solver handy.
type Instance struct {
	Variables int
	Clauses   [][]int
}

// AddVariable and AddClause let *Instance itself satisfy Builder, which is
// convenient for tests that want the raw parsed clauses rather than a
// solver's internal literal encoding.
func (in *Instance) AddVariable() int {
	in.Variables++
	return in.Variables - 1
}

func (in *Instance) AddClause(lits []sat.Literal) error {
	clause := make([]int, len(lits))
	for i, l := range lits {
		if l.IsPositive() {
			clause[i] = l.VarID() + 1
		} else {
			clause[i] = -(l.VarID() + 1)
		}
	}
	in.Clauses = append(in.Clauses, clause)
	return nil
}

// Scanner tokenizes a DIMACS byte stream: whitespace (including newlines)
// separates tokens, and any line whose first non-whitespace byte is 'c' is
// a comment, discarded entirely. It can be reused across
// several back-to-back instances in the same stream.
type Scanner struct {
	r           *bufio.Reader
	atLineStart bool
	tokenBuf    []byte
}

// NewScanner returns a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{
		r:           bufio.NewReaderSize(r, 64*1024),
		atLineStart: true,
	}
}

// token returns the next whitespace-delimited token, skipping comment
// lines along the way.
func (sc *Scanner) token() (string, error) {
	sc.tokenBuf = sc.tokenBuf[:0]

	for {
		b, err := sc.r.ReadByte()
		if err != nil {
			return "", err
		}

		switch {
		case b == '\n':
			sc.atLineStart = true
		case b == ' ' || b == '\t' || b == '\r':
			// whitespace within a line: doesn't affect atLineStart
		case sc.atLineStart && b == 'c':
			sc.atLineStart = false
			if err := sc.skipLine(); err != nil {
				return "", err
			}
			sc.atLineStart = true
		default:
			sc.atLineStart = false
			if err := sc.r.UnreadByte(); err != nil {
				return "", err
			}
			return sc.readToken()
		}
	}
}

func (sc *Scanner) skipLine() error {
	for {
		b, err := sc.r.ReadByte()
		if err != nil {
			return err
		}
		if b == '\n' {
			return nil
		}
	}
}

func (sc *Scanner) readToken() (string, error) {
	for {
		b, err := sc.r.ReadByte()
		if err != nil {
			if len(sc.tokenBuf) > 0 && err == io.EOF {
				return string(sc.tokenBuf), nil
			}
			return "", err
		}
		if b == ' ' || b == '\t' || b == '\r' || b == '\n' {
			if b == '\n' {
				sc.atLineStart = true
			}
			if err := sc.r.UnreadByte(); err != nil {
				return "", err
			}
			return string(sc.tokenBuf), nil
		}
		sc.tokenBuf = append(sc.tokenBuf, b)
	}
}

func (sc *Scanner) tokenInt() (int, error) {
	tok, err := sc.token()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("dimacs: malformed integer literal %q: %w", tok, err)
	}
	return n, nil
}

// ReadProblem reads one DIMACS instance -- the "p cnf V C" header and
// exactly C clauses -- from sc and wires it into b via AddVariable and
// AddClause. It returns the declared variable and clause counts.
func (sc *Scanner) ReadProblem(b Builder) (nVars, nClauses int, err error) {
	if err := sc.expect("p"); err != nil {
		return 0, 0, fmt.Errorf("dimacs: header not found: %w", err)
	}
	if err := sc.expect("cnf"); err != nil {
		return 0, 0, fmt.Errorf("dimacs: unsupported problem type: %w", err)
	}
	nVars, err = sc.tokenInt()
	if err != nil {
		return 0, 0, fmt.Errorf("dimacs: malformed header: %w", err)
	}
	nClauses, err = sc.tokenInt()
	if err != nil {
		return 0, 0, fmt.Errorf("dimacs: malformed header: %w", err)
	}
	if nVars < 0 || nClauses < 0 {
		return 0, 0, fmt.Errorf("dimacs: negative header counts %d %d", nVars, nClauses)
	}

	for i := 0; i < nVars; i++ {
		b.AddVariable()
	}

	litBuf := make([]sat.Literal, 0, 8)
	for c := 0; c < nClauses; c++ {
		litBuf = litBuf[:0]
		for {
			lit, err := sc.tokenInt()
			if err != nil {
				return 0, 0, fmt.Errorf("dimacs: premature EOF reading clause %d: %w", c, err)
			}
			if lit == 0 {
				break
			}
			if lit < -nVars || lit > nVars {
				return 0, 0, fmt.Errorf("dimacs: literal %d out of range [-%d, %d]", lit, nVars, nVars)
			}
			if lit < 0 {
				litBuf = append(litBuf, sat.NegativeLiteral(-lit-1))
			} else {
				litBuf = append(litBuf, sat.PositiveLiteral(lit-1))
			}
		}
		if err := b.AddClause(litBuf); err != nil {
			return 0, 0, err
		}
	}

	return nVars, nClauses, nil
}

func (sc *Scanner) expect(want string) error {
	got, err := sc.token()
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected %q, got %q", want, got)
	}
	return nil
}

// Instantiate wires a fully-materialized Instance into a Builder. It is
// useful for tests and for replaying an Instance read once into several
// solvers.
func Instantiate(b Builder, in *Instance) error {
	for i := 0; i < in.Variables; i++ {
		b.AddVariable()
	}
	for _, clause := range in.Clauses {
		lits := make([]sat.Literal, len(clause))
		for i, l := range clause {
			if l < 0 {
				lits[i] = sat.NegativeLiteral(-l - 1)
			} else {
				lits[i] = sat.PositiveLiteral(l - 1)
			}
		}
		if err := b.AddClause(lits); err != nil {
			return err
		}
	}
	return nil
}

func opener(filename string, gzipped bool) (io.ReadCloser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	rc := io.ReadCloser(f)
	if gzipped {
		rc, err = gzip.NewReader(rc)
		if err != nil {
			return nil, err
		}
	}
	return rc, nil
}

// LoadFile parses the single DIMACS instance contained in filename
// (transparently gzip-decompressing if gzipped is true) and wires it into
// b. This is a convenience wrapper around Scanner for the common
// one-file-one-instance case.
func LoadFile(filename string, gzipped bool, b Builder) error {
	rc, err := opener(filename, gzipped)
	if err != nil {
		return fmt.Errorf("dimacs: opening %q: %w", filename, err)
	}
	defer rc.Close()

	_, _, err = NewScanner(rc).ReadProblem(b)
	return err
}
