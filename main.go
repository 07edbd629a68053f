package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/brodyw/cdclsat/internal/dimacs"
	"github.com/brodyw/cdclsat/internal/sat"
)

var flagCPUProfile = flag.Bool(
	"cpuprof",
	false,
	"save pprof CPU profile in cpuprof",
)

var flagMemProfile = flag.Bool(
	"memprof",
	false,
	"save pprof memory profile in memprof",
)

var flagSeed = flag.Uint64(
	"seed",
	sat.DefaultOptions.Seed,
	"seed for the solver's internal random generator (VSIDS tie-breaks only)",
)

var flagVerbose = flag.Bool(
	"v",
	false,
	"print periodic search-progress lines to stdout",
)

type config struct {
	instanceFile string
	memProfile   bool
	cpuProfile   bool
	seed         uint64
	verbose      bool
}

func parseConfig() (*config, error) {
	flag.Parse()

	cfg := &config{
		memProfile: *flagMemProfile,
		cpuProfile: *flagCPUProfile,
		seed:       *flagSeed,
		verbose:    *flagVerbose,
	}
	if flag.NArg() > 0 {
		cfg.instanceFile = flag.Arg(0)
	}
	return cfg, nil
}

// openInput returns the stream the batch is read from: a named file if one
// was given on the command line, stdin otherwise.
func openInput(cfg *config) (io.ReadCloser, error) {
	if cfg.instanceFile == "" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(cfg.instanceFile)
}

// solveOne reads one DIMACS instance from sc, solves it with a fresh solver,
// and writes its verdict. It returns whether the instance parsed and solved
// without error, so the caller can track the batch exit code without
// aborting the remaining instances.
func solveOne(sc *dimacs.Scanner, cfg *config, index int) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("c instance %d: internal error: %v\n", index, r)
			ok = false
		}
	}()

	s := sat.NewSolver(sat.Options{
		Seed:         cfg.seed,
		MaxConflicts: -1,
		Timeout:      -1,
		Verbose:      cfg.verbose,
	})

	nVars, nClauses, err := sc.ReadProblem(s)
	if err != nil {
		fmt.Printf("c instance %d: parse error: %s\n", index, err)
		return false
	}

	fmt.Printf("c instance %d\n", index)
	fmt.Printf("c variables:  %d\n", nVars)
	fmt.Printf("c clauses:    %d\n", nClauses)

	start := time.Now()
	status := s.Solve()
	elapsed := time.Since(start)

	fmt.Printf("c time (sec): %f\n", elapsed.Seconds())
	fmt.Printf("c conflicts:  %d (%.2f /sec)\n", s.TotalConflicts, float64(s.TotalConflicts)/elapsed.Seconds())

	switch status {
	case sat.True:
		fmt.Println("SAT")
		for i, val := range s.Model {
			if i > 0 {
				fmt.Print(" ")
			}
			if val {
				fmt.Printf("%d", i+1)
			} else {
				fmt.Printf("-%d", i+1)
			}
		}
		fmt.Println(" 0")
	case sat.False:
		fmt.Println("UNSAT")
	default:
		fmt.Println("s UNKNOWN")
	}

	return true
}

// run executes the batch driver: read an integer n, then read and solve n
// DIMACS instances back to back from the same stream, emitting each
// verdict in order. A format error in one instance is reported and counted
// but does not prevent the remaining instances from being read and solved,
// since a batch run is not one instance.
func run(cfg *config) (ok bool, err error) {
	in, err := openInput(cfg)
	if err != nil {
		return false, fmt.Errorf("could not open input: %w", err)
	}
	defer in.Close()

	return runFromReader(cfg, in)
}

// runFromReader is run's core logic, split out so it can be exercised
// directly against an in-memory reader in tests.
func runFromReader(cfg *config, in io.Reader) (ok bool, err error) {
	r := bufio.NewReader(in)
	nLine, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("could not read instance count: %w", err)
	}
	n, err := strconv.Atoi(trimNewline(nLine))
	if err != nil {
		return false, fmt.Errorf("malformed instance count %q: %w", nLine, err)
	}

	sc := dimacs.NewScanner(r)
	allOK := true
	for i := 0; i < n; i++ {
		if !solveOne(sc, cfg, i) {
			allOK = false
		}
	}
	return allOK, nil
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.cpuProfile {
		f, err := os.Create("cpuprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	ok, err := run(cfg)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.memProfile {
		f, err := os.Create("memprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}

	if !ok {
		os.Exit(1)
	}
}
