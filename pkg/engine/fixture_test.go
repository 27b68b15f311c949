package engine

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// TestEndToEndScenarios snapshots the result of running a handful of
// representative scripts straight through Engine.Eval, covering the
// arithmetic/control-flow/closure/error-handling mix named in the
// end-to-end scenarios list, grounded on the teacher's
// internal/interp/fixture_test.go snapshot-per-script approach.
func TestEndToEndScenarios(t *testing.T) {
	scenarios := []struct {
		name string
		src  string
	}{
		{
			name: "fibonacci",
			src: `
				fn fib(n) {
					if n < 2 { return n; }
					return fib(n - 1) + fib(n - 2);
				}
				fib(10)
			`,
		},
		{
			name: "closure_accumulator",
			src: `
				let total = 0;
				let add = |n| { total = total + n; total };
				call(add, 3);
				call(add, 4);
				call(add, 5)
			`,
		},
		{
			name: "try_catch_rethrow",
			src: `
				let log = "";
				try {
					try {
						throw "inner";
					} catch (e) {
						log = log + "caught:" + e;
						throw "outer";
					}
				} catch (e) {
					log = log + ",caught:" + e;
				}
				log
			`,
		},
		{
			name: "array_loop_sum",
			src: `
				let xs = [1, 2, 3];
				let total = 0;
				for x in xs {
					total = total + x;
				}
				total
			`,
		},
	}

	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			e := New()
			result, err := e.Eval(sc.src)
			if err != nil {
				t.Fatalf("Eval(%s): %v", sc.name, err)
			}
			snaps.MatchSnapshot(t, result.String())
		})
	}
}
