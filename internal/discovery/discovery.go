// Package discovery turns the check registry into ready-to-run check
// instances.
package discovery

import (
	"fmt"

	"github.com/ymajdalawi/dqwatch/internal/checks"
)

// Failure records a check that could not be instantiated. Failures are
// surfaced alongside, but distinct from, data quality issues.
type Failure struct {
	Name string
	Err  error
}

func (f Failure) String() string {
	return fmt.Sprintf("%s: %v", f.Name, f.Err)
}

// DepsFunc supplies the construction dependencies for a named check, letting
// the caller hand each check its own settings block.
type DepsFunc func(name string) checks.Deps

// Discover instantiates every registered check factory in lexicographic name
// order, so report sections are stable across runs. A factory that fails does
// not block the others; it is recorded as a Failure instead.
func Discover(deps DepsFunc) ([]checks.Check, []Failure) {
	var (
		instances []checks.Check
		failures  []Failure
	)
	for _, name := range checks.Registered() {
		factory, ok := checks.Lookup(name)
		if !ok {
			continue
		}
		chk, err := factory(deps(name))
		if err != nil {
			failures = append(failures, Failure{Name: name, Err: err})
			continue
		}
		instances = append(instances, chk)
	}
	return instances, failures
}
