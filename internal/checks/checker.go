// Package checks provides the Check interface, the registry through which
// checks are discovered, and the concrete data quality checks themselves.
package checks

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/ymajdalawi/dqwatch/internal/dbconn"
	"github.com/ymajdalawi/dqwatch/internal/issue"
)

// Deps carries the shared read-only context every check receives at
// construction time.
type Deps struct {
	// DB provisions connections to the configured database targets.
	DB *dbconn.Provider
	// Settings is the check's block from the config file, possibly nil.
	Settings map[string]any
}

// Check is a single self-contained validation routine. Run returns the
// findings as a collection; an empty collection with a nil error means all
// clear. Run must not return an error for the "no issues" outcome.
type Check interface {
	// Name is the stable identity of the check, used as the CheckName on
	// every issue it produces and for include/exclude filtering.
	Name() string
	// Description is a one-line summary shown by the list command.
	Description() string
	Run(ctx context.Context) (*issue.Collection, error)
}

// Factory constructs a check from its dependencies. A factory error means the
// check cannot run at all (for example malformed settings); discovery records
// the failure without blocking the other checks.
type Factory func(deps Deps) (Check, error)

var registry = map[string]Factory{}

// Register makes a factory discoverable under name. Each check file calls it
// from init(), so adding a file to this package is all it takes to activate a
// new check. A duplicate name is a programmer error.
func Register(name string, factory Factory) {
	if name == "" {
		panic("checks: Register with empty name")
	}
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("checks: duplicate check name %q", name))
	}
	registry[name] = factory
}

// Registered returns the registered check names in lexicographic order, so
// discovery and report sections are stable across runs.
func Registered() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, bool) {
	f, ok := registry[name]
	return f, ok
}

// acronyms are name segments rendered in full upper case by DisplayName.
var acronyms = map[string]string{
	"erp": "ERP",
	"sku": "SKU",
	"url": "URL",
}

// DisplayName renders a kebab-case check name for humans:
// "city-validation" becomes "City Validation", "erp-customer-sync"
// becomes "ERP Customer Sync".
func DisplayName(name string) string {
	parts := strings.Split(name, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if a, ok := acronyms[strings.ToLower(p)]; ok {
			parts[i] = a
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// decodeSettings decodes a check's free-form settings block into out.
func decodeSettings(settings map[string]any, out any) error {
	if settings == nil {
		return nil
	}
	return mapstructure.Decode(settings, out)
}
