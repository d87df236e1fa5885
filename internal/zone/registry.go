package zone

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Zone is a JAKIM prayer-time zone.
type Zone struct {
	Code  string `json:"code"`  // e.g. SGR01
	State string `json:"state"` // e.g. Selangor
	Label string `json:"label"` // Districts covered by the zone
}

var codeRegex = regexp.MustCompile(`^[A-Z]{3}[0-9]{2}$`)

var (
	registry   = make(map[string]Zone)
	registryMu sync.RWMutex
)

// Normalize uppercases and trims a zone code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode reports whether code has the three-letters-two-digits shape.
// It does not check the registry.
func ValidCode(code string) bool {
	return codeRegex.MatchString(Normalize(code))
}

// Register adds a zone to the registry.
// Panics if the code is malformed or already registered.
func Register(z Zone) {
	registryMu.Lock()
	defer registryMu.Unlock()

	z.Code = Normalize(z.Code)
	if !codeRegex.MatchString(z.Code) {
		panic(fmt.Sprintf("invalid zone code: %q", z.Code))
	}
	if _, exists := registry[z.Code]; exists {
		panic(fmt.Sprintf("zone already registered: %s", z.Code))
	}

	registry[z.Code] = z
}

// Get returns a zone by code. Lookup is case-insensitive.
func Get(code string) (Zone, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	z, ok := registry[Normalize(code)]
	return z, ok
}

// All returns all registered zones sorted by state then code.
func All() []Zone {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Zone, 0, len(registry))
	for _, z := range registry {
		result = append(result, z)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].State != result[j].State {
			return result[i].State < result[j].State
		}
		return result[i].Code < result[j].Code
	})

	return result
}

// ByState returns the zones of one state, sorted by code.
func ByState(state string) []Zone {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var result []Zone
	for _, z := range registry {
		if strings.EqualFold(z.State, state) {
			result = append(result, z)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Code < result[j].Code
	})

	return result
}

// States returns all unique state names, sorted.
func States() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	seen := make(map[string]bool)
	for _, z := range registry {
		seen[z.State] = true
	}

	states := make([]string, 0, len(seen))
	for s := range seen {
		states = append(states, s)
	}

	sort.Strings(states)
	return states
}

// Count returns the number of registered zones.
func Count() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered zones.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Zone)
}
