package classifier

import (
	"fmt"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/maxpert/querygate/grammar"
)

// BackendFactory builds a grammar driver. Each session owns its driver.
type BackendFactory func() (grammar.Driver, error)

var backends = xsync.NewMapOf[string, BackendFactory]()

// RegisterBackend makes a grammar driver available by name. Drivers call it
// from init.
func RegisterBackend(name string, factory BackendFactory) {
	backends.Store(name, factory)
}

func NewBackend(name string) (grammar.Driver, error) {
	factory, ok := backends.Load(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
	return factory()
}

// Backends returns the registered backend names in order.
func Backends() []string {
	var names []string
	backends.Range(func(name string, _ BackendFactory) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}
