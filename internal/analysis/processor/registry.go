package processor

import (
	"fmt"
	"sort"
	"strings"
)

// Factory constructs a fresh processor instance.
type Factory func() Processor

// UnknownProcessorError is returned when a configured processor name has no
// registered factory. It carries the known names for a usable message.
type UnknownProcessorError struct {
	Name  string
	Known []string
}

func (e *UnknownProcessorError) Error() string {
	return fmt.Sprintf("unknown processor %q (known: %s)", e.Name, strings.Join(e.Known, ", "))
}

// Registry maps processor names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces a factory under name.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Known returns registered names sorted ascending.
func (r *Registry) Known() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build instantiates processors for the requested names, preserving their
// order. Any unknown name fails the whole build.
func (r *Registry) Build(names []string) ([]Processor, error) {
	procs := make([]Processor, 0, len(names))
	for _, name := range names {
		f, ok := r.factories[name]
		if !ok {
			return nil, &UnknownProcessorError{Name: name, Known: r.Known()}
		}
		procs = append(procs, f())
	}
	return procs, nil
}

// DefaultRegistry returns a registry with all built-in processors.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TrendName, func() Processor { return NewTrend() })
	r.Register(VolatilityName, func() Processor { return NewVolatility() })
	r.Register(VolumeName, func() Processor { return NewVolume() })
	r.Register(CandlestickName, func() Processor { return NewCandlestick() })
	r.Register(PriceActionName, func() Processor { return NewPriceAction() })
	return r
}

// DefaultProcessorNames lists the built-in processors in evaluation order.
func DefaultProcessorNames() []string {
	return []string{TrendName, VolatilityName, VolumeName, CandlestickName, PriceActionName}
}
