package hooks

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// Dispatch errors.
var (
	ErrNilObserver   = errors.New("hooks: observer must not be nil")
	ErrObserverPanic = errors.New("hooks: observer panicked")
)

// Owner is the context that triggered a dispatch. Observers use it to reach
// the driver of the scenario.
type Owner interface {
	Driver() types.Driver
}

// Scope is what an observer receives. The entity may be modified in place;
// the reference itself cannot be replaced.
type Scope struct {
	tag    Tag
	entity *types.Entity
	owner  Owner
}

// NewScope builds a scope for a dispatch.
func NewScope(tag Tag, entity *types.Entity, owner Owner) Scope {
	return Scope{tag: tag, entity: entity, owner: owner}
}

func (s Scope) Tag() Tag              { return s.tag }
func (s Scope) Entity() *types.Entity { return s.entity }
func (s Scope) Owner() Owner          { return s.owner }

// Observer reacts to a creation event.
type Observer interface {
	Name() string
	Observe(scope Scope) error
}

type funcObserver struct {
	name string
	fn   func(Scope) error
}

func (o funcObserver) Name() string              { return o.name }
func (o funcObserver) Observe(scope Scope) error { return o.fn(scope) }

// Func wraps a function as a named Observer.
func Func(name string, fn func(Scope) error) Observer {
	return funcObserver{name: name, fn: fn}
}

// Outcome is the result of one observer in a dispatch.
type Outcome struct {
	Observer string
	Err      error
}

// Results holds the outcomes of a dispatch in observer order.
type Results []Outcome

// FirstErr returns the first captured failure, or nil.
func (r Results) FirstErr() error {
	for _, o := range r {
		if o.Err != nil {
			return o.Err
		}
	}
	return nil
}

// Failed returns the outcomes that captured a failure.
func (r Results) Failed() Results {
	var out Results
	for _, o := range r {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// Dispatcher holds the observers registered per tag.
type Dispatcher struct {
	observers map[Tag][]Observer
}

// NewDispatcher creates a dispatcher with no observers.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{observers: make(map[Tag][]Observer)}
}

// NewDefaultDispatcher creates a dispatcher with the built-in observers.
func NewDefaultDispatcher() *Dispatcher {
	d := NewDispatcher()
	_ = d.Register(BeforeNodeCreate, NodeTimestamps())
	return d
}

// Register appends an observer for the tag.
func (d *Dispatcher) Register(tag Tag, obs Observer) error {
	if !IsKnownTag(tag) {
		return fmt.Errorf("%w: %s", ErrUnknownTag, tag)
	}
	if obs == nil {
		return ErrNilObserver
	}
	if d.observers == nil {
		d.observers = make(map[Tag][]Observer)
	}
	d.observers[tag] = append(d.observers[tag], obs)
	return nil
}

// Observers returns the observers registered for the tag, in order.
func (d *Dispatcher) Observers(tag Tag) []Observer {
	out := make([]Observer, len(d.observers[tag]))
	copy(out, d.observers[tag])
	return out
}

// Dispatch runs every observer registered for the tag with the same scope.
// Failures, including panics, are recorded without stopping the remaining
// observers. The returned error is the first recorded failure.
func (d *Dispatcher) Dispatch(tag Tag, entity *types.Entity, owner Owner) (Results, error) {
	if !IsKnownTag(tag) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTag, tag)
	}
	if entity == nil {
		return nil, types.ErrNilEntity
	}

	scope := NewScope(tag, entity, owner)
	observers := d.observers[tag]
	results := make(Results, 0, len(observers))
	for _, obs := range observers {
		results = append(results, Outcome{
			Observer: obs.Name(),
			Err:      observe(obs, scope),
		})
	}
	return results, results.FirstErr()
}

func observe(obs Observer, scope Scope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrObserverPanic, obs.Name(), r)
		}
	}()
	return obs.Observe(scope)
}
