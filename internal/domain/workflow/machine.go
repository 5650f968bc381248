package workflow

import (
	"context"
	"fmt"
)

// GuardFunc evaluates whether a transition may proceed
type GuardFunc func(ctx context.Context) bool

type edge struct {
	to    State
	guard GuardFunc
}

// Definition is an immutable transition table for one workflow. It is built
// once and shared; machines carry only their current state.
type Definition struct {
	edges map[State]map[Trigger][]edge
}

// NewDefinition creates an empty workflow definition
func NewDefinition() *Definition {
	return &Definition{edges: make(map[State]map[Trigger][]edge)}
}

// StateConfig adds transitions out of one state
type StateConfig struct {
	def  *Definition
	from State
}

// From returns the configuration for transitions leaving state
func (d *Definition) From(state State) *StateConfig {
	if !state.IsValid() {
		panic(fmt.Sprintf("workflow: unknown state %q", state))
	}
	if d.edges[state] == nil {
		d.edges[state] = make(map[Trigger][]edge)
	}
	return &StateConfig{def: d, from: state}
}

// Permit allows trigger to move the machine to target
func (c *StateConfig) Permit(trigger Trigger, target State) *StateConfig {
	return c.PermitIf(trigger, target, nil)
}

// PermitIf allows trigger to move the machine to target when guard passes.
// Multiple edges for the same trigger are tried in registration order.
func (c *StateConfig) PermitIf(trigger Trigger, target State, guard GuardFunc) *StateConfig {
	if !target.IsValid() {
		panic(fmt.Sprintf("workflow: unknown target state %q", target))
	}
	c.def.edges[c.from][trigger] = append(c.def.edges[c.from][trigger], edge{to: target, guard: guard})
	return c
}

// Machine positions one subject within a Definition
type Machine struct {
	def     *Definition
	current State
}

// Machine returns a machine over d positioned at initial
func (d *Definition) Machine(initial State) *Machine {
	if !initial.IsValid() {
		panic(fmt.Sprintf("workflow: unknown initial state %q", initial))
	}
	return &Machine{def: d, current: initial}
}

// State returns the current state
func (m *Machine) State() State {
	return m.current
}

// CanFire reports whether trigger has at least one edge out of the current state
func (m *Machine) CanFire(trigger Trigger) bool {
	return len(m.def.edges[m.current][trigger]) > 0
}

// Fire applies trigger, advancing to the first edge whose guard passes. The
// state is unchanged on error.
func (m *Machine) Fire(ctx context.Context, trigger Trigger) error {
	candidates := m.def.edges[m.current][trigger]
	if len(candidates) == 0 {
		return fmt.Errorf("%w: trigger %s from state %s", ErrInvalidTransition, trigger, m.current)
	}

	for _, e := range candidates {
		if e.guard == nil || e.guard(ctx) {
			m.current = e.to
			return nil
		}
	}
	return fmt.Errorf("%w: trigger %s from state %s", ErrGuardFailed, trigger, m.current)
}

// PermittedTriggers returns the triggers with at least one edge out of the
// current state
func (m *Machine) PermittedTriggers() []Trigger {
	out := make([]Trigger, 0, len(m.def.edges[m.current]))
	for trigger, candidates := range m.def.edges[m.current] {
		if len(candidates) > 0 {
			out = append(out, trigger)
		}
	}
	return out
}
