package state

import "go.uber.org/zap"

// OpenSubState stages next to replace the active substate. The swap happens
// on this state's next TryUpdate, or on an explicit ResetSubState. A later
// OpenSubState or CloseSubState before then overrides this one.
func (s *State) OpenSubState(next *State) {
	s.requestedSubState = next
	s.pendingReset = true
}

// CloseSubState stages removal of the active substate.
func (s *State) CloseSubState() {
	s.requestedSubState = nil
	s.pendingReset = true
}

// Close asks this state's parent to close it. It does nothing unless this
// state is the parent's active substate.
func (s *State) Close() {
	p := s.parent
	if p == nil || p.subState != s {
		return
	}
	p.CloseSubState()
}

// ResetSubState applies the staged transition now. TryUpdate calls it when a
// transition is pending; drivers may call it directly to apply a transition
// outside the update phase.
//
// The outgoing substate gets its close callback and is then destroyed, or
// only detached when DestroySubStates is false. The incoming substate is
// created on its first activation and gets its open callback every time.
func (s *State) ResetSubState() {
	prev, next := s.subState, s.requestedSubState
	// Clear the request before any callback runs so that requests issued
	// from inside those callbacks survive until the next tick.
	s.requestedSubState = nil
	s.pendingReset = false

	if prev == next {
		return
	}

	if prev != nil {
		if prev.closeCallback != nil {
			prev.closeCallback()
		}
		if s.DestroySubStates {
			prev.Destroy()
		}
	}

	s.subState = next
	s.env.metrics().Transition(transitionKind(prev, next))

	if next == nil {
		s.log().Debug("substate closed", zap.String("closed", nameOf(prev)))
		return
	}

	if !s.PersistentUpdate && s.env != nil && s.env.Input != nil {
		// A persistent parent keeps reading input, so only reset edges when
		// control moves entirely to the substate.
		s.env.Input.OnStateSwitch()
	}
	if next.env == nil {
		next.env = s.env
	}

	s.log().Debug("substate opened", zap.String("opened", next.name), zap.String("replaced", nameOf(prev)))

	if !next.created {
		next.created = true
		next.parent = s
		next.env.metrics().StateCreated()
		next.hooks.Create()
	}
	if next.openCallback != nil {
		next.openCallback()
	}
}

// Activate makes s a root state: it attaches env and fires Create if it has
// not run yet. Roots have no parent.
func (s *State) Activate(env *Env) {
	if env != nil {
		s.env = env
	}
	if s.created {
		return
	}
	s.created = true
	s.log().Debug("state activated")
	s.env.metrics().StateCreated()
	s.hooks.Create()
}

func transitionKind(prev, next *State) string {
	switch {
	case prev == nil:
		return "open"
	case next == nil:
		return "close"
	default:
		return "replace"
	}
}

func nameOf(s *State) string {
	if s == nil {
		return ""
	}
	return s.name
}
