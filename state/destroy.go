package state

// Destroy tears down the active substate chain, then this state's hooks and
// world. The active substate is destroyed even when DestroySubStates is
// false. A staged but unapplied request is dropped without being destroyed,
// since it was never activated. Calling Destroy again does nothing.
func (s *State) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true

	if sub := s.subState; sub != nil {
		s.subState = nil
		sub.Destroy()
	}
	s.requestedSubState = nil
	s.pendingReset = false

	s.hooks.Destroy()
	s.world.Destroy()

	s.env.metrics().StateDestroyed()
	s.log().Debug("state destroyed")
}
