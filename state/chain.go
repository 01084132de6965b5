package state

import (
	"fmt"
	"strings"
)

// Chain returns s followed by every active substate below it, top-most last.
func (s *State) Chain() []*State {
	var out []*State
	for cur := s; cur != nil; cur = cur.subState {
		out = append(out, cur)
	}
	return out
}

// Top returns the deepest active state in the chain.
func (s *State) Top() *State {
	cur := s
	for cur.subState != nil {
		cur = cur.subState
	}
	return cur
}

// Dump describes the active chain, one state per line, indented by depth.
func (s *State) Dump() string {
	var b strings.Builder
	for depth, cur := range s.Chain() {
		indent := strings.Repeat("  ", depth)
		fmt.Fprintf(&b, "%s%s [%s] update=%t draw=%t destroySubs=%t\n",
			indent, cur.name, shortID(cur.id), cur.PersistentUpdate, cur.PersistentDraw, cur.DestroySubStates)
		if cur.pendingReset {
			target := "close"
			if cur.requestedSubState != nil {
				target = "open " + cur.requestedSubState.name
			}
			fmt.Fprintf(&b, "%s  (pending: %s)\n", indent, target)
		}
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
