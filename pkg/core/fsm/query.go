package fsm

// AllLinks returns every link incident to the state: incoming, then outgoing,
// then mutual. A self-loop appears twice.
func (s *State) AllLinks() []*Link {
	all := make([]*Link, 0, s.Degree())
	all = append(all, s.Incoming...)
	all = append(all, s.Outgoing...)
	all = append(all, s.Mutual...)
	return all
}

// Neighbors returns the states at the other end of each incident link,
// deduplicated, in the order of [State.AllLinks]. A self-loop makes a state
// its own neighbor.
func (s *State) Neighbors() []*State {
	seen := make(map[*State]bool)
	var out []*State
	for _, l := range s.AllLinks() {
		n := l.Other(s.ID)
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// IsConnectedTo reports whether any incident link reaches the state with the
// given ID.
func (s *State) IsConnectedTo(id string) bool {
	return s.LinkTo(id) != nil
}

// LinkTo returns the first incident link between s and the state with the
// given ID, in either direction, or nil.
func (s *State) LinkTo(id string) *Link {
	for _, l := range s.AllLinks() {
		if (l.Source == s && l.Target.ID == id) || (l.Target == s && l.Source.ID == id) {
			return l
		}
	}
	return nil
}

// Degree returns the total size of the three link collections.
func (s *State) Degree() int {
	return len(s.Incoming) + len(s.Outgoing) + len(s.Mutual)
}

// IsIsolated reports whether the state has no incident links.
func (s *State) IsIsolated() bool { return s.Degree() == 0 }
