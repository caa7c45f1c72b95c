package game

// Clone returns a deep copy of the state. Log payloads are immutable and shared.
func (s *State) Clone() *State {
	out := *s
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		p.Hand = cloneSlice(p.Hand)
		p.CraftedItems = cloneSlice(p.CraftedItems)
		p.FactionState = p.FactionState.Clone()
		out.Players[i] = p
	}
	out.Clearings = make([]Clearing, len(s.Clearings))
	for i, c := range s.Clearings {
		c.Adjacent = cloneSlice(c.Adjacent)
		out.Clearings[i] = c
	}
	out.Pieces = cloneSlice(s.Pieces)
	out.DrawPile = cloneSlice(s.DrawPile)
	out.DiscardPile = cloneSlice(s.DiscardPile)
	out.AvailableItems = cloneMap(s.AvailableItems)
	out.Log = cloneSlice(s.Log)
	return &out
}

// ViewFor returns the state as seen by playerID. Every other player's hand
// is replaced by hidden placeholders of the same size; everything else is
// shared as is. An id that is not seated (a spectator) sees no hand at all.
func (s *State) ViewFor(playerID string) *State {
	v := s.Clone()
	for i := range v.Players {
		if v.Players[i].ID == playerID {
			continue
		}
		v.Players[i].Hand = hide(v.Players[i].Hand)
	}
	return v
}

// Views returns one masked view per seated player, keyed by player id.
func (s *State) Views() map[string]*State {
	views := make(map[string]*State, len(s.Players))
	for _, p := range s.Players {
		views[p.ID] = s.ViewFor(p.ID)
	}
	return views
}

func hide(cards []Card) []Card {
	out := make([]Card, len(cards))
	for i := range out {
		out[i] = HiddenCard
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	if in == nil {
		return nil
	}
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
