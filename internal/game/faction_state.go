package game

import "fmt"

// FactionState is a tagged union: Kind selects which variant is populated.
type FactionState struct {
	Kind     Faction        `json:"kind,omitempty"`
	Ironwood *IronwoodState `json:"ironwood,omitempty"`
	Eyrie    *EyrieState    `json:"eyrie,omitempty"`
	Alliance *AllianceState `json:"alliance,omitempty"`
	Wanderer *WandererState `json:"wanderer,omitempty"`
}

// IronwoodState tracks wood and the supply of pieces off the board.
type IronwoodState struct {
	Wood     int               `json:"wood"`
	Warriors int               `json:"warriors"`
	Supply   map[PieceType]int `json:"buildings"`
}

// DecreeColumns is the fixed resolution order of the Eyrie decree.
var DecreeColumns = [4]ActionKind{ActionRecruit, ActionMove, ActionBattle, ActionBuild}

// DecreeEntry is one card (or vizier) committed to a decree column.
type DecreeEntry struct {
	Suit     Suit `json:"suit"`
	Vizier   bool `json:"vizier,omitempty"`
	Resolved bool `json:"resolved,omitempty"`
}

// EyrieState tracks the dynasty's leader, decree and supply.
type EyrieState struct {
	Leader        string                       `json:"currentLeader,omitempty"`
	UsedLeaders   []string                     `json:"usedLeaders,omitempty"`
	Decree        map[ActionKind][]DecreeEntry `json:"decree"`
	AddedThisTurn int                          `json:"addedThisTurn"`
	Roosts        int                          `json:"roosts"`
	Warriors      int                          `json:"warriors"`
	Turmoil       bool                         `json:"inTurmoil"`
}

// AllianceState tracks officers and supply. Bases are read off the board.
type AllianceState struct {
	Officers int `json:"officers"`
	Sympathy int `json:"sympathy"`
	Warriors int `json:"warriors"`
}

// WandererState tracks the lone pawn. Clearing 0 means the forest.
type WandererState struct {
	Character string   `json:"character"`
	Clearing  int      `json:"clearing"`
	Ready     []string `json:"ready"`
	Damaged   []string `json:"damaged"`
	Explored  []int    `json:"explored,omitempty"`
}

// Validate checks that the populated variant matches Kind.
func (fs FactionState) Validate() error {
	var ok bool
	switch fs.Kind {
	case "":
		return nil
	case Ironwood:
		ok = fs.Ironwood != nil
	case Eyrie:
		ok = fs.Eyrie != nil
	case Alliance:
		ok = fs.Alliance != nil
	case Wanderer:
		ok = fs.Wanderer != nil
	default:
		return fmt.Errorf("unknown faction state kind %q", fs.Kind)
	}
	if !ok {
		return fmt.Errorf("faction state %q has no %s variant", fs.Kind, fs.Kind)
	}
	return nil
}

// Return puts n removed pieces of type t back into the faction supply.
func (fs *FactionState) Return(t PieceType, n int) {
	switch fs.Kind {
	case Ironwood:
		if t == Warrior {
			fs.Ironwood.Warriors += n
		} else if _, ok := fs.Ironwood.Supply[t]; ok {
			fs.Ironwood.Supply[t] += n
		}
	case Eyrie:
		switch t {
		case Warrior:
			fs.Eyrie.Warriors += n
		case Roost:
			fs.Eyrie.Roosts += n
		}
	case Alliance:
		switch t {
		case Warrior:
			fs.Alliance.Warriors += n
		case Sympathy:
			fs.Alliance.Sympathy += n
		}
	case Wanderer:
		// the wanderer has no pieces on the board
	}
}

// Clone returns a deep copy.
func (fs FactionState) Clone() FactionState {
	out := FactionState{Kind: fs.Kind}
	if fs.Ironwood != nil {
		s := *fs.Ironwood
		s.Supply = cloneMap(fs.Ironwood.Supply)
		out.Ironwood = &s
	}
	if fs.Eyrie != nil {
		s := *fs.Eyrie
		s.UsedLeaders = cloneSlice(fs.Eyrie.UsedLeaders)
		s.Decree = make(map[ActionKind][]DecreeEntry, len(fs.Eyrie.Decree))
		for k, v := range fs.Eyrie.Decree {
			s.Decree[k] = cloneSlice(v)
		}
		out.Eyrie = &s
	}
	if fs.Alliance != nil {
		s := *fs.Alliance
		out.Alliance = &s
	}
	if fs.Wanderer != nil {
		s := *fs.Wanderer
		s.Ready = cloneSlice(fs.Wanderer.Ready)
		s.Damaged = cloneSlice(fs.Wanderer.Damaged)
		s.Explored = cloneSlice(fs.Wanderer.Explored)
		out.Wanderer = &s
	}
	return out
}

// InForest reports whether the wanderer is resting in forest terrain.
func (w *WandererState) InForest(board []Clearing) bool {
	if w.Clearing == 0 {
		return true
	}
	for _, c := range board {
		if c.ID == w.Clearing {
			return c.Forest
		}
	}
	return false
}

// Exhaust moves one ready copy of item to the damaged track.
func (w *WandererState) Exhaust(item string) bool {
	for i, it := range w.Ready {
		if it == item {
			w.Ready = append(w.Ready[:i:i], w.Ready[i+1:]...)
			w.Damaged = append(w.Damaged, item)
			return true
		}
	}
	return false
}

// Refresh moves up to n damaged items back to ready and returns how many moved.
func (w *WandererState) Refresh(n int) int {
	if n > len(w.Damaged) {
		n = len(w.Damaged)
	}
	w.Ready = append(w.Ready, w.Damaged[:n]...)
	w.Damaged = append([]string(nil), w.Damaged[n:]...)
	return n
}
