package makao

// Player is one participant as seen by this client. Remote players' cards are
// never modelled, only their count.
type Player struct {
	Name  string
	Ready bool
	Score int
	Rank  int // finishing position, 0 until announced
}

// Roster tracks every player in the session in announcement order, plus
// face-down card counts for remote players.
type Roster struct {
	players []*Player
	counts  map[string]int
}

func NewRoster() *Roster {
	return &Roster{counts: map[string]int{}}
}

// Add registers a player by name. Adding a known name is a no-op.
func (r *Roster) Add(name string) *Player {
	if p := r.find(name); p != nil {
		return p
	}
	p := &Player{Name: name}
	r.players = append(r.players, p)
	return p
}

// Remove drops a player and their count.
func (r *Roster) Remove(name string) {
	for i, p := range r.players {
		if p.Name == name {
			r.players = append(r.players[:i], r.players[i+1:]...)
			break
		}
	}
	delete(r.counts, name)
}

// ReplaceAll swaps the whole roster for the given names, dropping any state
// held for players no longer present.
func (r *Roster) ReplaceAll(names []string) {
	r.players = nil
	r.counts = map[string]int{}
	for _, name := range names {
		r.Add(name)
	}
}

// SetReady flags a player's lobby readiness.
func (r *Roster) SetReady(name string, ready bool) {
	if p := r.find(name); p != nil {
		p.Ready = ready
	}
}

// SetRank records a player's finishing position.
func (r *Roster) SetRank(name string, rank int) {
	if p := r.find(name); p != nil {
		p.Rank = rank
	}
}

// ApplyScores overwrites scores for the named players.
func (r *Roster) ApplyScores(scores map[string]int) {
	for name, score := range scores {
		if p := r.find(name); p != nil {
			p.Score = score
		}
	}
}

// SetCount sets a remote player's face-down card count.
func (r *Roster) SetCount(name string, n int) {
	if n < 0 {
		n = 0
	}
	r.counts[name] = n
}

// AddCount adjusts a remote player's count by delta, never below zero.
func (r *Roster) AddCount(name string, delta int) {
	r.SetCount(name, r.counts[name]+delta)
}

// Count returns a remote player's face-down card count.
func (r *Roster) Count(name string) int {
	return r.counts[name]
}

// Players returns the roster in announcement order.
func (r *Roster) Players() []Player {
	snapshot := make([]Player, len(r.players))
	for i, p := range r.players {
		snapshot[i] = *p
	}
	return snapshot
}

func (r *Roster) Len() int {
	return len(r.players)
}

func (r *Roster) find(name string) *Player {
	for _, p := range r.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}
