package model

// Game is the full server-side game record: phase, ordered roster, board
// size and the topic-prefix identifying this instance on the bus.
type Game struct {
	State   GameState
	Players []Player
	Size    Size
	Prefix  string
}

// NewGame constructs a Game in Lobby with an empty roster.
func NewGame(size Size, prefix string) Game {
	return Game{State: Lobby(), Players: nil, Size: size, Prefix: prefix}
}

// PlayerCount returns the number of roster entries (including defeated ones).
func (g Game) PlayerCount() int {
	return len(g.Players)
}

// PlayerList returns the roster names in join order.
func (g Game) PlayerList() []string {
	names := make([]string, len(g.Players))
	for i, p := range g.Players {
		names[i] = p.Name
	}
	return names
}

// GetPlayer returns the player at a roster index.
func (g Game) GetPlayer(index int) (Player, bool) {
	if index < 0 || index >= len(g.Players) {
		return Player{}, false
	}
	return g.Players[index], true
}

// FindPlayer returns the roster index and player matching name.
func (g Game) FindPlayer(name string) (int, Player, bool) {
	for i, p := range g.Players {
		if p.Name == name {
			return i, p, true
		}
	}
	return 0, Player{}, false
}

// UpdatePlayer appends a new player or replaces the existing roster entry
// with the same name, preserving the other invariant: names stay unique.
func (g *Game) UpdatePlayer(player Player) {
	if index, _, ok := g.FindPlayer(player.Name); ok {
		g.Players[index] = player
		return
	}
	g.Players = append(g.Players, player)
}

// ReadyPlayers counts roster entries with a complete fleet.
func (g Game) ReadyPlayers() int {
	count := 0
	for _, p := range g.Players {
		if p.IsFleetComplete() {
			count++
		}
	}
	return count
}

// ActivePlayerCount counts roster entries that are not yet defeated.
func (g Game) ActivePlayerCount() int {
	count := 0
	for _, p := range g.Players {
		if !p.IsDefeated() {
			count++
		}
	}
	return count
}

// Start picks a starting player via the injected dice function and
// transitions Lobby -> Underway.
func (g *Game) Start(dice func(n int) int) {
	index := dice(len(g.Players))
	g.State = Underway(index, g.Players[index].Name, 0, 0)
}

// NextTurn advances the current player by linear probing from index+1,
// skipping defeated players, and resets the shot/hit counters.
func (g *Game) NextTurn() {
	if g.State.Kind != StateUnderway {
		return
	}
	n := g.PlayerCount()
	index := g.State.Turn.Index
	next := (index + 1) % n
	for next != index {
		if player, ok := g.GetPlayer(next); ok && !player.IsDefeated() {
			break
		}
		next = (next + 1) % n
	}
	if player, ok := g.GetPlayer(next); ok {
		g.State = Underway(next, player.Name, 0, 0)
	}
}

// IncrementFiredShots advances the current turn's shot counter by one. A
// no-op outside Underway.
func (g *Game) IncrementFiredShots() {
	if g.State.Kind != StateUnderway {
		return
	}
	g.State.Turn.FiredShots++
}

// GameOver transitions Underway -> Over, naming the sole surviving player.
func (g *Game) GameOver() {
	for _, p := range g.Players {
		if !p.IsDefeated() {
			g.State = Over(p.Name)
			return
		}
	}
}
