package model

import "fmt"

// GameStateKind discriminates the three phases a Game moves through. The
// transition is one-way: Lobby -> Underway -> Over, never backward.
type GameStateKind int

const (
	StateLobby GameStateKind = iota
	StateUnderway
	StateOver
)

// Turn describes whose salvo is active and how much of it remains.
type Turn struct {
	Index       int
	PlayerName  string
	FiredShots  uint8
	Hits        uint8
}

// GameState is the current phase of a Game plus phase-specific data.
type GameState struct {
	Kind   GameStateKind
	Turn   Turn   // valid when Kind == StateUnderway
	Winner string // valid when Kind == StateOver
}

// Lobby constructs the initial state.
func Lobby() GameState {
	return GameState{Kind: StateLobby}
}

// Underway constructs the in-progress state for the given starting turn.
func Underway(index int, playerName string, firedShots, hits uint8) GameState {
	return GameState{Kind: StateUnderway, Turn: Turn{Index: index, PlayerName: playerName, FiredShots: firedShots, Hits: hits}}
}

// Over constructs the terminal state naming the winner.
func Over(winner string) GameState {
	return GameState{Kind: StateOver, Winner: winner}
}

// String renders the wire-level state name used on the retained game/state topic.
func (g GameState) String() string {
	switch g.Kind {
	case StateLobby:
		return "lobby"
	case StateUnderway:
		return "underway"
	case StateOver:
		return "over"
	default:
		return "lobby"
	}
}

// Display renders the human-facing long form shown on interactive terminals.
func (g GameState) Display() string {
	switch g.Kind {
	case StateLobby:
		return "Lobby"
	case StateUnderway:
		remaining := 0
		if g.Turn.FiredShots <= 5 {
			remaining = 5 - int(g.Turn.FiredShots)
		}
		return fmt.Sprintf("%s's turn. %d shots to go.", g.Turn.PlayerName, remaining)
	case StateOver:
		return fmt.Sprintf("Game over. %s won!", g.Winner)
	default:
		return "Lobby"
	}
}
