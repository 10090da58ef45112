package engine

import "fmt"

// topics builds every path in the topic catalog (spec §6) under one prefix.
type topics struct {
	prefix string
}

func newTopics(prefix string) topics { return topics{prefix: prefix} }

func (t topics) gameServer() string       { return fmt.Sprintf("/%s/game/server", t.prefix) }
func (t topics) gameRequest() string      { return fmt.Sprintf("/%s/game/request", t.prefix) }
func (t topics) playersCount() string     { return fmt.Sprintf("/%s/players/count", t.prefix) }
func (t topics) playersList() string      { return fmt.Sprintf("/%s/players/list", t.prefix) }
func (t topics) gameState() string        { return fmt.Sprintf("/%s/game/state", t.prefix) }
func (t topics) gameCurrent() string      { return fmt.Sprintf("/%s/game/current", t.prefix) }
func (t topics) gameFiredShots() string   { return fmt.Sprintf("/%s/game/fired_shots", t.prefix) }
func (t topics) gameWinner() string       { return fmt.Sprintf("/%s/game/winner", t.prefix) }

func (t topics) shipPlace(player, class string) string {
	return fmt.Sprintf("/%s/players/%s/ships/%s/place", t.prefix, player, class)
}
func (t topics) shipApproved(player, class string) string {
	return fmt.Sprintf("/%s/players/%s/ships/%s/approved", t.prefix, player, class)
}
func (t topics) shipError(player, class string) string {
	return fmt.Sprintf("/%s/players/%s/ships/%s/error", t.prefix, player, class)
}
func (t topics) shipsCount(player string) string {
	return fmt.Sprintf("/%s/players/%s/ships/count", t.prefix, player)
}
func (t topics) shipSunk(player, class string) string {
	return fmt.Sprintf("/%s/players/%s/ships/%s/sunk", t.prefix, player, class)
}
func (t topics) playerDefeated(player string) string {
	return fmt.Sprintf("/%s/players/%s/defeated", t.prefix, player)
}
func (t topics) playerFire(player string) string {
	return fmt.Sprintf("/%s/players/%s/fire", t.prefix, player)
}
func (t topics) playerHit(player string) string {
	return fmt.Sprintf("/%s/players/%s/hit", t.prefix, player)
}
