// Package engine is the server-side game engine (spec §4.3): it owns the
// shared Game behind a mutex, subscribes to request topics, enforces
// placement and firing rules, and publishes every observable state
// transition. Every registered callback runs on the adapter's dispatch
// task, so the engine's own lock is the only synchronization it needs.
package engine

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"driftpursuit/broker/internal/auth"
	"driftpursuit/broker/internal/lobby"
	"driftpursuit/broker/internal/logging"
	"driftpursuit/broker/internal/model"
	"driftpursuit/broker/internal/pubsub"
)

// Engine drives one game instance across its full lifecycle.
type Engine struct {
	mu   sync.Mutex
	game model.Game

	bus      *pubsub.Client
	topics   topics
	dice     func(n int) int
	log      *logging.Logger
	capacity lobby.Capacity
	tokens   *auth.SecretToken

	issuedTokens map[string]string
	placedTopics map[string][]string // player name -> subscribed placement topics
	fireTopics   []string
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithDice overrides the starting-player dice roll (defaults to a
// first-player-wins stub suitable only for tests; production callers should
// inject a real PRNG).
func WithDice(dice func(n int) int) Option {
	return func(e *Engine) {
		if dice != nil {
			e.dice = dice
		}
	}
}

// WithCapacity installs the optional lobby capacity gate (§ SUPPLEMENTED
// FEATURES). The zero value (unlimited) is the default.
func WithCapacity(capacity lobby.Capacity) Option {
	return func(e *Engine) { e.capacity = capacity }
}

// WithLogger overrides the engine's structured logger.
func WithLogger(log *logging.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// New constructs an Engine for one game instance identified by prefix,
// using bus as its messaging adapter.
func New(bus *pubsub.Client, prefix string, size model.Size, opts ...Option) *Engine {
	e := &Engine{
		game:         model.NewGame(size, prefix),
		bus:          bus,
		topics:       newTopics(prefix),
		dice:         func(n int) int { return 0 },
		log:          logging.NewTestLogger(),
		tokens:       auth.NewSecretToken(prefix),
		issuedTokens: make(map[string]string),
		placedTopics: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Bootstrap subscribes to the join endpoint and announces the server as up,
// per spec §4.3's bootstrap sequence.
func (e *Engine) Bootstrap(_ context.Context) error {
	e.bus.Subscribe(e.topics.gameRequest(), e.handleJoin)
	e.bus.Publish(e.topics.gameServer(), "up", false)
	return nil
}

// Snapshot returns a copy of the current game record for read-only
// inspection (tests, diagnostics).
func (e *Engine) Snapshot() model.Game {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.game
}

type playerJoinPayload struct {
	Name   string `json:"name"`
	Secret string `json:"secret"`
}

func (e *Engine) handleJoin(_ string, payload string) {
	var in playerJoinPayload
	if err := json.Unmarshal([]byte(payload), &in); err != nil {
		e.log.Debug("dropping malformed join payload", logging.Error(err))
		return
	}
	if in.Name == "" {
		e.log.Debug("dropping join payload with empty name")
		return
	}

	e.mu.Lock()
	existing := e.game.PlayerList()
	if err := e.capacity.CheckJoin(existing, in.Name); err != nil {
		e.mu.Unlock()
		e.log.Info("rejecting join, lobby at capacity", logging.String("name", in.Name))
		return
	}

	if token, err := e.tokens.Issue(in.Name, in.Secret); err == nil {
		if prior, ok := e.issuedTokens[in.Name]; ok && prior != token {
			e.log.Warn("advisory secret mismatch on rejoin", logging.String("name", in.Name))
		}
		e.issuedTokens[in.Name] = token
	}

	_, player, found := e.game.FindPlayer(in.Name)
	isNew := !found
	if !found {
		player = model.NewPlayer(in.Name, in.Secret, e.game.Size)
	}
	e.game.UpdatePlayer(player)
	names := e.game.PlayerList()
	count := e.game.PlayerCount()
	e.mu.Unlock()

	if isNew {
		e.installPlacementHandlers(in.Name)
	}

	e.bus.Publish(e.topics.playersCount(), strconv.Itoa(count), true)
	namesJSON, err := json.Marshal(names)
	if err != nil {
		e.log.Error("failed to marshal player list", logging.Error(err))
		return
	}
	e.bus.Publish(e.topics.playersList(), string(namesJSON), true)
}

func (e *Engine) installPlacementHandlers(name string) {
	var subscribed []string
	for _, class := range model.AllClasses() {
		class := class
		topic := e.topics.shipPlace(name, string(class))
		e.bus.Subscribe(topic, func(_ string, payload string) {
			e.handlePlacement(name, class, payload)
		})
		subscribed = append(subscribed, topic)
	}
	e.mu.Lock()
	e.placedTopics[name] = subscribed
	e.mu.Unlock()
}

type pointPayload struct {
	X uint8 `json:"x"`
	Y uint8 `json:"y"`
}

type placementPayload struct {
	Coordinates pointPayload `json:"coordinates"`
	Orientation string       `json:"orientation"`
}

func (e *Engine) handlePlacement(name string, class model.ClassName, payload string) {
	var in placementPayload
	if err := json.Unmarshal([]byte(payload), &in); err != nil {
		e.log.Debug("dropping malformed placement payload", logging.Error(err))
		return
	}

	ship := model.NewShip(
		model.NewPoint(in.Coordinates.X, in.Coordinates.Y),
		model.Orientation(in.Orientation),
		model.NewClass(class),
	)

	e.mu.Lock()
	_, player, found := e.game.FindPlayer(name)
	if !found {
		e.mu.Unlock()
		return
	}
	updated, err := player.PlaceShip(ship)
	if err != nil {
		e.mu.Unlock()
		e.bus.Publish(e.topics.shipError(name, string(class)), err.Error(), false)
		return
	}
	e.game.UpdatePlayer(updated)
	activeShips := updated.ActiveShips()
	allReady := e.game.ReadyPlayers() == e.game.PlayerCount() && e.capacity.HasQuorum(e.game.PlayerCount())
	e.mu.Unlock()

	e.bus.Publish(e.topics.shipsCount(name), strconv.Itoa(activeShips), true)
	e.bus.Publish(e.topics.shipApproved(name, string(class)), "true", true)

	if allReady {
		e.start(context.Background())
	}
}

// start implements the Start transition of spec §4.3: it tears down the
// lobby-phase subscriptions, rolls the starting player, and installs fire
// handlers for the salvo phase.
func (e *Engine) start(_ context.Context) {
	e.bus.Unsubscribe(e.topics.gameRequest())

	e.mu.Lock()
	names := e.game.PlayerList()
	placed := e.placedTopics
	e.placedTopics = make(map[string][]string)
	e.mu.Unlock()

	for _, name := range names {
		for _, class := range model.AllClasses() {
			e.bus.Clear(e.topics.shipApproved(name, string(class)))
		}
		for _, topic := range placed[name] {
			e.bus.Unsubscribe(topic)
		}
	}

	e.mu.Lock()
	e.game.Start(e.dice)
	turn := e.game.State.Turn
	stateName := e.game.State.String()
	e.mu.Unlock()

	e.bus.Publish(e.topics.gameState(), stateName, true)
	e.publishTurnState(turn.FiredShots, turn.PlayerName)

	var fireTopics []string
	for _, name := range names {
		name := name
		topic := e.topics.playerFire(name)
		e.bus.Subscribe(topic, func(_ string, payload string) {
			e.handleFire(name, payload)
		})
		fireTopics = append(fireTopics, topic)
	}
	e.mu.Lock()
	e.fireTopics = fireTopics
	e.mu.Unlock()
}

func (e *Engine) publishTurnState(firedShots uint8, current string) {
	e.bus.Publish(e.topics.gameFiredShots(), strconv.Itoa(int(firedShots)), true)
	e.bus.Publish(e.topics.gameCurrent(), current, true)
}

func (e *Engine) handleFire(target string, payload string) {
	var in pointPayload
	if err := json.Unmarshal([]byte(payload), &in); err != nil {
		e.log.Debug("dropping malformed fire payload", logging.Error(err))
		return
	}
	point := model.NewPoint(in.X, in.Y)

	e.mu.Lock()
	if e.game.State.Kind != model.StateUnderway {
		e.mu.Unlock()
		return
	}
	shooterName := e.game.State.Turn.PlayerName
	_, shooter, ok := e.game.FindPlayer(shooterName)
	if !ok {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	pointJSON, err := json.Marshal(point)
	if err != nil {
		e.log.Error("failed to marshal fired point", logging.Error(err))
		return
	}
	e.bus.Publish(e.topics.playerHit(target), string(pointJSON), false)

	e.mu.Lock()
	_, targetPlayer, ok := e.game.FindPlayer(target)
	if !ok {
		e.mu.Unlock()
		return
	}
	updatedTarget, hitShip, hit := targetPlayer.Shoot(point)
	if hit {
		e.game.UpdatePlayer(updatedTarget)
	}
	activeOpponents := e.game.ActivePlayerCount()
	e.mu.Unlock()

	if hit {
		if hitShip.IsSunk() {
			e.bus.Publish(e.topics.shipSunk(target, string(hitShip.Class.Name)), "true", false)
			e.bus.Publish(e.topics.shipsCount(target), strconv.Itoa(updatedTarget.ActiveShips()), true)
		}
		if updatedTarget.IsDefeated() {
			e.bus.Publish(e.topics.playerDefeated(target), "true", false)
		}
		if activeOpponents <= 1 {
			e.gameOver()
			return
		}
	}

	e.mu.Lock()
	e.game.IncrementFiredShots()
	firedShots := e.game.State.Turn.FiredShots
	e.mu.Unlock()

	e.bus.Publish(e.topics.gameFiredShots(), strconv.Itoa(int(firedShots)), true)

	if int(firedShots) >= shooter.ActiveShips() {
		e.nextTurn()
	}
}

func (e *Engine) nextTurn() {
	e.mu.Lock()
	e.game.NextTurn()
	turn := e.game.State.Turn
	e.mu.Unlock()

	e.publishTurnState(turn.FiredShots, turn.PlayerName)
}

func (e *Engine) gameOver() {
	e.mu.Lock()
	names := e.game.PlayerList()
	e.game.GameOver()
	winner := e.game.State.Winner
	fireTopics := e.fireTopics
	e.fireTopics = nil
	e.mu.Unlock()

	for _, name := range names {
		e.bus.Clear(e.topics.shipsCount(name))
	}
	e.bus.Clear(e.topics.gameState())
	e.bus.Clear(e.topics.playersCount())
	e.bus.Clear(e.topics.playersList())
	e.bus.Clear(e.topics.gameFiredShots())
	e.bus.Clear(e.topics.gameCurrent())

	for _, topic := range fireTopics {
		e.bus.Unsubscribe(topic)
	}

	e.bus.Publish(e.topics.gameState(), "over", false)
	e.bus.Publish(e.topics.gameWinner(), winner, false)
}
