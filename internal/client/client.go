// Package client implements the interactive client driver of spec §4.4: a
// single actor that joins a game, places its fleet, waits for the game to
// start, then fires on its own turns. It is intentionally thin — every
// waiting condition is expressed as an adapter await_topic/await_response,
// exactly as the reference terminal client does.
package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"driftpursuit/broker/internal/logging"
	"driftpursuit/broker/internal/model"
	"driftpursuit/broker/internal/pubsub"
)

// Driver is the interactive client actor for one player in one game.
type Driver struct {
	bus    *pubsub.Client
	topics topics
	name   string
	secret string
	log    *logging.Logger
	board  model.Player

	in  *bufio.Reader
	out io.Writer
}

// New constructs a Driver for player name/secret on game prefix, talking
// over bus and driven by the given terminal streams.
func New(bus *pubsub.Client, prefix, name, secret string, in io.Reader, out io.Writer, log *logging.Logger) *Driver {
	if log == nil {
		log = logging.NewTestLogger()
	}
	return &Driver{
		bus:    bus,
		topics: newTopics(prefix),
		name:   name,
		secret: secret,
		board:  model.NewPlayer(name, secret, model.DefaultSize),
		log:    log,
		in:     bufio.NewReader(in),
		out:    out,
	}
}

// Join retries the game/request join handshake until the returned player
// list contains this driver's own name, per spec §4.4's "no correlation id"
// await_response composition.
func (d *Driver) Join(ctx context.Context) error {
	payload, err := json.Marshal(playerJoinPayload{Name: d.name, Secret: d.secret})
	if err != nil {
		return fmt.Errorf("client: marshal join payload: %w", err)
	}

	for {
		msg, err := d.bus.AwaitResponse(ctx, d.topics.gameRequest(), string(payload), d.topics.playersList())
		if err != nil {
			return fmt.Errorf("client: join: %w", err)
		}
		var names []string
		if err := json.Unmarshal([]byte(msg.Payload), &names); err == nil && containsName(names, d.name) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// PlaceFleet walks the player through placing all five ship classes,
// retrying on any placement error and treating ShipAlreadyPlaced as success
// (idempotent retry, per spec §4.4).
func (d *Driver) PlaceFleet(ctx context.Context) error {
	for _, class := range model.AllClasses() {
		if err := d.placeOne(ctx, class); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) placeOne(ctx context.Context, class model.ClassName) error {
	className := string(class)
	for {
		fmt.Fprintf(d.out, "Enter coordinates [0-9] for %s:\n", className)
		x := d.promptCoordinate("x")
		y := d.promptCoordinate("y")
		orientation := d.promptOrientation()

		payload, err := json.Marshal(placementPayload{
			Coordinates: pointPayload{X: x, Y: y},
			Orientation: orientation,
		})
		if err != nil {
			return fmt.Errorf("client: marshal placement: %w", err)
		}

		fmt.Fprintf(d.out, "Requesting placement at [%d, %d], oriented %s.\n", x, y, orientation)
		d.bus.Publish(d.topics.shipPlace(d.name, className), string(payload), false)

		msg, err := d.bus.AwaitTopic(ctx, d.topics.shipResult(d.name, className))
		if err != nil {
			return fmt.Errorf("client: await placement result for %s: %w", className, err)
		}

		if strings.HasSuffix(msg.Topic, "/approved") && msg.Payload == "true" {
			ship := model.NewShip(model.NewPoint(x, y), model.Orientation(orientation), model.NewClass(class))
			if updated, err := d.board.PlaceShip(ship); err == nil {
				d.board = updated
			}
			fmt.Fprintf(d.out, "Placed %s successfully\n", className)
			return nil
		}
		if strings.HasSuffix(msg.Topic, "/error") {
			if msg.Payload == alreadyPlacedText(className) {
				fmt.Fprintf(d.out, "%s already placed, continuing\n", className)
				return nil
			}
			fmt.Fprintf(d.out, "Error received: %s\n", msg.Payload)
			continue
		}
		fmt.Fprintf(d.out, "Received on another topic %s: %s\n", msg.Topic, msg.Payload)
	}
}

// AwaitStart blocks until the game transitions to underway.
func (d *Driver) AwaitStart(ctx context.Context) error {
	for {
		msg, err := d.bus.AwaitTopic(ctx, d.topics.gameState())
		if err != nil {
			return fmt.Errorf("client: await game start: %w", err)
		}
		if msg.Payload == "underway" {
			return nil
		}
	}
}

// WatchOwnHits subscribes to incoming shots against this player's own fleet
// so the locally rendered board reflects opponents' hits between turns.
func (d *Driver) WatchOwnHits() {
	d.bus.Subscribe(d.topics.playerHit(d.name), func(_ string, payload string) {
		var point pointPayload
		if err := json.Unmarshal([]byte(payload), &point); err != nil {
			return
		}
		if updated, _, hit := d.board.Shoot(model.NewPoint(point.X, point.Y)); hit {
			d.board = updated
		}
	})
}

// PlayTurns runs the fire loop, rendering the player's own board (as seen by
// incoming shots) between turns. It returns only when an await fails (for
// example when ctx is canceled); it does not watch game/state and does not
// return when the game is over.
func (d *Driver) PlayTurns(ctx context.Context) error {
	for {
		current, err := d.bus.AwaitTopic(ctx, d.topics.gameCurrent())
		if err != nil {
			return fmt.Errorf("client: await current player: %w", err)
		}
		if current.Payload != d.name {
			continue
		}

		fmt.Fprint(d.out, d.board.Render())
		fmt.Fprintln(d.out, "Enter target player: ")
		target := d.promptLine()
		fmt.Fprintln(d.out, "Enter coordinates to fire at:")
		x := d.promptCoordinate("x")
		y := d.promptCoordinate("y")

		payload, err := json.Marshal(pointPayload{X: x, Y: y})
		if err != nil {
			return fmt.Errorf("client: marshal fire payload: %w", err)
		}
		d.bus.Publish(d.topics.playerFire(target), string(payload), false)

		if _, err := d.bus.AwaitTopic(ctx, d.topics.gameFiredShots()); err != nil {
			return fmt.Errorf("client: await fired shots: %w", err)
		}
	}
}

func (d *Driver) promptLine() string {
	line, _ := d.in.ReadString('\n')
	return strings.TrimSpace(line)
}

func (d *Driver) promptCoordinate(axis string) uint8 {
	for {
		fmt.Fprintf(d.out, "%s = \n", axis)
		line := d.promptLine()
		value, err := strconv.Atoi(line)
		if err != nil || value < 0 || value > 9 {
			fmt.Fprintf(d.out, "%s is out of bounds!\n", line)
			continue
		}
		return uint8(value)
	}
}

func (d *Driver) promptOrientation() string {
	for {
		fmt.Fprintln(d.out, "Enter orientation [0 = Horizontal, 1 = Vertical]: ")
		line := d.promptLine()
		switch line {
		case "0":
			return string(model.Horizontal)
		case "1":
			return string(model.Vertical)
		default:
			fmt.Fprintf(d.out, "%s not a valid orientation specifier\n", line)
		}
	}
}

// alreadyPlacedText reproduces GameError's ShipAlreadyPlaced wire text
// without importing the engine-side error type, matching spec.md §3's
// literal wire contract ("the string is part of the wire contract because
// the client parses it").
func alreadyPlacedText(className string) string {
	return fmt.Sprintf("%s class ship has already been placed!", className)
}

type playerJoinPayload struct {
	Name   string `json:"name"`
	Secret string `json:"secret"`
}

type pointPayload struct {
	X uint8 `json:"x"`
	Y uint8 `json:"y"`
}

type placementPayload struct {
	Coordinates pointPayload `json:"coordinates"`
	Orientation string       `json:"orientation"`
}
