package client

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"driftpursuit/broker/internal/engine"
	"driftpursuit/broker/internal/lobby"
	"driftpursuit/broker/internal/logging"
	"driftpursuit/broker/internal/model"
	"driftpursuit/broker/internal/pubsub"
)

func newTestBus(t *testing.T, factory func() *pubsub.MemoryTransport) *pubsub.Client {
	t.Helper()
	bus := pubsub.New(factory(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go bus.Run(ctx)
	time.Sleep(10 * time.Millisecond)
	return bus
}

// scriptedInput feeds a fixed answer sequence, one line per prompt; this
// mirrors the five fleet placements at rows y=0..4, all Horizontal, the
// reference client prompts for.
func scriptedInput(lines ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func newTestDriver(bus *pubsub.Client, prefix, name, secret string, answers []string, out *bytes.Buffer) *Driver {
	return New(bus, prefix, name, secret, scriptedInput(answers...), out, logging.NewTestLogger())
}

func TestDriverJoinsPlacesAndStarts(t *testing.T) {
	factory := pubsub.NewMemoryBroker()
	serverBus := newTestBus(t, factory)
	clientBus := newTestBus(t, factory)

	// A minimum of two players keeps alice's complete fleet from starting a
	// one-player game before bob has joined.
	eng := engine.New(serverBus, "c1", model.DefaultSize,
		engine.WithDice(func(int) int { return 0 }),
		engine.WithCapacity(lobby.Capacity{MinPlayers: 2}),
	)
	if err := eng.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	answers := []string{
		"0", "0", "0", // carrier x,y,orientation
		"0", "1", "0", // battleship
		"0", "2", "0", // destroyer
		"0", "3", "0", // submarine
		"0", "4", "0", // patrolboat
	}
	var out bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	alice := newTestDriver(clientBus, "c1", "alice", "s1", answers, &out)
	if err := alice.Join(ctx); err != nil {
		t.Fatalf("alice join: %v", err)
	}
	if err := alice.PlaceFleet(ctx); err != nil {
		t.Fatalf("alice place fleet: %v", err)
	}

	// A second player completes the lobby so the game actually starts.
	bob := newTestDriver(clientBus, "c1", "bob", "s2", answers, &out)
	if err := bob.Join(ctx); err != nil {
		t.Fatalf("bob join: %v", err)
	}
	if err := bob.PlaceFleet(ctx); err != nil {
		t.Fatalf("bob place fleet: %v", err)
	}

	if err := alice.AwaitStart(ctx); err != nil {
		t.Fatalf("await start: %v", err)
	}

	snapshot := eng.Snapshot()
	if snapshot.State.Kind != model.StateUnderway {
		t.Fatalf("expected underway, got %v", snapshot.State.Kind)
	}
}

func TestContainsName(t *testing.T) {
	if !containsName([]string{"a", "b"}, "b") {
		t.Fatalf("expected b to be found")
	}
	if containsName([]string{"a"}, "z") {
		t.Fatalf("expected z to be absent")
	}
}

func TestAlreadyPlacedTextMatchesWireContract(t *testing.T) {
	want := "carrier class ship has already been placed!"
	if got := alreadyPlacedText("carrier"); got != want {
		t.Errorf("alreadyPlacedText = %q, want %q", got, want)
	}
}
