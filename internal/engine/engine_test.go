package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"driftpursuit/broker/internal/model"
	"driftpursuit/broker/internal/pubsub"
)

type harness struct {
	t      *testing.T
	bus    *pubsub.Client
	cancel context.CancelFunc
}

func newHarness(t *testing.T, factory func() *pubsub.MemoryTransport) *harness {
	t.Helper()
	client := pubsub.New(factory(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := client.Run(ctx); err != nil {
			t.Errorf("client run: %v", err)
		}
	}()
	time.Sleep(10 * time.Millisecond)
	return &harness{t: t, bus: client, cancel: cancel}
}

func (h *harness) close() { h.cancel() }

func sequentialDice() func(int) int {
	return func(n int) int { return 0 }
}

func joinPayload(name, secret string) string {
	data, _ := json.Marshal(map[string]string{"name": name, "secret": secret})
	return string(data)
}

func placePayload(x, y uint8, orientation string) string {
	data, _ := json.Marshal(map[string]any{
		"coordinates": map[string]uint8{"x": x, "y": y},
		"orientation": orientation,
	})
	return string(data)
}

func placeFullFleet(t *testing.T, client *pubsub.Client, prefix, name string) {
	t.Helper()
	fleet := []struct {
		class string
		y     uint8
	}{
		{"carrier", 0}, {"battleship", 1}, {"destroyer", 2}, {"submarine", 3}, {"patrolboat", 4},
	}
	for _, ship := range fleet {
		topic := fmt.Sprintf("/%s/players/%s/ships/%s/place", prefix, name, ship.class)
		client.Publish(topic, placePayload(0, ship.y, "Horizontal"), false)
	}
}

func awaitString(t *testing.T, client *pubsub.Client, topic string) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msg, err := client.AwaitTopic(ctx, topic)
	if err != nil {
		t.Fatalf("await %s: %v", topic, err)
	}
	return msg.Payload
}

func TestEngineHappyPathTwoPlayers(t *testing.T) {
	factory := pubsub.NewMemoryBroker()
	serverHarness := newHarness(t, factory)
	defer serverHarness.close()
	clientHarness := newHarness(t, factory)
	defer clientHarness.close()

	eng := New(serverHarness.bus, "t1", model.DefaultSize, WithDice(sequentialDice()))
	if err := eng.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	clientHarness.bus.Publish("/t1/game/request", joinPayload("alice", "s1"), false)
	clientHarness.bus.Publish("/t1/game/request", joinPayload("bob", "s2"), false)
	time.Sleep(20 * time.Millisecond)

	placeFullFleet(t, clientHarness.bus, "t1", "alice")
	time.Sleep(20 * time.Millisecond)
	placeFullFleet(t, clientHarness.bus, "t1", "bob")
	time.Sleep(20 * time.Millisecond)

	state := awaitString(t, clientHarness.bus, "/t1/game/state")
	if state != "underway" {
		t.Fatalf("expected underway, got %q", state)
	}
	current := awaitString(t, clientHarness.bus, "/t1/game/current")
	if current != "alice" {
		t.Fatalf("expected alice to start (dice=0), got %q", current)
	}

	for i := uint8(0); i < 5; i++ {
		clientHarness.bus.Publish(fmt.Sprintf("/t1/players/bob/fire"), fmt.Sprintf(`{"x":%d,"y":0}`, i), false)
		time.Sleep(10 * time.Millisecond)
	}

	shipsCount := awaitString(t, clientHarness.bus, "/t1/players/bob/ships/count")
	if shipsCount != "4" {
		t.Errorf("expected bob's active ships to drop to 4 after carrier sinks, got %q", shipsCount)
	}
	nextCurrent := awaitString(t, clientHarness.bus, "/t1/game/current")
	if nextCurrent != "bob" {
		t.Errorf("expected turn to flip to bob, got %q", nextCurrent)
	}
}

func TestEngineDuplicatePlacementErrorText(t *testing.T) {
	factory := pubsub.NewMemoryBroker()
	serverHarness := newHarness(t, factory)
	defer serverHarness.close()
	clientHarness := newHarness(t, factory)
	defer clientHarness.close()

	eng := New(serverHarness.bus, "t2", model.DefaultSize, WithDice(sequentialDice()))
	eng.Bootstrap(context.Background())
	time.Sleep(20 * time.Millisecond)

	clientHarness.bus.Publish("/t2/game/request", joinPayload("bob", "s"), false)
	time.Sleep(20 * time.Millisecond)

	clientHarness.bus.Publish("/t2/players/bob/ships/carrier/place", placePayload(0, 0, "Horizontal"), false)
	time.Sleep(20 * time.Millisecond)
	clientHarness.bus.Publish("/t2/players/bob/ships/carrier/place", placePayload(5, 5, "Vertical"), false)

	errText := awaitString(t, clientHarness.bus, "/t2/players/bob/ships/carrier/error")
	want := "carrier class ship has already been placed!"
	if errText != want {
		t.Errorf("error text = %q, want %q", errText, want)
	}
}

func TestEngineOutOfBoundsPlacement(t *testing.T) {
	factory := pubsub.NewMemoryBroker()
	serverHarness := newHarness(t, factory)
	defer serverHarness.close()
	clientHarness := newHarness(t, factory)
	defer clientHarness.close()

	eng := New(serverHarness.bus, "t3", model.DefaultSize, WithDice(sequentialDice()))
	eng.Bootstrap(context.Background())
	time.Sleep(20 * time.Millisecond)

	clientHarness.bus.Publish("/t3/game/request", joinPayload("alice", "s"), false)
	time.Sleep(20 * time.Millisecond)

	clientHarness.bus.Publish("/t3/players/alice/ships/carrier/place", placePayload(6, 0, "Horizontal"), false)

	errText := awaitString(t, clientHarness.bus, "/t3/players/alice/ships/carrier/error")
	if errText == "" {
		t.Fatalf("expected an out-of-bounds error")
	}
	snapshot := eng.Snapshot()
	_, player, found := snapshot.FindPlayer("alice")
	if !found {
		t.Fatalf("expected alice to be in the roster")
	}
	if player.FleetSize() != 0 {
		t.Errorf("expected no fleet mutation on out-of-bounds placement, got size %d", player.FleetSize())
	}
}

func TestEngineTurnRotatesAfterFullSalvo(t *testing.T) {
	factory := pubsub.NewMemoryBroker()
	serverHarness := newHarness(t, factory)
	defer serverHarness.close()
	clientHarness := newHarness(t, factory)
	defer clientHarness.close()

	eng := New(serverHarness.bus, "t4", model.DefaultSize, WithDice(sequentialDice()))
	eng.Bootstrap(context.Background())
	time.Sleep(20 * time.Millisecond)

	for _, name := range []string{"p1", "p2", "p3"} {
		clientHarness.bus.Publish("/t4/game/request", joinPayload(name, "s"), false)
	}
	time.Sleep(20 * time.Millisecond)
	for _, name := range []string{"p1", "p2", "p3"} {
		placeFullFleet(t, clientHarness.bus, "t4", name)
		time.Sleep(20 * time.Millisecond)
	}

	awaitString(t, clientHarness.bus, "/t4/game/state")
	current := awaitString(t, clientHarness.bus, "/t4/game/current")
	if current != "p1" {
		t.Fatalf("expected p1 to start (dice=0), got %q", current)
	}

	// p1's fleet has 5 active ships, so a full salvo is 5 shots (all
	// misses on p2's empty column x=9, where no ship lies).
	for i := uint8(0); i < 5; i++ {
		clientHarness.bus.Publish("/t4/players/p2/fire", fmt.Sprintf(`{"x":9,"y":%d}`, i), false)
		time.Sleep(10 * time.Millisecond)
	}

	next := awaitString(t, clientHarness.bus, "/t4/game/current")
	if next != "p2" {
		t.Errorf("expected turn to rotate to p2 after a full salvo, got %q", next)
	}
}
