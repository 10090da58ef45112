// Command client is the interactive battleship terminal client (spec §4.4,
// §6): it prompts for a player name and game channel, joins, places a
// fleet, waits for the game to start, then fires on its own turns.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	clientpkg "driftpursuit/broker/internal/client"
	configpkg "driftpursuit/broker/internal/config"
	"driftpursuit/broker/internal/logging"
	"driftpursuit/broker/internal/pubsub"
)

func main() {
	cfg, err := configpkg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize structured logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("Please put in a playername: ")
	name := promptLine(reader)
	fmt.Println("Enter your team channel: ")
	prefix := promptLine(reader)
	fmt.Printf("%s playing on channel %s\n", name, prefix)

	host, port := splitBrokerAddr(cfg.BrokerAddr)
	clientID := fmt.Sprintf("%s-%s", prefix, name)
	var transport *pubsub.MQTTTransport
	if cfg.BrokerWebsocket {
		transport = pubsub.NewMQTTWebsocketTransport(host, port, cfg.BrokerUser, clientID)
	} else {
		transport = pubsub.NewMQTTTransport(host, port, cfg.BrokerUser, clientID)
	}
	bus := pubsub.New(transport, logger.With(logging.String("component", "pubsub")))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := bus.Run(ctx); err != nil {
			logger.Fatal("pub/sub adapter terminated", logging.Error(err))
		}
	}()

	driver := clientpkg.New(bus, prefix, name, "Cockadoodledoo", reader, os.Stdout, logger)

	if err := driver.Join(ctx); err != nil {
		logger.Fatal("failed to join game", logging.Error(err))
	}
	if err := driver.PlaceFleet(ctx); err != nil {
		logger.Fatal("failed to place fleet", logging.Error(err))
	}
	driver.WatchOwnHits()
	fmt.Println("Waiting for the game to start...")
	if err := driver.AwaitStart(ctx); err != nil {
		logger.Fatal("failed while waiting for game start", logging.Error(err))
	}

	fmt.Println("Game on!")
	if err := driver.PlayTurns(ctx); err != nil {
		logger.Fatal("turn loop terminated", logging.Error(err))
	}
}

func promptLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func splitBrokerAddr(addr string) (string, int) {
	host, portStr, ok := strings.Cut(addr, ":")
	if !ok {
		return addr, 1883
	}
	port := 1883
	fmt.Sscanf(portStr, "%d", &port)
	return host, port
}
