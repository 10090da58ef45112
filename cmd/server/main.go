// Command server runs the battleship game engine against a broker,
// publishing and subscribing under one game prefix (spec §6).
//
// Usage: server <host> <port> <user> <game_name>
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	configpkg "driftpursuit/broker/internal/config"
	"driftpursuit/broker/internal/engine"
	"driftpursuit/broker/internal/lobby"
	"driftpursuit/broker/internal/logging"
	"driftpursuit/broker/internal/model"
	"driftpursuit/broker/internal/pubsub"
)

func main() {
	if len(os.Args) < 5 {
		fmt.Fprintln(os.Stderr, "usage: server <host> <port> <user> <game_name>")
		os.Exit(1)
	}
	host := os.Args[1]
	port, err := strconv.Atoi(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid port %q: %v\n", os.Args[2], err)
		os.Exit(1)
	}
	user := os.Args[3]
	prefix := os.Args[4]

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
	logging.ReplaceGlobals(logger)

	capacity, err := lobby.CapacityFromEnv()
	if err != nil {
		logger.Fatal("invalid lobby capacity configuration", logging.Error(err))
	}

	clientID := fmt.Sprintf("%s-server", prefix)
	var transport *pubsub.MQTTTransport
	if cfg.BrokerWebsocket {
		transport = pubsub.NewMQTTWebsocketTransport(host, port, user, clientID)
	} else {
		transport = pubsub.NewMQTTTransport(host, port, user, clientID)
	}
	bus := pubsub.New(transport, logger.With(logging.String("component", "pubsub")))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := bus.Run(ctx); err != nil {
			logger.Fatal("pub/sub adapter terminated", logging.Error(err))
		}
	}()

	eng := engine.New(
		bus, prefix, model.DefaultSize,
		engine.WithDice(func(n int) int { return rand.Intn(n) }),
		engine.WithCapacity(capacity),
		engine.WithLogger(logger.With(logging.String("prefix", prefix))),
	)
	if err := eng.Bootstrap(ctx); err != nil {
		logger.Fatal("failed to bootstrap game engine", logging.Error(err))
	}

	logger.Info("game server up", logging.String("prefix", prefix), logging.String("broker", fmt.Sprintf("%s:%d", host, port)))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	bus.Stop()
}
