// Command bot runs a headless player against a relay. It can create a room
// and wait for others, or join an existing one by code; with -start it kicks
// the game off once every seat is ready. Useful for soak-testing a relay and
// for filling out a room during development.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/quizdefense/quizdefense/internal/client"
)

func main() {
	var (
		url       = flag.String("url", "ws://localhost:3000/ws", "relay websocket endpoint")
		name      = flag.String("name", "bot", "player name")
		create    = flag.Bool("create", false, "create a new room")
		join      = flag.String("join", "", "join an existing room by code")
		start     = flag.Bool("start", false, "start the game after the wait period (host only)")
		startWait = flag.Duration("start-wait", 5*time.Second, "how long to wait for other players before starting")
	)
	flag.Parse()

	logger := zap.Must(zap.NewDevelopment()).Sugar()
	defer logger.Sync()

	if *create == (*join != "") {
		logger.Fatal("exactly one of -create or -join is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	session := client.NewSession(client.Config{
		URL:        *url,
		PlayerName: *name,
		AutoPlay:   true,
	}, logger)

	dialCtx, dialCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dialCancel()

	if err := session.Dial(dialCtx); err != nil {
		logger.Fatalw("dial failed", "error", err)
	}
	defer session.Close()

	if *create {
		if err := session.CreateRoom(); err != nil {
			logger.Fatalw("create room failed", "error", err)
		}
	} else {
		if err := session.JoinRoom(*join); err != nil {
			logger.Fatalw("join room failed", "error", err)
		}
	}

	if err := session.Ready(); err != nil {
		logger.Fatalw("ready failed", "error", err)
	}

	if *start {
		go func() {
			select {
			case <-time.After(*startWait):
			case <-ctx.Done():
				return
			}
			if err := session.StartGame(); err != nil {
				logger.Warnw("start game failed", "error", err)
			}
		}()
	}

	err := session.Run(ctx)

	for _, row := range session.Scoreboard().Rows() {
		logger.Infow("final stats",
			"player", row.Name,
			"score", row.Stats.Score,
			"kills", row.Stats.Kills,
		)
	}
	logger.Infow("session ended", "teamScore", session.Scoreboard().TeamScore())

	if err != nil && ctx.Err() == nil {
		logger.Errorw("session error", "error", err)
		os.Exit(1)
	}
}
