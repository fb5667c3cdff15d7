// Package client implements the player side of the session protocol: one
// websocket connection, the lobby handshake, and a single-goroutine game
// loop that interleaves simulation ticks with message application, the
// same cooperative scheduling model a browser client would have.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/quizdefense/quizdefense/internal/game"
	"github.com/quizdefense/quizdefense/internal/host"
	"github.com/quizdefense/quizdefense/internal/peer"
	"github.com/quizdefense/quizdefense/internal/protocol"
)

type Config struct {
	URL        string
	PlayerName string

	TickInterval  time.Duration
	StatsInterval time.Duration
	Cadence       host.Cadence

	// AutoPlay enables the built-in headless player behavior: answer quiz
	// questions for ammo, shoot the most advanced monster.
	AutoPlay bool
}

func (c *Config) applyDefaults() {
	if c.TickInterval <= 0 {
		c.TickInterval = 50 * time.Millisecond
	}
	if c.StatsInterval <= 0 {
		c.StatsInterval = time.Second
	}
	if c.Cadence.PositionInterval <= 0 {
		c.Cadence = host.DefaultCadence()
	}
}

var ErrNotConnected = errors.New("session is not connected")

// Session is one player's connection to a relay. Dial first, then issue a
// CreateRoom or JoinRoom, then Run the loop. All game state is owned by the
// loop goroutine; the exported mutators only write frames.
type Session struct {
	cfg    Config
	logger *zap.SugaredLogger

	conn    *websocket.Conn
	writeMu sync.Mutex

	selfID   string
	roomCode string
	isHost   bool
	started  bool
	gameOver bool
	roster   []protocol.PlayerInfo

	authority  *host.Authority
	reconciler *peer.Reconciler
	scoreboard *Scoreboard

	stats         protocol.PlayerStats
	ammo          int
	statsDirty    bool
	lastStatsPush time.Time

	// Autoplay quiz state. The answer lands when the deadline passes;
	// remaining time is always recomputed from the deadline, never counted
	// down.
	question         game.Question
	questionDeadline time.Time
}

func NewSession(cfg Config, logger *zap.SugaredLogger) *Session {
	cfg.applyDefaults()

	return &Session{
		cfg:        cfg,
		logger:     logger,
		scoreboard: NewScoreboard(),
	}
}

// Dial connects and blocks until the relay assigns this connection its
// member id.
func (s *Session) Dial(ctx context.Context) error {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, s.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.cfg.URL, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	s.conn = conn

	// First frame is always the identity assignment.
	_, raw, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return fmt.Errorf("read welcome frame: %w", err)
	}

	msg, err := protocol.DecodeServer(raw)
	if err != nil || msg.Type != protocol.Connected {
		conn.Close()
		return fmt.Errorf("unexpected welcome frame: %v", err)
	}

	s.selfID = msg.Data.(protocol.ConnectedPayload).PlayerID
	s.logger.Infow("connected", "playerId", s.selfID)
	return nil
}

func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *Session) SelfID() string { return s.selfID }

func (s *Session) RoomCode() string { return s.roomCode }

func (s *Session) IsHost() bool { return s.isHost }

func (s *Session) GameOver() bool { return s.gameOver }

func (s *Session) Scoreboard() *Scoreboard { return s.scoreboard }

func (s *Session) CreateRoom() error {
	return s.write(protocol.CreateRoom, protocol.CreateRoomPayload{PlayerName: s.cfg.PlayerName})
}

func (s *Session) JoinRoom(roomCode string) error {
	s.roomCode = roomCode
	return s.write(protocol.JoinRoom, protocol.JoinRoomPayload{
		RoomCode:   roomCode,
		PlayerName: s.cfg.PlayerName,
	})
}

func (s *Session) Ready() error {
	return s.write(protocol.PlayerReady, nil)
}

func (s *Session) StartGame() error {
	return s.write(protocol.StartGame, nil)
}

// Emit satisfies the host and peer Emitter interfaces.
func (s *Session) Emit(eventType string, data any) {
	if err := s.write(eventType, data); err != nil {
		s.logger.Warnw("emit failed", "type", eventType, "error", err)
	}
}

func (s *Session) write(eventType string, data any) error {
	if s.conn == nil {
		return ErrNotConnected
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(protocol.OutEnvelope{Type: eventType, Data: data})
}

// Run drives the session until the connection drops, the game ends, or ctx
// is cancelled. Inbound messages and ticks are interleaved on this one
// goroutine; nothing else touches game state.
func (s *Session) Run(ctx context.Context) error {
	if s.conn == nil {
		return ErrNotConnected
	}

	inbound := make(chan []byte, 256)
	readErr := make(chan error, 1)

	go func() {
		for {
			_, raw, err := s.conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case inbound <- raw:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-readErr:
			if s.gameOver {
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)

		case raw := <-inbound:
			msg, err := protocol.DecodeServer(raw)
			if err != nil {
				s.logger.Warnw("dropping malformed frame", "error", err)
				continue
			}
			s.handle(msg, time.Now())

		case now := <-ticker.C:
			delta := now.Sub(last)
			last = now
			s.tick(now, delta)

			if s.gameOver {
				return nil
			}
		}
	}
}

func (s *Session) handle(msg *protocol.Message, now time.Time) {
	switch msg.Type {
	case protocol.RoomCreated:
		p := msg.Data.(protocol.RoomCreatedPayload)
		s.roomCode = p.RoomCode
		s.isHost = true
		s.roster = p.Room.Players
		s.scoreboard.SetRoster(s.roster)
		s.logger.Infow("room created", "room", s.roomCode)

	case protocol.RoomUpdated:
		s.handleRoomUpdated(msg.Data.(protocol.RoomInfo))

	case protocol.RoomError:
		p := msg.Data.(protocol.ErrorPayload)
		s.logger.Warnw("room error", "message", p.Message)

	case protocol.GameStarting:
		s.startRole(now)

	case protocol.MonsterSpawned:
		if s.reconciler != nil {
			s.reconciler.ApplySpawn(msg.Data.(protocol.MonsterState), now)
		}

	case protocol.SyncPositions:
		if s.reconciler != nil {
			s.reconciler.ApplyPositions(msg.Data.(protocol.SyncPositionsPayload), now)
		}

	case protocol.SyncAllMonsters:
		if s.reconciler != nil {
			s.reconciler.ApplySnapshot(msg.Data.(protocol.SyncAllMonstersPayload), now)
		}

	case protocol.MonsterDamaged:
		p := msg.Data.(protocol.MonsterDamagedPayload)
		if s.authority != nil {
			s.authority.ApplyPeerDamage(p)
		} else if s.reconciler != nil {
			s.reconciler.ApplyDamage(p, now)
		}

	case protocol.MonsterKilled:
		p := msg.Data.(protocol.MonsterKilledPayload)
		if s.authority != nil {
			s.authority.ApplyPeerKill(p.MonsterID)
		} else if s.reconciler != nil {
			s.reconciler.ApplyKill(p.MonsterID, now)
		}

	case protocol.BaseDamaged:
		if s.reconciler != nil {
			s.reconciler.ApplyBaseDamage(msg.Data.(protocol.BaseDamagedPayload))
			if s.reconciler.BaseHealth() <= 0 {
				s.gameOver = true
			}
		}

	case protocol.WaveCompleted:
		p := msg.Data.(protocol.WaveCompletedPayload)
		if s.authority != nil {
			s.authority.ApplyWaveEcho(p)
		} else if s.reconciler != nil {
			s.reconciler.ApplyWave(p)
		}

	case protocol.PlayerStatsUpdated:
		p := msg.Data.(protocol.PlayerStatsUpdatedPayload)
		s.scoreboard.Update(p.PlayerID, p.Stats)

	case protocol.CountdownEnded:
		s.logger.Debugw("countdown ended")

	case protocol.QuestionTypesUpdated:
		p := msg.Data.(protocol.QuestionTypesPayload)
		s.logger.Infow("question types updated", "types", p.QuestionTypes)
	}
}

func (s *Session) handleRoomUpdated(room protocol.RoomInfo) {
	s.roster = room.Players
	s.scoreboard.SetRoster(s.roster)

	wasHost := s.isHost
	s.isHost = room.Host == s.selfID

	if !s.started || wasHost || !s.isHost {
		return
	}

	// The host left mid-game and we inherited the role. Promote our
	// reconciled mirror to authoritative state and resume the simulation
	// under our own id namespace.
	s.logger.Infow("promoted to host mid-game, taking over simulation", "room", s.roomCode)
	s.authority = host.Resume(
		s.selfID,
		len(s.roster),
		s.reconciler.Monsters(),
		s.reconciler.Wave(),
		s.reconciler.BaseHealth(),
		s.cfg.Cadence,
		s,
		s.logger,
	)
	s.reconciler = nil
}

func (s *Session) startRole(now time.Time) {
	s.started = true
	playerCount := len(s.roster)

	if s.isHost {
		s.authority = host.New(s.selfID, playerCount, s.cfg.Cadence, s, s.logger)
		s.logger.Infow("game started as host", "room", s.roomCode, "players", playerCount)
	} else {
		s.reconciler = peer.New(playerCount, s, s.logger)
		s.logger.Infow("game started as peer", "room", s.roomCode, "players", playerCount)
	}

	if s.cfg.AutoPlay {
		s.nextQuestion(now)
	}
}

func (s *Session) tick(now time.Time, delta time.Duration) {
	if !s.started {
		return
	}

	if s.authority != nil {
		s.authority.Tick(now, delta)
		if s.authority.GameOver() {
			s.gameOver = true
		}
	} else if s.reconciler != nil {
		s.reconciler.Tick(now, delta)
	}

	if s.cfg.AutoPlay {
		s.autoplay(now)
	}

	s.pushStatsDue(now)
}

// pushStatsDue publishes this player's own stats entry, throttled to the
// configured interval. Only the owner ever writes its entry; everyone else
// mirrors it.
func (s *Session) pushStatsDue(now time.Time) {
	if !s.statsDirty || now.Sub(s.lastStatsPush) < s.cfg.StatsInterval {
		return
	}

	s.statsDirty = false
	s.lastStatsPush = now
	s.scoreboard.Update(s.selfID, s.stats)
	s.Emit(protocol.UpdateStats, protocol.UpdateStatsPayload{Stats: s.stats})
}
