// Package host runs the canonical game simulation on the host peer. The
// host is the only member that spawns entities, declares wave transitions,
// and decides when a monster breaches the defense line; everyone else
// mirrors its broadcasts.
package host

import (
	"time"

	"go.uber.org/zap"

	"github.com/quizdefense/quizdefense/internal/game"
	"github.com/quizdefense/quizdefense/internal/protocol"
)

// Emitter sends one client→server frame. The session layer plugs the
// websocket connection in here; tests plug in a recorder.
type Emitter interface {
	Emit(eventType string, data any)
}

// Cadence sets how often the two periodic broadcasts go out.
type Cadence struct {
	PositionInterval time.Duration
	SnapshotInterval time.Duration
}

func DefaultCadence() Cadence {
	return Cadence{
		PositionInterval: 100 * time.Millisecond,
		SnapshotInterval: 2 * time.Second,
	}
}

// Authority owns ground-truth game state. Not safe for concurrent use: the
// session layer drives it from a single goroutine, interleaving ticks with
// message application.
type Authority struct {
	hostID      string
	playerCount int

	monsters   map[string]*game.Monster
	wave       game.WaveState
	baseHealth float64
	nextSeq    int

	lastSpawn    time.Time
	lastDelta    time.Time
	lastSnapshot time.Time

	cadence Cadence
	emitter Emitter
	logger  *zap.SugaredLogger

	gameOver bool
}

func New(hostID string, playerCount int, cadence Cadence, emitter Emitter, logger *zap.SugaredLogger) *Authority {
	if playerCount < 1 {
		playerCount = 1
	}

	return &Authority{
		hostID:      hostID,
		playerCount: playerCount,
		monsters:    make(map[string]*game.Monster),
		wave:        game.NewWaveState(playerCount),
		baseHealth:  game.BaseHealth,
		cadence:     cadence,
		emitter:     emitter,
		logger:      logger,
	}
}

// Resume builds an authority from a reconciled mirror. Used when the host
// disconnects mid-game and the promoted member takes over simulation
// authority: its mirror is the best state anyone still has, stale by at
// most one snapshot interval. Spawned-from-here entities get a fresh id
// namespace under the new host's connection id.
func Resume(hostID string, playerCount int, monsters []*game.Monster, wave game.WaveState, baseHealth float64,
	cadence Cadence, emitter Emitter, logger *zap.SugaredLogger) *Authority {

	a := New(hostID, playerCount, cadence, emitter, logger)
	a.wave = wave
	a.baseHealth = baseHealth
	for _, m := range monsters {
		a.monsters[m.ID] = m
	}
	return a
}

func (a *Authority) GameOver() bool { return a.gameOver }

func (a *Authority) BaseHealth() float64 { return a.baseHealth }

func (a *Authority) Wave() game.WaveState { return a.wave }

func (a *Authority) Monster(id string) *game.Monster {
	return a.monsters[id]
}

func (a *Authority) MonsterCount() int {
	return len(a.monsters)
}

func (a *Authority) Monsters() []*game.Monster {
	out := make([]*game.Monster, 0, len(a.monsters))
	for _, m := range a.monsters {
		out = append(out, m)
	}
	return out
}

// Tick advances the simulation by delta: spawns on cadence, moves monsters,
// resolves defense-line breaches, and flushes the periodic broadcasts.
func (a *Authority) Tick(now time.Time, delta time.Duration) {
	if a.gameOver {
		return
	}

	a.spawnDue(now)

	for _, m := range a.monsters {
		m.Advance(now, delta)

		if m.ReachedDefenseLine() {
			a.breach(m)
		}
	}

	if now.Sub(a.lastDelta) >= a.cadence.PositionInterval {
		a.lastDelta = now
		a.broadcastPositions()
	}
	if now.Sub(a.lastSnapshot) >= a.cadence.SnapshotInterval {
		a.lastSnapshot = now
		a.broadcastSnapshot()
	}
}

func (a *Authority) spawnDue(now time.Time) {
	if now.Sub(a.lastSpawn) < a.wave.SpawnInterval {
		return
	}

	if a.wave.ReadyForBoss() {
		a.lastSpawn = now
		a.wave.BossActive = true
		a.spawnBoss()
		return
	}
	if a.wave.BossActive {
		return
	}

	a.lastSpawn = now
	// Two spawns per player per interval keeps pressure scaling with the
	// roster.
	for i := 0; i < 2*a.playerCount; i++ {
		a.spawnNormal()
	}
}

func (a *Authority) spawnNormal() {
	m := game.NewNormalMonster(a.hostID, a.nextSeq, a.wave.Wave)
	a.nextSeq++
	a.monsters[m.ID] = m
	a.emitter.Emit(protocol.MonsterSpawned, m.State())
}

func (a *Authority) spawnBoss() {
	m := game.NewBossMonster(a.hostID, a.nextSeq, a.wave.Wave, a.playerCount)
	a.nextSeq++
	a.monsters[m.ID] = m
	a.emitter.Emit(protocol.MonsterSpawned, m.State())
	a.logger.Infow("boss spawned", "id", m.ID, "health", m.Health, "wave", a.wave.Wave)
}

// breach applies base damage for a monster that reached the defense line
// and despawns it without a kill (no score, no wave progress).
func (a *Authority) breach(m *game.Monster) {
	delete(a.monsters, m.ID)

	a.baseHealth -= m.Damage()
	a.emitter.Emit(protocol.BaseDamaged, protocol.BaseDamagedPayload{Amount: m.Damage()})
	a.emitter.Emit(protocol.MonsterKilled, protocol.MonsterKilledPayload{MonsterID: m.ID})

	if a.baseHealth <= 0 {
		a.baseHealth = 0
		a.gameOver = true
		a.logger.Infow("base destroyed", "wave", a.wave.Wave)
	}
}

// ApplyShot resolves one of the host's own shots: damage, status effect,
// and the resulting broadcasts. Returns the score earned (zero unless the
// shot killed).
func (a *Authority) ApplyShot(monsterID string, weapon game.Weapon, now time.Time) int {
	m, ok := a.monsters[monsterID]
	if !ok {
		return 0
	}

	m.Health -= weapon.Damage
	if weapon.Freezes {
		m.Freeze(now)
	}

	a.emitter.Emit(protocol.MonsterDamaged, protocol.MonsterDamagedPayload{
		MonsterID: monsterID,
		NewHealth: m.Health,
	})

	if m.Health > 0 {
		return 0
	}

	a.kill(m)
	return game.KillScore(m.Wave, m.IsBoss)
}

// ApplyPeerDamage mirrors a damage event relayed from another member. A
// peer's terminal hit kills here too, so the host does not depend on the
// peer's separate kill frame arriving; the later kill frame is then a
// no-op.
func (a *Authority) ApplyPeerDamage(p protocol.MonsterDamagedPayload) {
	m, ok := a.monsters[p.MonsterID]
	if !ok {
		return
	}

	m.Health = p.NewHealth
	if m.Health <= 0 {
		a.kill(m)
	}
}

// ApplyPeerKill removes a monster another member killed. Idempotent:
// unknown ids are ignored.
func (a *Authority) ApplyPeerKill(monsterID string) {
	m, ok := a.monsters[monsterID]
	if !ok {
		return
	}
	a.kill(m)
}

func (a *Authority) kill(m *game.Monster) {
	delete(a.monsters, m.ID)

	a.emitter.Emit(protocol.MonsterKilled, protocol.MonsterKilledPayload{MonsterID: m.ID})

	if m.IsBoss {
		a.completeWave()
		return
	}
	a.wave.KilledThisWave++
}

// completeWave advances difficulty after a boss kill and declares the
// transition room-wide. The wave-completed broadcast is the only mechanism
// that advances wave state on peers.
func (a *Authority) completeWave() {
	a.wave.AdvanceWave(a.playerCount)

	a.emitter.Emit(protocol.WaveCompleted, protocol.WaveCompletedPayload{
		NewWave:            a.wave.Wave,
		NewSpawnIntervalMs: a.wave.SpawnInterval.Milliseconds(),
		NewMonstersPerWave: a.wave.MonstersPerWave,
	})

	a.logger.Infow("wave completed", "wave", a.wave.Wave,
		"spawnInterval", a.wave.SpawnInterval, "monstersPerWave", a.wave.MonstersPerWave)
}

// ApplyWaveEcho absorbs the host's own wave-completed echo (the relay sends
// it to the whole room, sender included). The transition already happened
// locally, so anything up to the current wave is a no-op.
func (a *Authority) ApplyWaveEcho(p protocol.WaveCompletedPayload) {
	if p.NewWave <= a.wave.Wave {
		return
	}
	a.wave.Adopt(p.NewWave, time.Duration(p.NewSpawnIntervalMs)*time.Millisecond, p.NewMonstersPerWave)
}

func (a *Authority) broadcastPositions() {
	positions := make([]protocol.PositionUpdate, 0, len(a.monsters))
	for _, m := range a.monsters {
		positions = append(positions, protocol.PositionUpdate{ID: m.ID, Y: m.Y})
	}

	a.emitter.Emit(protocol.SyncPositions, protocol.SyncPositionsPayload{Positions: positions})
}

// broadcastSnapshot publishes the full entity list. A peer that missed a
// spawn frame recovers from this within one snapshot interval; no acks or
// retransmission needed.
func (a *Authority) broadcastSnapshot() {
	monsters := make([]protocol.MonsterState, 0, len(a.monsters))
	for _, m := range a.monsters {
		monsters = append(monsters, m.State())
	}

	a.emitter.Emit(protocol.SyncAllMonsters, protocol.SyncAllMonstersPayload{Monsters: monsters})
}
