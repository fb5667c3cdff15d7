// Package peer maintains a non-host member's mirror of the host's game
// state. The mirror is driven entirely by host-originated messages plus the
// peer's own shots; it never advances wave state or spawns on its own.
package peer

import (
	"time"

	"go.uber.org/zap"

	"github.com/quizdefense/quizdefense/internal/game"
	"github.com/quizdefense/quizdefense/internal/protocol"
)

// correctionDuration is how long a position correction is smeared over,
// masking the 100ms delta cadence instead of teleporting the sprite.
const correctionDuration = 80 * time.Millisecond

// tombstoneTTL must outlive the worst-case stale snapshot so a kill can
// never be undone by a snapshot captured before it.
const tombstoneTTL = 10 * time.Second

// Emitter sends one client→server frame (the peer's own damage/kill
// events and stats pushes).
type Emitter interface {
	Emit(eventType string, data any)
}

type correction struct {
	fromY    float64
	toY      float64
	start    time.Time
	duration time.Duration
}

// Reconciler mirrors host state. Not safe for concurrent use; the session
// layer drives it from one goroutine.
type Reconciler struct {
	monsters    map[string]*game.Monster
	corrections map[string]*correction
	tombstones  map[string]time.Time // removed entity id → removal time

	wave       game.WaveState
	baseHealth float64

	emitter Emitter
	logger  *zap.SugaredLogger
}

func New(playerCount int, emitter Emitter, logger *zap.SugaredLogger) *Reconciler {
	if playerCount < 1 {
		playerCount = 1
	}

	return &Reconciler{
		monsters:    make(map[string]*game.Monster),
		corrections: make(map[string]*correction),
		tombstones:  make(map[string]time.Time),
		wave:        game.NewWaveState(playerCount),
		baseHealth:  game.BaseHealth,
		emitter:     emitter,
		logger:      logger,
	}
}

func (r *Reconciler) BaseHealth() float64 { return r.baseHealth }

func (r *Reconciler) Wave() game.WaveState { return r.wave }

func (r *Reconciler) MonsterCount() int { return len(r.monsters) }
func (r *Reconciler) Monster(id string) *game.Monster {
	return r.monsters[id]
}

// Monsters returns the live mirror entities. Used to seed a simulation
// authority when this peer is promoted to host mid-game.
func (r *Reconciler) Monsters() []*game.Monster {
	out := make([]*game.Monster, 0, len(r.monsters))
	for _, m := range r.monsters {
		out = append(out, m)
	}
	return out
}

// Tick advances the mirror between host updates: monsters keep moving at
// their last known speed, and pending position corrections are interpolated
// toward the host-reported coordinate.
func (r *Reconciler) Tick(now time.Time, delta time.Duration) {
	for id, m := range r.monsters {
		if c, ok := r.corrections[id]; ok {
			elapsed := now.Sub(c.start)
			if elapsed >= c.duration {
				m.Y = c.toY
				delete(r.corrections, id)
				continue
			}
			frac := float64(elapsed) / float64(c.duration)
			m.Y = c.fromY + (c.toY-c.fromY)*frac
			continue
		}

		m.Advance(now, delta)
	}

	for id, at := range r.tombstones {
		if now.Sub(at) > tombstoneTTL {
			delete(r.tombstones, id)
		}
	}
}

// ApplySpawn creates the mirror entity for a host spawn. A spawn for an id
// already seen (or already killed) is ignored.
func (r *Reconciler) ApplySpawn(s protocol.MonsterState, now time.Time) {
	if _, exists := r.monsters[s.ID]; exists {
		return
	}
	if _, dead := r.tombstones[s.ID]; dead {
		return
	}

	r.monsters[s.ID] = game.MonsterFromState(s)
}

// ApplyPositions starts a smooth correction toward each reported position.
// Only entities already known are touched; deltas are not a source of
// existence.
func (r *Reconciler) ApplyPositions(p protocol.SyncPositionsPayload, now time.Time) {
	for _, pos := range p.Positions {
		m, ok := r.monsters[pos.ID]
		if !ok {
			continue
		}

		r.corrections[pos.ID] = &correction{
			fromY:    m.Y,
			toY:      pos.Y,
			start:    now,
			duration: correctionDuration,
		}
	}
}

// ApplySnapshot self-heals the mirror: entities in the snapshot we never
// saw the spawn for are created fresh. Entities absent from the snapshot
// are left alone: removal happens only through explicit kill events, and a
// tombstoned id is never resurrected by a stale snapshot.
func (r *Reconciler) ApplySnapshot(p protocol.SyncAllMonstersPayload, now time.Time) {
	for _, s := range p.Monsters {
		if _, exists := r.monsters[s.ID]; exists {
			continue
		}
		if _, dead := r.tombstones[s.ID]; dead {
			continue
		}

		r.logger.Debugw("recovered missing monster from snapshot", "id", s.ID)
		r.monsters[s.ID] = game.MonsterFromState(s)
	}
}

// ApplyDamage mirrors a relayed damage event; damage down to zero removes
// the entity through the same path as an explicit kill. Idempotent.
func (r *Reconciler) ApplyDamage(p protocol.MonsterDamagedPayload, now time.Time) {
	m, ok := r.monsters[p.MonsterID]
	if !ok {
		return
	}

	m.Health = p.NewHealth
	if m.Health <= 0 {
		r.remove(p.MonsterID, now)
	}
}

// ApplyKill removes the entity. Re-applying a kill for an id already
// removed is a safe no-op.
func (r *Reconciler) ApplyKill(monsterID string, now time.Time) {
	if _, ok := r.monsters[monsterID]; !ok {
		return
	}
	r.remove(monsterID, now)
}

// ApplyBaseDamage mirrors a host-declared defense-line breach.
func (r *Reconciler) ApplyBaseDamage(p protocol.BaseDamagedPayload) {
	r.baseHealth -= p.Amount
	if r.baseHealth < 0 {
		r.baseHealth = 0
	}
}

// ApplyWave adopts the host-declared wave parameters unconditionally,
// overwriting any locally drifted counters.
func (r *Reconciler) ApplyWave(p protocol.WaveCompletedPayload) {
	r.wave.Adopt(p.NewWave, time.Duration(p.NewSpawnIntervalMs)*time.Millisecond, p.NewMonstersPerWave)
}

// ApplyShot resolves this peer's own shot against its mirror and broadcasts
// the result. Returns the score earned (zero unless the shot killed).
func (r *Reconciler) ApplyShot(monsterID string, weapon game.Weapon, now time.Time) int {
	m, ok := r.monsters[monsterID]
	if !ok {
		return 0
	}

	m.Health -= weapon.Damage
	if weapon.Freezes {
		m.Freeze(now)
	}

	r.emitter.Emit(protocol.MonsterDamaged, protocol.MonsterDamagedPayload{
		MonsterID: monsterID,
		NewHealth: m.Health,
	})

	if m.Health > 0 {
		return 0
	}

	r.emitter.Emit(protocol.MonsterKilled, protocol.MonsterKilledPayload{MonsterID: monsterID})
	r.remove(monsterID, now)

	return game.KillScore(m.Wave, m.IsBoss)
}

func (r *Reconciler) remove(monsterID string, now time.Time) {
	delete(r.monsters, monsterID)
	delete(r.corrections, monsterID)
	r.tombstones[monsterID] = now
}
