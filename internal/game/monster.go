package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/quizdefense/quizdefense/internal/protocol"
)

var ufoKinds = []string{"ufo-a", "ufo-b", "ufo-c", "ufo-d"}
var bossKinds = []string{"ufo-c", "ufo-d"}

// Monster is one simulated entity. The host owns the canonical copy; peers
// hold mirrors updated only through message application.
type Monster struct {
	ID        string
	Lane      int
	Y         float64
	Kind      string
	Health    float64
	MaxHealth float64
	Speed     float64
	Wave      int
	IsBoss    bool

	// Status-effect deadlines, zero when inactive. Expiry is judged against
	// the clock, never by counting ticks down.
	FrozenUntil time.Time
	SlowedUntil time.Time
}

// NewNormalMonster rolls a normal monster for the given wave. The id embeds
// the spawning connection's id plus a per-host counter, so ids are unique
// within a room and a host migration opens a fresh id namespace.
func NewNormalMonster(hostID string, seq, wave int) *Monster {
	health := NormalHealth(wave)

	return &Monster{
		ID:        fmt.Sprintf("%s-%d", hostID, seq),
		Lane:      rand.Intn(Lanes),
		Y:         SpawnY,
		Kind:      ufoKinds[rand.Intn(len(ufoKinds))],
		Health:    health,
		MaxHealth: health,
		Speed:     NormalSpeed(wave),
		Wave:      wave,
	}
}

func NewBossMonster(hostID string, seq, wave, playerCount int) *Monster {
	health := BossHealth(wave, playerCount)

	return &Monster{
		ID:        fmt.Sprintf("BOSS-%s-%d", hostID, seq),
		Lane:      rand.Intn(Lanes),
		Y:         SpawnY,
		Kind:      bossKinds[rand.Intn(len(bossKinds))],
		Health:    health,
		MaxHealth: health,
		Speed:     BossSpeed(wave),
		Wave:      wave,
		IsBoss:    true,
	}
}

// EffectiveSpeed applies any live status effect to the base speed.
func (m *Monster) EffectiveSpeed(now time.Time) float64 {
	if now.Before(m.FrozenUntil) {
		return 0
	}
	if now.Before(m.SlowedUntil) {
		return m.Speed * slowFactor
	}
	return m.Speed
}

// Advance moves the monster down its lane by one tick's worth of travel.
func (m *Monster) Advance(now time.Time, delta time.Duration) {
	m.Y += m.EffectiveSpeed(now) * delta.Seconds()
}

func (m *Monster) Freeze(now time.Time) {
	m.FrozenUntil = now.Add(FreezeDuration)
}

func (m *Monster) Slow(now time.Time) {
	m.SlowedUntil = now.Add(SlowDuration)
}

func (m *Monster) ReachedDefenseLine() bool {
	return m.Y >= DefenseLineY
}

func (m *Monster) Damage() float64 {
	if m.IsBoss {
		return BossMonsterDamage
	}
	return NormalMonsterDamage
}

// State exports the wire representation of the monster.
func (m *Monster) State() protocol.MonsterState {
	return protocol.MonsterState{
		ID:        m.ID,
		Lane:      m.Lane,
		Y:         m.Y,
		Kind:      m.Kind,
		Health:    m.Health,
		MaxHealth: m.MaxHealth,
		Speed:     m.Speed,
		Wave:      m.Wave,
		IsBoss:    m.IsBoss,
	}
}

// MonsterFromState rebuilds a mirror entity from its wire representation.
func MonsterFromState(s protocol.MonsterState) *Monster {
	maxHealth := s.MaxHealth
	if maxHealth == 0 {
		maxHealth = s.Health
	}

	return &Monster{
		ID:        s.ID,
		Lane:      s.Lane,
		Y:         s.Y,
		Kind:      s.Kind,
		Health:    s.Health,
		MaxHealth: maxHealth,
		Speed:     s.Speed,
		Wave:      s.Wave,
		IsBoss:    s.IsBoss,
	}
}
