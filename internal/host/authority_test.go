package host

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/quizdefense/quizdefense/internal/game"
	"github.com/quizdefense/quizdefense/internal/protocol"
)

type emitted struct {
	eventType string
	data      any
}

type recorder struct {
	frames []emitted
}

func (r *recorder) Emit(eventType string, data any) {
	r.frames = append(r.frames, emitted{eventType, data})
}

func (r *recorder) ofType(eventType string) []emitted {
	var out []emitted
	for _, f := range r.frames {
		if f.eventType == eventType {
			out = append(out, f)
		}
	}
	return out
}

func (r *recorder) reset() { r.frames = nil }

func newTestAuthority(playerCount int) (*Authority, *recorder) {
	rec := &recorder{}
	a := New("host-1", playerCount, DefaultCadence(), rec, zap.NewNop().Sugar())
	return a, rec
}

func TestTickSpawnsOnCadence(t *testing.T) {
	t.Parallel()

	a, rec := newTestAuthority(2)
	now := time.Now()

	// First tick: the interval since the zero lastSpawn has long passed.
	a.Tick(now, 50*time.Millisecond)
	if got := len(rec.ofType(protocol.MonsterSpawned)); got != 4 {
		t.Fatalf("spawned %d monsters, want 2 per player", got)
	}

	// Within the interval nothing new spawns.
	rec.reset()
	a.Tick(now.Add(100*time.Millisecond), 100*time.Millisecond)
	if got := len(rec.ofType(protocol.MonsterSpawned)); got != 0 {
		t.Fatalf("spawned %d monsters inside the interval", got)
	}

	// At the next interval boundary another batch comes out.
	rec.reset()
	a.Tick(now.Add(a.wave.SpawnInterval), 50*time.Millisecond)
	if got := len(rec.ofType(protocol.MonsterSpawned)); got != 4 {
		t.Fatalf("spawned %d monsters at next interval, want 4", got)
	}
}

func TestBossSpawnsAfterWaveQuota(t *testing.T) {
	t.Parallel()

	a, rec := newTestAuthority(1)
	a.wave.KilledThisWave = a.wave.MonstersPerWave

	now := time.Now()
	a.Tick(now, 50*time.Millisecond)

	spawns := rec.ofType(protocol.MonsterSpawned)
	if len(spawns) != 1 {
		t.Fatalf("expected only the boss spawn, got %d spawns", len(spawns))
	}

	s := spawns[0].data.(protocol.MonsterState)
	if !s.IsBoss {
		t.Fatalf("spawn was not a boss: %+v", s)
	}

	// While the boss lives no normals spawn.
	rec.reset()
	a.Tick(now.Add(10*a.wave.SpawnInterval), 50*time.Millisecond)
	if got := len(rec.ofType(protocol.MonsterSpawned)); got != 0 {
		t.Fatalf("spawned %d monsters during boss fight", got)
	}
}

func TestBossKillCompletesWave(t *testing.T) {
	t.Parallel()

	a, rec := newTestAuthority(2)
	a.wave.KilledThisWave = a.wave.MonstersPerWave
	a.Tick(time.Now(), 50*time.Millisecond)

	boss := rec.ofType(protocol.MonsterSpawned)[0].data.(protocol.MonsterState)
	rec.reset()

	a.ApplyPeerDamage(protocol.MonsterDamagedPayload{MonsterID: boss.ID, NewHealth: 0})

	if len(rec.ofType(protocol.MonsterKilled)) != 1 {
		t.Fatalf("boss kill not broadcast")
	}

	waves := rec.ofType(protocol.WaveCompleted)
	if len(waves) != 1 {
		t.Fatalf("expected one wave-completed broadcast, got %d", len(waves))
	}

	p := waves[0].data.(protocol.WaveCompletedPayload)
	if p.NewWave != 2 {
		t.Fatalf("newWave = %d", p.NewWave)
	}
	if p.NewSpawnIntervalMs != a.wave.SpawnInterval.Milliseconds() {
		t.Fatalf("interval mismatch: %d vs %v", p.NewSpawnIntervalMs, a.wave.SpawnInterval)
	}
	if a.wave.Wave != 2 || a.wave.BossActive {
		t.Fatalf("wave state after boss kill: %+v", a.wave)
	}
}

func TestBreachDamagesBaseAndDespawns(t *testing.T) {
	t.Parallel()

	a, rec := newTestAuthority(1)
	now := time.Now()
	a.Tick(now, 50*time.Millisecond)

	rec.reset()

	// Drive a monster far enough to cross the defense line.
	for _, m := range a.monsters {
		m.Y = game.DefenseLineY + 1
		break
	}
	a.Tick(now.Add(10*time.Millisecond), 10*time.Millisecond)

	base := rec.ofType(protocol.BaseDamaged)
	if len(base) != 1 {
		t.Fatalf("expected one base-damaged broadcast, got %d", len(base))
	}
	if p := base[0].data.(protocol.BaseDamagedPayload); p.Amount != game.NormalMonsterDamage {
		t.Fatalf("amount = %v", p.Amount)
	}

	// Breach also despawns the monster room-wide.
	if len(rec.ofType(protocol.MonsterKilled)) != 1 {
		t.Fatalf("breached monster not despawned for peers")
	}
	if a.BaseHealth() != game.BaseHealth-game.NormalMonsterDamage {
		t.Fatalf("base health = %v", a.BaseHealth())
	}

	// No score and no wave progress for a breach.
	if a.wave.KilledThisWave != 0 {
		t.Fatalf("breach counted toward wave quota")
	}
}

func TestBaseDepletionEndsGame(t *testing.T) {
	t.Parallel()

	a, rec := newTestAuthority(1)
	a.baseHealth = game.NormalMonsterDamage
	now := time.Now()
	a.Tick(now, 50*time.Millisecond)

	for _, m := range a.monsters {
		m.Y = game.DefenseLineY + 1
		break
	}
	a.Tick(now.Add(10*time.Millisecond), 10*time.Millisecond)

	if !a.GameOver() {
		t.Fatalf("game not over at zero base health")
	}
	if a.BaseHealth() != 0 {
		t.Fatalf("base health went negative: %v", a.BaseHealth())
	}

	// A finished simulation stops producing frames.
	rec.reset()
	a.Tick(now.Add(5*time.Second), 50*time.Millisecond)
	if len(rec.frames) != 0 {
		t.Fatalf("simulation still emitting after game over: %d frames", len(rec.frames))
	}
}

func TestPositionAndSnapshotCadence(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	cadence := Cadence{PositionInterval: 100 * time.Millisecond, SnapshotInterval: 2 * time.Second}
	a := New("host-1", 1, cadence, rec, zap.NewNop().Sugar())

	start := time.Now()
	for i := 0; i <= 40; i++ {
		a.Tick(start.Add(time.Duration(i)*50*time.Millisecond), 50*time.Millisecond)
	}

	// 2 seconds of ticks at 50ms: deltas every 100ms, snapshots every 2s.
	deltas := len(rec.ofType(protocol.SyncPositions))
	snapshots := len(rec.ofType(protocol.SyncAllMonsters))

	if deltas < 19 || deltas > 21 {
		t.Fatalf("delta broadcasts = %d, want ~20", deltas)
	}
	if snapshots < 1 || snapshots > 2 {
		t.Fatalf("snapshot broadcasts = %d, want 1", snapshots)
	}
}

func TestSnapshotCarriesFullAttributeSet(t *testing.T) {
	t.Parallel()

	a, rec := newTestAuthority(1)
	a.Tick(time.Now(), 50*time.Millisecond)

	rec.reset()
	a.broadcastSnapshot()

	p := rec.ofType(protocol.SyncAllMonsters)[0].data.(protocol.SyncAllMonstersPayload)
	if len(p.Monsters) != a.MonsterCount() {
		t.Fatalf("snapshot has %d entries, authority has %d", len(p.Monsters), a.MonsterCount())
	}
	for _, s := range p.Monsters {
		if s.ID == "" || s.MaxHealth == 0 || s.Speed == 0 {
			t.Fatalf("incomplete snapshot entry: %+v", s)
		}
	}
}

func TestApplyShotKillAndScore(t *testing.T) {
	t.Parallel()

	a, rec := newTestAuthority(1)
	a.Tick(time.Now(), 50*time.Millisecond)

	var target *game.Monster
	for _, m := range a.monsters {
		target = m
		break
	}
	target.Health = 5

	rec.reset()
	score := a.ApplyShot(target.ID, game.Weapons["basic"], time.Now())

	if score != game.KillScore(1, false) {
		t.Fatalf("score = %d", score)
	}
	if len(rec.ofType(protocol.MonsterDamaged)) != 1 || len(rec.ofType(protocol.MonsterKilled)) != 1 {
		t.Fatalf("kill shot frames: %+v", rec.frames)
	}
	if a.Monster(target.ID) != nil {
		t.Fatalf("killed monster still present")
	}
	if a.wave.KilledThisWave != 1 {
		t.Fatalf("kill not counted toward wave quota")
	}
}

func TestApplyShotFreezeWeapon(t *testing.T) {
	t.Parallel()

	a, _ := newTestAuthority(1)
	now := time.Now()
	a.Tick(now, 50*time.Millisecond)

	var target *game.Monster
	for _, m := range a.monsters {
		target = m
		break
	}

	a.ApplyShot(target.ID, game.Weapons["freeze"], now)

	if target.EffectiveSpeed(now.Add(time.Second)) != 0 {
		t.Fatalf("target not frozen after freeze shot")
	}
}

func TestApplyShotUnknownTarget(t *testing.T) {
	t.Parallel()

	a, rec := newTestAuthority(1)
	if score := a.ApplyShot("ghost", game.Weapons["basic"], time.Now()); score != 0 {
		t.Fatalf("score for unknown target: %d", score)
	}
	if len(rec.frames) != 0 {
		t.Fatalf("frames emitted for unknown target")
	}
}

func TestApplyPeerDamageTerminalHitKills(t *testing.T) {
	t.Parallel()

	a, rec := newTestAuthority(1)
	a.Tick(time.Now(), 50*time.Millisecond)

	var target *game.Monster
	for _, m := range a.monsters {
		target = m
		break
	}

	rec.reset()
	a.ApplyPeerDamage(protocol.MonsterDamagedPayload{MonsterID: target.ID, NewHealth: -2})

	if a.Monster(target.ID) != nil {
		t.Fatalf("monster survived terminal peer damage")
	}
	if len(rec.ofType(protocol.MonsterKilled)) != 1 {
		t.Fatalf("terminal peer damage did not broadcast the kill")
	}

	// The peer's own kill frame arrives next; it must be a no-op.
	rec.reset()
	a.ApplyPeerKill(target.ID)
	if len(rec.frames) != 0 {
		t.Fatalf("duplicate kill re-broadcast")
	}
}

func TestApplyPeerKillIdempotent(t *testing.T) {
	t.Parallel()

	a, rec := newTestAuthority(1)
	a.Tick(time.Now(), 50*time.Millisecond)

	var id string
	for mid := range a.monsters {
		id = mid
		break
	}

	a.ApplyPeerKill(id)
	count := a.MonsterCount()
	frames := len(rec.frames)

	a.ApplyPeerKill(id)
	if a.MonsterCount() != count || len(rec.frames) != frames {
		t.Fatalf("second kill changed state")
	}
}

func TestApplyWaveEchoIgnoresStale(t *testing.T) {
	t.Parallel()

	a, _ := newTestAuthority(2)
	a.wave.Wave = 3
	interval := a.wave.SpawnInterval

	a.ApplyWaveEcho(protocol.WaveCompletedPayload{NewWave: 3, NewSpawnIntervalMs: 999, NewMonstersPerWave: 99})

	if a.wave.SpawnInterval != interval || a.wave.MonstersPerWave == 99 {
		t.Fatalf("stale echo mutated wave state: %+v", a.wave)
	}
}

func TestResumeSeedsFromMirror(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	monsters := []*game.Monster{
		{ID: "old-host-0", Y: 200, Health: 10, MaxHealth: 15, Speed: 48, Wave: 2},
		{ID: "old-host-1", Y: 350, Health: 5, MaxHealth: 15, Speed: 48, Wave: 2},
	}
	wave := game.WaveState{Wave: 2, SpawnInterval: 500 * time.Millisecond, MonstersPerWave: 6}

	a := Resume("new-host", 2, monsters, wave, 70, DefaultCadence(), rec, zap.NewNop().Sugar())

	if a.MonsterCount() != 2 {
		t.Fatalf("mirror entities lost: %d", a.MonsterCount())
	}
	if a.BaseHealth() != 70 {
		t.Fatalf("base health = %v", a.BaseHealth())
	}
	if a.Wave().Wave != 2 {
		t.Fatalf("wave = %d", a.Wave().Wave)
	}

	// New spawns live in the new host's id namespace.
	a.wave.SpawnInterval = time.Millisecond
	a.Tick(time.Now(), 50*time.Millisecond)

	spawns := rec.ofType(protocol.MonsterSpawned)
	if len(spawns) == 0 {
		t.Fatalf("resumed authority does not spawn")
	}
	for _, f := range spawns {
		s := f.data.(protocol.MonsterState)
		if s.ID == "old-host-0" || s.ID == "old-host-1" {
			t.Fatalf("resumed spawn reused an inherited id: %q", s.ID)
		}
	}
}
