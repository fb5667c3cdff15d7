package game

import "time"

// WaveState tracks the current wave's progress. The host's copy is the only
// authoritative one; peers overwrite theirs wholesale when a wave-completed
// message arrives.
type WaveState struct {
	Wave            int
	SpawnInterval   time.Duration
	MonstersPerWave int
	KilledThisWave  int
	BossActive      bool
}

func NewWaveState(playerCount int) WaveState {
	return WaveState{
		Wave:            1,
		SpawnInterval:   StartSpawnInterval(playerCount),
		MonstersPerWave: MonstersPerWave(playerCount, 1),
	}
}

// ReadyForBoss reports whether enough normals died this wave to bring out
// the boss.
func (w *WaveState) ReadyForBoss() bool {
	return !w.BossActive && w.KilledThisWave >= w.MonstersPerWave
}

// AdvanceWave moves to the next wave after a boss kill and derives the new
// spawn parameters.
func (w *WaveState) AdvanceWave(playerCount int) {
	w.Wave++
	w.BossActive = false
	w.KilledThisWave = 0
	w.SpawnInterval = NextSpawnInterval(w.SpawnInterval)
	w.MonstersPerWave = MonstersPerWave(playerCount, w.Wave)
}

// Adopt overwrites local wave tracking with the host-declared parameters.
func (w *WaveState) Adopt(wave int, spawnInterval time.Duration, monstersPerWave int) {
	w.Wave = wave
	w.SpawnInterval = spawnInterval
	w.MonstersPerWave = monstersPerWave
	w.KilledThisWave = 0
	w.BossActive = false
}
