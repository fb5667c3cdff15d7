package game

import "time"

// Field geometry and base tuning. Positions use the original playfield's
// coordinate space: monsters travel down the y axis from SpawnY toward
// DefenseLineY.
const (
	Lanes        = 8
	FieldHeight  = 720.0
	SpawnY       = -40.0
	DefenseLineY = FieldHeight - 100

	BaseHealth = 100.0

	baseMonsterSpeed     = 40.0
	bossSpeedFactor      = 0.4
	bossHealthMultiplier = 3.0

	NormalMonsterDamage = 10.0
	BossMonsterDamage   = 30.0

	minSpawnInterval       = 300 * time.Millisecond
	startSpawnInterval     = 1200 * time.Millisecond
	spawnIntervalPerPlayer = 150 * time.Millisecond
	spawnIntervalStep      = 50 * time.Millisecond

	FreezeDuration = 4 * time.Second
	SlowDuration   = 3 * time.Second
	slowFactor     = 0.5
)

// StartSpawnInterval returns the initial spawn cadence; more players make
// spawns faster, floored at the minimum interval.
func StartSpawnInterval(playerCount int) time.Duration {
	interval := startSpawnInterval - time.Duration(playerCount)*spawnIntervalPerPlayer
	if interval < minSpawnInterval {
		interval = minSpawnInterval
	}
	return interval
}

// NextSpawnInterval tightens the cadence after a completed wave.
func NextSpawnInterval(current time.Duration) time.Duration {
	next := current - spawnIntervalStep
	if next < minSpawnInterval {
		next = minSpawnInterval
	}
	return next
}

// MonstersPerWave scales the wave size with the roster and, every third
// wave, with difficulty.
func MonstersPerWave(playerCount, wave int) int {
	return 2*playerCount + (wave/3)*playerCount
}

func NormalHealth(wave int) float64 {
	return 10 + float64(wave)*5
}

func NormalSpeed(wave int) float64 {
	return baseMonsterSpeed + float64(wave)*8
}

func BossHealth(wave, playerCount int) float64 {
	return (50 + float64(wave)*50) * bossHealthMultiplier * float64(playerCount)
}

func BossSpeed(wave int) float64 {
	return (baseMonsterSpeed + float64(wave)*5) * bossSpeedFactor
}

// KillScore is the score awarded to the killer; bosses are worth 5x.
func KillScore(wave int, isBoss bool) int {
	if isBoss {
		return 500 * wave
	}
	return 100 * wave
}
