package protocol

// Client → server.
const (
	CreateRoom  = "create-room"
	JoinRoom    = "join-room"
	PlayerReady = "player-ready"
	StartGame   = "start-game"

	MonsterSpawned  = "monster-spawned"
	MonsterDamaged  = "monster-damaged"
	MonsterKilled   = "monster-killed"
	BaseDamaged     = "base-damaged"
	SyncPositions   = "sync-monster-positions"
	SyncAllMonsters = "sync-all-monsters"
	WaveCompleted   = "wave-completed"
	UpdateStats     = "update-stats"

	CountdownEnded       = "countdown-ended"
	QuestionTypesUpdated = "question-types-updated"
)

// Server → client.
const (
	Connected    = "connected"
	RoomCreated  = "room-created"
	RoomUpdated  = "room-updated"
	RoomError    = "room-error"
	GameStarting = "game-starting"

	PlayerStatsUpdated = "player-stats-updated"
)
