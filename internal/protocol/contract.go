package protocol

import "encoding/json"

// Envelope is the wire frame for every message in a session. Inbound frames
// carry the payload as raw JSON so the payload shape can be checked against
// the event type before any registry or game logic sees it. The sender's
// identity is never part of the frame; it is bound to the connection by the
// transport.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// OutEnvelope is the server/peer-facing counterpart with a typed payload.
type OutEnvelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Payload structs

type CreateRoomPayload struct {
	PlayerName string `json:"playerName"`
}

type JoinRoomPayload struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type RoomCreatedPayload struct {
	RoomCode string   `json:"roomCode"`
	Room     RoomInfo `json:"room"`
}

// RoomInfo is the roster snapshot broadcast on every membership change.
type RoomInfo struct {
	Code    string       `json:"code"`
	Host    string       `json:"host"`
	Started bool         `json:"gameStarted"`
	Players []PlayerInfo `json:"players"`
}

type PlayerInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
	Ready  bool   `json:"ready"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// MonsterState carries the full attribute set of one entity. Used both for
// the spawn event and for entries of the full snapshot.
type MonsterState struct {
	ID        string  `json:"id"`
	Lane      int     `json:"lane"`
	Y         float64 `json:"y"`
	Kind      string  `json:"ufoType"`
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"maxHealth"`
	Speed     float64 `json:"speed"`
	Wave      int     `json:"difficulty"`
	IsBoss    bool    `json:"isBoss"`
}

type MonsterDamagedPayload struct {
	MonsterID string  `json:"monsterId"`
	NewHealth float64 `json:"newHealth"`
}

type MonsterKilledPayload struct {
	MonsterID string `json:"monsterId"`
}

type BaseDamagedPayload struct {
	Amount float64 `json:"amount"`
}

// PositionUpdate is one entry of the high-frequency delta broadcast.
type PositionUpdate struct {
	ID string  `json:"id"`
	Y  float64 `json:"y"`
}

type SyncPositionsPayload struct {
	Positions []PositionUpdate `json:"positions"`
}

type SyncAllMonstersPayload struct {
	Monsters []MonsterState `json:"monsters"`
}

type WaveCompletedPayload struct {
	NewWave            int   `json:"newWave"`
	NewSpawnIntervalMs int64 `json:"newSpawnInterval"`
	NewMonstersPerWave int   `json:"newMonstersPerWave"`
}

type PlayerStats struct {
	Score int `json:"score"`
	Ammo  int `json:"ammo"`
	Kills int `json:"kills"`
}

type UpdateStatsPayload struct {
	Stats PlayerStats `json:"stats"`
}

// PlayerStatsUpdatedPayload is the relayed form of an update-stats message,
// tagged with the transport-assigned sender id.
type PlayerStatsUpdatedPayload struct {
	PlayerID string      `json:"playerId"`
	Stats    PlayerStats `json:"stats"`
}

type CountdownEndedPayload struct {
	TriggerID string `json:"triggerId"`
}

type QuestionTypesPayload struct {
	QuestionTypes []string `json:"questionTypes"`
}

// ConnectedPayload tells a client the member id the transport bound to its
// connection. Sent once, immediately after the connection is accepted.
type ConnectedPayload struct {
	PlayerID string `json:"playerId"`
}

// Constructors for server-originated frames.

func NewConnected(playerID string) *OutEnvelope {
	return &OutEnvelope{Type: Connected, Data: ConnectedPayload{PlayerID: playerID}}
}

func NewRoomCreated(code string, room RoomInfo) *OutEnvelope {
	return &OutEnvelope{
		Type: RoomCreated,
		Data: RoomCreatedPayload{RoomCode: code, Room: room},
	}
}

func NewRoomUpdated(room RoomInfo) *OutEnvelope {
	return &OutEnvelope{Type: RoomUpdated, Data: room}
}

func NewRoomError(message string) *OutEnvelope {
	return &OutEnvelope{Type: RoomError, Data: ErrorPayload{Message: message}}
}

func NewGameStarting() *OutEnvelope {
	return &OutEnvelope{Type: GameStarting}
}

func NewPlayerStatsUpdated(playerID string, stats PlayerStats) *OutEnvelope {
	return &OutEnvelope{
		Type: PlayerStatsUpdated,
		Data: PlayerStatsUpdatedPayload{PlayerID: playerID, Stats: stats},
	}
}
