package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownEvent   = errors.New("unknown event type")
	ErrInvalidPayload = errors.New("invalid payload")
)

// Message is a decoded inbound frame: the event type plus its payload,
// already unmarshalled into the matching struct. Data is nil for events
// that carry no payload.
type Message struct {
	Type string
	Data any
}

// Decode parses and validates one inbound frame. Every message crosses this
// boundary before reaching the registry or game logic; a frame that does
// not decode into the shape its type demands never gets further.
func Decode(raw []byte) (*Message, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	msg := &Message{Type: env.Type}

	switch env.Type {
	case CreateRoom:
		var p CreateRoomPayload
		if err := unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		if p.PlayerName == "" {
			return nil, fmt.Errorf("%w: playerName is required", ErrInvalidPayload)
		}
		msg.Data = p

	case JoinRoom:
		var p JoinRoomPayload
		if err := unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		if p.RoomCode == "" || p.PlayerName == "" {
			return nil, fmt.Errorf("%w: roomCode and playerName are required", ErrInvalidPayload)
		}
		msg.Data = p

	case PlayerReady, StartGame:
		// No payload.

	case MonsterSpawned:
		var p MonsterState
		if err := unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		if p.ID == "" {
			return nil, fmt.Errorf("%w: monster id is required", ErrInvalidPayload)
		}
		msg.Data = p

	case MonsterDamaged:
		var p MonsterDamagedPayload
		if err := unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		if p.MonsterID == "" {
			return nil, fmt.Errorf("%w: monsterId is required", ErrInvalidPayload)
		}
		msg.Data = p

	case MonsterKilled:
		var p MonsterKilledPayload
		if err := unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		if p.MonsterID == "" {
			return nil, fmt.Errorf("%w: monsterId is required", ErrInvalidPayload)
		}
		msg.Data = p

	case BaseDamaged:
		var p BaseDamagedPayload
		if err := unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		if p.Amount <= 0 {
			return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidPayload)
		}
		msg.Data = p

	case SyncPositions:
		var p SyncPositionsPayload
		if err := unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		for _, pos := range p.Positions {
			if pos.ID == "" {
				return nil, fmt.Errorf("%w: position entry without id", ErrInvalidPayload)
			}
		}
		msg.Data = p

	case SyncAllMonsters:
		var p SyncAllMonstersPayload
		if err := unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		for _, m := range p.Monsters {
			if m.ID == "" {
				return nil, fmt.Errorf("%w: monster entry without id", ErrInvalidPayload)
			}
		}
		msg.Data = p

	case WaveCompleted:
		var p WaveCompletedPayload
		if err := unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		if p.NewWave <= 0 || p.NewSpawnIntervalMs <= 0 || p.NewMonstersPerWave <= 0 {
			return nil, fmt.Errorf("%w: wave parameters must be positive", ErrInvalidPayload)
		}
		msg.Data = p

	case UpdateStats:
		var p UpdateStatsPayload
		if err := unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		msg.Data = p

	case CountdownEnded:
		var p CountdownEndedPayload
		if err := unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		msg.Data = p

	case QuestionTypesUpdated:
		var p QuestionTypesPayload
		if err := unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		msg.Data = p

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type)
	}

	return msg, nil
}

func unmarshal(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing payload", ErrInvalidPayload)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}
