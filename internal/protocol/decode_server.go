package protocol

import (
	"encoding/json"
	"fmt"
)

// DecodeServer parses a server→client frame on the client side. Gameplay
// relays reuse the client→server payload shapes; the lobby frames have
// their own.
func DecodeServer(raw []byte) (*Message, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	msg := &Message{Type: env.Type}

	switch env.Type {
	case Connected:
		var p ConnectedPayload
		if err := unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		msg.Data = p

	case RoomCreated:
		var p RoomCreatedPayload
		if err := unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		msg.Data = p

	case RoomUpdated:
		var p RoomInfo
		if err := unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		msg.Data = p

	case RoomError:
		var p ErrorPayload
		if err := unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		msg.Data = p

	case GameStarting:
		// No payload.

	case PlayerStatsUpdated:
		var p PlayerStatsUpdatedPayload
		if err := unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		msg.Data = p

	case MonsterSpawned, MonsterDamaged, MonsterKilled, BaseDamaged,
		SyncPositions, SyncAllMonsters, WaveCompleted,
		CountdownEnded, QuestionTypesUpdated:
		// Same shapes as the client→server catalog.
		return Decode(raw)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type)
	}

	return msg, nil
}
