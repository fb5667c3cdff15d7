// Package registry holds the server-side directory of live rooms and routes
// session traffic between their members. All mutations happen on the hub's
// dispatch goroutine, one message at a time, so no operation on a room can
// interleave with another.
package registry

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/quizdefense/quizdefense/internal/domain"
	"github.com/quizdefense/quizdefense/internal/protocol"
)

const maxCodeAttempts = 100

// Sender delivers frames to connected clients. Implemented by the ws hub.
type Sender interface {
	SendTo(clientID string, env *protocol.OutEnvelope)
}

type Registry struct {
	mu         sync.RWMutex
	rooms      map[string]*domain.Room // code → room
	memberRoom map[string]string       // member ID → room code

	capacity uint
	sender   Sender
	logger   *zap.SugaredLogger
}

func New(capacity uint, logger *zap.SugaredLogger) *Registry {
	if capacity == 0 {
		capacity = 100
	}

	return &Registry{
		rooms:      make(map[string]*domain.Room),
		memberRoom: make(map[string]string),
		capacity:   capacity,
		logger:     logger,
	}
}

// SetSender wires the transport after construction; the hub and the registry
// reference each other, so one side has to be bound late.
func (reg *Registry) SetSender(s Sender) {
	reg.sender = s
}

// HandleMessage processes one decoded frame from senderID. Errors never
// leave the registry: rejections go back to the sender as room-error frames
// and the room stays untouched for everyone else.
func (reg *Registry) HandleMessage(senderID string, msg *protocol.Message) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	switch msg.Type {
	case protocol.CreateRoom:
		reg.createRoom(senderID, msg.Data.(protocol.CreateRoomPayload))
	case protocol.JoinRoom:
		reg.joinRoom(senderID, msg.Data.(protocol.JoinRoomPayload))
	case protocol.PlayerReady:
		reg.markReady(senderID)
	case protocol.StartGame:
		reg.startGame(senderID)
	default:
		reg.relayGameplay(senderID, msg)
	}
}

// HandleDisconnect removes the member from its room. Host reassignment
// happens inside the removal, before anyone can observe the room, so the
// one-host invariant holds even under back-to-back disconnects.
func (reg *Registry) HandleDisconnect(memberID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code, ok := reg.memberRoom[memberID]
	if !ok {
		return
	}
	delete(reg.memberRoom, memberID)

	room := reg.rooms[code]
	if room == nil {
		return
	}

	if err := room.RemoveMember(memberID); err != nil {
		return
	}

	if room.IsEmpty() {
		delete(reg.rooms, code)
		reg.logger.Infow("room deleted", "room", code)
		return
	}

	reg.broadcastRoom(room, protocol.NewRoomUpdated(roomInfo(room)), "")
}

// RoomInfo returns a read-only roster snapshot, for the HTTP surface.
func (reg *Registry) RoomInfo(code string) (protocol.RoomInfo, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	room, ok := reg.rooms[code]
	if !ok {
		return protocol.RoomInfo{}, domain.ErrRoomNotFound
	}
	return roomInfo(room), nil
}

func (reg *Registry) RoomCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

func (reg *Registry) createRoom(senderID string, p protocol.CreateRoomPayload) {
	if _, inRoom := reg.memberRoom[senderID]; inRoom {
		reg.sendError(senderID, "Already in a room")
		return
	}
	if uint(len(reg.rooms)) >= reg.capacity {
		reg.sendError(senderID, "Server is full")
		return
	}

	member, err := domain.NewMember(senderID, p.PlayerName)
	if err != nil {
		reg.sendError(senderID, err.Error())
		return
	}

	code, err := reg.uniqueRoomCode()
	if err != nil {
		reg.logger.Errorw("room code generation failed", "error", err)
		reg.sendError(senderID, "Could not create room")
		return
	}

	room := domain.NewRoom(code, *member)
	reg.rooms[code] = room
	reg.memberRoom[senderID] = code

	reg.logger.Infow("room created", "room", code, "host", member.Name)
	reg.sender.SendTo(senderID, protocol.NewRoomCreated(code, roomInfo(room)))
}

// uniqueRoomCode retries generation until the code is free among live
// rooms. Codes are reused once a room dies; uniqueness is only against the
// current registry.
func (reg *Registry) uniqueRoomCode() (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := domain.GenerateRoomCode()
		if err != nil {
			return "", err
		}
		if _, taken := reg.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", errors.New("room code space exhausted")
}

func (reg *Registry) joinRoom(senderID string, p protocol.JoinRoomPayload) {
	if _, inRoom := reg.memberRoom[senderID]; inRoom {
		reg.sendError(senderID, "Already in a room")
		return
	}

	room, ok := reg.rooms[p.RoomCode]
	if !ok {
		reg.sendError(senderID, "Room not found")
		return
	}

	member, err := domain.NewMember(senderID, p.PlayerName)
	if err != nil {
		reg.sendError(senderID, err.Error())
		return
	}

	if err := room.AddMember(*member); err != nil {
		switch {
		case errors.Is(err, domain.ErrGameAlreadyStarted):
			reg.sendError(senderID, "Game already started")
		case errors.Is(err, domain.ErrRoomFull):
			reg.sendError(senderID, "Room is full")
		default:
			reg.sendError(senderID, "Cannot join room")
		}
		return
	}

	reg.memberRoom[senderID] = p.RoomCode
	reg.logger.Infow("member joined", "room", p.RoomCode, "member", member.Name)

	reg.broadcastRoom(room, protocol.NewRoomUpdated(roomInfo(room)), "")
}

func (reg *Registry) markReady(senderID string) {
	room := reg.memberRoomOf(senderID)
	if room == nil {
		return
	}

	member := room.FindMember(senderID)
	if member == nil {
		return
	}
	member.Ready = true

	reg.broadcastRoom(room, protocol.NewRoomUpdated(roomInfo(room)), "")
}

func (reg *Registry) startGame(senderID string) {
	room := reg.memberRoomOf(senderID)
	if room == nil {
		return
	}

	// Host-only; anyone else's start-game is dropped.
	if !room.IsHost(senderID) {
		reg.logger.Debugw("start-game from non-host ignored", "room", room.Code, "member", senderID)
		return
	}
	if room.Started {
		return
	}

	room.Started = true
	reg.logger.Infow("game starting", "room", room.Code)

	reg.broadcastRoom(room, protocol.NewGameStarting(), "")
}

// hostOnlyEvents may only originate from the room's host: they either
// create entities or advance room-wide authoritative state.
var hostOnlyEvents = map[string]bool{
	protocol.MonsterSpawned:       true,
	protocol.SyncPositions:        true,
	protocol.SyncAllMonsters:      true,
	protocol.WaveCompleted:        true,
	protocol.BaseDamaged:          true,
	protocol.QuestionTypesUpdated: true,
}

// wholeRoomEvents are echoed back to the sender as well, so every member,
// host included, applies the transition through the same code path.
var wholeRoomEvents = map[string]bool{
	protocol.WaveCompleted:  true,
	protocol.CountdownEnded: true,
}

func (reg *Registry) relayGameplay(senderID string, msg *protocol.Message) {
	room := reg.memberRoomOf(senderID)
	if room == nil {
		reg.sendError(senderID, "Not in a room")
		return
	}
	if !room.Started {
		reg.sendError(senderID, "Game has not started")
		return
	}
	if hostOnlyEvents[msg.Type] && !room.IsHost(senderID) {
		reg.logger.Warnw("host-only event from non-host rejected",
			"room", room.Code, "member", senderID, "type", msg.Type)
		reg.sendError(senderID, "Not authorized")
		return
	}

	out := &protocol.OutEnvelope{Type: msg.Type, Data: msg.Data}

	// Stats are peer-authoritative per key: tag with the transport-assigned
	// sender id so receivers merge into the right leaderboard slot.
	if msg.Type == protocol.UpdateStats {
		p := msg.Data.(protocol.UpdateStatsPayload)
		out = protocol.NewPlayerStatsUpdated(senderID, p.Stats)
	}

	except := senderID
	if wholeRoomEvents[msg.Type] {
		except = ""
	}

	reg.broadcastRoom(room, out, except)
}

func (reg *Registry) memberRoomOf(senderID string) *domain.Room {
	code, ok := reg.memberRoom[senderID]
	if !ok {
		return nil
	}
	return reg.rooms[code]
}

func (reg *Registry) broadcastRoom(room *domain.Room, env *protocol.OutEnvelope, exceptID string) {
	for i := range room.Members {
		if room.Members[i].ID == exceptID {
			continue
		}
		reg.sender.SendTo(room.Members[i].ID, env)
	}
}

func (reg *Registry) sendError(memberID, message string) {
	reg.sender.SendTo(memberID, protocol.NewRoomError(message))
}

func roomInfo(room *domain.Room) protocol.RoomInfo {
	players := make([]protocol.PlayerInfo, 0, len(room.Members))
	for _, m := range room.Members {
		players = append(players, protocol.PlayerInfo{
			ID:     m.ID,
			Name:   m.Name,
			IsHost: m.IsHost,
			Ready:  m.Ready,
		})
	}

	return protocol.RoomInfo{
		Code:    room.Code,
		Host:    room.HostID,
		Started: room.Started,
		Players: players,
	}
}
