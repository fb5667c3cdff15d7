package domain

import (
	"crypto/rand"
	"errors"
	"math/big"
	"time"
)

const (
	maxMembers = 8

	roomCodeLength = 4
	roomCodeDigits = "0123456789"
)

var (
	digitCount = big.NewInt(int64(len(roomCodeDigits)))

	ErrRoomNotFound       = errors.New("room not found")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrRoomFull           = errors.New("room is full")
	ErrMemberNotFound     = errors.New("member not found")
	ErrNotHost            = errors.New("member is not the host")
	ErrNotInRoom          = errors.New("not a member of any room")
	ErrInvalidInput       = errors.New("invalid input")
)

// Room is one multiplayer session. Members are ordered by join time; the
// first remaining member inherits the host role when the host leaves.
type Room struct {
	Code      string    `json:"code"`
	Members   []Member  `json:"players"`
	HostID    string    `json:"host"`
	Started   bool      `json:"gameStarted"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewRoom(code string, host Member) *Room {
	host.IsHost = true

	return &Room{
		Code:      code,
		Members:   append(make([]Member, 0, maxMembers), host),
		HostID:    host.ID,
		CreatedAt: time.Now(),
	}
}

func (r *Room) AddMember(m Member) error {
	if r.Started {
		return ErrGameAlreadyStarted
	}
	if len(r.Members) >= maxMembers {
		return ErrRoomFull
	}

	m.IsHost = false
	r.Members = append(r.Members, m)
	return nil
}

func (r *Room) FindMember(memberID string) *Member {
	for i := range r.Members {
		if r.Members[i].ID == memberID {
			return &r.Members[i]
		}
	}
	return nil
}

func (r *Room) IsHost(memberID string) bool {
	return r.HostID == memberID
}

func (r *Room) IsEmpty() bool {
	return len(r.Members) == 0
}

// RemoveMember drops a member, preserving join order. If the host left and
// members remain, the earliest-remaining member is promoted; promotion
// happens here, before the caller can observe the room, so a non-empty room
// always has exactly one host.
func (r *Room) RemoveMember(memberID string) error {
	idx := -1
	for i := range r.Members {
		if r.Members[i].ID == memberID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrMemberNotFound
	}

	r.Members = append(r.Members[:idx], r.Members[idx+1:]...)

	if r.HostID == memberID && len(r.Members) > 0 {
		r.Members[0].IsHost = true
		r.HostID = r.Members[0].ID
	}
	return nil
}

// GenerateRoomCode returns a random 4-digit code. Uniqueness among live
// rooms is the registry's responsibility (it retries on collision).
func GenerateRoomCode() (string, error) {
	code := make([]byte, roomCodeLength)

	for i := range code {
		n, err := rand.Int(rand.Reader, digitCount)
		if err != nil {
			return "", err
		}
		code[i] = roomCodeDigits[n.Int64()]
	}

	return string(code), nil
}
