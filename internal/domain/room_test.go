package domain

import (
	"errors"
	"testing"
)

func member(id, name string) Member {
	return Member{ID: id, Name: name}
}

func TestGenerateRoomCodeFormat(t *testing.T) {
	t.Parallel()

	for i := 0; i < 100; i++ {
		code, err := GenerateRoomCode()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != 4 {
			t.Fatalf("expected 4-digit code, got %q", code)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("non-digit character in code %q", code)
			}
		}
	}
}

func TestNewRoomMakesCreatorHost(t *testing.T) {
	t.Parallel()

	room := NewRoom("1234", member("a", "Alice"))

	if room.HostID != "a" {
		t.Fatalf("host id = %q, want %q", room.HostID, "a")
	}
	if !room.Members[0].IsHost {
		t.Fatalf("creator not flagged as host")
	}
}

func TestAddMemberRejectsStartedGame(t *testing.T) {
	t.Parallel()

	room := NewRoom("1234", member("a", "Alice"))
	room.Started = true

	err := room.AddMember(member("b", "Bob"))
	if !errors.Is(err, ErrGameAlreadyStarted) {
		t.Fatalf("expected ErrGameAlreadyStarted, got %v", err)
	}
	if len(room.Members) != 1 {
		t.Fatalf("roster changed on rejected join: %d members", len(room.Members))
	}
}

func TestAddMemberRejectsFullRoom(t *testing.T) {
	t.Parallel()

	room := NewRoom("1234", member("m0", "Player0"))
	for i := 1; i < maxMembers; i++ {
		if err := room.AddMember(member(string(rune('a'+i)), "Player")); err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
	}

	err := room.AddMember(member("overflow", "Late"))
	if !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
}

func TestAddMemberNeverGrantsHost(t *testing.T) {
	t.Parallel()

	room := NewRoom("1234", member("a", "Alice"))

	joiner := member("b", "Bob")
	joiner.IsHost = true
	if err := room.AddMember(joiner); err != nil {
		t.Fatalf("add: %v", err)
	}

	if room.Members[1].IsHost {
		t.Fatalf("joiner kept host flag")
	}
	if room.HostID != "a" {
		t.Fatalf("host id changed to %q", room.HostID)
	}
}

func TestRemoveMemberPromotesEarliestRemaining(t *testing.T) {
	t.Parallel()

	room := NewRoom("1234", member("a", "Alice"))
	room.AddMember(member("b", "Bob"))
	room.AddMember(member("c", "Carol"))

	if err := room.RemoveMember("a"); err != nil {
		t.Fatalf("remove host: %v", err)
	}

	if room.HostID != "b" {
		t.Fatalf("promoted %q, want %q", room.HostID, "b")
	}

	hosts := 0
	for _, m := range room.Members {
		if m.IsHost {
			hosts++
		}
	}
	if hosts != 1 {
		t.Fatalf("room has %d hosts, want exactly 1", hosts)
	}
}

func TestRemoveMemberPreservesJoinOrder(t *testing.T) {
	t.Parallel()

	room := NewRoom("1234", member("a", "Alice"))
	room.AddMember(member("b", "Bob"))
	room.AddMember(member("c", "Carol"))
	room.AddMember(member("d", "Dave"))

	if err := room.RemoveMember("b"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	want := []string{"a", "c", "d"}
	for i, id := range want {
		if room.Members[i].ID != id {
			t.Fatalf("member[%d] = %q, want %q", i, room.Members[i].ID, id)
		}
	}
	if room.HostID != "a" {
		t.Fatalf("host changed on non-host leave: %q", room.HostID)
	}
}

func TestRemoveLastMemberEmptiesRoom(t *testing.T) {
	t.Parallel()

	room := NewRoom("1234", member("a", "Alice"))

	if err := room.RemoveMember("a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !room.IsEmpty() {
		t.Fatalf("room not empty after last member left")
	}
}

func TestRemoveUnknownMember(t *testing.T) {
	t.Parallel()

	room := NewRoom("1234", member("a", "Alice"))

	if err := room.RemoveMember("ghost"); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestNewMemberValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", "Alice", false},
		{"valid with digits", "Player 42", false},
		{"too short", "A", true},
		{"empty", "", true},
		{"too long", "abcdefghijklmnopqrstuvwxy", true},
		{"bad characters", "Alice<script>", true},
		{"leading space", " Alice", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewMember("id-1", tc.raw)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error for %q", tc.raw)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error for %q: %v", tc.raw, err)
			}
		})
	}
}
