package ws_test

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/quizdefense/quizdefense/internal/infrastructure/ws"
	"github.com/quizdefense/quizdefense/internal/protocol"
	"github.com/quizdefense/quizdefense/internal/registry"
)

type rawServerEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func newRelayServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	logger := zap.NewNop().Sugar()
	reg := registry.New(100, logger)
	hub := ws.NewHub(reg, logger)
	reg.SetSender(hub)
	go hub.Run()

	upgrader := ws.NewUpgrader([]string{"*"})
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := ws.NewClient(conn)
		hub.Register() <- client
		go client.WritePump(hub)
		go client.ReadPump(hub)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server, "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
}

func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func writeEnvelope(t *testing.T, conn *websocket.Conn, eventType string, payload any) {
	t.Helper()

	if err := conn.WriteJSON(protocol.OutEnvelope{Type: eventType, Data: payload}); err != nil {
		t.Fatalf("write %s failed: %v", eventType, err)
	}
}

func waitForEnvelope(t *testing.T, conn *websocket.Conn, eventType string) rawServerEnvelope {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		env, ok := readEnvelope(t, conn)
		if !ok {
			continue
		}
		if env.Type == eventType {
			return env
		}
	}
	t.Fatalf("timed out waiting for %s", eventType)
	return rawServerEnvelope{}
}

func readEnvelope(t *testing.T, conn *websocket.Conn) (rawServerEnvelope, bool) {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond)); err != nil {
		t.Fatalf("set read deadline failed: %v", err)
	}

	_, payload, err := conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return rawServerEnvelope{}, false
		}
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return rawServerEnvelope{}, false
		}
		t.Fatalf("read failed: %v", err)
	}

	var env rawServerEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		t.Fatalf("decode envelope failed: %v", err)
	}
	return env, true
}

func connectPlayer(t *testing.T, wsURL string) (*websocket.Conn, string) {
	t.Helper()

	conn := dial(t, wsURL)
	env := waitForEnvelope(t, conn, protocol.Connected)

	var p protocol.ConnectedPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		t.Fatalf("decode connected payload: %v", err)
	}
	if p.PlayerID == "" {
		t.Fatalf("empty player id in welcome frame")
	}
	return conn, p.PlayerID
}

func TestConnectionReceivesIdentity(t *testing.T) {
	_, wsURL := newRelayServer(t)

	_, idA := connectPlayer(t, wsURL)
	_, idB := connectPlayer(t, wsURL)

	if idA == idB {
		t.Fatalf("two connections share an identity: %q", idA)
	}
}

func TestCreateJoinAndRosterBroadcast(t *testing.T) {
	_, wsURL := newRelayServer(t)

	hostConn, hostID := connectPlayer(t, wsURL)
	peerConn, peerID := connectPlayer(t, wsURL)

	writeEnvelope(t, hostConn, protocol.CreateRoom, protocol.CreateRoomPayload{PlayerName: "Alice"})

	env := waitForEnvelope(t, hostConn, protocol.RoomCreated)
	var created protocol.RoomCreatedPayload
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode room-created: %v", err)
	}
	if len(created.RoomCode) != 4 {
		t.Fatalf("room code %q", created.RoomCode)
	}
	if created.Room.Host != hostID {
		t.Fatalf("host = %q, want %q", created.Room.Host, hostID)
	}

	writeEnvelope(t, peerConn, protocol.JoinRoom, protocol.JoinRoomPayload{
		RoomCode:   created.RoomCode,
		PlayerName: "Bob",
	})

	// Both members see the two-player roster.
	for _, conn := range []*websocket.Conn{hostConn, peerConn} {
		env := waitForEnvelope(t, conn, protocol.RoomUpdated)

		var info protocol.RoomInfo
		if err := json.Unmarshal(env.Data, &info); err != nil {
			t.Fatalf("decode room-updated: %v", err)
		}
		if len(info.Players) != 2 {
			t.Fatalf("roster size = %d", len(info.Players))
		}

		ids := map[string]bool{}
		for _, p := range info.Players {
			ids[p.ID] = true
		}
		if !ids[hostID] || !ids[peerID] {
			t.Fatalf("roster %v missing a member", ids)
		}
	}
}

func TestGameplayRelayAcrossConnections(t *testing.T) {
	_, wsURL := newRelayServer(t)

	hostConn, _ := connectPlayer(t, wsURL)
	peerConn, _ := connectPlayer(t, wsURL)

	writeEnvelope(t, hostConn, protocol.CreateRoom, protocol.CreateRoomPayload{PlayerName: "Alice"})
	env := waitForEnvelope(t, hostConn, protocol.RoomCreated)
	var created protocol.RoomCreatedPayload
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode room-created: %v", err)
	}

	writeEnvelope(t, peerConn, protocol.JoinRoom, protocol.JoinRoomPayload{
		RoomCode:   created.RoomCode,
		PlayerName: "Bob",
	})
	_ = waitForEnvelope(t, peerConn, protocol.RoomUpdated)

	writeEnvelope(t, hostConn, protocol.StartGame, nil)
	_ = waitForEnvelope(t, peerConn, protocol.GameStarting)

	spawn := protocol.MonsterState{
		ID: "h-0", Lane: 3, Y: -40, Kind: "ufo-a",
		Health: 15, MaxHealth: 15, Speed: 48, Wave: 1,
	}
	writeEnvelope(t, hostConn, protocol.MonsterSpawned, spawn)

	env = waitForEnvelope(t, peerConn, protocol.MonsterSpawned)
	var got protocol.MonsterState
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode spawn relay: %v", err)
	}
	if got.ID != "h-0" || got.Health != 15 {
		t.Fatalf("relayed spawn = %+v", got)
	}
}

func TestMalformedFrameGetsError(t *testing.T) {
	_, wsURL := newRelayServer(t)
	conn, _ := connectPlayer(t, wsURL)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"no-such-event"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	env := waitForEnvelope(t, conn, protocol.RoomError)
	var p protocol.ErrorPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if p.Message == "" {
		t.Fatalf("empty error message")
	}
}

func TestDisconnectPromotesAndBroadcasts(t *testing.T) {
	_, wsURL := newRelayServer(t)

	hostConn, _ := connectPlayer(t, wsURL)
	peerConn, peerID := connectPlayer(t, wsURL)

	writeEnvelope(t, hostConn, protocol.CreateRoom, protocol.CreateRoomPayload{PlayerName: "Alice"})
	env := waitForEnvelope(t, hostConn, protocol.RoomCreated)
	var created protocol.RoomCreatedPayload
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode room-created: %v", err)
	}

	writeEnvelope(t, peerConn, protocol.JoinRoom, protocol.JoinRoomPayload{
		RoomCode:   created.RoomCode,
		PlayerName: "Bob",
	})
	_ = waitForEnvelope(t, peerConn, protocol.RoomUpdated)

	if err := hostConn.Close(); err != nil {
		t.Fatalf("close host: %v", err)
	}

	// The survivor hears about the migration and is now the host.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		env := waitForEnvelope(t, peerConn, protocol.RoomUpdated)

		var info protocol.RoomInfo
		if err := json.Unmarshal(env.Data, &info); err != nil {
			t.Fatalf("decode room-updated: %v", err)
		}
		if info.Host == peerID && len(info.Players) == 1 {
			return
		}
	}
	t.Fatalf("timed out waiting for host migration broadcast")
}
