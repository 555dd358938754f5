package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/wfunc/minesduel/config"
	"github.com/wfunc/minesduel/game"
	"github.com/wfunc/minesduel/monitor"
	"github.com/wfunc/minesduel/network"
)

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func newTestServer(t *testing.T) (*GameServer, *httptest.Server) {
	t.Helper()
	reg := prometheus.NewRegistry()
	cfg := config.ServerConfig{
		HTTPAddress: "127.0.0.1:0",
		RPCAddress:  "127.0.0.1:0",
		GRPCAddress: "127.0.0.1:0",
	}
	s, err := NewGameServer(cfg, nil, monitor.NewMonitorWithRegistry("test", reg, reg))
	if err != nil {
		t.Fatalf("NewGameServer failed: %v", err)
	}
	s.lifecycle.NewBoard = func() (*game.Board, error) {
		return game.NewBoardWithMines(game.BoardWidth, game.BoardHeight, []game.Coord{{Row: 5, Col: 5}, {Row: 9, Col: 9}})
	}
	s.lifecycle.Coin = func() bool { return true }

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *testClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &testClient{t: t, conn: conn}
}

func (c *testClient) send(msgID uint16, payload string) {
	c.t.Helper()
	frame, err := network.EncodeFrame(msgID, []byte(payload))
	if err != nil {
		c.t.Fatalf("EncodeFrame failed: %v", err)
	}
	if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		c.t.Fatalf("WriteMessage failed: %v", err)
	}
}

func (c *testClient) expect(msgID uint16, payload string) {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		c.t.Fatalf("ReadMessage failed waiting for %d: %v", msgID, err)
	}
	packet, err := network.DecodeFrame(data)
	if err != nil {
		c.t.Fatalf("DecodeFrame failed: %v", err)
	}
	if packet.MsgID != msgID {
		c.t.Fatalf("Expected message %d, got %d (%s)", msgID, packet.MsgID, packet.Data)
	}
	if payload != "" && string(packet.Data) != payload {
		c.t.Errorf("Expected %d payload %s, got %s", msgID, payload, packet.Data)
	}
}

func (c *testClient) read() *network.Packet {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		c.t.Fatalf("ReadMessage failed: %v", err)
	}
	packet, err := network.DecodeFrame(data)
	if err != nil {
		c.t.Fatalf("DecodeFrame failed: %v", err)
	}
	return packet
}

func TestGameServer_FullGameFlow(t *testing.T) {
	s, ts := newTestServer(t)
	alice := dial(t, ts)
	bob := dial(t, ts)

	alice.send(network.MsgTypeNewRoom, "")
	created := alice.read()
	if created.MsgID != network.MsgTypeNewRoom || len(created.Data) != 7 {
		t.Fatalf("Expected a quoted 5-digit room id, got %d %s", created.MsgID, created.Data)
	}
	roomID := strings.Trim(string(created.Data), `"`)

	bob.send(network.MsgTypeJoinRoom, `{"room_id":"`+roomID+`"}`)
	bob.expect(network.MsgTypeJoinRoom, `"`+roomID+`"`)
	bob.expect(network.MsgTypeStart, "1")
	alice.expect(network.MsgTypeStart, "0")

	// 第三个玩家加入满员房间
	carol := dial(t, ts)
	carol.send(network.MsgTypeJoinRoom, `{"room_id":"`+roomID+`"}`)
	carol.expect(network.MsgTypeJoinRoom, "-1")

	carol.send(network.MsgTypeMove, `{"room_id":"xxxxx","row":0,"col":0}`)
	carol.expect(network.MsgTypeMove, `[null,"Room not found."]`)

	bob.send(network.MsgTypeMove, `{"room_id":"`+roomID+`","row":0,"col":0}`)
	bob.expect(network.MsgTypeMove, `[null,"Not your turn yet."]`)

	alice.send(network.MsgTypeMove, `{"room_id":"`+roomID+`","row":5,"col":5}`)
	alice.expect(network.MsgTypeMove, `[[[5,5,0,"R"]],null]`)
	alice.expect(network.MsgTypeReveal, `[[5,5,0,"R"]]`)
	alice.expect(network.MsgTypeLastMove, `[[5,5],null]`)
	alice.expect(network.MsgTypeScore, `[1,0]`)
	bob.expect(network.MsgTypeReveal, `[[5,5,0,"R"]]`)
	bob.expect(network.MsgTypeLastMove, `[[5,5],null]`)
	bob.expect(network.MsgTypeScore, `[1,0]`)

	bob.conn.Close()
	alice.expect(network.MsgTypeLeave, `[[9,9,0,"X"]]`)

	alice.send(network.MsgTypeMove, `{"room_id":"`+roomID+`","row":0,"col":0}`)
	alice.expect(network.MsgTypeMove, `[null,"Game is over."]`)

	if s.roomManager.Count() != 1 {
		t.Errorf("Expected the frozen room to stay until empty, got %d rooms", s.roomManager.Count())
	}
}

func TestGameServer_LeaveDestroysRoom(t *testing.T) {
	s, ts := newTestServer(t)
	alice := dial(t, ts)

	alice.send(network.MsgTypeNewRoom, "")
	alice.read()
	if s.roomManager.Count() != 1 {
		t.Fatalf("Expected 1 room, got %d", s.roomManager.Count())
	}

	alice.send(network.MsgTypeLeaveRoom, "")
	// 同一连接上的消息按顺序处理，收到回复时 leave 已经完成
	alice.send(network.MsgTypeMove, `{"room_id":"xxxxx","row":0,"col":0}`)
	alice.expect(network.MsgTypeMove, `[null,"Room not found."]`)

	if s.roomManager.Count() != 0 {
		t.Errorf("Expected the empty room to be destroyed, got %d rooms", s.roomManager.Count())
	}
}

func TestGameServer_BadRequests(t *testing.T) {
	_, ts := newTestServer(t)
	c := dial(t, ts)

	c.send(network.MsgTypeJoinRoom, `not json`)
	c.expect(network.MsgTypeJoinRoom, "-1")

	c.send(network.MsgTypeMove, `{"room_id":"1","row":"a"}`)
	c.expect(network.MsgTypeMove, `[null,"Invalid move."]`)

	// 过短的帧被忽略，连接保持可用
	c.conn.WriteMessage(websocket.BinaryMessage, []byte{0x00})
	c.send(network.MsgTypeJoinRoom, `{"room_id":"xxxxx"}`)
	c.expect(network.MsgTypeJoinRoom, "-1")
}

func TestGameServer_SampleStats(t *testing.T) {
	s, ts := newTestServer(t)
	alice := dial(t, ts)
	alice.send(network.MsgTypeNewRoom, "")
	alice.read()

	s.sampleStats()
	if got := testutil.ToFloat64(s.monitor.Metrics().ActiveRooms); got != 1 {
		t.Errorf("Expected 1 active room, got %v", got)
	}
	if got := testutil.ToFloat64(s.monitor.Metrics().OnlinePlayers); got != 1 {
		t.Errorf("Expected 1 online player, got %v", got)
	}
}
