package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/minesduel/broadcast"
	"github.com/wfunc/minesduel/config"
	"github.com/wfunc/minesduel/logger"
	"github.com/wfunc/minesduel/monitor"
	"github.com/wfunc/minesduel/network"
	"github.com/wfunc/minesduel/persistence"
	"github.com/wfunc/minesduel/room"
	minesduel_rpc "github.com/wfunc/minesduel/rpc"
	"github.com/wfunc/minesduel/services"
	"github.com/wfunc/minesduel/session"
	"github.com/wfunc/minesduel/timer"
)

const heartbeatInterval = 30 * time.Second

type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	lifecycle      *room.Lifecycle
	broadcaster    broadcast.Broadcaster
	matches        *services.MatchService
	monitor        *monitor.Monitor
	timers         *timer.Manager
	rpcServer      *minesduel_rpc.Server
	healthServer   *minesduel_rpc.HealthServer
	httpServer     *http.Server
	statsInterval  time.Duration
	shutdownChan   chan struct{}
	shutdownOnce   sync.Once
}

// NewGameServer wires rooms, sessions, match history and the admin endpoints. db may be nil.
func NewGameServer(cfg config.ServerConfig, db persistence.Database, mon *monitor.Monitor) (*GameServer, error) {
	s := &GameServer{
		addr:           cfg.HTTPAddress,
		roomManager:    room.NewRoomManager(),
		sessionManager: session.NewManager(),
		matches:        services.NewMatchService(db, mon),
		monitor:        mon,
		timers:         timer.NewManager(),
		statsInterval:  cfg.StatsInterval,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	// 初始化广播器
	roomBroadcaster := broadcast.NewRoomBroadcaster(s.roomManager, s.sessionManager)
	s.broadcaster = roomBroadcaster
	s.lifecycle = room.NewLifecycle(s.roomManager, roomBroadcaster, s.matches)

	// 初始化RPC服务器
	rpcServer, err := minesduel_rpc.NewServer(cfg.RPCAddress, minesduel_rpc.NewStatsService(s.roomManager, s.matches))
	if err != nil {
		s.timers.Stop()
		return nil, err
	}
	s.rpcServer = rpcServer

	healthServer, err := minesduel_rpc.NewHealthServer(cfg.GRPCAddress)
	if err != nil {
		s.timers.Stop()
		s.rpcServer.Stop()
		return nil, err
	}
	s.healthServer = healthServer

	s.httpServer = &http.Server{Addr: s.addr, Handler: s.Handler()}
	return s, nil
}

// Handler serves the game websocket at /ws.
func (s *GameServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// Start runs the admin endpoints and blocks serving websocket clients until Shutdown.
func (s *GameServer) Start() error {
	go s.rpcServer.Start()
	s.healthServer.Start()
	if s.statsInterval > 0 {
		s.timers.AddTimer(s.statsInterval, s.statsInterval, s.sampleStats)
	}

	logger.Log.Infof("Game server listening on %s", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting players, disconnects everyone and stops the admin endpoints.
func (s *GameServer) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.healthServer.SetServing(false)
		close(s.shutdownChan)

		err = s.httpServer.Shutdown(ctx)
		// websocket 连接已被劫持，需要单独关闭
		for _, sess := range s.sessionManager.Sessions() {
			sess.Close()
		}
		s.roomManager.CloseAll()

		s.timers.Stop()
		s.rpcServer.Stop()
		s.healthServer.Stop()
		s.matches.Wait()
		logger.Log.Info("Game server stopped.")
	})
	return err
}

func (s *GameServer) sampleStats() {
	rooms := s.roomManager.Count()
	s.monitor.SetActiveRooms(rooms)
	logger.Log.Debugf("Stats: %d sessions, %d rooms", s.sessionManager.Count(), rooms)
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	wsConn.SetHeartbeat(heartbeatInterval)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		if roomID := sess.RoomID(); roomID != "" {
			s.lifecycle.Leave(roomID, sess)
		}
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlinePlayers()
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if errors.Is(err, io.ErrShortBuffer) {
				logger.Log.Debugf("Session %s sent a malformed frame", sess.GetID())
				continue
			}
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	start := time.Now()
	s.monitor.IncMessagesReceived()
	defer func() {
		s.monitor.ObserveMessageLatency(time.Since(start))
	}()

	sess.Touch()
	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
	case network.MsgTypeNewRoom:
		s.handleNewRoom(sess)
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgTypeLeaveRoom:
		s.handleLeaveRoom(sess, packet)
	case network.MsgTypeMove:
		s.handleMove(sess, packet)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

func (s *GameServer) handleNewRoom(sess *session.Session) {
	roomID, err := s.lifecycle.NewRoom(sess)
	if err != nil {
		logger.Log.Errorf("Session %s could not create a room: %v", sess.GetID(), err)
		sess.SendJSON(network.MsgTypeNewRoom, network.JoinRejected)
		return
	}
	logger.Log.Infof("Session %s created room %s", sess.GetID(), roomID)
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	var req network.RoomRequest
	if err := network.Decode(packet.Data, &req); err != nil {
		sess.SendJSON(network.MsgTypeJoinRoom, network.JoinRejected)
		return
	}

	if err := s.lifecycle.Join(req.RoomID, sess); err != nil {
		logger.Log.Infof("Session %s could not join room %s: %v", sess.GetID(), req.RoomID, err)
		sess.SendJSON(network.MsgTypeJoinRoom, network.JoinRejected)
	}
}

func (s *GameServer) handleLeaveRoom(sess *session.Session, packet *network.Packet) {
	var req network.RoomRequest
	if len(packet.Data) > 0 {
		if err := network.Decode(packet.Data, &req); err != nil {
			return
		}
	}
	roomID := req.RoomID
	if roomID == "" {
		roomID = sess.RoomID()
	}
	if roomID != "" {
		s.lifecycle.Leave(roomID, sess)
	}
}

func (s *GameServer) handleMove(sess *session.Session, packet *network.Packet) {
	var req network.MoveRequest
	if err := network.Decode(packet.Data, &req); err != nil {
		replyMoveError(sess, "Invalid move.")
		return
	}

	err := s.lifecycle.Move(req.RoomID, sess, packet.Data)
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		replyMoveError(sess, "Room not found.")
	case err != nil:
		logger.Log.Errorf("Error handling move in room %s: %v", req.RoomID, err)
	}
}

func replyMoveError(sess *session.Session, text string) {
	sess.SendJSON(network.MsgTypeMove, network.MoveReply{Error: &text})
}
