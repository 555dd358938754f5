package rpc

import (
	"errors"
	"net"
	"net/rpc"
	"sort"

	"github.com/wfunc/minesduel/logger"
	"github.com/wfunc/minesduel/models"
	"github.com/wfunc/minesduel/room"
	"github.com/wfunc/minesduel/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
	rpc      *rpc.Server
}

// NewServer listens on addr and registers the given receivers.
func NewServer(addr string, receivers ...interface{}) (*Server, error) {
	server := rpc.NewServer()
	for _, rcvr := range receivers {
		if err := server.Register(rcvr); err != nil {
			return nil, err
		}
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  listener.Addr().String(),
		rpc:      server,
	}, nil
}

// Addr is the bound address, useful when listening on port 0.
func (s *Server) Addr() string {
	return s.address
}

// Start begins listening for RPC requests. It blocks until Stop is called.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go s.rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// StatsService exposes room and match statistics over net/rpc.
type StatsService struct {
	rooms   *room.Manager
	matches *services.MatchService
}

func NewStatsService(rooms *room.Manager, matches *services.MatchService) *StatsService {
	return &StatsService{rooms: rooms, matches: matches}
}

type ListRoomsArgs struct{}

type ListRoomsReply struct {
	Rooms []models.RoomSummary
}

// ListRooms returns every live room ordered by id.
func (s *StatsService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	rooms := s.rooms.Rooms()
	reply.Rooms = make([]models.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		reply.Rooms = append(reply.Rooms, models.RoomSummary{
			RoomID:    r.ID,
			Status:    r.Status().String(),
			Players:   r.PlayerCount(),
			CreatedAt: r.CreatedAt,
		})
	}
	sort.Slice(reply.Rooms, func(i, j int) bool {
		return reply.Rooms[i].RoomID < reply.Rooms[j].RoomID
	})
	return nil
}

type MatchStatsArgs struct {
	Recent int // 同时返回最近几局，0 表示不需要
}

type MatchStatsReply struct {
	Stats  models.MatchStats
	Recent []models.MatchRecord
}

func (s *StatsService) MatchStats(args *MatchStatsArgs, reply *MatchStatsReply) error {
	stats, err := s.matches.Stats()
	if err != nil {
		return err
	}
	reply.Stats = stats

	if args.Recent > 0 {
		if reply.Recent, err = s.matches.RecentMatches(args.Recent); err != nil {
			return err
		}
	}
	return nil
}
