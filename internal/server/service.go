package server

import (
	"github.com/charmbracelet/log"

	"github.com/lox/pandapool/internal/game"
	"github.com/lox/pandapool/internal/protocol"
	"github.com/lox/pandapool/internal/room"
	"github.com/lox/pandapool/internal/rpcerr"
)

type handlerFunc func(*protocol.Message) (any, error)

// Service maps calls onto the room registry.
type Service struct {
	registry *room.Registry
	logger   *log.Logger
	handlers map[protocol.MessageType]handlerFunc
}

// NewService creates a service backed by registry.
func NewService(registry *room.Registry, logger *log.Logger) *Service {
	s := &Service{
		registry: registry,
		logger:   logger.WithPrefix("service"),
	}
	s.handlers = map[protocol.MessageType]handlerFunc{
		protocol.TypeCreateRoom:      s.createRoom,
		protocol.TypeJoinRoom:        s.joinRoom,
		protocol.TypeGetRoom:         s.getRoom,
		protocol.TypeSetPlayerInfo:   s.setPlayerInfo,
		protocol.TypeStartGame:       s.startGame,
		protocol.TypeGetGameState:    s.getGameState,
		protocol.TypePostTurn:        s.postTurn,
		protocol.TypeCheckWinState:   s.checkWinState,
		protocol.TypeGetPreviousTurn: s.getPreviousTurn,
	}
	return s
}

// Registry returns the registry the service operates on.
func (s *Service) Registry() *room.Registry {
	return s.registry
}

// Handle executes one request and returns the reply frame.
func (s *Service) Handle(msg *protocol.Message) *protocol.Message {
	handler, ok := s.handlers[msg.Type]
	if !ok {
		return errorReply(msg.RequestID, rpcerr.InvalidArgument("unknown message type %q", msg.Type))
	}

	data, err := handler(msg)
	if err != nil {
		s.logger.Debug("Request failed", "type", msg.Type, "requestId", msg.RequestID, "error", err)
		return errorReply(msg.RequestID, err)
	}

	reply, err := protocol.NewResult(msg.RequestID, data)
	if err != nil {
		s.logger.Error("Failed to encode reply", "type", msg.Type, "error", err)
		return errorReply(msg.RequestID, rpcerr.Internal("encode reply"))
	}
	return reply
}

func errorReply(requestID string, err error) *protocol.Message {
	return protocol.NewError(requestID, rpcerr.KindOf(err).String(), rpcerr.MessageOf(err))
}

func decode(msg *protocol.Message, v any) error {
	if err := msg.Decode(v); err != nil {
		return rpcerr.InvalidArgument("%v", err)
	}
	return nil
}

func (s *Service) createRoom(msg *protocol.Message) (any, error) {
	var req protocol.CreateRoomRequest
	if err := decode(msg, &req); err != nil {
		return nil, err
	}
	code, token, err := s.registry.CreateRoom()
	if err != nil {
		return nil, err
	}
	return protocol.CreateRoomResponse{RoomCode: code, PlayerToken: token}, nil
}

func (s *Service) joinRoom(msg *protocol.Message) (any, error) {
	var req protocol.JoinRoomRequest
	if err := decode(msg, &req); err != nil {
		return nil, err
	}
	token, err := s.registry.JoinRoom(req.RoomCode)
	if err != nil {
		return nil, err
	}
	return protocol.JoinRoomResponse{PlayerToken: token}, nil
}

func (s *Service) getRoom(msg *protocol.Message) (any, error) {
	var req protocol.RoomRequest
	if err := decode(msg, &req); err != nil {
		return nil, err
	}
	view, err := s.registry.GetRoom(req.RoomCode)
	if err != nil {
		return nil, err
	}
	return roomResponse(view), nil
}

func (s *Service) setPlayerInfo(msg *protocol.Message) (any, error) {
	var req protocol.SetPlayerInfoRequest
	if err := decode(msg, &req); err != nil {
		return nil, err
	}
	if err := s.registry.SetPlayerInfo(req.RoomCode, game.Seat(req.Seat), req.Token, req.Name); err != nil {
		return nil, err
	}
	return protocol.Empty{}, nil
}

func (s *Service) startGame(msg *protocol.Message) (any, error) {
	var req protocol.StartGameRequest
	if err := decode(msg, &req); err != nil {
		return nil, err
	}
	if err := s.registry.StartGame(req.RoomCode, game.Seat(req.Seat), req.Token); err != nil {
		return nil, err
	}
	return protocol.Empty{}, nil
}

func (s *Service) getGameState(msg *protocol.Message) (any, error) {
	var req protocol.RoomRequest
	if err := decode(msg, &req); err != nil {
		return nil, err
	}
	state, err := s.registry.GameState(req.RoomCode)
	if err != nil {
		return nil, err
	}
	return protocol.GameStateFrom(state), nil
}

func (s *Service) postTurn(msg *protocol.Message) (any, error) {
	var req protocol.PostTurnRequest
	if err := decode(msg, &req); err != nil {
		return nil, err
	}
	res, err := s.registry.PostTurn(req.RoomCode, game.Seat(req.Seat), req.Token, protocol.ToGameBalls(req.Balls))
	if err != nil {
		return nil, err
	}
	return postTurnResponse(res), nil
}

func (s *Service) checkWinState(msg *protocol.Message) (any, error) {
	var req protocol.RoomRequest
	if err := decode(msg, &req); err != nil {
		return nil, err
	}
	win, err := s.registry.WinState(req.RoomCode)
	if err != nil {
		return nil, err
	}
	return protocol.WinStateFrom(win), nil
}

func (s *Service) getPreviousTurn(msg *protocol.Message) (any, error) {
	var req protocol.RoomRequest
	if err := decode(msg, &req); err != nil {
		return nil, err
	}
	turn, err := s.registry.PreviousTurn(req.RoomCode)
	if err != nil {
		return nil, err
	}
	return protocol.TurnFrom(turn), nil
}

func roomResponse(v room.View) protocol.RoomResponse {
	players := make([]protocol.Player, 0, len(v.Seats))
	for _, seat := range v.Seats {
		players = append(players, protocol.Player{Seat: int(seat.Index), Name: seat.Name})
	}
	return protocol.RoomResponse{
		RoomCode:    v.Code,
		RoomName:    v.Name,
		GameStarted: v.Started,
		Players:     players,
		CreatedAt:   v.CreatedAt,
	}
}

func postTurnResponse(res room.TurnResult) protocol.PostTurnResponse {
	pocketed := res.Turn.Pocketed
	if pocketed == nil {
		pocketed = []int{}
	}
	return protocol.PostTurnResponse{
		Turn:      res.Turn.Number,
		Outcome:   res.Turn.Outcome.String(),
		TurnOwner: int(res.TurnOwner),
		Pocketed:  pocketed,
		WinState:  res.Win.Outcome.String(),
	}
}
