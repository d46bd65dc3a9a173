// Package service is the command surface over the rules engine. Every
// operation locks its room for the duration, which is the only concurrency
// discipline the engine relies on.
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"ludoarena/game/board"
	"ludoarena/game/engine"
	"ludoarena/game/registry"
)

// GameService defines all room and game operations used by the transports.
type GameService interface {
	// Protocol operations (websocket)
	Join(ctx context.Context, roomID, name string, color board.Color) (*JoinResult, error)
	Ready(ctx context.Context, roomID, playerID string) (*RosterResult, error)
	Start(ctx context.Context, roomID, playerID string) (*StartResult, error)
	Roll(ctx context.Context, roomID, playerID string) (*RollResult, error)
	Move(ctx context.Context, roomID, playerID string, tokenIndex int) (*MoveResult, error)
	Depart(ctx context.Context, roomID, playerID string) (*RosterResult, error)

	// Inspection (REST/MCP), read-only
	ListRooms(ctx context.Context) ([]*RoomInfo, error)
	GetRoom(ctx context.Context, roomID string) (*RoomInfo, error)
}

type gameService struct {
	rooms *registry.Manager
	log   zerolog.Logger
}

// NewGameService creates a game service over the given registry.
func NewGameService(rooms *registry.Manager, log zerolog.Logger) GameService {
	return &gameService{rooms: rooms, log: log}
}

// Join resolves (or creates) the room and seats the player. An empty roomID
// gets a generated room code.
func (s *gameService) Join(ctx context.Context, roomID, name string, color board.Color) (*JoinResult, error) {
	room := s.rooms.GetOrCreate(roomID)

	room.Lock()
	defer room.Unlock()

	player, err := room.Join(name, color)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("room", room.ID).
		Str("player", player.ID).
		Str("color", string(player.Color)).
		Msg("player joined")

	return &JoinResult{
		RoomID:  room.ID,
		Player:  playerInfo(player),
		Players: roster(room),
	}, nil
}

func (s *gameService) Ready(ctx context.Context, roomID, playerID string) (*RosterResult, error) {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return nil, err
	}

	room.Lock()
	defer room.Unlock()

	player := room.PlayerByID(playerID)
	if player == nil {
		return nil, fmt.Errorf("player %s: %w", playerID, registry.ErrRoomNotFound)
	}
	room.SetReady(player)

	return &RosterResult{PlayerID: playerID, Players: roster(room)}, nil
}

func (s *gameService) Start(ctx context.Context, roomID, playerID string) (*StartResult, error) {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return nil, err
	}

	room.Lock()
	defer room.Unlock()

	if err := room.Start(); err != nil {
		return nil, err
	}

	s.log.Info().Str("room", room.ID).Int("players", len(room.Players)).Msg("game started")

	return &StartResult{
		TurnPlayerID: room.CurrentPlayer().ID,
		State:        tokenStates(room),
	}, nil
}

func (s *gameService) Roll(ctx context.Context, roomID, playerID string) (*RollResult, error) {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return nil, err
	}

	room.Lock()
	defer room.Unlock()

	out, err := room.Roll(playerID)
	if err != nil {
		return nil, err
	}

	result := &RollResult{
		PlayerID: playerID,
		Roll:     out.Roll,
		Moves:    out.Moves,
		Busted:   out.Busted,
		Passed:   out.Passed,
	}
	if out.NextPlayer != nil {
		result.NextPlayerID = out.NextPlayer.ID
	}
	return result, nil
}

func (s *gameService) Move(ctx context.Context, roomID, playerID string, tokenIndex int) (*MoveResult, error) {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return nil, err
	}

	room.Lock()
	defer room.Unlock()

	out, err := room.Move(playerID, tokenIndex)
	if err != nil {
		return nil, err
	}

	result := &MoveResult{
		PlayerID:       playerID,
		Positions:      positions(out.Player),
		Move:           MoveDetail{TokenIndex: out.TokenIndex, Roll: out.Roll},
		Captured:       out.Captured,
		Finished:       out.Finished,
		PlayerFinished: out.PlayerFinished,
		ExtraTurn:      out.ExtraTurn,
		State:          tokenStates(room),
	}
	if out.NextPlayer != nil {
		result.NextPlayerID = out.NextPlayer.ID
	}
	return result, nil
}

// Depart removes the player and tears the room down once it is empty.
// Departing an unknown room or player is a no-op with an empty result, so a
// disconnect can always be funneled through here.
func (s *gameService) Depart(ctx context.Context, roomID, playerID string) (*RosterResult, error) {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return &RosterResult{PlayerID: playerID}, nil
	}

	room.Lock()
	defer room.Unlock()

	if !room.Depart(playerID) {
		return &RosterResult{PlayerID: playerID}, nil
	}

	result := &RosterResult{PlayerID: playerID, Players: roster(room)}
	if room.Empty() {
		s.rooms.Remove(room.ID)
		result.RoomRemoved = true
		s.log.Info().Str("room", room.ID).Msg("room removed")
	} else {
		if room.Started {
			if current := room.CurrentPlayer(); current != nil {
				result.TurnPlayerID = current.ID
			}
		}
		s.log.Info().Str("room", room.ID).Str("player", playerID).Msg("player departed")
	}
	return result, nil
}

func (s *gameService) ListRooms(ctx context.Context) ([]*RoomInfo, error) {
	rooms := s.rooms.List()
	infos := make([]*RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		room.Lock()
		infos = append(infos, roomInfo(room))
		room.Unlock()
	}
	return infos, nil
}

func (s *gameService) GetRoom(ctx context.Context, roomID string) (*RoomInfo, error) {
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return nil, err
	}

	room.Lock()
	defer room.Unlock()
	return roomInfo(room), nil
}

// Snapshot helpers. All of them copy; nothing hands out live engine state.

func positions(p *engine.Player) []int {
	out := make([]int, len(p.Positions))
	copy(out, p.Positions[:])
	return out
}

func playerInfo(p *engine.Player) PlayerInfo {
	return PlayerInfo{
		ID:        p.ID,
		Name:      p.Name,
		Color:     p.Color,
		Ready:     p.Ready,
		Positions: positions(p),
	}
}

func roster(room *engine.Room) []PlayerInfo {
	out := make([]PlayerInfo, 0, len(room.Players))
	for _, p := range room.Players {
		out = append(out, playerInfo(p))
	}
	return out
}

func tokenStates(room *engine.Room) []TokenState {
	out := make([]TokenState, 0, len(room.Players))
	for _, p := range room.Players {
		out = append(out, TokenState{ID: p.ID, Positions: positions(p)})
	}
	return out
}

func roomInfo(room *engine.Room) *RoomInfo {
	info := &RoomInfo{
		ID:          room.ID,
		Started:     room.Started,
		PlayerCount: len(room.Players),
		Players:     roster(room),
	}
	if room.Started {
		if current := room.CurrentPlayer(); current != nil {
			info.TurnPlayerID = current.ID
		}
	}
	return info
}
