package protocol

import "time"

// Ball is one entry of a ball table.
type Ball struct {
	ID     int  `json:"id"`
	InPlay bool `json:"inPlay"`
}

// ErrorData is the payload of an error frame. Code is an rpcerr kind name.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Empty is the payload of calls that return nothing.
type Empty struct{}

// Requests

type CreateRoomRequest struct{}

type JoinRoomRequest struct {
	RoomCode string `json:"roomCode"`
}

// RoomRequest addresses a room without authorization. Used by get_room,
// get_game_state, check_win_state and get_previous_turn.
type RoomRequest struct {
	RoomCode string `json:"roomCode"`
}

type SetPlayerInfoRequest struct {
	RoomCode string `json:"roomCode"`
	Seat     int    `json:"seat"`
	Token    string `json:"token"`
	Name     string `json:"name"`
}

// StartGameRequest is answered with unavailable until both seats are taken.
type StartGameRequest struct {
	RoomCode string `json:"roomCode"`
	Seat     int    `json:"seat"`
	Token    string `json:"token"`
}

type PostTurnRequest struct {
	RoomCode string `json:"roomCode"`
	Seat     int    `json:"seat"`
	Token    string `json:"token"`
	Balls    []Ball `json:"balls"`
}

// Responses

type CreateRoomResponse struct {
	RoomCode    string `json:"roomCode"`
	PlayerToken string `json:"playerToken"`
}

type JoinRoomResponse struct {
	PlayerToken string `json:"playerToken"`
}

// Player is the public part of a seat. Tokens are never sent back.
type Player struct {
	Seat int    `json:"seat"`
	Name string `json:"name"`
}

type RoomResponse struct {
	RoomCode    string    `json:"roomCode"`
	RoomName    string    `json:"roomName"`
	GameStarted bool      `json:"gameStarted"`
	Players     []Player  `json:"players"`
	CreatedAt   time.Time `json:"createdAt"`
}

type GameState struct {
	Balls      []Ball    `json:"balls"`
	Scores     [2]int    `json:"scores"`
	Groups     [2]string `json:"groups"`
	TurnOwner  int       `json:"turnOwner"`
	TurnNumber int       `json:"turnNumber"`
}

type PostTurnResponse struct {
	Turn      int    `json:"turn"`
	Outcome   string `json:"outcome"`
	TurnOwner int    `json:"turnOwner"`
	Pocketed  []int  `json:"pocketed"`
	WinState  string `json:"winState"`
}

type WinStateResponse struct {
	Outcome string `json:"outcome"`
	Winner  *int   `json:"winner,omitempty"`
}

type Turn struct {
	Number   int    `json:"number"`
	Seat     int    `json:"seat"`
	Balls    []Ball `json:"balls"`
	Pocketed []int  `json:"pocketed"`
	Outcome  string `json:"outcome"`
}

// StatsResponse is served as JSON from /stats?format=json.
type StatsResponse struct {
	Rooms       int `json:"rooms"`
	ActiveGames int `json:"activeGames"`
}
