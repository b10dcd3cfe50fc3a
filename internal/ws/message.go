package ws

import "encoding/json"

// Message represents a WebSocket message with type-based routing.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Message types - admin commands
const (
	TypeAdminCreateRoom = "admin_create_room"
	TypeAdminRejoin     = "admin_rejoin"
	TypeAdminLockRoom   = "admin_lock_room"
	TypeAdminStartGame  = "admin_start_game"
	TypeAdminEndGame    = "admin_end_game"
)

// Message types - player commands
const (
	TypePlayerJoin     = "player_join"
	TypeSubmitScore    = "submit_score"
	TypeGetLeaderboard = "get_leaderboard"
)

// Message types - server events
const (
	TypeRoomCreated         = "room_created"
	TypeAdminRestoreSuccess = "admin_restore_success"
	TypeRoomLockedStatus    = "room_locked_status"
	TypeGameStart           = "game_start"
	TypeGameEnded           = "game_ended"
	TypeJoinSuccess         = "join_success"
	TypeUpdatePlayerList    = "update_player_list"
	TypeScoreReceived       = "score_received"
	TypeLiveLeaderboard     = "live_leaderboard"
	TypeLeaderboardData     = "leaderboard_data"
	TypeError               = "error_msg"
)

// ErrorMessage is sent when an error occurs.
type ErrorMessage struct {
	Message string `json:"message"`
}

// NewErrorMessage creates a Message with an error payload.
func NewErrorMessage(msg string) Message {
	data, _ := json.Marshal(ErrorMessage{Message: msg})
	return Message{Type: TypeError, Data: data}
}

// NewMessage creates a Message with a typed payload.
func NewMessage(msgType string, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: msgType, Data: data}, nil
}
