// Package protocol defines the JSON messages exchanged over the /ws endpoint.
//
// Every frame is a Message envelope. Requests carry a RequestID chosen by the
// client; the server echoes it on the matching result or error frame.
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the call or reply carried by a Message.
type MessageType string

const (
	// Client to server
	TypeCreateRoom      MessageType = "create_room"
	TypeJoinRoom        MessageType = "join_room"
	TypeGetRoom         MessageType = "get_room"
	TypeSetPlayerInfo   MessageType = "set_player_info"
	TypeStartGame       MessageType = "start_game"
	TypeGetGameState    MessageType = "get_game_state"
	TypePostTurn        MessageType = "post_turn"
	TypeCheckWinState   MessageType = "check_win_state"
	TypeGetPreviousTurn MessageType = "get_previous_turn"

	// Server to client
	TypeResult MessageType = "result"
	TypeError  MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Message is the envelope for every frame.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", messageType, err)
		}
		raw = b
	}

	return &Message{
		Type:      messageType,
		Data:      raw,
		Timestamp: time.Now(),
	}, nil
}

// NewRequest creates a request frame tagged with requestID.
func NewRequest(messageType MessageType, requestID string, data any) (*Message, error) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		return nil, err
	}
	msg.RequestID = requestID
	return msg, nil
}

// NewResult creates the success reply to a request.
func NewResult(requestID string, data any) (*Message, error) {
	return NewRequest(TypeResult, requestID, data)
}

// NewError creates the error reply to a request. It cannot fail.
func NewError(requestID, code, message string) *Message {
	data, _ := json.Marshal(ErrorData{Code: code, Message: message})
	return &Message{
		Type:      TypeError,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: requestID,
	}
}

// Decode unmarshals the payload into v. A missing or null payload leaves v
// at its zero value.
func (m *Message) Decode(v any) error {
	data := bytes.TrimSpace(m.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", m.Type, err)
	}
	return nil
}
