package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Inbound message envelope types.
const (
	MessageAction = "ACTION"
	MessageServer = "SERVER_MESSAGE"
	MessageError  = "ERROR"
)

// Server message body types.
const (
	BodyReady = "READY"
	BodyChat  = "CHAT_MESSAGE"
)

var (
	ErrUnparsablePayload  = errors.New("unparsable payload")
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrEmptyEnvelope      = errors.New("envelope is missing its payload")
)

// Inbound is the wire envelope for every server-to-client message.
type Inbound struct {
	MessageType string  `json:"messageType"`
	Action      *Action `json:"action,omitempty"`
	Body        *Body   `json:"body,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// Action carries the union of fields the server may attach to an action.
// Which fields are required for which type is the router's concern.
type Action struct {
	Type       string         `json:"type"`
	Players    []string       `json:"players,omitempty"`
	PlayerDto  *PlayerDto     `json:"playerDto,omitempty"`
	ExpireAtMs int64          `json:"expireAtMs,omitempty"`
	PlayerRank int            `json:"playerRank,omitempty"`
	Scores     map[string]int `json:"scores,omitempty"`
	Card       *Card          `json:"card,omitempty"`
	Cards      []Card         `json:"cards,omitempty"`
	Count      int            `json:"count,omitempty"`
	NextColor  string         `json:"nextColor,omitempty"`
	Username   string         `json:"username,omitempty"`
	GameID     string         `json:"gameId,omitempty"`
}

// Card is a card in wire form: long suit in Color, long rank in Type.
type Card struct {
	Color string `json:"color"`
	Type  string `json:"type"`
}

type PlayerDto struct {
	Username string `json:"username"`
	PlayerID string `json:"playerId"`
}

// Body is the payload of a SERVER_MESSAGE envelope.
type Body struct {
	BodyType string       `json:"bodyType"`
	Username string       `json:"username,omitempty"`
	Message  *ChatMessage `json:"message,omitempty"`
}

type ChatMessage struct {
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// DecodeInbound parses a raw frame into the envelope. Unparsable payloads and
// unrecognised message types come back as errors, never as partial envelopes.
func DecodeInbound(raw []byte) (*Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsablePayload, err)
	}

	switch in.MessageType {
	case MessageAction:
		if in.Action == nil {
			return nil, fmt.Errorf("%w: messageType %s without action", ErrEmptyEnvelope, in.MessageType)
		}
	case MessageServer:
		if in.Body == nil {
			return nil, fmt.Errorf("%w: messageType %s without body", ErrEmptyEnvelope, in.MessageType)
		}
	case MessageError:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, in.MessageType)
	}

	return &in, nil
}
