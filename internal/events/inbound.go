package events

import (
	"encoding/json"

	svcErr "github.com/oggyb/muzz-social/internal/errors"
)

type Action string

const (
	ActionSendMessage      Action = "send_message"
	ActionTypingStart      Action = "typing_start"
	ActionTypingStop       Action = "typing_stop"
	ActionMarkMessagesRead Action = "mark_messages_read"
)

// Inbound is one frame received from a connection.
//
// ReceiverID names the counterpart for send_message and typing signals;
// SenderID names whose messages are being marked read.
type Inbound struct {
	Type       Action `json:"type"`
	ReceiverID uint64 `json:"receiver_id,omitempty"`
	SenderID   uint64 `json:"sender_id,omitempty"`
	Content    string `json:"content,omitempty"`
}

// DecodeInbound parses and shape-checks a frame. Failures are validation errors.
func DecodeInbound(data []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return Inbound{}, svcErr.Validation("malformed frame")
	}
	switch in.Type {
	case ActionSendMessage, ActionTypingStart, ActionTypingStop:
		if in.ReceiverID == 0 {
			return in, svcErr.Validation("receiver_id is required")
		}
	case ActionMarkMessagesRead:
		if in.SenderID == 0 {
			return in, svcErr.Validation("sender_id is required")
		}
	case "":
		return in, svcErr.Validation("type is required")
	default:
		return in, svcErr.Validation("unknown action " + string(in.Type))
	}
	return in, nil
}
