package ui

import (
	"github.com/google/uuid"

	"tanishgpt/backendclient"
)

// Sender identifies who produced a rendered message.
type Sender string

const (
	SenderUser   Sender = "user"
	SenderAI     Sender = "ai"
	SenderSystem Sender = "system"
)

// Message is one entry in the rendered conversation. Messages exist
// only in view memory and are rebuilt from backend history on session
// load; the client never persists them.
type Message struct {
	ID        string
	Sender    Sender
	Text      string
	Timestamp string

	// placeholder marks the transient "thinking" entry shown while a
	// chat request is in flight.
	placeholder bool
}

func newMessage(sender Sender, text string) Message {
	return Message{ID: uuid.NewString(), Sender: sender, Text: text}
}

// senderFromRole maps a backend history role onto a view sender.
// Anything that is not "user" renders on the assistant side.
func senderFromRole(role string) Sender {
	if role == "user" {
		return SenderUser
	}
	return SenderAI
}

// messageFromRecord converts one backend history record into a view
// message.
func messageFromRecord(rec backendclient.HistoryRecord) Message {
	return Message{
		ID:        uuid.NewString(),
		Sender:    senderFromRole(rec.Role),
		Text:      rec.Content,
		Timestamp: rec.TS,
	}
}
