package qa

import (
	"time"

	"github.com/google/uuid"
)

// Message is the envelope every queue carries. An exit message is the
// shutdown sentinel: it never holds a payload, so no legitimate item can
// be mistaken for it.
type Message struct {
	id        uuid.UUID
	createdAt time.Time
	payload   any
	exit      bool
}

func Wrap(payload any) Message {
	return Message{
		id:        uuid.New(),
		createdAt: time.Now().UTC(),
		payload:   payload,
	}
}

// Exit returns a shutdown sentinel. One is enqueued per worker of a stage.
func Exit() Message {
	return Message{
		id:        uuid.New(),
		createdAt: time.Now().UTC(),
		exit:      true,
	}
}

// Forward keeps the identity of m and replaces the payload with the result
// produced by a stage.
func (m Message) Forward(payload any) Message {
	return Message{
		id:        m.id,
		createdAt: m.createdAt,
		payload:   payload,
	}
}

func (m Message) Payload() any {
	return m.payload
}

func (m Message) IsExit() bool {
	return m.exit
}

func (m Message) Id() uuid.UUID {
	return m.id
}

func (m Message) CreatedAt() time.Time {
	return m.createdAt
}

// Payloads unwraps a slice of messages, keeping their order.
func Payloads[E PayloadProvider](messages []E) []any {
	out := make([]any, 0, len(messages))
	for _, m := range messages {
		out = append(out, m.Payload())
	}
	return out
}
